package main

import (
	"fmt"
	"path/filepath"
	"time"

	"postdeck/cmd/postdeck/ui"
	"postdeck/internal/content"
	"postdeck/internal/store"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd prints recent generation runs from the local history store.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, _, _, err := loadSetup()
		if err != nil {
			return err
		}

		history, err := store.NewHistoryStore(filepath.Join(home, "history.db"))
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer history.Close()

		runs, err := history.Recent(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No generation runs recorded yet.")
			return nil
		}

		credits, err := history.TotalCredits()
		if err != nil {
			return fmt.Errorf("failed to total credits: %w", err)
		}
		weekly, err := history.CountSince(time.Now().AddDate(0, 0, -7))
		if err != nil {
			return fmt.Errorf("failed to count recent runs: %w", err)
		}

		table := ui.NewSimpleTable(
			fmt.Sprintf("Generation History (%d credits used, %d runs this week)", credits, weekly),
			[]string{"When", "Post", "Caption", "Media", "Credits"},
		)
		for _, run := range runs {
			media := "-"
			switch {
			case run.HasImage && run.HasVideo:
				media = "image+video"
			case run.HasImage:
				media = "image"
			case run.HasVideo:
				media = "video"
			}
			caption := content.Truncate(run.Caption, 40)
			table.AddRow(
				run.CreatedAt.Format("Jan 02 15:04"),
				run.PostID,
				caption,
				media,
				fmt.Sprintf("%d", run.CreditsUsed),
			)
		}
		fmt.Println(table.View(ui.DefaultStyles()))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
}
