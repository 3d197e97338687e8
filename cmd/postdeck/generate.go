package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"postdeck/internal/api"
	"postdeck/internal/notify"
	"postdeck/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// generateCmd runs one content generation pass and prints the preview.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new Instagram post",
	Long: `Run the content generation workflow once and print the resulting
Instagram preview. Generation can take a couple of minutes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, _, client, err := loadSetup()
		if err != nil {
			return err
		}

		notifier := notify.Stderr(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		})

		ctx, cancel := cmdContext()
		defer cancel()

		notifier.Info("Generating content, this can take a while...")
		resp, err := client.Generate(ctx)
		if err != nil {
			msg := api.ErrorMessage(err, "Failed to generate content")
			notifier.Error(msg)
			return fmt.Errorf("generation failed: %s", msg)
		}
		logger.Debug("generation finished",
			zap.String("post_id", resp.PostID),
			zap.Int("credits", resp.CreditsUsed))

		notifier.Success("Content generated successfully!")
		printPreview(resp)

		history, err := store.NewHistoryStore(filepath.Join(home, "history.db"))
		if err != nil {
			logger.Warn("history store unavailable", zap.Error(err))
			return nil
		}
		defer history.Close()
		if _, err := history.RecordGeneration(store.Generation{
			PostID:      resp.PostID,
			Caption:     resp.Preview.Caption,
			HasImage:    resp.Preview.PostImage != "",
			HasVideo:    resp.HasVideoScript,
			CreditsUsed: resp.CreditsUsed,
		}); err != nil {
			logger.Warn("failed to record generation", zap.Error(err))
		}
		return nil
	},
}

func printPreview(resp *api.GenerateResponse) {
	fmt.Println()
	fmt.Printf("Post ID:  %s\n", resp.PostID)
	fmt.Printf("Caption:  %s\n", resp.Preview.Caption)
	if len(resp.Preview.Hashtags) > 0 {
		fmt.Printf("Hashtags: %s\n", strings.Join(resp.Preview.Hashtags, " "))
	}
	if resp.Preview.PostImage != "" {
		fmt.Printf("Image:    %s\n", resp.Preview.PostImage)
	}
	if resp.HasVideoScript {
		fmt.Println("A video script is available (see the dashboard).")
	}
	if resp.CreditsUsed > 0 {
		fmt.Printf("Credits:  %d used\n", resp.CreditsUsed)
	}
}
