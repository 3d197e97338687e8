package main

import (
	"fmt"

	"postdeck/cmd/postdeck/ui"
	"postdeck/internal/api"
	"postdeck/internal/content"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	postsPage   int
	postsSearch string
	postsLimit  int
)

// postsCmd lists generated posts without entering the dashboard.
var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List generated posts",
	Long: `List your generated posts as a table.

Useful for scripting and for a quick look without the full dashboard.
Supports the same pagination and search as the interactive feed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, client, err := loadSetup()
		if err != nil {
			return err
		}

		ctx, cancel := cmdContext()
		defer cancel()

		logger.Debug("listing posts",
			zap.Int("page", postsPage),
			zap.String("search", postsSearch))

		limit := postsLimit
		if limit <= 0 {
			limit = cfg.PageSize
		}
		resp, err := client.ListPosts(ctx, api.ListPostsParams{
			Page:    postsPage,
			Limit:   limit,
			Search:  postsSearch,
			OrderBy: cfg.OrderBy,
		})
		if err != nil {
			return fmt.Errorf("failed to list posts: %s", api.ErrorMessage(err, "backend unavailable"))
		}

		if len(resp.Data) == 0 {
			fmt.Println("No posts found.")
			return nil
		}

		table := ui.NewSimpleTable(
			fmt.Sprintf("Generated Posts (page %d of %d, %d total)", resp.Meta.Page, resp.Meta.NoOfPages, resp.Meta.Total),
			[]string{"ID", "Platform", "Caption", "Media", "Created"},
		)
		for _, post := range resp.Data {
			parsed := content.Parse(post.Content)
			media := "-"
			switch {
			case parsed.HasImage() && parsed.HasVideo():
				media = "image+video"
			case parsed.HasImage():
				media = "image"
			case parsed.HasVideo():
				media = "video"
			}
			caption := content.Truncate(parsed.DisplayCaption(), 48)
			table.AddRow(post.ID, post.Platform, caption, media, post.CreatedAt)
		}
		fmt.Println(table.View(ui.DefaultStyles()))
		return nil
	},
}

func init() {
	postsCmd.Flags().IntVarP(&postsPage, "page", "p", 1, "page to fetch")
	postsCmd.Flags().StringVarP(&postsSearch, "search", "s", "", "filter posts by search term")
	postsCmd.Flags().IntVarP(&postsLimit, "limit", "n", 0, "posts per page (default from config)")
}
