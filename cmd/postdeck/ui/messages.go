package ui

import (
	"postdeck/internal/api"
	"postdeck/internal/content"
)

// Messages that cross page boundaries. Pages emit these; the root model
// routes them to the right handler.
type (
	// ToastMsg asks the root model to show a transient status line.
	// Kind is "success", "error" or "info".
	ToastMsg struct {
		Kind string
		Text string
	}

	// OpenPostMsg asks the root model to open the detail page for a post.
	OpenPostMsg struct {
		Post api.Post
	}

	// BackMsg asks the root model to return to the feed.
	BackMsg struct{}

	// DownloadRequestMsg asks for an image to be saved to disk.
	DownloadRequestMsg struct {
		ImageURL string
	}

	// CopyRequestMsg asks for a caption to go to the clipboard.
	CopyRequestMsg struct {
		Caption  string
		Hashtags []string
	}

	// PostNowRequestMsg asks for the full Instagram handoff for a post.
	PostNowRequestMsg struct {
		Parsed content.Parsed
	}

	// GenerationDoneMsg announces a completed generation run so the root
	// model can record history and refresh the feed.
	GenerationDoneMsg struct {
		Response *api.GenerateResponse
	}
)

func successToast(text string) ToastMsg { return ToastMsg{Kind: "success", Text: text} }
func errorToast(text string) ToastMsg   { return ToastMsg{Kind: "error", Text: text} }
func infoToast(text string) ToastMsg    { return ToastMsg{Kind: "info", Text: text} }
