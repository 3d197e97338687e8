// Package share moves generated content off the dashboard: image downloads
// to disk, captions to the clipboard, and the Instagram compose handoff.
package share

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"postdeck/internal/api"
	"postdeck/internal/content"
	"postdeck/internal/logging"

	"github.com/atotto/clipboard"
)

// ComposeURL is where "post now" sends the user; Instagram has no web API
// for prefilled posts, so the handoff opens the create page with the
// caption already on the clipboard.
const ComposeURL = "https://www.instagram.com/create/style/"

// Swappable for tests.
var (
	clipboardWriteAll = clipboard.WriteAll
	startCommand      = func(cmd *exec.Cmd) error { return cmd.Start() }
	timeNow           = time.Now
)

// ImageFetcher downloads image bytes. *api.Client satisfies this.
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// SaveImage downloads imageURL into dir and returns the saved path. The
// filename embeds a millisecond timestamp so repeated downloads never clash.
func SaveImage(ctx context.Context, fetcher ImageFetcher, imageURL, dir string) (string, error) {
	data, err := fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	name := fmt.Sprintf("instagram-post-%d.jpg", timeNow().UnixMilli())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	logging.Share("saved image %s (%d bytes)", path, len(data))
	return path, nil
}

// CopyCaption puts the caption plus hashtags on the system clipboard.
func CopyCaption(caption string, hashtags []string) error {
	if err := clipboardWriteAll(content.ShareText(caption, hashtags)); err != nil {
		return fmt.Errorf("failed to copy caption: %w", err)
	}
	logging.Share("caption copied (%d hashtags)", len(hashtags))
	return nil
}

// OpenCompose opens the Instagram create page in the default browser.
func OpenCompose() error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", ComposeURL)
	case "darwin":
		cmd = exec.Command("open", ComposeURL)
	default:
		cmd = exec.Command("xdg-open", ComposeURL)
	}

	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	logging.Share("opened compose page")
	return nil
}

// PostNowResult reports which steps of the handoff succeeded.
type PostNowResult struct {
	ImagePath     string
	CaptionCopied bool
	ComposeOpened bool
}

// PostNow runs the full handoff for a post: download its image (when it has
// one), copy the caption, and open the compose page. Steps are best effort
// so a missing image still gets the caption to the clipboard; the first
// error is returned after all steps have run.
func PostNow(ctx context.Context, fetcher ImageFetcher, parsed content.Parsed, dir string) (PostNowResult, error) {
	var res PostNowResult
	var firstErr error

	if parsed.HasImage() {
		path, err := SaveImage(ctx, fetcher, parsed.Image.ImageURL, dir)
		if err != nil {
			logging.ShareError("post now: image download failed: %v", err)
			firstErr = err
		} else {
			res.ImagePath = path
		}
	}

	if err := CopyCaption(parsed.DisplayCaption(), parsed.Hashtags()); err != nil {
		logging.ShareError("post now: caption copy failed: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	} else {
		res.CaptionCopied = true
	}

	if err := OpenCompose(); err != nil {
		logging.ShareError("post now: compose open failed: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	} else {
		res.ComposeOpened = true
	}

	return res, firstErr
}

var _ ImageFetcher = (*api.Client)(nil)
