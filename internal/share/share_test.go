package share

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"postdeck/internal/content"
)

type fakeFetcher struct {
	data []byte
	err  error
	urls []string
}

func (f *fakeFetcher) FetchImage(_ context.Context, imageURL string) ([]byte, error) {
	f.urls = append(f.urls, imageURL)
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func stubClipboard(t *testing.T) *[]string {
	t.Helper()
	var writes []string
	orig := clipboardWriteAll
	clipboardWriteAll = func(text string) error {
		writes = append(writes, text)
		return nil
	}
	t.Cleanup(func() { clipboardWriteAll = orig })
	return &writes
}

func stubBrowser(t *testing.T) *[][]string {
	t.Helper()
	var launched [][]string
	orig := startCommand
	startCommand = func(cmd *exec.Cmd) error {
		launched = append(launched, cmd.Args)
		return nil
	}
	t.Cleanup(func() { startCommand = orig })
	return &launched
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	fetcher := &fakeFetcher{data: []byte("jpegbytes")}

	orig := timeNow
	timeNow = func() time.Time { return time.UnixMilli(1700000000000) }
	t.Cleanup(func() { timeNow = orig })

	path, err := SaveImage(context.Background(), fetcher, "https://cdn.example.com/x.jpg", dir)
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}

	if want := filepath.Join(dir, "instagram-post-1700000000000.jpg"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "jpegbytes" {
		t.Errorf("saved bytes = %q", data)
	}
}

func TestSaveImage_FetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	_, err := SaveImage(context.Background(), fetcher, "https://cdn.example.com/x.jpg", t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCopyCaption(t *testing.T) {
	writes := stubClipboard(t)

	if err := CopyCaption("launch day", []string{"#go", "#build"}); err != nil {
		t.Fatalf("CopyCaption: %v", err)
	}

	if len(*writes) != 1 {
		t.Fatalf("clipboard writes = %d, want 1", len(*writes))
	}
	if got, want := (*writes)[0], "launch day\n\n#go #build"; got != want {
		t.Errorf("clipboard = %q, want %q", got, want)
	}
}

func TestOpenCompose(t *testing.T) {
	launched := stubBrowser(t)

	if err := OpenCompose(); err != nil {
		t.Fatalf("OpenCompose: %v", err)
	}

	if len(*launched) != 1 {
		t.Fatalf("launches = %d, want 1", len(*launched))
	}
	args := strings.Join((*launched)[0], " ")
	if !strings.Contains(args, ComposeURL) {
		t.Errorf("launch args %q missing compose url", args)
	}
}

func TestPostNow_FullHandoff(t *testing.T) {
	writes := stubClipboard(t)
	launched := stubBrowser(t)
	fetcher := &fakeFetcher{data: []byte("img")}

	parsed := content.Parse(`{"image":{"caption":"hello","hashtags":["#a"],"imageUrl":"https://cdn.example.com/p.jpg"}}`)
	res, err := PostNow(context.Background(), fetcher, parsed, t.TempDir())
	if err != nil {
		t.Fatalf("PostNow: %v", err)
	}

	if res.ImagePath == "" {
		t.Error("expected image to be saved")
	}
	if !res.CaptionCopied || !res.ComposeOpened {
		t.Errorf("result = %+v", res)
	}
	if len(*writes) != 1 || len(*launched) != 1 {
		t.Errorf("writes=%d launches=%d", len(*writes), len(*launched))
	}
	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://cdn.example.com/p.jpg" {
		t.Errorf("fetched urls = %v", fetcher.urls)
	}
}

func TestPostNow_PlaceholderImageSkipsDownload(t *testing.T) {
	stubClipboard(t)
	stubBrowser(t)
	fetcher := &fakeFetcher{data: []byte("img")}

	parsed := content.Parse(`{"image":{"caption":"hello","imageUrl":"https://placehold.co/600"}}`)
	res, err := PostNow(context.Background(), fetcher, parsed, t.TempDir())
	if err != nil {
		t.Fatalf("PostNow: %v", err)
	}

	if len(fetcher.urls) != 0 {
		t.Errorf("placeholder image should not be fetched, got %v", fetcher.urls)
	}
	if res.ImagePath != "" {
		t.Errorf("ImagePath = %q, want empty", res.ImagePath)
	}
	if !res.CaptionCopied || !res.ComposeOpened {
		t.Errorf("remaining steps should still run: %+v", res)
	}
}

func TestPostNow_ImageFailureDoesNotBlockCaption(t *testing.T) {
	writes := stubClipboard(t)
	stubBrowser(t)
	fetcher := &fakeFetcher{err: errors.New("cdn down")}

	parsed := content.Parse(`{"image":{"caption":"hello","imageUrl":"https://cdn.example.com/p.jpg"}}`)
	res, err := PostNow(context.Background(), fetcher, parsed, t.TempDir())
	if err == nil {
		t.Fatal("expected the image error to surface")
	}

	if !res.CaptionCopied || !res.ComposeOpened {
		t.Errorf("caption and compose should still run: %+v", res)
	}
	if len(*writes) != 1 {
		t.Errorf("clipboard writes = %d, want 1", len(*writes))
	}
}
