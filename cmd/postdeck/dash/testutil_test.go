package dash

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"postdeck/internal/api"
	"postdeck/internal/config"
	"postdeck/internal/content"
	"postdeck/internal/share"
	"postdeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// testModelOption customizes the model built by newTestModel.
type testModelOption func(*testModelConfig)

type testModelConfig struct {
	handler     http.HandlerFunc
	withHistory bool
}

func withHandler(h http.HandlerFunc) testModelOption {
	return func(c *testModelConfig) { c.handler = h }
}

func withHistory() testModelOption {
	return func(c *testModelConfig) { c.withHistory = true }
}

// newTestModel builds a dashboard model against an httptest backend.
func newTestModel(t *testing.T, opts ...testModelOption) Model {
	t.Helper()

	tc := testModelConfig{
		handler: func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(api.ListPostsResponse{Meta: api.ListMeta{NoOfPages: 1}})
		},
	}
	for _, opt := range opts {
		opt(&tc)
	}

	srv := httptest.NewServer(tc.handler)
	t.Cleanup(srv.Close)

	deps := Deps{
		Config:      config.Default(),
		Client:      api.NewClient(api.Config{BaseURL: srv.URL}),
		DownloadDir: t.TempDir(),
	}
	if tc.withHistory {
		history, err := store.NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
		if err != nil {
			t.Fatalf("NewHistoryStore: %v", err)
		}
		t.Cleanup(func() { history.Close() })
		deps.History = history
	}

	m := New(deps)
	m.ready = true
	m.width = 100
	m.height = 30
	return m
}

// apply updates the model with one message and returns the concrete type.
func apply(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// runCmd executes a command tree synchronously and flattens batches.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// stubShare replaces the share-layer functions for the test's duration and
// records what was requested.
type shareRecorder struct {
	savedURLs    []string
	copiedTexts  []string
	postNowCalls int
	saveErr      error
	copyErr      error
	postErr      error
}

func stubShare(t *testing.T) *shareRecorder {
	t.Helper()
	rec := &shareRecorder{}

	origSave, origCopy, origPost := saveImage, copyCaption, postNow
	saveImage = func(_ context.Context, _ share.ImageFetcher, imageURL, dir string) (string, error) {
		rec.savedURLs = append(rec.savedURLs, imageURL)
		if rec.saveErr != nil {
			return "", rec.saveErr
		}
		return filepath.Join(dir, "saved.jpg"), nil
	}
	copyCaption = func(caption string, hashtags []string) error {
		rec.copiedTexts = append(rec.copiedTexts, content.ShareText(caption, hashtags))
		return rec.copyErr
	}
	postNow = func(_ context.Context, _ share.ImageFetcher, _ content.Parsed, _ string) (share.PostNowResult, error) {
		rec.postNowCalls++
		return share.PostNowResult{CaptionCopied: true, ComposeOpened: true}, rec.postErr
	}
	t.Cleanup(func() {
		saveImage, copyCaption, postNow = origSave, origCopy, origPost
	})
	return rec
}
