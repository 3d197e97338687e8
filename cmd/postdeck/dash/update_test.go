package dash

import (
	"errors"
	"strings"
	"testing"

	"postdeck/cmd/postdeck/ui"
	"postdeck/internal/api"
	"postdeck/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

func TestToastLifecycle(t *testing.T) {
	m := newTestModel(t)

	m, _ = apply(t, m, ui.ToastMsg{Kind: "success", Text: "first"})
	if m.toast.Text != "first" {
		t.Fatalf("toast = %+v", m.toast)
	}
	firstSeq := m.toastSeq

	// A newer toast replaces the old one.
	m, _ = apply(t, m, ui.ToastMsg{Kind: "error", Text: "second"})
	if m.toast.Text != "second" {
		t.Fatalf("toast = %+v", m.toast)
	}

	// The first toast's expiry must not clear the second toast.
	m, _ = apply(t, m, toastExpiredMsg{seq: firstSeq})
	if m.toast.Text != "second" {
		t.Error("expired old toast cleared the current one")
	}

	// The current toast's expiry clears it.
	m, _ = apply(t, m, toastExpiredMsg{seq: m.toastSeq})
	if m.toast.Text != "" {
		t.Errorf("toast not cleared: %+v", m.toast)
	}
}

func TestViewRouting(t *testing.T) {
	m := newTestModel(t)
	if m.viewMode != FeedView {
		t.Fatalf("initial view = %v", m.viewMode)
	}

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.viewMode != GenerateView {
		t.Fatalf("after tab: %v", m.viewMode)
	}

	m, _ = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.viewMode != FeedView {
		t.Fatalf("after esc: %v", m.viewMode)
	}

	m, _ = apply(t, m, ui.OpenPostMsg{Post: api.Post{ID: "p1", Content: "hello"}})
	if m.viewMode != DetailView {
		t.Fatalf("after open: %v", m.viewMode)
	}

	m, _ = apply(t, m, ui.BackMsg{})
	if m.viewMode != FeedView {
		t.Fatalf("after back: %v", m.viewMode)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t)

	_, cmd := apply(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not produce a quit")
	}

	_, cmd = apply(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit from the feed")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not produce a quit")
	}
}

func TestCopyRequestShowsToast(t *testing.T) {
	rec := stubShare(t)
	m := newTestModel(t)

	m, cmd := apply(t, m, ui.CopyRequestMsg{Caption: "hello", Hashtags: []string{"#x"}})
	for _, msg := range runCmd(cmd) {
		m, _ = apply(t, m, msg)
	}

	if len(rec.copiedTexts) != 1 || rec.copiedTexts[0] != "hello\n\n#x" {
		t.Errorf("copied = %v", rec.copiedTexts)
	}
	if m.toast.Kind != "success" || m.toast.Text != "Caption copied to clipboard!" {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestCopyFailureShowsErrorToast(t *testing.T) {
	rec := stubShare(t)
	rec.copyErr = errors.New("no clipboard")
	m := newTestModel(t)

	m, cmd := apply(t, m, ui.CopyRequestMsg{Caption: "hello"})
	for _, msg := range runCmd(cmd) {
		m, _ = apply(t, m, msg)
	}

	if m.toast.Kind != "error" {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestDownloadRequest(t *testing.T) {
	rec := stubShare(t)
	m := newTestModel(t)

	m, cmd := apply(t, m, ui.DownloadRequestMsg{ImageURL: "https://cdn.example.com/x.jpg"})
	for _, msg := range runCmd(cmd) {
		m, _ = apply(t, m, msg)
	}

	if len(rec.savedURLs) != 1 || rec.savedURLs[0] != "https://cdn.example.com/x.jpg" {
		t.Errorf("saved = %v", rec.savedURLs)
	}
	if m.toast.Kind != "success" || !strings.Contains(m.toast.Text, "saved.jpg") {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestPostNowRequest(t *testing.T) {
	rec := stubShare(t)
	m := newTestModel(t)

	m, cmd := apply(t, m, ui.PostNowRequestMsg{})
	for _, msg := range runCmd(cmd) {
		m, _ = apply(t, m, msg)
	}

	if rec.postNowCalls != 1 {
		t.Errorf("postNow calls = %d", rec.postNowCalls)
	}
	if m.toast.Text != "Opening Instagram..." {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestGenerationDoneRecordsHistoryAndRefreshesStats(t *testing.T) {
	m := newTestModel(t, withHistory())

	done := ui.GenerationDoneMsg{Response: &api.GenerateResponse{
		PostID:      "post-9",
		CreditsUsed: 3,
		Preview:     api.InstagramPreview{Caption: "cap", PostImage: "https://cdn.example.com/i.jpg"},
	}}

	m, cmd := apply(t, m, done)
	// Drive the record -> stats pipeline to completion.
	for i := 0; i < 4 && cmd != nil; i++ {
		var next []tea.Cmd
		for _, msg := range runCmd(cmd) {
			var c tea.Cmd
			m, c = apply(t, m, msg)
			if c != nil {
				next = append(next, c)
			}
		}
		cmd = tea.Batch(next...)
	}

	recent, err := m.deps.History.Recent(5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 || recent[0].PostID != "post-9" || recent[0].CreditsUsed != 3 {
		t.Errorf("recorded = %+v", recent)
	}
	if !recent[0].HasImage {
		t.Error("HasImage should be recorded")
	}
	if m.stats.TotalCredits != 3 {
		t.Errorf("stats = %+v", m.stats)
	}
}

func TestConfigReload(t *testing.T) {
	m := newTestModel(t)

	cfg := config.Default()
	cfg.SessionToken = "rotated"
	m, _ = apply(t, m, ConfigReloadedMsg{Config: cfg})

	if m.deps.Config.SessionToken != "rotated" {
		t.Errorf("config not swapped: %+v", m.deps.Config)
	}
	if m.toast.Kind != "info" {
		t.Errorf("toast = %+v", m.toast)
	}
}

func TestBootLoadsFeedAndStats(t *testing.T) {
	m := newTestModel(t, withHistory())

	m, cmd := apply(t, m, bootMsg{})
	sawStats := false
	for _, msg := range runCmd(cmd) {
		if _, ok := msg.(statsMsg); ok {
			sawStats = true
		}
		m, _ = apply(t, m, msg)
	}
	if !sawStats {
		t.Error("boot should compute history stats")
	}
}
