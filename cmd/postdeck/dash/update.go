package dash

import (
	"context"
	"time"

	"postdeck/cmd/postdeck/ui"
	"postdeck/internal/logging"
	"postdeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Update routes messages to the active page and handles everything that
// crosses page boundaries.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		pageH := msg.Height - 4 // header, footer, toast line
		m.feed.SetSize(msg.Width, pageH)
		m.generate.SetSize(msg.Width, pageH)
		m.detail.SetSize(msg.Width, pageH)
		return m, nil

	case bootMsg:
		return m, m.bootCmds()

	case statsMsg:
		if msg.err != nil {
			logging.StoreError("history stats failed: %v", msg.err)
			return m, nil
		}
		m.stats = msg.stats
		return m, nil

	case ui.ToastMsg:
		return m.showToast(msg)

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ui.ToastMsg{}
		}
		return m, nil

	case actionDoneMsg:
		return m.showToast(msg.toast)

	case ui.OpenPostMsg:
		m.viewMode = DetailView
		return m, m.detail.Open(msg.Post)

	case ui.BackMsg:
		m.viewMode = FeedView
		return m, nil

	case ui.DownloadRequestMsg:
		return m, m.downloadCmd(msg.ImageURL)

	case ui.CopyRequestMsg:
		return m, m.copyCmd(msg)

	case ui.PostNowRequestMsg:
		return m, m.postNowCmd(msg)

	case ui.GenerationDoneMsg:
		cmds = append(cmds, m.feed.Refresh())
		if m.deps.History != nil && msg.Response != nil {
			cmds = append(cmds, m.recordGenerationCmd(msg))
		}
		return m, tea.Batch(cmds...)

	case generationRecordedMsg:
		if msg.err != nil {
			logging.StoreError("failed to record generation: %v", msg.err)
		} else if m.deps.History != nil {
			return m, m.statsCmd()
		}
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config != nil {
			m.deps.Config = msg.Config
			m.deps.Client.SetSession(msg.Config.SessionToken)
			return m.showToast(ui.ToastMsg{Kind: "info", Text: "Configuration reloaded"})
		}
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	// Route everything else to the active page.
	var cmd tea.Cmd
	switch m.viewMode {
	case FeedView:
		m.feed, cmd = m.feed.Update(msg)
	case GenerateView:
		m.generate, cmd = m.generate.Update(msg)
	case DetailView:
		m.detail, cmd = m.detail.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleGlobalKey handles keys that work on every page. Keys are never
// global while the search box is capturing input.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	if m.viewMode == FeedView && m.feed.Searching() {
		return nil, false
	}

	switch msg.String() {
	case "q":
		if m.viewMode != DetailView { // detail uses q for back
			return tea.Quit, true
		}
	case "tab":
		if m.viewMode == FeedView {
			m.viewMode = GenerateView
			return nil, true
		}
		if m.viewMode == GenerateView && m.generate.Phase() != ui.PhaseReady {
			// On the ready page tab cycles result views instead.
			m.viewMode = FeedView
			return nil, true
		}
	case "1":
		if m.viewMode != GenerateView || m.generate.Phase() != ui.PhaseReady {
			m.viewMode = FeedView
			return nil, true
		}
	case "2":
		if m.viewMode != GenerateView {
			m.viewMode = GenerateView
			return nil, true
		}
	case "esc":
		if m.viewMode == GenerateView {
			m.viewMode = FeedView
			return nil, true
		}
	}
	return nil, false
}

func (m *Model) showToast(toast ui.ToastMsg) (tea.Model, tea.Cmd) {
	m.toast = toast
	m.toastSeq++
	seq := m.toastSeq
	return *m, expireToastCmd(seq)
}

func expireToastCmd(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// downloadCmd saves an image into the configured download directory.
func (m *Model) downloadCmd(imageURL string) tea.Cmd {
	client := m.deps.Client
	dir := m.deps.DownloadDir
	return func() tea.Msg {
		path, err := saveImage(context.Background(), client, imageURL, dir)
		if err != nil {
			logging.ShareError("download failed: %v", err)
			return actionDoneMsg{toast: ui.ToastMsg{Kind: "error", Text: "Failed to download image"}}
		}
		return actionDoneMsg{toast: ui.ToastMsg{Kind: "success", Text: "Image saved to " + path}}
	}
}

// copyCmd puts a caption and hashtags on the clipboard.
func (m *Model) copyCmd(req ui.CopyRequestMsg) tea.Cmd {
	return func() tea.Msg {
		if err := copyCaption(req.Caption, req.Hashtags); err != nil {
			logging.ShareError("copy failed: %v", err)
			return actionDoneMsg{toast: ui.ToastMsg{Kind: "error", Text: "Failed to copy caption"}}
		}
		return actionDoneMsg{toast: ui.ToastMsg{Kind: "success", Text: "Caption copied to clipboard!"}}
	}
}

// postNowCmd runs the full Instagram handoff.
func (m *Model) postNowCmd(req ui.PostNowRequestMsg) tea.Cmd {
	client := m.deps.Client
	dir := m.deps.DownloadDir
	return func() tea.Msg {
		if _, err := postNow(context.Background(), client, req.Parsed, dir); err != nil {
			logging.ShareError("post now failed: %v", err)
			return actionDoneMsg{toast: ui.ToastMsg{Kind: "error", Text: "Could not complete the Instagram handoff"}}
		}
		return actionDoneMsg{toast: ui.ToastMsg{Kind: "success", Text: "Opening Instagram..."}}
	}
}

// recordGenerationCmd appends the run to the local history store.
func (m *Model) recordGenerationCmd(msg ui.GenerationDoneMsg) tea.Cmd {
	history := m.deps.History
	resp := msg.Response
	return func() tea.Msg {
		_, err := history.RecordGeneration(store.Generation{
			PostID:      resp.PostID,
			Caption:     resp.Preview.Caption,
			HasImage:    resp.Preview.PostImage != "",
			HasVideo:    resp.HasVideoScript,
			CreditsUsed: resp.CreditsUsed,
		})
		return generationRecordedMsg{err: err}
	}
}
