// Package dash wires the postdeck pages into the root bubbletea model:
// view routing, toasts, local history stats, and the action handlers that
// move content off the dashboard.
package dash

import (
	"context"
	"time"

	"postdeck/cmd/postdeck/ui"
	"postdeck/internal/api"
	"postdeck/internal/config"
	"postdeck/internal/share"
	"postdeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// toastDuration is how long a toast stays in the footer.
const toastDuration = 4 * time.Second

// Swappable for tests.
var (
	saveImage   = share.SaveImage
	copyCaption = share.CopyCaption
	postNow     = share.PostNow
)

// ViewMode selects the active page.
type ViewMode int

const (
	FeedView ViewMode = iota
	GenerateView
	DetailView
)

// Deps are the constructed dependencies the dashboard runs on.
type Deps struct {
	Config      *config.Config
	Client      *api.Client
	History     *store.HistoryStore // optional; stats and recording skip when nil
	DownloadDir string
}

// historyStats is the local-history summary shown in the footer.
type historyStats struct {
	TotalCredits int
	RecentRuns   int
}

// Model is the root model for the interactive dashboard.
type Model struct {
	deps   Deps
	styles ui.Styles

	viewMode ViewMode
	feed     ui.FeedPageModel
	generate ui.GeneratePageModel
	detail   ui.DetailPageModel

	width  int
	height int
	ready  bool

	stats historyStats

	toast    ui.ToastMsg
	toastSeq int
}

// Messages internal to the root model.
type (
	bootMsg struct{}

	statsMsg struct {
		stats historyStats
		err   error
	}

	toastExpiredMsg struct{ seq int }

	actionDoneMsg struct {
		toast ui.ToastMsg
	}

	generationRecordedMsg struct{ err error }

	// ConfigReloadedMsg is sent from outside the program when the config
	// file changes on disk.
	ConfigReloadedMsg struct {
		Config *config.Config
	}
)

// New creates the root model.
func New(deps Deps) Model {
	return Model{
		deps:     deps,
		styles:   ui.DefaultStyles(),
		feed:     ui.NewFeedPageModel(deps.Client, deps.Config.PageSize, deps.Config.OrderBy),
		generate: ui.NewGeneratePageModel(deps.Client),
		detail:   ui.NewDetailPageModel(deps.Client),
	}
}

// Init starts the pages and schedules the boot work.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.feed.Init(),
		m.generate.Init(),
		m.detail.Init(),
		func() tea.Msg { return bootMsg{} },
	)
}

// bootCmds returns the initial data loads: the first feed page plus the
// local history summary, fetched concurrently.
func (m *Model) bootCmds() tea.Cmd {
	cmds := []tea.Cmd{m.feed.Refresh()}
	if m.deps.History != nil {
		cmds = append(cmds, m.statsCmd())
	}
	return tea.Batch(cmds...)
}

// statsCmd recomputes the footer summary from the history store.
func (m *Model) statsCmd() tea.Cmd {
	history := m.deps.History
	return func() tea.Msg {
		var stats historyStats
		g, _ := errgroup.WithContext(context.Background())
		g.Go(func() error {
			credits, err := history.TotalCredits()
			stats.TotalCredits = credits
			return err
		})
		g.Go(func() error {
			n, err := history.CountSince(time.Now().Add(-7 * 24 * time.Hour))
			stats.RecentRuns = n
			return err
		})
		if err := g.Wait(); err != nil {
			return statsMsg{err: err}
		}
		return statsMsg{stats: stats}
	}
}
