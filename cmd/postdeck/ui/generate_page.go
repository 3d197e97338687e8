package ui

import (
	"context"
	"fmt"
	"strings"

	"postdeck/internal/api"
	"postdeck/internal/content"
	"postdeck/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ContentGenerator drives the generation workflow and its sub-resources.
// *api.Client satisfies this.
type ContentGenerator interface {
	Generate(ctx context.Context) (*api.GenerateResponse, error)
	VideoScript(ctx context.Context, postID string) (*api.VideoScript, error)
	PostingSchedule(ctx context.Context, postID string) (*api.PostingSchedule, error)
}

// GenPhase is the generation workflow state. It gates which keys are
// live and what the page renders.
type GenPhase int

const (
	PhaseIdle GenPhase = iota
	PhaseGenerating
	PhaseReady
)

// GenTab selects which sub-view of a finished generation is visible.
type GenTab int

const (
	TabPreview GenTab = iota
	TabScript
	TabSchedule
)

var genTabNames = []string{"Preview", "Video Script", "Schedule"}

// GeneratePageModel runs the Instagram content generation workflow: one
// long-running primary call, then lazily fetched video-script and
// posting-schedule sub-resources keyed by the generated post id.
type GeneratePageModel struct {
	width  int
	height int
	styles Styles

	generator ContentGenerator

	phase   GenPhase
	tab     GenTab
	spinner spinner.Model

	result *api.GenerateResponse

	script        *api.VideoScript
	loadingScript bool
	scriptErr     string

	schedule        *api.PostingSchedule
	loadingSchedule bool
	scheduleErr     string

	viewport viewport.Model
}

type (
	generateDoneMsg struct {
		resp *api.GenerateResponse
		err  error
	}

	scriptLoadedMsg struct {
		postID string
		script *api.VideoScript
		err    error
	}

	scheduleLoadedMsg struct {
		postID   string
		schedule *api.PostingSchedule
		err      error
	}
)

// NewGeneratePageModel creates the generation page in the idle phase.
func NewGeneratePageModel(generator ContentGenerator) GeneratePageModel {
	sp := spinner.New()
	sp.Spinner = spinner.Points

	vp := viewport.New(0, 0)

	return GeneratePageModel{
		styles:    DefaultStyles(),
		generator: generator,
		spinner:   sp,
		viewport:  vp,
	}
}

// Init initializes the model.
func (m GeneratePageModel) Init() tea.Cmd {
	return nil
}

// Phase returns the current workflow phase.
func (m GeneratePageModel) Phase() GenPhase {
	return m.phase
}

// Update handles messages.
func (m GeneratePageModel) Update(msg tea.Msg) (GeneratePageModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case spinner.TickMsg:
		if m.phase == PhaseGenerating || m.loadingScript || m.loadingSchedule {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case generateDoneMsg:
		if m.phase != PhaseGenerating {
			// A result from a run the user is no longer waiting on.
			break
		}
		if msg.err != nil {
			m.phase = PhaseIdle
			text := api.ErrorMessage(msg.err, "Failed to generate content")
			logging.GenerateError("generation failed: %v", msg.err)
			cmds = append(cmds, func() tea.Msg { return errorToast(text) })
			break
		}
		m.phase = PhaseReady
		m.tab = TabPreview
		m.result = msg.resp
		m.refreshViewport()
		logging.Generate("generated post %s (%d credits)", msg.resp.PostID, msg.resp.CreditsUsed)
		resp := msg.resp
		cmds = append(cmds,
			func() tea.Msg { return successToast("Content generated successfully!") },
			func() tea.Msg { return GenerationDoneMsg{Response: resp} },
		)

	case scriptLoadedMsg:
		if m.result == nil || msg.postID != m.result.PostID {
			break
		}
		m.loadingScript = false
		if msg.err != nil {
			m.scriptErr = api.ErrorMessage(msg.err, "Failed to load video script")
		} else {
			m.script = msg.script
			m.scriptErr = ""
		}
		m.refreshViewport()

	case scheduleLoadedMsg:
		if m.result == nil || msg.postID != m.result.PostID {
			break
		}
		m.loadingSchedule = false
		if msg.err != nil {
			m.scheduleErr = api.ErrorMessage(msg.err, "Failed to load posting schedule")
		} else {
			m.schedule = msg.schedule
			m.scheduleErr = ""
		}
		m.refreshViewport()

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *GeneratePageModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.phase {
	case PhaseIdle:
		if msg.String() == "g" || msg.Type == tea.KeyEnter {
			return m.startGeneration()
		}

	case PhaseGenerating:
		// No keys during generation; the single-flight guard is the phase.
		return nil

	case PhaseReady:
		switch msg.String() {
		case "g":
			return m.startGeneration()
		case "tab":
			m.setTab((m.tab + 1) % 3)
			return m.loadTabCmd()
		case "1":
			m.setTab(TabPreview)
		case "2":
			m.setTab(TabScript)
			return m.loadTabCmd()
		case "3":
			m.setTab(TabSchedule)
			return m.loadTabCmd()
		case "d":
			if m.result != nil && m.result.Preview.PostImage != "" {
				url := m.result.Preview.PostImage
				return func() tea.Msg { return DownloadRequestMsg{ImageURL: url} }
			}
		case "c", "y":
			if m.result != nil {
				caption, hashtags := m.result.Preview.Caption, m.result.Preview.Hashtags
				return func() tea.Msg { return CopyRequestMsg{Caption: caption, Hashtags: hashtags} }
			}
		case "P":
			if m.result != nil {
				parsed := previewParsed(m.result.Preview)
				return func() tea.Msg { return PostNowRequestMsg{Parsed: parsed} }
			}
		}
	}
	return nil
}

// previewParsed adapts a fresh preview to the parsed-content shape the
// share layer works with.
func previewParsed(p api.InstagramPreview) content.Parsed {
	return content.Parsed{
		IsJSON: true,
		Image: &content.ImageSection{
			Caption:  p.Caption,
			Hashtags: p.Hashtags,
			ImageURL: p.PostImage,
		},
	}
}

// startGeneration fires the primary generation call. The client applies its
// own extended deadline.
//
// All artifacts of the previous run are cleared here, before the new call
// goes out. Responses for the old post id that are still in flight get
// discarded by the postID guards, and a regenerate must not inherit the
// old run's loading flags or an abandoned sub-resource fetch would block
// the new one forever.
func (m *GeneratePageModel) startGeneration() tea.Cmd {
	m.phase = PhaseGenerating
	m.tab = TabPreview
	m.result = nil
	m.script = nil
	m.loadingScript = false
	m.scriptErr = ""
	m.schedule = nil
	m.loadingSchedule = false
	m.scheduleErr = ""
	logging.Generate("generation started")

	generator := m.generator
	run := func() tea.Msg {
		resp, err := generator.Generate(context.Background())
		return generateDoneMsg{resp: resp, err: err}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *GeneratePageModel) setTab(tab GenTab) {
	m.tab = tab
	m.refreshViewport()
}

// loadTabCmd lazily fetches the sub-resource behind the active tab. Each
// sub-resource is fetched at most once per generation.
func (m *GeneratePageModel) loadTabCmd() tea.Cmd {
	if m.result == nil {
		return nil
	}
	postID := m.result.PostID
	generator := m.generator

	switch m.tab {
	case TabScript:
		if m.script != nil || m.loadingScript {
			return nil
		}
		m.loadingScript = true
		m.scriptErr = ""
		fetch := func() tea.Msg {
			script, err := generator.VideoScript(context.Background(), postID)
			return scriptLoadedMsg{postID: postID, script: script, err: err}
		}
		return tea.Batch(fetch, m.spinner.Tick)

	case TabSchedule:
		if m.schedule != nil || m.loadingSchedule {
			return nil
		}
		m.loadingSchedule = true
		m.scheduleErr = ""
		fetch := func() tea.Msg {
			schedule, err := generator.PostingSchedule(context.Background(), postID)
			return scheduleLoadedMsg{postID: postID, schedule: schedule, err: err}
		}
		return tea.Batch(fetch, m.spinner.Tick)
	}
	return nil
}

func (m *GeneratePageModel) refreshViewport() {
	switch m.tab {
	case TabPreview:
		m.viewport.SetContent(m.renderPreview())
	case TabScript:
		m.viewport.SetContent(m.renderScript())
	case TabSchedule:
		m.viewport.SetContent(m.renderSchedule())
	}
	m.viewport.GotoTop()
}

// View renders the page.
func (m GeneratePageModel) View() string {
	var b strings.Builder

	switch m.phase {
	case PhaseIdle:
		b.WriteString(m.styles.Title.Render("Generate Instagram Content"))
		b.WriteString("\n")
		b.WriteString(m.styles.Body.Render("Create a new post from your brand profile."))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render("press g to generate"))

	case PhaseGenerating:
		b.WriteString(m.styles.Title.Render("Generating..."))
		b.WriteString("\n")
		b.WriteString(m.styles.Spinner.Render(m.spinner.View()))
		b.WriteString(m.styles.Body.Render(" Crafting your content. This can take a minute or two."))

	case PhaseReady:
		b.WriteString(m.renderTabs())
		b.WriteString("\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(" tab: switch view • d: image • c: caption • P: post now • g: regenerate"))
	}

	return m.styles.Content.Render(b.String())
}

func (m GeneratePageModel) renderTabs() string {
	var tabs []string
	for i, name := range genTabNames {
		if GenTab(i) == m.tab {
			tabs = append(tabs, m.styles.ActiveTab.Render(name))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m GeneratePageModel) renderPreview() string {
	if m.result == nil {
		return ""
	}
	p := m.result.Preview

	var b strings.Builder
	b.WriteString(m.styles.Bold.Render("@"+p.Username) + "\n\n")
	if p.PostImage != "" {
		b.WriteString(m.styles.Info.Render("[image] ") + m.styles.Muted.Render(p.PostImage) + "\n\n")
	}
	b.WriteString(m.styles.Body.Render(p.Caption) + "\n\n")
	if len(p.Hashtags) > 0 {
		b.WriteString(m.styles.Info.Render(strings.Join(p.Hashtags, " ")) + "\n\n")
	}
	stats := fmt.Sprintf("%d likes · %d comments · %d credits used", p.Likes, p.Comments, m.result.CreditsUsed)
	b.WriteString(m.styles.Muted.Render(stats))
	if m.result.HasVideoScript {
		b.WriteString("\n" + m.styles.Muted.Render("A video script is available on tab 2."))
	}
	return b.String()
}

func (m GeneratePageModel) renderScript() string {
	if m.loadingScript {
		return m.styles.Spinner.Render(m.spinner.View()) + " Loading video script..."
	}
	if m.scriptErr != "" {
		return m.styles.Error.Render(m.scriptErr)
	}
	if m.script == nil {
		return m.styles.Muted.Render("No video script loaded.")
	}

	s := m.script
	var b strings.Builder
	b.WriteString(m.styles.Bold.Render("Hook: ") + m.styles.Body.Render(s.Hook) + "\n")
	b.WriteString(m.styles.Muted.Render("Total duration: "+s.TotalDuration) + "\n\n")
	for _, scene := range s.Scenes {
		header := fmt.Sprintf("Scene %d · %s (%s, %s)", scene.SceneNumber, scene.Title, scene.Duration, scene.ShotType)
		b.WriteString(m.styles.Bold.Render(header) + "\n")
		b.WriteString(m.styles.Body.Render(scene.VoiceoverScript) + "\n")
		if scene.VisualNotes != "" {
			b.WriteString(m.styles.Muted.Render("visuals: "+scene.VisualNotes) + "\n")
		}
		if scene.ShootingTips != "" {
			b.WriteString(m.styles.Muted.Render("tips: "+scene.ShootingTips) + "\n")
		}
		b.WriteString("\n")
	}
	if s.ShootingInstructions != "" {
		b.WriteString(m.styles.Bold.Render("Shooting instructions") + "\n")
		b.WriteString(m.styles.Body.Render(s.ShootingInstructions) + "\n")
	}
	return b.String()
}

func (m GeneratePageModel) renderSchedule() string {
	if m.loadingSchedule {
		return m.styles.Spinner.Render(m.spinner.View()) + " Loading posting schedule..."
	}
	if m.scheduleErr != "" {
		return m.styles.Error.Render(m.scheduleErr)
	}
	if m.schedule == nil {
		return m.styles.Muted.Render("No posting schedule loaded.")
	}

	s := m.schedule
	var b strings.Builder

	slot := func(label string, rec api.PostRecommendation) {
		b.WriteString(m.styles.Bold.Render(label) + "\n")
		b.WriteString(m.styles.Body.Render(fmt.Sprintf("%s (%s) at %s", rec.RecommendedDate, rec.DayOfWeek, rec.TimeSlot)) + "\n")
		b.WriteString(m.styles.Muted.Render(rec.Reason) + "\n\n")
	}
	slot("Image post", s.ImagePost)
	slot("Video post", s.VideoPost)

	gap := fmt.Sprintf("Gap: %dd %dh · %s", s.GapBetweenPosts.Days, s.GapBetweenPosts.Hours, s.GapBetweenPosts.Reason)
	b.WriteString(m.styles.Muted.Render(gap) + "\n\n")

	if len(s.BestPostingTimes) > 0 {
		table := NewSimpleTable("Best posting times", []string{"Day", "Slots", "Engagement"})
		for _, bt := range s.BestPostingTimes {
			table.AddRow(bt.DayOfWeek, strings.Join(bt.TimeSlots, ", "), bt.Engagement)
		}
		b.WriteString(table.View(m.styles))
	}

	next := s.NextPostSuggestion
	b.WriteString(m.styles.Bold.Render("Next up: "))
	b.WriteString(m.styles.Body.Render(fmt.Sprintf("%s content on %s (%s)", next.ContentType, next.RecommendedDate, next.DayOfWeek)))
	return b.String()
}

// SetSize updates the layout size.
func (m *GeneratePageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w - 4
	m.viewport.Height = h - 8
}
