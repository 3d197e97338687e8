package ui

import (
	"context"
	"fmt"
	"strings"

	"postdeck/internal/api"
	"postdeck/internal/content"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// PostGetter fetches the full detail of one post. *api.Client satisfies
// this.
type PostGetter interface {
	GetPost(ctx context.Context, id string) (*api.Post, error)
}

// DetailPageModel shows a single generated post. The feed's copy of the
// post renders immediately while the full record is refetched behind it.
type DetailPageModel struct {
	width  int
	height int
	styles Styles

	getter PostGetter

	postID    string
	post      api.Post
	isLoading bool
	errText   string

	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
}

type postDetailMsg struct {
	id   string
	post *api.Post
	err  error
}

// NewDetailPageModel creates the detail page.
func NewDetailPageModel(getter PostGetter) DetailPageModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return DetailPageModel{
		styles:   DefaultStyles(),
		getter:   getter,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

// Init initializes the model.
func (m DetailPageModel) Init() tea.Cmd {
	return nil
}

// Open shows the given post and refetches its authoritative record.
func (m *DetailPageModel) Open(post api.Post) tea.Cmd {
	m.postID = post.ID
	m.post = post
	m.errText = ""
	m.isLoading = true
	m.refreshContent()

	getter := m.getter
	id := post.ID
	fetch := func() tea.Msg {
		full, err := getter.GetPost(context.Background(), id)
		return postDetailMsg{id: id, post: full, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

// Update handles messages.
func (m DetailPageModel) Update(msg tea.Msg) (DetailPageModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case spinner.TickMsg:
		if m.isLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case postDetailMsg:
		if msg.id != m.postID {
			break
		}
		m.isLoading = false
		if msg.err != nil {
			// The feed copy is already on screen; just note staleness.
			m.errText = api.ErrorMessage(msg.err, "Failed to refresh post")
			break
		}
		m.post = *msg.post
		m.errText = ""
		m.refreshContent()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return BackMsg{} }
		case "d":
			parsed := content.Parse(m.post.Content)
			if !parsed.HasImage() {
				return m, func() tea.Msg { return infoToast("This post has no image") }
			}
			url := parsed.Image.ImageURL
			return m, func() tea.Msg { return DownloadRequestMsg{ImageURL: url} }
		case "c", "y":
			parsed := content.Parse(m.post.Content)
			caption, hashtags := parsed.DisplayCaption(), parsed.Hashtags()
			return m, func() tea.Msg { return CopyRequestMsg{Caption: caption, Hashtags: hashtags} }
		case "P":
			parsed := content.Parse(m.post.Content)
			return m, func() tea.Msg { return PostNowRequestMsg{Parsed: parsed} }
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// refreshContent rebuilds the viewport from the current post.
func (m *DetailPageModel) refreshContent() {
	doc := m.buildMarkdown()
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(doc); err == nil {
			m.viewport.SetContent(rendered)
			m.viewport.GotoTop()
			return
		}
	}
	m.viewport.SetContent(doc)
	m.viewport.GotoTop()
}

// buildMarkdown turns the post's parsed content into a markdown document.
func (m DetailPageModel) buildMarkdown() string {
	parsed := content.Parse(m.post.Content)

	platform := strings.ToLower(m.post.Platform)
	if platform == "" {
		platform = "generated"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s post\n\n", strings.ToUpper(platform[:1])+platform[1:])
	fmt.Fprintf(&b, "*%s*\n\n", formatPostDate(m.post.CreatedAt))

	if caption := parsed.DisplayCaption(); caption != "" {
		b.WriteString(caption + "\n\n")
	}
	if tags := parsed.Hashtags(); len(tags) > 0 {
		fmt.Fprintf(&b, "`%s`\n\n", strings.Join(tags, " "))
	}
	if parsed.HasImage() {
		fmt.Fprintf(&b, "**Image:** %s\n\n", parsed.Image.ImageURL)
	}
	if parsed.HasVideo() {
		b.WriteString("## Video script\n\n")
		if parsed.Video.Hook != "" {
			fmt.Fprintf(&b, "**Hook:** %s\n\n", parsed.Video.Hook)
		}
		b.WriteString(parsed.Video.Script + "\n")
	}
	return b.String()
}

// View renders the page.
func (m DetailPageModel) View() string {
	var b strings.Builder

	title := "Post " + m.postID
	if m.isLoading {
		title += "  " + m.styles.Spinner.Render(m.spinner.View())
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(m.styles.Warning.Render(m.errText))
		b.WriteString("\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(" esc: back • d: image • c: caption • P: post now"))

	return m.styles.Content.Render(b.String())
}

// SetSize updates the layout size and rebuilds the renderer for the new
// wrap width.
func (m *DetailPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w - 4
	m.viewport.Height = h - 6

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(w-6),
	)
	if err == nil {
		m.renderer = renderer
	}
	m.refreshContent()
}
