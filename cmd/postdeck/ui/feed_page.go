package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"postdeck/internal/api"
	"postdeck/internal/content"
	"postdeck/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchDebounce is how long typing must settle before a search commits.
const SearchDebounce = 400 * time.Millisecond

// PostsLister fetches pages of the generated-posts feed. *api.Client
// satisfies this.
type PostsLister interface {
	ListPosts(ctx context.Context, params api.ListPostsParams) (*api.ListPostsResponse, error)
}

// FeedPageModel is the paginated, searchable generated-posts feed.
//
// Two sequence counters keep async work honest: searchSeq invalidates
// pending debounce timers when the user keeps typing, and reqSeq tags every
// fetch so a slow response for an old page or query is discarded instead of
// clobbering newer results.
type FeedPageModel struct {
	width  int
	height int
	styles Styles

	lister   PostsLister
	pageSize int
	orderBy  string

	searchInput     textinput.Model
	committedSearch string
	searchSeq       int

	spinner   spinner.Model
	isLoading bool
	reqSeq    int

	posts     []api.Post
	total     int
	noOfPages int
	page      int
	selected  int
	errText   string
}

type (
	searchDebounceMsg struct{ seq int }

	postsLoadedMsg struct {
		seq  int
		resp *api.ListPostsResponse
		err  error
	}
)

// NewFeedPageModel creates the feed page. The first fetch happens on Init.
func NewFeedPageModel(lister PostsLister, pageSize int, orderBy string) FeedPageModel {
	ti := textinput.New()
	ti.Placeholder = "Search posts..."
	ti.Prompt = "/ "
	ti.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return FeedPageModel{
		styles:      DefaultStyles(),
		lister:      lister,
		pageSize:    pageSize,
		orderBy:     orderBy,
		searchInput: ti,
		spinner:     sp,
		page:        1,
		noOfPages:   1,
	}
}

// Init starts the spinner. The first page load is triggered by the root
// model through Refresh so the request sequence lives on the stored model.
func (m FeedPageModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages.
func (m FeedPageModel) Update(msg tea.Msg) (FeedPageModel, tea.Cmd) {
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

	case searchDebounceMsg:
		// Only the timer armed by the latest keystroke may commit.
		if msg.seq == m.searchSeq {
			if cmd := m.commitSearch(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case postsLoadedMsg:
		if msg.seq != m.reqSeq {
			logging.FeedDebug("discarding stale response (seq %d, latest %d)", msg.seq, m.reqSeq)
			break
		}
		m.isLoading = false
		if msg.err != nil {
			m.posts = nil
			m.total = 0
			m.noOfPages = 1
			m.page = 1
			m.selected = 0
			m.errText = api.ErrorMessage(msg.err, "Failed to fetch generated posts")
			text := m.errText
			cmds = append(cmds, func() tea.Msg { return errorToast(text) })
			break
		}
		m.errText = ""
		m.posts = msg.resp.Data
		m.total = msg.resp.Meta.Total
		m.noOfPages = msg.resp.Meta.NoOfPages
		if m.noOfPages < 1 {
			m.noOfPages = 1
		}
		if m.page > m.noOfPages {
			// The last page shrank underneath us; snap back and refill.
			m.page = m.noOfPages
			cmds = append(cmds, m.fetchCmd())
		}
		if m.selected >= len(m.posts) {
			m.selected = 0
		}

	case tea.KeyMsg:
		if m.searchInput.Focused() {
			cmds = append(cmds, m.updateSearchInput(msg)...)
		} else {
			if cmd := m.handleBrowseKey(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// updateSearchInput routes a key to the focused search box and arms the
// debounce timer when the query text changed.
func (m *FeedPageModel) updateSearchInput(msg tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		return nil
	case "enter":
		m.searchInput.Blur()
		m.searchSeq++ // kill any pending timer
		if cmd := m.commitSearch(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return cmds
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	cmds = append(cmds, cmd)

	if m.searchInput.Value() != before {
		m.searchSeq++
		seq := m.searchSeq
		cmds = append(cmds, tea.Tick(SearchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{seq: seq}
		}))
	}
	return cmds
}

// handleBrowseKey handles keys while the search box is blurred.
func (m *FeedPageModel) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		return m.searchInput.Focus()

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.posts)-1 {
			m.selected++
		}

	case "left", "h":
		if !m.isLoading && m.page > 1 {
			m.page--
			return m.fetchCmd()
		}
	case "right", "l":
		if !m.isLoading && m.page < m.noOfPages {
			m.page++
			return m.fetchCmd()
		}

	case "r":
		return m.fetchCmd()

	case "enter":
		if post, ok := m.SelectedPost(); ok {
			return func() tea.Msg { return OpenPostMsg{Post: post} }
		}
	case "d":
		if post, ok := m.SelectedPost(); ok {
			parsed := content.Parse(post.Content)
			if !parsed.HasImage() {
				return func() tea.Msg { return infoToast("This post has no image") }
			}
			url := parsed.Image.ImageURL
			return func() tea.Msg { return DownloadRequestMsg{ImageURL: url} }
		}
	case "c", "y":
		if post, ok := m.SelectedPost(); ok {
			parsed := content.Parse(post.Content)
			caption, hashtags := parsed.DisplayCaption(), parsed.Hashtags()
			return func() tea.Msg { return CopyRequestMsg{Caption: caption, Hashtags: hashtags} }
		}
	case "P":
		if post, ok := m.SelectedPost(); ok {
			parsed := content.Parse(post.Content)
			return func() tea.Msg { return PostNowRequestMsg{Parsed: parsed} }
		}
	}
	return nil
}

// commitSearch applies the current query text. The committed value is
// trimmed; committing an unchanged query is a no-op.
func (m *FeedPageModel) commitSearch() tea.Cmd {
	trimmed := strings.TrimSpace(m.searchInput.Value())
	if trimmed == m.committedSearch {
		return nil
	}
	m.committedSearch = trimmed
	m.page = 1
	m.selected = 0
	return m.fetchCmd()
}

// fetchCmd starts a tagged page load.
func (m *FeedPageModel) fetchCmd() tea.Cmd {
	m.reqSeq++
	seq := m.reqSeq
	m.isLoading = true

	params := api.ListPostsParams{
		Page:    m.page,
		Limit:   m.pageSize,
		OrderBy: m.orderBy,
		Search:  m.committedSearch,
	}
	lister := m.lister
	fetch := func() tea.Msg {
		resp, err := lister.ListPosts(context.Background(), params)
		return postsLoadedMsg{seq: seq, resp: resp, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

// Refresh reloads the current page, e.g. after a new post was generated.
func (m *FeedPageModel) Refresh() tea.Cmd {
	return m.fetchCmd()
}

// SelectedPost returns the highlighted post, if any.
func (m FeedPageModel) SelectedPost() (api.Post, bool) {
	if m.selected < 0 || m.selected >= len(m.posts) {
		return api.Post{}, false
	}
	return m.posts[m.selected], true
}

// Searching reports whether the search box currently has focus.
func (m FeedPageModel) Searching() bool {
	return m.searchInput.Focused()
}

// View renders the page.
func (m FeedPageModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Generated Posts (%d)", m.total)
	if m.committedSearch != "" {
		title += fmt.Sprintf(" · matching %q", m.committedSearch)
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	switch {
	case m.isLoading && len(m.posts) == 0:
		b.WriteString(m.styles.Spinner.Render(m.spinner.View()) + " Loading posts...")
	case m.errText != "":
		b.WriteString(m.styles.Error.Render(m.errText))
	case len(m.posts) == 0:
		if m.committedSearch != "" {
			b.WriteString(m.styles.Muted.Render("No posts match your search."))
		} else {
			b.WriteString(m.styles.Muted.Render("No posts yet. Press tab to generate your first one."))
		}
	default:
		for i, post := range m.posts {
			b.WriteString(m.renderCard(post, i == m.selected))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	pager := fmt.Sprintf("page %d/%d", m.page, m.noOfPages)
	if m.isLoading && len(m.posts) > 0 {
		pager += "  " + m.styles.Spinner.Render(m.spinner.View())
	}
	b.WriteString(m.styles.Muted.Render(pager))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(" /: search • ←/→: page • enter: open • d: image • c: caption • P: post now"))

	return m.styles.Content.Render(b.String())
}

func (m FeedPageModel) renderCard(post api.Post, selected bool) string {
	parsed := content.Parse(post.Content)

	caption := parsed.DisplayCaption()
	caption = strings.ReplaceAll(caption, "\n", " ")
	maxW := m.width - 12
	if maxW < 20 {
		maxW = 60
	}
	caption = content.Truncate(caption, maxW)

	var badges []string
	if parsed.HasImage() {
		badges = append(badges, m.styles.Badge.Render("IMG"))
	}
	if parsed.HasVideo() {
		badges = append(badges, m.styles.Badge.Render("VID"))
	}
	meta := formatPostDate(post.CreatedAt)
	if len(badges) > 0 {
		meta += " " + strings.Join(badges, " ")
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Body.Render(caption),
		m.styles.Muted.Render(meta),
	)

	style := m.styles.Card
	if selected {
		style = m.styles.SelectedCard
	}
	if m.width > 8 {
		style = style.Width(m.width - 8)
	}
	return style.Render(body)
}

// SetSize updates the layout size.
func (m *FeedPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.searchInput.Width = w - 10
}

// formatPostDate renders a backend timestamp for the card footer. Unknown
// formats pass through untouched.
func formatPostDate(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 02, 2006 at 3:04 PM")
		}
	}
	return raw
}
