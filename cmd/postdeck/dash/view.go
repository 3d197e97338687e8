package dash

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the header, the active page, the toast line, and the footer.
func (m Model) View() string {
	if !m.ready {
		return "Starting postdeck..."
	}

	var page string
	switch m.viewMode {
	case FeedView:
		page = m.feed.View()
	case GenerateView:
		page = m.generate.View()
	case DetailView:
		page = m.detail.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		page,
		m.renderToast(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	tabs := []string{"1 Posts", "2 Generate"}
	var rendered []string
	for i, tab := range tabs {
		active := (m.viewMode == FeedView && i == 0) ||
			(m.viewMode == GenerateView && i == 1) ||
			(m.viewMode == DetailView && i == 0)
		if active {
			rendered = append(rendered, m.styles.ActiveTab.Render(tab))
		} else {
			rendered = append(rendered, m.styles.Tab.Render(tab))
		}
	}
	title := m.styles.Header.Render("postdeck")
	return lipgloss.JoinHorizontal(lipgloss.Top, title, strings.Join(rendered, ""))
}

func (m Model) renderToast() string {
	if m.toast.Text == "" {
		return ""
	}
	switch m.toast.Kind {
	case "success":
		return m.styles.Success.Render(" ✓ " + m.toast.Text)
	case "error":
		return m.styles.Error.Render(" ✗ " + m.toast.Text)
	default:
		return m.styles.Info.Render(" • " + m.toast.Text)
	}
}

func (m Model) renderFooter() string {
	stats := fmt.Sprintf("%d credits used · %d posts this week", m.stats.TotalCredits, m.stats.RecentRuns)
	help := "tab: switch page • q: quit"
	return m.styles.Footer.Render(stats + "   " + help)
}
