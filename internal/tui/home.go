package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/internal/store"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

// homeModel is the AI recommendation screen.
type homeModel struct {
	deps    Deps
	prompt  string
	editing bool
	asking  bool
	rec     *domain.Recommendation
	cursor  int
	history store.AIState
	status  string
	errText string
	width   int
	height  int
}

type recommendMsg struct {
	rec *domain.Recommendation
	err error
}

type historyMsg struct {
	state store.AIState
}

func newHomeModel(d Deps) homeModel {
	return homeModel{deps: d}
}

func (m homeModel) Init() tea.Cmd {
	if m.deps.Auth == nil || !m.deps.Auth.IsAuthenticated() {
		return nil
	}
	return m.loadHistory(max(m.history.CurrentPage, 1))
}

func (m homeModel) loadHistory(page int) tea.Cmd {
	ai := m.deps.AI
	return func() tea.Msg {
		ai.FetchHistory(context.Background(), page)
		return historyMsg{state: ai.State()}
	}
}

func (m homeModel) ask() (homeModel, tea.Cmd) {
	req := domain.RecommendRequest{Prompt: strings.TrimSpace(m.prompt)}
	if err := domain.Validate(req); err != nil {
		m.errText = errorText(err)
		return m, nil
	}
	if m.deps.Auth == nil || !m.deps.Auth.IsAuthenticated() {
		m.errText = "log in to get recommendations (press l)"
		return m, nil
	}
	m.editing = false
	m.asking = true
	m.errText = ""
	ai := m.deps.AI
	return m, func() tea.Msg {
		rec, err := ai.Recommend(context.Background(), req)
		return recommendMsg{rec: rec, err: err}
	}
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case recommendMsg:
		m.asking = false
		if msg.err != nil {
			m.errText = errorText(msg.err)
			return m, nil
		}
		m.rec = msg.rec
		m.cursor = 0
		m.prompt = ""
		return m, m.loadHistory(1)

	case historyMsg:
		m.history = msg.state
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		if m.editing {
			switch msg.String() {
			case "enter":
				return m.ask()
			case "esc":
				m.editing = false
			default:
				m.prompt = editKey(m.prompt, msg)
			}
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if m.rec != nil && len(m.rec.RecommendedList) > 0 {
				item := m.rec.RecommendedList[m.cursor]
				return m, navigate(nav.To(nav.Book, "id", strconv.Itoa(item.BookPK)))
			}
			m.editing = true
			m.errText = ""
		case "a", "/":
			m.editing = true
			m.errText = ""
		case "j", "down":
			if m.rec != nil && m.cursor < len(m.rec.RecommendedList)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "]":
			if m.history.CurrentPage < m.history.TotalPages {
				return m, m.loadHistory(m.history.CurrentPage + 1)
			}
		case "[":
			if m.history.CurrentPage > 1 {
				return m, m.loadHistory(m.history.CurrentPage - 1)
			}
		}
	}
	return m, nil
}

func (m homeModel) helpKeys() string {
	if m.editing {
		return helpBar(helpEntry("enter", "ask"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("1-3", "tabs"), helpEntry("a", "ask"), helpEntry("j/k", "nav"),
		helpEntry("enter", "open"), helpEntry("[/]", "history"), helpEntry("h", "help"), helpEntry("q", "quit"))
}

func (m homeModel) View() string {
	var b strings.Builder

	prompt := " " + inputPromptStyle.Render("> ")
	switch {
	case m.editing:
		prompt += normalStyle.Render(m.prompt) + accentStyle.Render("█")
	case m.prompt != "":
		prompt += dimStyle.Render(m.prompt)
	default:
		prompt += inputPlaceholderStyle.Render("what do you feel like reading? (a to ask)")
	}
	b.WriteString(prompt + "\n")

	switch {
	case m.asking:
		b.WriteString(" " + dimStyle.Render("thinking...") + "\n")
	case m.errText != "":
		b.WriteString(" " + errStyle.Render(m.errText) + "\n")
	case m.status != "":
		b.WriteString(" " + okStyle.Render(m.status) + "\n")
	default:
		b.WriteString("\n")
	}

	if m.rec != nil {
		b.WriteString("\n " + sectionHeaderStyle.Render("RECOMMENDED") + "\n")
		b.WriteString(renderRecommendation(*m.rec, m.cursor, m.width))
	}

	if len(m.history.History) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("HISTORY  %d/%d", m.history.CurrentPage, m.history.TotalPages)) + "\n")
		for _, h := range m.history.History {
			titles := make([]string, 0, len(h.RecommendedList))
			for _, item := range h.RecommendedList {
				titles = append(titles, item.Title)
			}
			line := truncStr(strings.Join(titles, ", "), max(m.width-16, 20))
			fmt.Fprintf(&b, "  %s  %s\n", commentTimeStyle.Render(fmt.Sprintf("%-8s", formatTime(h.GeneratedAt))), dimStyle.Render(line))
		}
	}

	return truncateToHeight(b.String(), m.height)
}

// renderRecommendation lists each recommended book with its reason in the
// recommender's voice.
func renderRecommendation(rec domain.Recommendation, cursor, width int) string {
	var b strings.Builder
	reasonWidth := max(width-6, 30)
	for i, item := range rec.RecommendedList {
		marker := "  "
		title := normalStyle.Render(item.Title)
		if i == cursor {
			marker = accentStyle.Render("▸") + " "
			title = selectedStyle.Render(item.Title)
		}
		line := " " + marker + title
		if item.ComicImageURL != nil && *item.ComicImageURL != "" {
			line += "  " + metaStyle.Render("[comic]")
		}
		b.WriteString(line + "\n")
		if item.Reason != "" {
			wrapped := lipgloss.NewStyle().Width(reasonWidth).Render(cleanText(item.Reason))
			for _, l := range strings.Split(wrapped, "\n") {
				b.WriteString("    " + goldStyle.Render("│") + " " + aiVoiceStyle.Render(l) + "\n")
			}
		}
	}
	if len(rec.RecommendedList) == 0 {
		b.WriteString("  " + aiLabelStyle.Render("nothing matched that prompt") + "\n")
	}
	return b.String()
}
