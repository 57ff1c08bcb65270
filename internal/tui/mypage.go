package tui

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/internal/store"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

type mypageSection int

const (
	sectionComments mypageSection = iota
	sectionBookmarks
)

// prompt is the inline input the my page screen is waiting on.
type prompt int

const (
	promptNone prompt = iota
	promptDeleteComment
	promptRemoveBookmark
	promptProfile
	promptDeleteAccount
)

type mypageModel struct {
	deps    Deps
	state   store.MyPageState
	loaded  bool
	section mypageSection
	cursor  int
	prompt  prompt
	input   string
	status  string
	errText string
	width   int
	height  int
}

type mypageLoadedMsg struct {
	state store.MyPageState
}

type mypageActionMsg struct {
	status string
	err    error
}

type accountDeletedMsg struct {
	err error
}

func newMypageModel(d Deps) mypageModel {
	return mypageModel{deps: d}
}

func (m mypageModel) Init() tea.Cmd {
	return m.refresh()
}

func (m mypageModel) refresh() tea.Cmd {
	mp := m.deps.MyPage
	return func() tea.Msg {
		mp.Refresh(context.Background())
		return mypageLoadedMsg{state: mp.State()}
	}
}

func (m mypageModel) rows() int {
	if m.section == sectionBookmarks {
		return len(m.state.Bookmarks)
	}
	return len(m.state.Comments)
}

func (m mypageModel) selectedBook() (int, bool) {
	switch {
	case m.section == sectionComments && m.cursor < len(m.state.Comments):
		return m.state.Comments[m.cursor].BookID, true
	case m.section == sectionBookmarks && m.cursor < len(m.state.Bookmarks):
		return m.state.Bookmarks[m.cursor].BookID, true
	}
	return 0, false
}

func (m mypageModel) Update(msg tea.Msg) (mypageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case mypageLoadedMsg:
		m.state = msg.state
		m.loaded = true
		m.cursor = min(m.cursor, max(m.rows()-1, 0))
		return m, nil

	case mypageActionMsg:
		if msg.err != nil {
			m.errText = errorText(msg.err)
			return m, nil
		}
		m.status = msg.status
		m.state = m.deps.MyPage.State()
		m.cursor = min(m.cursor, max(m.rows()-1, 0))
		return m, nil

	case accountDeletedMsg:
		if msg.err != nil {
			m.errText = errorText(msg.err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		m.status = ""
		m.errText = ""
		switch msg.String() {
		case "tab":
			m.section = 1 - m.section
			m.cursor = 0
		case "j", "down":
			if m.cursor < m.rows()-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			if id, ok := m.selectedBook(); ok {
				return m, navigate(nav.To(nav.Book, "id", strconv.Itoa(id)))
			}
		case "r":
			return m, m.refresh()
		case "d":
			if m.rows() == 0 {
				return m, nil
			}
			if m.section == sectionComments {
				m.prompt = promptDeleteComment
			} else {
				m.prompt = promptRemoveBookmark
			}
		case "p":
			m.prompt = promptProfile
			if m.deps.Auth != nil {
				m.input = m.deps.Auth.Snapshot().Username
			}
		case "X":
			m.prompt = promptDeleteAccount
			m.input = ""
		}
	}
	return m, nil
}

func (m mypageModel) updatePrompt(msg tea.KeyMsg) (mypageModel, tea.Cmd) {
	switch m.prompt {
	case promptDeleteComment, promptRemoveBookmark:
		p := m.prompt
		m.prompt = promptNone
		if msg.String() != "y" {
			return m, nil
		}
		return m, m.removeSelected(p)
	}

	switch msg.String() {
	case "esc":
		m.prompt = promptNone
		m.input = ""
		return m, nil
	case "enter":
		p, input := m.prompt, m.input
		m.prompt = promptNone
		m.input = ""
		auth := m.deps.Auth
		if p == promptProfile {
			name := strings.TrimSpace(input)
			if name == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				_, err := auth.UpdateProfile(context.Background(), domain.ProfileUpdate{Username: name})
				return mypageActionMsg{status: "profile updated", err: err}
			}
		}
		if input == "" {
			m.errText = "password is required"
			return m, nil
		}
		return m, func() tea.Msg {
			return accountDeletedMsg{err: auth.DeleteAccount(context.Background(), input)}
		}
	default:
		m.input = editKey(m.input, msg)
	}
	return m, nil
}

func (m mypageModel) removeSelected(p prompt) tea.Cmd {
	mp, comments := m.deps.MyPage, m.deps.Comments
	if p == promptDeleteComment {
		if m.cursor >= len(m.state.Comments) {
			return nil
		}
		id := m.state.Comments[m.cursor].CommentID
		return func() tea.Msg {
			if err := comments.Delete(context.Background(), id); err != nil {
				return mypageActionMsg{err: err}
			}
			mp.ForgetComment(id)
			return mypageActionMsg{status: "comment deleted"}
		}
	}
	if m.cursor >= len(m.state.Bookmarks) {
		return nil
	}
	id := m.state.Bookmarks[m.cursor].BookID
	books := m.deps.Books
	return func() tea.Msg {
		if err := mp.ToggleBookmark(context.Background(), id, false); err != nil {
			return mypageActionMsg{err: err}
		}
		if books != nil {
			books.SetBookmarked(id, false)
		}
		return mypageActionMsg{status: "bookmark removed"}
	}
}

func (m mypageModel) helpKeys() string {
	switch m.prompt {
	case promptDeleteComment, promptRemoveBookmark:
		return helpBar(helpEntry("y", "confirm"), helpEntry("any key", "cancel"))
	case promptProfile, promptDeleteAccount:
		return helpBar(helpEntry("enter", "confirm"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("tab", "section"), helpEntry("j/k", "nav"), helpEntry("enter", "open"),
		helpEntry("d", "remove"), helpEntry("p", "profile"), helpEntry("X", "delete account"), helpEntry("r", "refresh"))
}

func (m mypageModel) View() string {
	var b strings.Builder

	tab := func(s mypageSection, label string, n int) string {
		text := label + " (" + strconv.Itoa(n) + ")"
		if m.section == s {
			return selectedStyle.Underline(true).Render(text)
		}
		return dimStyle.Render(text)
	}
	b.WriteString(" " + tab(sectionComments, "My comments", len(m.state.Comments)) + "   " +
		tab(sectionBookmarks, "Bookmarks", len(m.state.Bookmarks)) + "\n")

	switch m.prompt {
	case promptDeleteComment:
		b.WriteString(" " + errStyle.Render("delete this comment? (y/n)") + "\n")
	case promptRemoveBookmark:
		b.WriteString(" " + errStyle.Render("remove this bookmark? (y/n)") + "\n")
	case promptProfile:
		b.WriteString(" " + inputPromptStyle.Render("username: ") + normalStyle.Render(m.input) + accentStyle.Render("█") + "\n")
	case promptDeleteAccount:
		masked := strings.Repeat("•", utf8.RuneCountInString(m.input))
		b.WriteString(" " + errStyle.Render("delete account, password: ") + normalStyle.Render(masked) + accentStyle.Render("█") + "\n")
	default:
		switch {
		case m.errText != "":
			b.WriteString(" " + errStyle.Render(m.errText) + "\n")
		case m.status != "":
			b.WriteString(" " + okStyle.Render(m.status) + "\n")
		default:
			b.WriteString("\n")
		}
	}

	if !m.loaded {
		b.WriteString("\n " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}

	b.WriteString("\n")
	textWidth := max(m.width-36, 20)
	if m.section == sectionComments {
		if len(m.state.Comments) == 0 {
			b.WriteString("  " + dimStyle.Render("you have not written any comments") + "\n")
		}
		for i, c := range m.state.Comments {
			marker, title := "  ", metaStyle.Render(truncStr(c.BookTitle, 24))
			if i == m.cursor {
				marker, title = accentStyle.Render("▸")+" ", accentStyle.Render(truncStr(c.BookTitle, 24))
			}
			b.WriteString(" " + marker + title + "  " +
				commentTextStyle.Render(truncStr(cleanText(c.Content), textWidth)) + "  " +
				commentTimeStyle.Render(formatTime(c.CreatedAt)) + "\n")
		}
	} else {
		if len(m.state.Bookmarks) == 0 {
			b.WriteString("  " + dimStyle.Render("no bookmarks yet (b on a book)") + "\n")
		}
		for i, bm := range m.state.Bookmarks {
			marker, title := "  ", normalStyle.Render(truncStr(bm.Title, textWidth))
			if i == m.cursor {
				marker, title = accentStyle.Render("▸")+" ", selectedStyle.Render(truncStr(bm.Title, textWidth))
			}
			b.WriteString(" " + marker + title + "  " + dimStyle.Render(bm.Author) + "\n")
		}
	}
	return truncateToHeight(b.String(), m.height)
}
