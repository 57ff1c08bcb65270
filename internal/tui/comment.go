package tui

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/bookshelf/internal/nav"
)

// commentModel is the write/edit form for a comment. commentID is zero
// when creating.
type commentModel struct {
	deps      Deps
	bookID    int
	commentID int
	content   string
	saving    bool
	errText   string
	frame     int
	width     int
}

type commentSavedMsg struct {
	err error
}

func newCommentModel(d Deps, bookID, commentID int, content string) commentModel {
	return commentModel{deps: d, bookID: bookID, commentID: commentID, content: content}
}

func (m commentModel) editing() bool { return m.commentID != 0 }

func (m commentModel) back() tea.Cmd {
	return navigate(nav.To(nav.Book, "id", strconv.Itoa(m.bookID)))
}

func (m commentModel) submit() (commentModel, tea.Cmd) {
	content := strings.TrimSpace(m.content)
	if content == "" {
		m.errText = "comment cannot be empty"
		return m, nil
	}
	m.saving = true
	m.errText = ""
	comments, bookID, commentID := m.deps.Comments, m.bookID, m.commentID
	return m, func() tea.Msg {
		var err error
		if commentID != 0 {
			err = comments.Update(context.Background(), commentID, content)
		} else {
			_, err = comments.Create(context.Background(), bookID, content)
		}
		return commentSavedMsg{err: err}
	}
}

func (m commentModel) Update(msg tea.Msg) (commentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case commentSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.errText = errorText(msg.err)
			return m, nil
		}
		return m, m.back()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.saving {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, m.back()
		case "ctrl+s":
			return m.submit()
		case "enter":
			m.content = editRune(m.content, "\n")
		default:
			m.content = editKey(m.content, msg)
		}
	}
	return m, nil
}

func (m commentModel) helpKeys() string {
	return helpBar(helpEntry("ctrl+s", "save"), helpEntry("enter", "newline"), helpEntry("esc", "cancel"))
}

func (m commentModel) View() string {
	var b strings.Builder
	title := "NEW COMMENT"
	if m.editing() {
		title = "EDIT COMMENT"
	}
	b.WriteString(" " + sectionHeaderStyle.Render(title) + "\n\n")

	width := max(m.width-6, 30)
	cursor := " "
	if (m.frame/4)%2 == 0 {
		cursor = accentStyle.Render("█")
	}
	body := m.content
	if body == "" {
		body = inputPlaceholderStyle.Render("what did you think of it?")
	} else {
		body = lipgloss.NewStyle().Width(width).Render(body)
	}
	for _, l := range strings.Split(body, "\n") {
		b.WriteString("  " + goldStyle.Render("│") + " " + normalStyle.Render(l) + "\n")
	}
	b.WriteString("  " + goldStyle.Render("│") + " " + cursor + "\n")

	b.WriteString("\n " + metaStyle.Render(strconv.Itoa(utf8.RuneCountInString(m.content))+"/"+strconv.Itoa(maxInputLen)))
	switch {
	case m.saving:
		b.WriteString("  " + dimStyle.Render("saving..."))
	case m.errText != "":
		b.WriteString("  " + errStyle.Render(m.errText))
	}
	b.WriteString("\n")
	return b.String()
}
