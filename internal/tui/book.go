package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

// bookModel is the detail screen for one book and its comments.
type bookModel struct {
	deps       Deps
	id         int
	detail     *domain.BookDetail
	loading    bool
	cursor     int // selected comment
	confirming bool
	comicURL   string
	generating bool
	status     string
	errText    string
	width      int
	height     int
}

type bookLoadedMsg struct {
	id     int
	detail *domain.BookDetail
	err    error
}

type bookmarkMsg struct {
	on  bool
	err error
}

type commentDeletedMsg struct {
	id  int
	err error
}

type comicMsg struct {
	res *domain.ComicResult
	err error
}

type clipboardMsg struct {
	err error
}

func newBookModel(d Deps, id int) bookModel {
	return bookModel{deps: d, id: id, loading: true}
}

func (m bookModel) Init() tea.Cmd {
	return m.load()
}

func (m bookModel) load() tea.Cmd {
	books, id := m.deps.Books, m.id
	return func() tea.Msg {
		detail, err := books.FetchDetail(context.Background(), id)
		return bookLoadedMsg{id: id, detail: detail, err: err}
	}
}

func (m bookModel) authenticated() bool {
	return m.deps.Auth != nil && m.deps.Auth.IsAuthenticated()
}

// owns reports whether the logged-in user wrote c.
func (m bookModel) owns(c domain.BookComment) bool {
	if !m.authenticated() {
		return false
	}
	snap := m.deps.Auth.Snapshot()
	if snap.UserID != "" {
		return snap.UserID == strconv.Itoa(c.UserID)
	}
	return snap.Username != "" && snap.Username == c.Username
}

func (m bookModel) selected() (domain.BookComment, bool) {
	if m.detail == nil || m.cursor >= len(m.detail.Comments) {
		return domain.BookComment{}, false
	}
	return m.detail.Comments[m.cursor], true
}

func (m bookModel) Update(msg tea.Msg) (bookModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bookLoadedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errText = errorText(msg.err)
			return m, nil
		}
		m.detail = msg.detail
		m.cursor = min(m.cursor, max(len(m.detail.Comments)-1, 0))
		return m, nil

	case bookmarkMsg:
		if msg.err != nil {
			m.errText = errorText(msg.err)
			return m, nil
		}
		if m.detail != nil {
			m.detail.IsBookmarked = msg.on
		}
		if msg.on {
			m.status = "bookmarked"
		} else {
			m.status = "bookmark removed"
		}
		return m, nil

	case commentDeletedMsg:
		if msg.err != nil {
			m.errText = errorText(msg.err)
			return m, nil
		}
		m.status = "comment deleted"
		return m, m.load()

	case comicMsg:
		m.generating = false
		if msg.err != nil {
			m.errText = errorText(msg.err)
			return m, nil
		}
		m.comicURL = msg.res.ComicURL
		m.status = "comic ready (o to open)"
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.errText = "copy failed: " + msg.err.Error()
		} else {
			m.status = "ISBN copied"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			m.confirming = false
			if msg.String() != "y" {
				m.status = "kept"
				return m, nil
			}
			c, ok := m.selected()
			if !ok {
				return m, nil
			}
			comments, mypage := m.deps.Comments, m.deps.MyPage
			return m, func() tea.Msg {
				err := comments.Delete(context.Background(), c.CommentID)
				if err == nil && mypage != nil {
					mypage.ForgetComment(c.CommentID)
				}
				return commentDeletedMsg{id: c.CommentID, err: err}
			}
		}

		m.status = ""
		m.errText = ""
		switch msg.String() {
		case "esc", "backspace":
			return m, navigate(nav.To(nav.BookList))
		case "j", "down":
			if m.detail != nil && m.cursor < len(m.detail.Comments)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.loading = true
			return m, m.load()
		case "c":
			if !m.authenticated() {
				m.errText = "log in to comment (press l)"
				return m, nil
			}
			return m, navigate(nav.To(nav.CommentCreate, "book", strconv.Itoa(m.id)))
		case "e":
			c, ok := m.selected()
			if !ok || !m.owns(c) {
				m.errText = "you can only edit your own comments"
				return m, nil
			}
			return m, navigate(nav.To(nav.CommentUpdate,
				"book", strconv.Itoa(m.id),
				"comment", strconv.Itoa(c.CommentID),
				"content", c.Content))
		case "d":
			c, ok := m.selected()
			if !ok || !m.owns(c) {
				m.errText = "you can only delete your own comments"
				return m, nil
			}
			m.confirming = true
		case "b":
			if m.detail == nil {
				return m, nil
			}
			if !m.authenticated() {
				m.errText = "log in to bookmark (press l)"
				return m, nil
			}
			on := !m.detail.IsBookmarked
			id := m.id
			books, mypage := m.deps.Books, m.deps.MyPage
			return m, func() tea.Msg {
				err := mypage.ToggleBookmark(context.Background(), id, on)
				if err == nil {
					books.SetBookmarked(id, on)
				}
				return bookmarkMsg{on: on, err: err}
			}
		case "g":
			if m.generating {
				return m, nil
			}
			if !m.authenticated() {
				m.errText = "log in to generate a comic (press l)"
				return m, nil
			}
			m.generating = true
			ai, id := m.deps.AI, m.id
			return m, func() tea.Msg {
				res, err := ai.GenerateComic(context.Background(), id)
				return comicMsg{res: res, err: err}
			}
		case "y":
			if m.detail == nil || m.detail.ISBN == "" || m.deps.CopyText == nil {
				return m, nil
			}
			copyText, isbn := m.deps.CopyText, m.detail.ISBN
			return m, func() tea.Msg { return clipboardMsg{err: copyText(isbn)} }
		case "o":
			url := m.comicURL
			if url == "" && m.detail != nil {
				url = m.detail.CoverURL
			}
			if url == "" || m.deps.OpenURL == nil {
				return m, nil
			}
			if err := m.deps.OpenURL(url); err != nil {
				m.errText = "open failed: " + err.Error()
			}
		}
	}
	return m, nil
}

func (m bookModel) helpKeys() string {
	if m.confirming {
		return helpBar(helpEntry("y", "delete"), helpEntry("any key", "keep"))
	}
	return helpBar(helpEntry("esc", "back"), helpEntry("j/k", "comments"), helpEntry("c", "comment"),
		helpEntry("e/d", "edit/delete"), helpEntry("b", "bookmark"), helpEntry("g", "comic"),
		helpEntry("o", "open"), helpEntry("y", "copy isbn"))
}

func (m bookModel) View() string {
	if m.loading && m.detail == nil {
		return "\n " + dimStyle.Render("loading...") + "\n"
	}
	if m.detail == nil {
		return "\n " + errStyle.Render(m.errText) + "\n\n " + metaStyle.Render("esc to go back") + "\n"
	}
	d := m.detail
	var b strings.Builder

	mark := ""
	if d.IsBookmarked {
		mark = "  " + goldStyle.Render("★ bookmarked")
	}
	b.WriteString(" " + selectedStyle.Render(d.Title) + mark + "\n")
	meta := []string{d.Author}
	if d.Publisher != "" {
		meta = append(meta, d.Publisher)
	}
	if d.ISBN != "" {
		meta = append(meta, "ISBN "+d.ISBN)
	}
	b.WriteString(" " + dimStyle.Render(strings.Join(meta, " · ")))
	if d.Category != nil {
		b.WriteString("  " + CategoryStyle(d.Category.Name).Render(d.Category.Name))
	}
	b.WriteString("  " + rankStars(d.CustomerReviewRank) + "\n")

	if d.Description != "" {
		width := max(m.width-4, 30)
		desc := lipgloss.NewStyle().Width(width).Render(cleanText(d.Description))
		for _, l := range strings.Split(desc, "\n") {
			b.WriteString("  " + commentTextStyle.Render(l) + "\n")
		}
	}

	switch {
	case m.generating:
		b.WriteString(" " + aiLabelStyle.Render("drawing the comic...") + "\n")
	case m.confirming:
		b.WriteString(" " + errStyle.Render("delete this comment? (y/n)") + "\n")
	case m.errText != "":
		b.WriteString(" " + errStyle.Render(m.errText) + "\n")
	case m.status != "":
		b.WriteString(" " + okStyle.Render(m.status) + "\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("COMMENTS (%d)", len(d.Comments))) + "\n")
	if len(d.Comments) == 0 {
		b.WriteString("  " + dimStyle.Render("no comments yet (c to write one)") + "\n")
	}
	textWidth := max(m.width-30, 20)
	for i, c := range d.Comments {
		marker := "  "
		name := metaStyle.Render(c.Username)
		if i == m.cursor {
			marker = accentStyle.Render("▸") + " "
			name = accentStyle.Render(c.Username)
		}
		fmt.Fprintf(&b, " %s%s  %s  %s\n", marker, name,
			commentTextStyle.Render(truncStr(cleanText(c.Content), textWidth)),
			commentTimeStyle.Render(formatTime(c.CreatedAt)))
	}
	return truncateToHeight(b.String(), m.height)
}
