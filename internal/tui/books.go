package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/internal/store"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

// searchFields is the cycle order for the search field selector.
var searchFields = []string{"all", "title", "author", "publisher"}

type booksModel struct {
	deps    Deps
	query   domain.BookQuery
	input   string
	editing bool
	state   store.BooksState
	loaded  bool
	cursor  int
	offset  int
	width   int
	height  int
}

type booksLoadedMsg struct {
	state store.BooksState
}

func newBooksModel(d Deps) booksModel {
	return booksModel{
		deps:  d,
		query: domain.BookQuery{Field: "all", Sort: "latest", Page: 1, PerPage: domain.DefaultBooksPerPage},
		state: store.BooksState{TotalPages: 1, CurrentPage: 1},
	}
}

func (m booksModel) Init() tea.Cmd {
	if m.loaded {
		return nil
	}
	return m.fetch(m.query)
}

func (m booksModel) fetch(q domain.BookQuery) tea.Cmd {
	books := m.deps.Books
	return func() tea.Msg {
		books.Fetch(context.Background(), q)
		return booksLoadedMsg{state: books.State()}
	}
}

func (m booksModel) Update(msg tea.Msg) (booksModel, tea.Cmd) {
	switch msg := msg.(type) {
	case booksLoadedMsg:
		m.state = msg.state
		m.query = msg.state.Query
		m.loaded = true
		m.cursor = 0
		m.offset = 0
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			switch msg.String() {
			case "enter":
				m.editing = false
				q := m.query
				q.Q = strings.TrimSpace(m.input)
				q.Page = 1
				return m, m.fetch(q)
			case "esc":
				m.editing = false
				m.input = m.query.Q
			default:
				m.input = editKey(m.input, msg)
			}
			return m, nil
		}

		switch msg.String() {
		case "/":
			m.editing = true
			m.input = m.query.Q
		case "j", "down":
			if m.cursor < len(m.state.Books)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.visibleRows() {
					m.offset++
				}
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "enter":
			if m.cursor < len(m.state.Books) {
				id := m.state.Books[m.cursor].ID
				return m, navigate(nav.To(nav.Book, "id", strconv.Itoa(id)))
			}
		case "n", "right":
			if m.state.CurrentPage < m.state.TotalPages {
				q := m.query
				q.Page = m.state.CurrentPage + 1
				return m, m.fetch(q)
			}
		case "p", "left":
			if m.state.CurrentPage > 1 {
				q := m.query
				q.Page = m.state.CurrentPage - 1
				return m, m.fetch(q)
			}
		case "s":
			q := m.query
			if q.Sort == "oldest" {
				q.Sort = "latest"
			} else {
				q.Sort = "oldest"
			}
			q.Page = 1
			return m, m.fetch(q)
		case "f":
			q := m.query
			q.Field = nextField(q.Field)
			if q.Q == "" {
				m.query = q
				return m, nil
			}
			q.Page = 1
			return m, m.fetch(q)
		case "esc":
			if m.query.Q != "" {
				q := m.query
				q.Q = ""
				q.Page = 1
				m.input = ""
				return m, m.fetch(q)
			}
		}
	}
	return m, nil
}

func nextField(cur string) string {
	for i, f := range searchFields {
		if f == cur {
			return searchFields[(i+1)%len(searchFields)]
		}
	}
	return searchFields[0]
}

// visibleRows is the number of book rows that fit below the search line.
func (m booksModel) visibleRows() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-3, 1)
}

func (m booksModel) helpKeys() string {
	if m.editing {
		return helpBar(helpEntry("enter", "search"), helpEntry("esc", "cancel"))
	}
	return helpBar(helpEntry("/", "search"), helpEntry("f", "field"), helpEntry("s", "sort"),
		helpEntry("j/k", "nav"), helpEntry("n/p", "page"), helpEntry("enter", "open"), helpEntry("q", "quit"))
}

func (m booksModel) View() string {
	var b strings.Builder

	field := metaStyle.Render("[" + m.query.Field + "]")
	sort := metaStyle.Render(m.query.Sort)
	switch {
	case m.editing:
		b.WriteString(" " + searchStyle.Render("/ ") + normalStyle.Render(m.input) + accentStyle.Render("█") + "  " + field + "\n")
	case m.query.Q != "":
		b.WriteString(" " + searchStyle.Render("/ "+m.query.Q) + "  " + field + "  " + sort + "\n")
	default:
		b.WriteString(" " + inputPlaceholderStyle.Render("/ search books") + "  " + field + "  " + sort + "\n")
	}

	if !m.loaded {
		b.WriteString("\n " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if len(m.state.Books) == 0 {
		msg := "no books found"
		if m.state.Message != "" {
			msg = m.state.Message
		}
		b.WriteString("\n " + dimStyle.Render(msg) + "\n")
		return b.String()
	}

	b.WriteString("\n")
	end := min(m.offset+m.visibleRows(), len(m.state.Books))
	titleWidth := max(m.width-40, 20)
	for i := m.offset; i < end; i++ {
		bk := m.state.Books[i]
		marker := "  "
		title := normalStyle.Render(truncStr(bk.Title, titleWidth))
		if i == m.cursor {
			marker = accentStyle.Render("▸") + " "
			title = selectedStyle.Render(truncStr(bk.Title, titleWidth))
		}
		line := " " + marker + title + "  " + dimStyle.Render(truncStr(bk.Author, 24))
		if bk.Category != nil {
			line += "  " + CategoryStyle(bk.Category.Name).Render(bk.Category.Name)
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\n %s\n", metaStyle.Render(fmt.Sprintf("page %d/%d", m.state.CurrentPage, m.state.TotalPages)))
	return b.String()
}
