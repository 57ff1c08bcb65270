package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/internal/session"
	"github.com/naveenspark/bookshelf/internal/store"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

// Auth is the session surface the screens use.
type Auth interface {
	IsAuthenticated() bool
	Snapshot() session.Session
	Login(ctx context.Context, creds domain.Credentials) (*domain.TokenPair, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error)
	Logout(ctx context.Context)
	DeleteAccount(ctx context.Context, password string) error
	UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (*domain.User, error)
}

// Deps are the collaborators shared by every screen.
type Deps struct {
	Auth     Auth
	Books    *store.Books
	Comments *store.Comments
	AI       *store.AI
	MyPage   *store.MyPage
	Bus      *nav.Bus

	OpenURL   func(url string) error
	CopyText  func(text string) error
	StartHint string // shown once in the banner, e.g. after a failed startup check
}

// navigateMsg asks the App to change screen. Every screen change goes
// through the guard.
type navigateMsg struct {
	route nav.Route
}

func navigate(r nav.Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{route: r} }
}

// busMsg carries one event from the navigation bus.
type busMsg nav.Event

func waitForBus(b *nav.Bus) tea.Cmd {
	if b == nil {
		return nil
	}
	return func() tea.Msg { return busMsg(<-b.Events()) }
}

type loggedOutMsg struct{}

// App is the root Bubbletea model.
type App struct {
	deps    Deps
	route   nav.Route
	home    homeModel
	books   booksModel
	book    bookModel
	comment commentModel
	auth    authModel
	mypage  mypageModel

	helpOpen bool
	banner   string // blocking notice; any key dismisses
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates the TUI starting at start, after applying the guard.
func NewApp(d Deps, start nav.Route) App {
	a := App{
		deps:   d,
		home:   newHomeModel(d),
		books:  newBooksModel(d),
		mypage: newMypageModel(d),
		banner: d.StartHint,
	}
	a, _ = a.goTo(start)
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.screenInit(), shimmerTickCmd(), waitForBus(a.deps.Bus))
}

func (a App) authenticated() bool {
	return a.deps.Auth != nil && a.deps.Auth.IsAuthenticated()
}

// goTo applies the guard and prepares the target screen. Routes outside the
// table land on home. The returned command loads the screen's data.
func (a App) goTo(r nav.Route) (App, tea.Cmd) {
	if !nav.Known(r.Name) {
		r = nav.To(nav.Home)
	}
	r = nav.Guard(r, a.authenticated())
	a.route = r
	a.helpOpen = false
	switch r.Name {
	case nav.Book:
		a.book = newBookModel(a.deps, atoiParam(r, "id"))
		a.book.width, a.book.height = a.bodySize()
	case nav.CommentCreate:
		a.comment = newCommentModel(a.deps, atoiParam(r, "book"), 0, "")
	case nav.CommentUpdate:
		a.comment = newCommentModel(a.deps, atoiParam(r, "book"), atoiParam(r, "comment"), r.Param("content"))
	case nav.Login:
		a.auth = newAuthModel(a.deps, false)
	case nav.Register:
		a.auth = newAuthModel(a.deps, true)
	}
	return a, a.screenInit()
}

func (a App) screenInit() tea.Cmd {
	switch a.route.Name {
	case nav.Home:
		return a.home.Init()
	case nav.BookList:
		return a.books.Init()
	case nav.Book:
		return a.book.Init()
	case nav.MyPage:
		return a.mypage.Init()
	}
	return nil
}

func (a App) bodySize() (int, int) {
	// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
	return a.width, max(a.height-5, 0)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		w, h := a.bodySize()
		bodyMsg := tea.WindowSizeMsg{Width: w, Height: h}
		a.home, _ = a.home.Update(bodyMsg)
		a.books, _ = a.books.Update(bodyMsg)
		a.book, _ = a.book.Update(bodyMsg)
		a.mypage, _ = a.mypage.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		a.auth.frame = a.frame
		a.comment.frame = a.frame
		return a, shimmerTickCmd()

	case navigateMsg:
		return a.goTo(msg.route)

	case busMsg:
		var cmd tea.Cmd
		switch {
		case msg.Notice != nil:
			a.banner = msg.Notice.Text
			if msg.Notice.Kind == nav.NoticeSessionExpired {
				a.resetUserData()
				a.mypage = newMypageModel(a.deps)
				a.mypage.width, a.mypage.height = a.bodySize()
			}
		case msg.Route != nil:
			a, cmd = a.goTo(nav.To(*msg.Route))
		}
		return a, tea.Batch(cmd, waitForBus(a.deps.Bus))

	case loggedOutMsg:
		a.resetUserData()
		a.mypage = newMypageModel(a.deps)
		a.mypage.width, a.mypage.height = a.bodySize()
		a.home.status = "logged out"
		return a, nil

	case tea.KeyMsg:
		if a.banner != "" {
			a.banner = ""
			return a, nil
		}
		if a.helpOpen {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			default:
				a.helpOpen = false
			}
			return a, nil
		}
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.isEditing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "h", "?":
				a.helpOpen = true
				return a, nil
			case "1":
				return a.goTo(nav.To(nav.Home))
			case "2":
				return a.goTo(nav.To(nav.BookList))
			case "3":
				return a.goTo(nav.To(nav.MyPage))
			case "l":
				if a.authenticated() {
					return a, a.logout()
				}
				return a.goTo(nav.To(nav.Login))
			}
		}
	}

	var cmd tea.Cmd
	switch a.route.Name {
	case nav.Home:
		a.home, cmd = a.home.Update(msg)
	case nav.BookList:
		a.books, cmd = a.books.Update(msg)
	case nav.Book:
		a.book, cmd = a.book.Update(msg)
	case nav.CommentCreate, nav.CommentUpdate:
		a.comment, cmd = a.comment.Update(msg)
	case nav.Login, nav.Register:
		a.auth, cmd = a.auth.Update(msg)
	case nav.MyPage:
		a.mypage, cmd = a.mypage.Update(msg)
	}
	return a, cmd
}

func (a App) logout() tea.Cmd {
	auth := a.deps.Auth
	return func() tea.Msg {
		auth.Logout(context.Background())
		return loggedOutMsg{}
	}
}

// resetUserData drops cached per-user data once the session is gone.
func (a App) resetUserData() {
	if a.deps.MyPage != nil {
		a.deps.MyPage.Reset()
	}
}

func (a App) isEditing() bool {
	switch a.route.Name {
	case nav.Home:
		return a.home.editing
	case nav.BookList:
		return a.books.editing
	case nav.Book:
		return a.book.confirming
	case nav.CommentCreate, nav.CommentUpdate, nav.Login, nav.Register:
		return true
	case nav.MyPage:
		return a.mypage.prompt != promptNone
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)

	userLine := metaStyle.Render("not logged in · press l to log in")
	if a.authenticated() {
		snap := a.deps.Auth.Snapshot()
		userLine = metaStyle.Render("logged in as ") + accentStyle.Render(snap.Username)
	}

	header := centerLine(logo, a.width) + "\n" + centerLine(userLine, a.width)

	type tabEntry struct {
		key   string
		name  string
		route nav.RouteName
	}
	tabs := []tabEntry{
		{"1", "Home", nav.Home},
		{"2", "Books", nav.BookList},
		{"3", "My page", nav.MyPage},
	}
	active := a.route.Name
	switch active {
	case nav.Book, nav.CommentCreate, nav.CommentUpdate:
		active = nav.BookList
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.route == active {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.route.Name {
	case nav.Home:
		body, help = a.home.View(), a.home.helpKeys()
	case nav.BookList:
		body, help = a.books.View(), a.books.helpKeys()
	case nav.Book:
		body, help = a.book.View(), a.book.helpKeys()
	case nav.CommentCreate, nav.CommentUpdate:
		body, help = a.comment.View(), a.comment.helpKeys()
	case nav.Login, nav.Register:
		body, help = a.auth.View(), a.auth.helpKeys()
	case nav.MyPage:
		body, help = a.mypage.View(), a.mypage.helpKeys()
	}

	if a.helpOpen {
		body = helpView()
		help = helpBar(helpEntry("any key", "close"))
	}

	status := ""
	if a.banner != "" {
		status = " " + bannerStyle.Render(a.banner) + "  " + metaStyle.Render("(any key)")
		help = helpBar(helpEntry("any key", "dismiss"))
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, status, help)
}

func centerLine(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}

// atoiParam reads an integer route param; missing or malformed values are 0.
func atoiParam(r nav.Route, key string) int {
	n, err := strconv.Atoi(r.Param(key))
	if err != nil {
		return 0
	}
	return n
}
