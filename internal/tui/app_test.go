package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/internal/session"
	"github.com/naveenspark/bookshelf/internal/store"
	"github.com/naveenspark/bookshelf/pkg/client"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

// fakeBackend is an in-memory catalog that implements every store API.
type fakeBackend struct {
	books      []domain.Book
	totalPages int
	details    map[int]*domain.BookDetail
	lastQuery  domain.BookQuery

	rec          *domain.Recommendation
	recommendErr error
	history      []domain.Recommendation
	recommended  []domain.RecommendRequest

	myComments  []domain.MyComment
	myBookmarks []domain.MyBookmark

	created    []string
	updated    map[int]string
	deleted    []int
	bookmarked map[int]bool
	opened     []string
	copied     []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		details:    map[int]*domain.BookDetail{},
		updated:    map[int]string{},
		bookmarked: map[int]bool{},
	}
}

func (f *fakeBackend) ListBooks(_ context.Context, q domain.BookQuery) (*domain.BookPage, error) {
	f.lastQuery = q
	var out []domain.Book
	for _, b := range f.books {
		if q.Q == "" || strings.Contains(strings.ToLower(b.Title), strings.ToLower(q.Q)) {
			out = append(out, b)
		}
	}
	return &domain.BookPage{TotalPages: f.totalPages, Page: q.Page, PerPage: q.PerPage, Results: out}, nil
}

func (f *fakeBackend) GetBook(_ context.Context, id int) (*domain.BookDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, &client.HTTPError{StatusCode: http.StatusNotFound, Message: "Not found."}
	}
	cp := *d
	cp.Comments = append([]domain.BookComment(nil), d.Comments...)
	return &cp, nil
}

func (f *fakeBackend) CreateComment(_ context.Context, bookID int, content string) (*domain.CommentCreated, error) {
	f.created = append(f.created, content)
	return &domain.CommentCreated{CommentID: 100 + len(f.created), Message: "created"}, nil
}

func (f *fakeBackend) UpdateComment(_ context.Context, id int, content string) error {
	f.updated[id] = content
	return nil
}

func (f *fakeBackend) DeleteComment(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) Recommend(_ context.Context, req domain.RecommendRequest) (*domain.Recommendation, error) {
	f.recommended = append(f.recommended, req)
	if f.recommendErr != nil {
		return nil, f.recommendErr
	}
	return f.rec, nil
}

func (f *fakeBackend) RecommendHistory(_ context.Context, page, pageSize int) (*domain.RecommendationPage, error) {
	return &domain.RecommendationPage{TotalPages: 1, Page: page, PageSize: pageSize, Results: f.history}, nil
}

func (f *fakeBackend) GenerateComic(_ context.Context, bookID int) (*domain.ComicResult, error) {
	return &domain.ComicResult{BookID: bookID, ComicURL: fmt.Sprintf("https://cdn.example.com/comics/%d.png", bookID)}, nil
}

func (f *fakeBackend) MyComments(_ context.Context, page, perPage int) (*domain.Page[domain.MyComment], error) {
	return &domain.Page[domain.MyComment]{TotalPages: 1, Page: page, PerPage: perPage, Results: f.myComments}, nil
}

func (f *fakeBackend) MyBookmarks(_ context.Context, page, perPage int) (*domain.Page[domain.MyBookmark], error) {
	return &domain.Page[domain.MyBookmark]{TotalPages: 1, Page: page, PerPage: perPage, Results: f.myBookmarks}, nil
}

func (f *fakeBackend) AddBookmark(_ context.Context, bookID int) error {
	f.bookmarked[bookID] = true
	return nil
}

func (f *fakeBackend) RemoveBookmark(_ context.Context, bookID int) error {
	f.bookmarked[bookID] = false
	return nil
}

// fakeAuth is a session that logs in whoever it is told to.
type fakeAuth struct {
	authed   bool
	userID   string
	username string

	loginErr    error
	deleteErr   error
	logins      []domain.Credentials
	registers   []domain.RegisterRequest
	deletedWith []string
	loggedOut   bool
	profile     []domain.ProfileUpdate
}

func (f *fakeAuth) IsAuthenticated() bool { return f.authed }

func (f *fakeAuth) Snapshot() session.Session {
	return session.Session{Authenticated: f.authed, UserID: f.userID, Username: f.username}
}

func (f *fakeAuth) Login(_ context.Context, creds domain.Credentials) (*domain.TokenPair, error) {
	f.logins = append(f.logins, creds)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.authed = true
	f.username = creds.Username
	return &domain.TokenPair{Access: "a", Refresh: "r"}, nil
}

func (f *fakeAuth) Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
	f.registers = append(f.registers, req)
	return f.Login(ctx, req.Credentials())
}

func (f *fakeAuth) Logout(context.Context) {
	f.authed = false
	f.loggedOut = true
}

func (f *fakeAuth) DeleteAccount(_ context.Context, password string) error {
	f.deletedWith = append(f.deletedWith, password)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.authed = false
	return nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, upd domain.ProfileUpdate) (*domain.User, error) {
	f.profile = append(f.profile, upd)
	f.username = upd.Username
	return &domain.User{ID: 7, Username: upd.Username}, nil
}

func newTestDeps(be *fakeBackend, auth *fakeAuth) Deps {
	log := zerolog.Nop()
	return Deps{
		Auth:     auth,
		Books:    store.NewBooks(be, log),
		Comments: store.NewComments(be, log),
		AI:       store.NewAI(be, log),
		MyPage:   store.NewMyPage(be, log),
		Bus:      nav.NewBus(0),
		OpenURL: func(url string) error {
			be.opened = append(be.opened, url)
			return nil
		},
		CopyText: func(text string) error {
			be.copied = append(be.copied, text)
			return nil
		},
	}
}

func newTestApp(auth *fakeAuth) App {
	a := NewApp(newTestDeps(newFakeBackend(), auth), nav.To(nav.Home))
	a.width = 80
	a.height = 30
	return a
}

// key builds the key message bubbletea sends for a key name.
func key(s string) tea.KeyMsg {
	named := map[string]tea.KeyType{
		"enter":     tea.KeyEnter,
		"esc":       tea.KeyEsc,
		"tab":       tea.KeyTab,
		"shift+tab": tea.KeyShiftTab,
		"backspace": tea.KeyBackspace,
		"ctrl+s":    tea.KeyCtrlS,
		"ctrl+r":    tea.KeyCtrlR,
		"ctrl+c":    tea.KeyCtrlC,
		"up":        tea.KeyUp,
		"down":      tea.KeyDown,
	}
	if t, ok := named[s]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText sends each rune of s as a separate keystroke.
func typeText[M interface{ Update(tea.Msg) (M, tea.Cmd) }](m M, s string) M {
	for _, r := range s {
		m, _ = m.Update(key(string(r)))
	}
	return m
}

// run executes cmd and returns its message, failing on nil.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

func pressApp(t *testing.T, a App, k string) (App, tea.Cmd) {
	t.Helper()
	model, cmd := a.Update(key(k))
	return model.(App), cmd
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		name      string
		authed    bool
		key       string
		wantRoute nav.RouteName
	}{
		{"home", false, "1", nav.Home},
		{"books", false, "2", nav.BookList},
		{"my page needs login", false, "3", nav.Login},
		{"my page when logged in", true, "3", nav.MyPage},
		{"login key", false, "l", nav.Login},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestApp(&fakeAuth{authed: tc.authed, username: "reader"})
			a, _ = pressApp(t, a, tc.key)
			if a.route.Name != tc.wantRoute {
				t.Errorf("after key %q: route = %q, want %q", tc.key, a.route.Name, tc.wantRoute)
			}
		})
	}
}

func TestNewAppGuardsStartRoute(t *testing.T) {
	deps := newTestDeps(newFakeBackend(), &fakeAuth{authed: true})
	a := NewApp(deps, nav.To(nav.Login))
	if a.route.Name != nav.Home {
		t.Errorf("logged-in start on login: route = %q, want home", a.route.Name)
	}

	deps = newTestDeps(newFakeBackend(), &fakeAuth{})
	a = NewApp(deps, nav.To(nav.CommentCreate, "book", "3"))
	if a.route.Name != nav.Login {
		t.Errorf("anonymous start on comment form: route = %q, want login", a.route.Name)
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	a := newTestApp(&fakeAuth{})
	_, cmd := pressApp(t, a, "q")
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg from 'q'")
	}
}

func TestAppEditingSwallowsGlobalKeys(t *testing.T) {
	a := newTestApp(&fakeAuth{authed: true})
	a, _ = pressApp(t, a, "a") // start typing a prompt
	if !a.home.editing {
		t.Fatal("expected home prompt to be editing after 'a'")
	}
	a, cmd := pressApp(t, a, "q")
	if a.home.prompt != "q" {
		t.Errorf("prompt = %q, want %q", a.home.prompt, "q")
	}
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("'q' while editing should not quit")
		}
	}
	a, _ = pressApp(t, a, "2")
	if a.route.Name != nav.Home {
		t.Errorf("'2' while editing should not switch tabs, route = %q", a.route.Name)
	}
}

func TestAppHelpOverlay(t *testing.T) {
	a := newTestApp(&fakeAuth{})
	a, _ = pressApp(t, a, "h")
	if !a.helpOpen {
		t.Fatal("expected help open after 'h'")
	}
	if !strings.Contains(a.View(), "Commands") {
		t.Error("help overlay should list commands")
	}
	a, _ = pressApp(t, a, "x")
	if a.helpOpen {
		t.Error("any key should close help")
	}
}

func TestAppSessionExpiredNotice(t *testing.T) {
	auth := &fakeAuth{authed: true, username: "reader"}
	a := newTestApp(auth)
	a.deps.MyPage.Refresh(context.Background())

	auth.authed = false
	notice := nav.Notice{Kind: nav.NoticeSessionExpired, Text: nav.SessionExpiredText}
	model, cmd := a.Update(busMsg(nav.Event{Notice: &notice}))
	a = model.(App)
	if cmd == nil {
		t.Error("expected the bus to be re-armed")
	}
	if a.banner != nav.SessionExpiredText {
		t.Errorf("banner = %q, want %q", a.banner, nav.SessionExpiredText)
	}
	if !strings.Contains(a.View(), nav.SessionExpiredText) {
		t.Error("view should show the expiry banner")
	}

	// Any key dismisses the banner without acting on the key.
	a, cmd = pressApp(t, a, "q")
	if a.banner != "" {
		t.Error("expected banner dismissed")
	}
	if cmd != nil {
		t.Error("dismissing the banner should not run a command")
	}
}

func TestAppBusRouteNavigates(t *testing.T) {
	a := newTestApp(&fakeAuth{})
	a, _ = a.goTo(nav.To(nav.BookList))
	home := nav.Home
	model, _ := a.Update(busMsg(nav.Event{Route: &home}))
	a = model.(App)
	if a.route.Name != nav.Home {
		t.Errorf("route = %q, want home", a.route.Name)
	}
}

func TestAppUnknownRouteLandsHome(t *testing.T) {
	a := newTestApp(&fakeAuth{})
	a, _ = a.goTo(nav.To(nav.BookList))
	lost := nav.RouteName("admin")
	model, _ := a.Update(busMsg(nav.Event{Route: &lost}))
	a = model.(App)
	if a.route.Name != nav.Home {
		t.Errorf("route = %q, want home", a.route.Name)
	}
}

func TestAppLogoutKey(t *testing.T) {
	auth := &fakeAuth{authed: true, username: "reader"}
	a := newTestApp(auth)
	a, cmd := pressApp(t, a, "l")
	msg := run(t, cmd)
	if _, ok := msg.(loggedOutMsg); !ok {
		t.Fatalf("expected loggedOutMsg, got %T", msg)
	}
	if !auth.loggedOut {
		t.Error("expected Logout to be called")
	}
	model, _ := a.Update(msg)
	a = model.(App)
	if a.home.status != "logged out" {
		t.Errorf("home status = %q, want %q", a.home.status, "logged out")
	}
	if len(a.deps.MyPage.State().Comments) != 0 {
		t.Error("my page data should be dropped on logout")
	}
}

func TestAppViewShowsUser(t *testing.T) {
	a := newTestApp(&fakeAuth{authed: true, username: "reader"})
	if !strings.Contains(a.View(), "reader") {
		t.Error("header should show the logged-in username")
	}
	a = newTestApp(&fakeAuth{})
	if !strings.Contains(a.View(), "not logged in") {
		t.Error("header should say not logged in")
	}
}

func TestAtoiParam(t *testing.T) {
	r := nav.To(nav.Book, "id", "42", "bad", "x")
	if got := atoiParam(r, "id"); got != 42 {
		t.Errorf("atoiParam(id) = %d, want 42", got)
	}
	if got := atoiParam(r, "bad"); got != 0 {
		t.Errorf("atoiParam(bad) = %d, want 0", got)
	}
	if got := atoiParam(r, "missing"); got != 0 {
		t.Errorf("atoiParam(missing) = %d, want 0", got)
	}
}
