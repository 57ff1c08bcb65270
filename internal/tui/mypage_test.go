package tui

import (
	"net/http"
	"strings"
	"testing"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/pkg/client"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

func mypageBackend() *fakeBackend {
	be := newFakeBackend()
	be.myComments = []domain.MyComment{
		{CommentID: 10, BookID: 5, BookTitle: "Dune", Content: "loved it"},
		{CommentID: 12, BookID: 9, BookTitle: "Hyperion", Content: "strange"},
	}
	be.myBookmarks = []domain.MyBookmark{
		{BookID: 3, Title: "Middlemarch", Author: "George Eliot"},
	}
	return be
}

func loadedMypage(t *testing.T, be *fakeBackend, auth *fakeAuth) mypageModel {
	t.Helper()
	m := newMypageModel(newTestDeps(be, auth))
	m.width, m.height = 80, 30
	m, _ = m.Update(run(t, m.Init()))
	return m
}

func TestMypageView(t *testing.T) {
	m := loadedMypage(t, mypageBackend(), &fakeAuth{authed: true})
	view := m.View()
	for _, want := range []string{"My comments (2)", "Bookmarks (1)", "Dune", "loved it"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = m.Update(key("tab"))
	if !strings.Contains(m.View(), "Middlemarch") {
		t.Error("bookmarks section should list Middlemarch")
	}
}

func TestMypageOpenBook(t *testing.T) {
	m := loadedMypage(t, mypageBackend(), &fakeAuth{authed: true})
	m, _ = m.Update(key("j"))
	_, cmd := m.Update(key("enter"))
	if msg := run(t, cmd).(navigateMsg); msg.route.Name != nav.Book || msg.route.Param("id") != "9" {
		t.Errorf("route = %+v, want book 9", msg.route)
	}
}

func TestMypageDeleteComment(t *testing.T) {
	be := mypageBackend()
	m := loadedMypage(t, be, &fakeAuth{authed: true})

	m, _ = m.Update(key("d"))
	if m.prompt != promptDeleteComment {
		t.Fatalf("prompt = %d, want delete comment", m.prompt)
	}
	m, cmd := m.Update(key("y"))
	m, _ = m.Update(run(t, cmd))

	if len(be.deleted) != 1 || be.deleted[0] != 10 {
		t.Fatalf("deleted = %v", be.deleted)
	}
	if len(m.state.Comments) != 1 || m.state.Comments[0].CommentID != 12 {
		t.Errorf("comments after delete = %+v", m.state.Comments)
	}
	if m.status != "comment deleted" {
		t.Errorf("status = %q", m.status)
	}
}

func TestMypageRemoveBookmark(t *testing.T) {
	be := mypageBackend()
	be.bookmarked[3] = true
	m := loadedMypage(t, be, &fakeAuth{authed: true})

	m, _ = m.Update(key("tab"))
	m, _ = m.Update(key("d"))
	m, cmd := m.Update(key("y"))
	m, _ = m.Update(run(t, cmd))

	if be.bookmarked[3] {
		t.Error("bookmark should be removed on the backend")
	}
	if len(m.state.Bookmarks) != 0 {
		t.Errorf("bookmarks after remove = %+v", m.state.Bookmarks)
	}
}

func TestMypageCancelPrompt(t *testing.T) {
	be := mypageBackend()
	m := loadedMypage(t, be, &fakeAuth{authed: true})
	m, _ = m.Update(key("d"))
	m, cmd := m.Update(key("n"))
	if cmd != nil || m.prompt != promptNone || len(be.deleted) != 0 {
		t.Error("'n' should cancel without deleting")
	}
}

func TestMypageUpdateProfile(t *testing.T) {
	auth := &fakeAuth{authed: true, username: "reader"}
	m := loadedMypage(t, mypageBackend(), auth)

	m, _ = m.Update(key("p"))
	if m.input != "reader" {
		t.Fatalf("profile prompt should start with the current name, got %q", m.input)
	}
	for range "reader" {
		m, _ = m.Update(key("backspace"))
	}
	m = typeText(m, "bookworm")
	m, cmd := m.Update(key("enter"))
	m, _ = m.Update(run(t, cmd))

	if len(auth.profile) != 1 || auth.profile[0].Username != "bookworm" {
		t.Fatalf("profile updates = %+v", auth.profile)
	}
	if m.status != "profile updated" {
		t.Errorf("status = %q", m.status)
	}
}

func TestMypageDeleteAccount(t *testing.T) {
	auth := &fakeAuth{authed: true}
	m := loadedMypage(t, mypageBackend(), auth)

	m, _ = m.Update(key("X"))
	if m.prompt != promptDeleteAccount {
		t.Fatal("expected delete account prompt")
	}
	m = typeText(m, "secret")
	if strings.Contains(m.View(), "secret") {
		t.Error("password must be masked")
	}
	m, cmd := m.Update(key("enter"))
	m, _ = m.Update(run(t, cmd))

	if len(auth.deletedWith) != 1 || auth.deletedWith[0] != "secret" {
		t.Errorf("DeleteAccount calls = %v", auth.deletedWith)
	}
	if m.errText != "" {
		t.Errorf("unexpected error %q", m.errText)
	}
}

func TestMypageDeleteAccountErrors(t *testing.T) {
	auth := &fakeAuth{authed: true, deleteErr: &client.HTTPError{StatusCode: http.StatusBadRequest, Message: "password: incorrect"}}
	m := loadedMypage(t, mypageBackend(), auth)

	// Empty password never reaches the session.
	m, _ = m.Update(key("X"))
	m, cmd := m.Update(key("enter"))
	if cmd != nil || m.errText != "password is required" {
		t.Fatalf("empty password: cmd=%v err=%q", cmd != nil, m.errText)
	}

	m, _ = m.Update(key("X"))
	m = typeText(m, "wrong")
	m, cmd = m.Update(key("enter"))
	m, _ = m.Update(run(t, cmd))
	if m.errText != "password: incorrect" {
		t.Errorf("errText = %q", m.errText)
	}
	if !auth.authed {
		t.Error("failed delete must keep the session")
	}
}
