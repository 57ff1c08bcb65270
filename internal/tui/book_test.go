package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

func bookBackend() *fakeBackend {
	be := newFakeBackend()
	rank := 8.6
	be.details[5] = &domain.BookDetail{
		Book:               domain.Book{ID: 5, Title: "Dune", Author: "Frank Herbert", ISBN: "9780441172719", CoverURL: "https://covers.example.com/5.jpg"},
		Publisher:          "Ace",
		Description:        "A desert planet.",
		CustomerReviewRank: &rank,
		Comments: []domain.BookComment{
			{CommentID: 10, UserID: 7, Username: "reader", Content: "loved it", CreatedAt: time.Now().Add(-2 * time.Hour)},
			{CommentID: 11, UserID: 8, Username: "critic", Content: "too long"},
		},
	}
	return be
}

func loadedBook(t *testing.T, be *fakeBackend, auth *fakeAuth) bookModel {
	t.Helper()
	m := newBookModel(newTestDeps(be, auth), 5)
	m.width, m.height = 80, 30
	m, _ = m.Update(run(t, m.Init()))
	if m.detail == nil {
		t.Fatalf("detail not loaded: %q", m.errText)
	}
	return m
}

func TestBookDetailView(t *testing.T) {
	m := loadedBook(t, bookBackend(), &fakeAuth{})
	view := m.View()
	for _, want := range []string{"Dune", "Frank Herbert", "ISBN 9780441172719", "COMMENTS (2)", "loved it", "critic", "8.6"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBookNotFound(t *testing.T) {
	m := newBookModel(newTestDeps(newFakeBackend(), &fakeAuth{}), 99)
	m, _ = m.Update(run(t, m.Init()))
	if m.detail != nil {
		t.Fatal("expected no detail")
	}
	if !strings.Contains(m.View(), "not found") {
		t.Errorf("view = %q, want not found", m.View())
	}
}

func TestBookIgnoresStaleLoad(t *testing.T) {
	m := loadedBook(t, bookBackend(), &fakeAuth{})
	m, _ = m.Update(bookLoadedMsg{id: 6, detail: &domain.BookDetail{Book: domain.Book{ID: 6, Title: "Other"}}})
	if m.detail.Title != "Dune" {
		t.Errorf("detail replaced by another book's load: %q", m.detail.Title)
	}
}

func TestBookAnonymousActionsAskForLogin(t *testing.T) {
	for _, k := range []string{"c", "b", "g"} {
		t.Run(k, func(t *testing.T) {
			m := loadedBook(t, bookBackend(), &fakeAuth{})
			m, cmd := m.Update(key(k))
			if cmd != nil {
				t.Error("anonymous action should not run a command")
			}
			if !strings.Contains(m.errText, "log in") {
				t.Errorf("errText = %q, want a login hint", m.errText)
			}
		})
	}
}

func TestBookCommentCreateNavigates(t *testing.T) {
	m := loadedBook(t, bookBackend(), &fakeAuth{authed: true, userID: "7"})
	_, cmd := m.Update(key("c"))
	msg := run(t, cmd).(navigateMsg)
	if msg.route.Name != nav.CommentCreate || msg.route.Param("book") != "5" {
		t.Errorf("route = %+v", msg.route)
	}
}

func TestBookEditOwnCommentOnly(t *testing.T) {
	m := loadedBook(t, bookBackend(), &fakeAuth{authed: true, userID: "7"})

	_, cmd := m.Update(key("e"))
	msg := run(t, cmd).(navigateMsg)
	if msg.route.Name != nav.CommentUpdate || msg.route.Param("comment") != "10" || msg.route.Param("content") != "loved it" {
		t.Errorf("edit route = %+v", msg.route)
	}

	m, _ = m.Update(key("j")) // someone else's comment
	m, cmd = m.Update(key("e"))
	if cmd != nil || !strings.Contains(m.errText, "your own") {
		t.Errorf("editing another user's comment: cmd=%v err=%q", cmd != nil, m.errText)
	}
}

func TestBookDeleteComment(t *testing.T) {
	be := bookBackend()
	m := loadedBook(t, be, &fakeAuth{authed: true, userID: "7"})

	m, _ = m.Update(key("d"))
	if !m.confirming {
		t.Fatal("expected delete confirmation")
	}

	// Anything but y keeps the comment.
	m, cmd := m.Update(key("n"))
	if cmd != nil || m.confirming || len(be.deleted) != 0 {
		t.Fatal("'n' should cancel the delete")
	}

	m, _ = m.Update(key("d"))
	m, cmd = m.Update(key("y"))
	msg := run(t, cmd)
	if len(be.deleted) != 1 || be.deleted[0] != 10 {
		t.Fatalf("deleted = %v, want [10]", be.deleted)
	}
	m, cmd = m.Update(msg)
	if m.status != "comment deleted" {
		t.Errorf("status = %q", m.status)
	}
	if cmd == nil {
		t.Error("expected a reload after delete")
	}
}

func TestBookToggleBookmark(t *testing.T) {
	be := bookBackend()
	m := loadedBook(t, be, &fakeAuth{authed: true, userID: "7"})

	m, cmd := m.Update(key("b"))
	m, _ = m.Update(run(t, cmd))
	if !be.bookmarked[5] || !m.detail.IsBookmarked {
		t.Fatal("expected book bookmarked")
	}
	if !strings.Contains(m.View(), "bookmarked") {
		t.Error("view should mark the book as bookmarked")
	}

	m, cmd = m.Update(key("b"))
	m, _ = m.Update(run(t, cmd))
	if be.bookmarked[5] || m.detail.IsBookmarked {
		t.Error("second toggle should remove the bookmark")
	}
}

func TestBookComicThenOpen(t *testing.T) {
	be := bookBackend()
	m := loadedBook(t, be, &fakeAuth{authed: true})

	// Before a comic exists, o opens the cover.
	m, _ = m.Update(key("o"))
	if len(be.opened) != 1 || be.opened[0] != "https://covers.example.com/5.jpg" {
		t.Fatalf("opened = %v, want cover", be.opened)
	}

	m, cmd := m.Update(key("g"))
	if !m.generating {
		t.Fatal("expected generating flag")
	}
	if _, again := m.Update(key("g")); again != nil {
		t.Error("second g while generating should be ignored")
	}
	m, _ = m.Update(run(t, cmd))
	if m.generating || m.comicURL == "" {
		t.Fatalf("comic not recorded: %+v", m)
	}

	m, _ = m.Update(key("o"))
	if be.opened[len(be.opened)-1] != m.comicURL {
		t.Errorf("o should open the comic, opened %v", be.opened)
	}
}

func TestBookCopyISBN(t *testing.T) {
	be := bookBackend()
	m := loadedBook(t, be, &fakeAuth{})
	m, cmd := m.Update(key("y"))
	m, _ = m.Update(run(t, cmd))
	if len(be.copied) != 1 || be.copied[0] != "9780441172719" {
		t.Errorf("copied = %v", be.copied)
	}
	if m.status != "ISBN copied" {
		t.Errorf("status = %q", m.status)
	}
}

func TestBookEscGoesBack(t *testing.T) {
	m := loadedBook(t, bookBackend(), &fakeAuth{})
	_, cmd := m.Update(key("esc"))
	if msg := run(t, cmd).(navigateMsg); msg.route.Name != nav.BookList {
		t.Errorf("esc route = %q, want booklist", msg.route.Name)
	}
}
