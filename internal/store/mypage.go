package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/bookshelf/pkg/domain"
)

// MyPagePerPage is the page size for my comments and bookmarks.
const MyPagePerPage = 20

// MyPageAPI is the per-user part of the backend.
type MyPageAPI interface {
	MyComments(ctx context.Context, page, perPage int) (*domain.Page[domain.MyComment], error)
	MyBookmarks(ctx context.Context, page, perPage int) (*domain.Page[domain.MyBookmark], error)
	AddBookmark(ctx context.Context, bookID int) error
	RemoveBookmark(ctx context.Context, bookID int) error
}

// MyPageState is a snapshot of the my-page store.
type MyPageState struct {
	Comments  []domain.MyComment
	Bookmarks []domain.MyBookmark
	Loading   bool
}

// MyPage holds the signed-in user's comments and bookmarks.
type MyPage struct {
	api MyPageAPI
	log zerolog.Logger

	mu    sync.Mutex
	state MyPageState

	seq     sequence
	loading inflight
}

func NewMyPage(api MyPageAPI, log zerolog.Logger) *MyPage {
	return &MyPage{api: api, log: log.With().Str("store", "mypage").Logger()}
}

// State returns a copy of the current state.
func (m *MyPage) State() MyPageState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MyPageState{
		Comments:  slices.Clone(m.state.Comments),
		Bookmarks: slices.Clone(m.state.Bookmarks),
		Loading:   m.loading.active(),
	}
}

// Refresh loads the first page of comments and bookmarks concurrently. If
// either call fails the previous state is kept and the error logged.
func (m *MyPage) Refresh(ctx context.Context) {
	id := m.seq.next()
	done := m.loading.begin()
	defer done()

	var (
		comments  *domain.Page[domain.MyComment]
		bookmarks *domain.Page[domain.MyBookmark]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = m.api.MyComments(gctx, 1, MyPagePerPage)
		return err
	})
	g.Go(func() error {
		var err error
		bookmarks, err = m.api.MyBookmarks(gctx, 1, MyPagePerPage)
		return err
	})
	err := g.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.seq.latest(id) {
		return
	}
	if err != nil {
		m.log.Error().Err(err).Msg("load my page")
		return
	}
	m.state.Comments = comments.Results
	m.state.Bookmarks = bookmarks.Results
}

// ToggleBookmark adds or removes a bookmark and updates the cached list.
// A removal is applied locally; an addition reloads the list, since the
// listing fields come from the server.
func (m *MyPage) ToggleBookmark(ctx context.Context, bookID int, on bool) error {
	if on {
		if err := m.api.AddBookmark(ctx, bookID); err != nil {
			return fmt.Errorf("store.ToggleBookmark: %w", err)
		}
		m.Refresh(ctx)
		return nil
	}
	if err := m.api.RemoveBookmark(ctx, bookID); err != nil {
		return fmt.Errorf("store.ToggleBookmark: %w", err)
	}
	m.mu.Lock()
	m.state.Bookmarks = slices.DeleteFunc(m.state.Bookmarks, func(b domain.MyBookmark) bool { return b.BookID == bookID })
	m.mu.Unlock()
	return nil
}

// ForgetComment drops a deleted comment from the cached list.
func (m *MyPage) ForgetComment(commentID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Comments = slices.DeleteFunc(m.state.Comments, func(c domain.MyComment) bool { return c.CommentID == commentID })
}

// Reset empties the store, e.g. after logout.
func (m *MyPage) Reset() {
	m.seq.next()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = MyPageState{}
}
