package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenspark/bookshelf/pkg/domain"
)

// BooksAPI is the catalog part of the backend.
type BooksAPI interface {
	ListBooks(ctx context.Context, q domain.BookQuery) (*domain.BookPage, error)
	GetBook(ctx context.Context, id int) (*domain.BookDetail, error)
}

// BooksState is a snapshot of the catalog store.
type BooksState struct {
	Books       []domain.Book
	TotalPages  int
	CurrentPage int
	Query       domain.BookQuery
	Message     string // backend note, e.g. for an empty search
	Loading     bool

	Detail        *domain.BookDetail
	DetailLoading bool
}

// Books is the catalog store.
type Books struct {
	api BooksAPI
	log zerolog.Logger

	mu    sync.Mutex
	state BooksState

	listSeq   sequence
	detailSeq sequence
	list      inflight
	detail    inflight
}

// NewBooks creates an empty catalog store.
func NewBooks(api BooksAPI, log zerolog.Logger) *Books {
	return &Books{
		api:   api,
		log:   log.With().Str("store", "books").Logger(),
		state: BooksState{TotalPages: 1, CurrentPage: 1},
	}
}

// State returns a copy of the current state.
func (b *Books) State() BooksState {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.state
	s.Books = slices.Clone(b.state.Books)
	s.Loading = b.list.active()
	s.DetailLoading = b.detail.active()
	return s
}

// Fetch loads one page of the catalog. Page defaults to 1 and per_page to 20.
// On failure the list is emptied and TotalPages reset to 1.
func (b *Books) Fetch(ctx context.Context, q domain.BookQuery) {
	q = q.Normalized()
	id := b.listSeq.next()
	done := b.list.begin()
	defer done()

	page, err := b.api.ListBooks(ctx, q)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.listSeq.latest(id) {
		return
	}
	b.state.Query = q
	if err != nil {
		b.log.Error().Err(err).Str("q", q.Q).Int("page", q.Page).Msg("load books")
		b.state.Books = []domain.Book{}
		b.state.TotalPages = 1
		b.state.Message = ""
		return
	}
	b.state.Books = page.Results
	if b.state.Books == nil {
		b.state.Books = []domain.Book{}
	}
	b.state.TotalPages = max(page.TotalPages, 1)
	b.state.CurrentPage = q.Page
	b.state.Message = page.Message
}

// FetchDetail loads a single book with its comments. On failure Detail is
// cleared and the error returned so the screen can say why.
func (b *Books) FetchDetail(ctx context.Context, id int) (*domain.BookDetail, error) {
	seq := b.detailSeq.next()
	done := b.detail.begin()
	defer done()

	book, err := b.api.GetBook(ctx, id)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.log.Error().Err(err).Int("book_id", id).Msg("load book")
		if b.detailSeq.latest(seq) {
			b.state.Detail = nil
		}
		return nil, fmt.Errorf("store.FetchDetail: %w", err)
	}
	if b.detailSeq.latest(seq) {
		b.state.Detail = book
	}
	return book, nil
}

// SetBookmarked updates the cached detail after a bookmark toggle.
func (b *Books) SetBookmarked(bookID int, on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.Detail != nil && b.state.Detail.ID == bookID {
		d := *b.state.Detail
		d.IsBookmarked = on
		b.state.Detail = &d
	}
}
