package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenspark/bookshelf/pkg/client"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

// HistoryPageSize is the number of past recommendations shown per page.
const HistoryPageSize = 5

// DefaultRateLimitMessage is used when a 429 carries no message.
const DefaultRateLimitMessage = "daily recommendation limit exceeded"

// ErrRateLimited matches any *RateLimitError via errors.Is.
var ErrRateLimited = errors.New("rate limited")

// RateLimitError reports that the backend refused a recommendation because
// the user's quota is used up.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string { return e.Message }

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// AIAPI is the AI part of the backend.
type AIAPI interface {
	Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.Recommendation, error)
	RecommendHistory(ctx context.Context, page, pageSize int) (*domain.RecommendationPage, error)
	GenerateComic(ctx context.Context, bookID int) (*domain.ComicResult, error)
}

// AIState is a snapshot of the AI store.
type AIState struct {
	History         []domain.Recommendation
	TotalPages      int
	CurrentPage     int
	Loading         bool
	GeneratingComic bool
}

// AI is the recommendation and comic store.
type AI struct {
	api AIAPI
	log zerolog.Logger

	mu    sync.Mutex
	state AIState

	historySeq sequence
	loading    inflight
	comic      inflight
}

func NewAI(api AIAPI, log zerolog.Logger) *AI {
	return &AI{
		api:   api,
		log:   log.With().Str("store", "ai").Logger(),
		state: AIState{TotalPages: 1, CurrentPage: 1},
	}
}

// State returns a copy of the current state.
func (a *AI) State() AIState {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	s.History = slices.Clone(a.state.History)
	s.Loading = a.loading.active()
	s.GeneratingComic = a.comic.active()
	return s
}

// Recommend asks for recommendations. A 429 becomes a *RateLimitError
// carrying the server's message.
func (a *AI) Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.Recommendation, error) {
	if err := domain.Validate(req); err != nil {
		return nil, fmt.Errorf("store.Recommend: %w", err)
	}
	done := a.loading.begin()
	defer done()

	rec, err := a.api.Recommend(ctx, req)
	if err != nil {
		var httpErr *client.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
			return nil, &RateLimitError{Message: rateLimitMessage(httpErr)}
		}
		a.log.Error().Err(err).Msg("recommend")
		return nil, fmt.Errorf("store.Recommend: %w", err)
	}
	return rec, nil
}

func rateLimitMessage(e *client.HTTPError) string {
	var body struct {
		Error string `json:"error"`
	}
	if e.Payload != nil && json.Unmarshal(e.Payload, &body) == nil && body.Error != "" {
		return body.Error
	}
	return DefaultRateLimitMessage
}

// GenerateComic requests the comic for bookID. GeneratingComic is true for
// the duration of the call.
func (a *AI) GenerateComic(ctx context.Context, bookID int) (*domain.ComicResult, error) {
	done := a.comic.begin()
	defer done()

	res, err := a.api.GenerateComic(ctx, bookID)
	if err != nil {
		a.log.Error().Err(err).Int("book_id", bookID).Msg("generate comic")
		return nil, fmt.Errorf("store.GenerateComic: %w", err)
	}
	return res, nil
}

// FetchHistory loads one page of past recommendations. Errors are logged and
// leave the previous state in place.
func (a *AI) FetchHistory(ctx context.Context, page int) {
	page = max(page, 1)
	id := a.historySeq.next()
	done := a.loading.begin()
	defer done()

	res, err := a.api.RecommendHistory(ctx, page, HistoryPageSize)

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.historySeq.latest(id) {
		return
	}
	if err != nil {
		a.log.Error().Err(err).Int("page", page).Msg("load recommendation history")
		return
	}
	a.state.History = res.Results
	a.state.TotalPages = max(res.TotalPages, 1)
	a.state.CurrentPage = page
}
