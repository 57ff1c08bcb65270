package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/naveenspark/bookshelf/internal/metrics"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

// Paths that callers outside this package need to recognise.
const (
	LoginPath  = "/auth/login/"
	LogoutPath = "/auth/logout/"
	MePath     = "/auth/me/"
)

// DefaultTimeout is the per-request timeout used unless WithTimeout is given.
const DefaultTimeout = 30 * time.Second

// TokenSource yields the bearer token for outgoing requests. An empty token
// means the request is sent anonymously.
type TokenSource interface {
	AccessToken() string
}

// StaticToken is a fixed bearer token.
type StaticToken string

// AccessToken implements TokenSource.
func (t StaticToken) AccessToken() string { return string(t) }

// Option configures a Client.
type Option func(*Client)

// WithTransport sets the round tripper used for every request.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Client is the bookshelf API client.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	log        zerolog.Logger
}

// New creates a new API client. baseURL includes the version prefix, e.g.
// "http://localhost:8000/api/v1".
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Auth methods ---

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) error {
	if err := c.post(ctx, "/auth/register/", req, nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.TokenPair, error) {
	var pair domain.TokenPair
	if err := c.doRequest(ctx, http.MethodPost, LoginPath, creds, &pair, withoutAuth); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &pair, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, MePath, &u); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return &u, nil
}

// UpdateMe changes the authenticated user's username or email.
func (c *Client) UpdateMe(ctx context.Context, upd domain.ProfileUpdate) (*domain.User, error) {
	var u domain.User
	if err := c.doRequest(ctx, http.MethodPatch, MePath, upd, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateMe: %w", err)
	}
	return &u, nil
}

// Logout blacklists the refresh token on the server.
func (c *Client) Logout(ctx context.Context, refresh string) error {
	body := map[string]string{"refresh": refresh}
	if err := c.post(ctx, LogoutPath, body, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// DeleteAccount removes the authenticated account after re-checking the password.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	if err := c.doRequest(ctx, http.MethodDelete, "/auth/delete/", body, nil); err != nil {
		return fmt.Errorf("client.DeleteAccount: %w", err)
	}
	return nil
}

// --- Book methods ---

// ListBooks fetches one page of the catalog.
func (c *Client) ListBooks(ctx context.Context, q domain.BookQuery) (*domain.BookPage, error) {
	params := url.Values{}
	if q.Q != "" {
		params.Set("q", q.Q)
	}
	if q.Field != "" {
		params.Set("field", q.Field)
	}
	if q.Category > 0 {
		params.Set("category", strconv.Itoa(q.Category))
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}

	path := "/books/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var page domain.BookPage
	if err := c.get(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("client.ListBooks: %w", err)
	}
	return &page, nil
}

// GetBook fetches a book with its comments.
func (c *Client) GetBook(ctx context.Context, id int) (*domain.BookDetail, error) {
	var book domain.BookDetail
	if err := c.get(ctx, "/books/"+strconv.Itoa(id)+"/", &book); err != nil {
		return nil, fmt.Errorf("client.GetBook: %w", err)
	}
	return &book, nil
}

// --- Comment methods ---

// CreateComment posts a comment on a book.
func (c *Client) CreateComment(ctx context.Context, bookID int, content string) (*domain.CommentCreated, error) {
	var created domain.CommentCreated
	path := "/books/" + strconv.Itoa(bookID) + "/comments/"
	if err := c.post(ctx, path, domain.CommentRequest{Content: content}, &created); err != nil {
		return nil, fmt.Errorf("client.CreateComment: %w", err)
	}
	return &created, nil
}

// UpdateComment replaces a comment's content.
func (c *Client) UpdateComment(ctx context.Context, commentID int, content string) error {
	path := "/comments/" + strconv.Itoa(commentID) + "/"
	if err := c.doRequest(ctx, http.MethodPut, path, domain.CommentRequest{Content: content}, nil); err != nil {
		return fmt.Errorf("client.UpdateComment: %w", err)
	}
	return nil
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, commentID int) error {
	path := "/comments/" + strconv.Itoa(commentID) + "/"
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("client.DeleteComment: %w", err)
	}
	return nil
}

// MyComments lists the authenticated user's comments, newest first.
func (c *Client) MyComments(ctx context.Context, page, perPage int) (*domain.Page[domain.MyComment], error) {
	var out domain.Page[domain.MyComment]
	if err := c.get(ctx, "/mypage/comments/?"+pageParams("per_page", page, perPage), &out); err != nil {
		return nil, fmt.Errorf("client.MyComments: %w", err)
	}
	return &out, nil
}

// --- Bookmark methods ---

// AddBookmark bookmarks a book. Bookmarking twice is not an error.
func (c *Client) AddBookmark(ctx context.Context, bookID int) error {
	if err := c.doRequest(ctx, http.MethodPost, bookmarkPath(bookID), nil, nil); err != nil {
		return fmt.Errorf("client.AddBookmark: %w", err)
	}
	return nil
}

// RemoveBookmark removes a bookmark.
func (c *Client) RemoveBookmark(ctx context.Context, bookID int) error {
	if err := c.doRequest(ctx, http.MethodDelete, bookmarkPath(bookID), nil, nil); err != nil {
		return fmt.Errorf("client.RemoveBookmark: %w", err)
	}
	return nil
}

// MyBookmarks lists the authenticated user's bookmarks.
func (c *Client) MyBookmarks(ctx context.Context, page, perPage int) (*domain.Page[domain.MyBookmark], error) {
	var out domain.Page[domain.MyBookmark]
	if err := c.get(ctx, "/mypage/bookmarks/?"+pageParams("per_page", page, perPage), &out); err != nil {
		return nil, fmt.Errorf("client.MyBookmarks: %w", err)
	}
	return &out, nil
}

func bookmarkPath(bookID int) string {
	return "/books/" + strconv.Itoa(bookID) + "/bookmark/"
}

// --- AI methods ---

// Recommend asks the backend for book recommendations. The backend limits
// how often this may be called and answers 429 beyond that.
func (c *Client) Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.Recommendation, error) {
	var rec domain.Recommendation
	if err := c.post(ctx, "/ai/recommend/", req, &rec); err != nil {
		return nil, fmt.Errorf("client.Recommend: %w", err)
	}
	return &rec, nil
}

// RecommendHistory lists past recommendations.
func (c *Client) RecommendHistory(ctx context.Context, page, pageSize int) (*domain.RecommendationPage, error) {
	var out domain.RecommendationPage
	if err := c.get(ctx, "/ai/recommend/?"+pageParams("page_size", page, pageSize), &out); err != nil {
		return nil, fmt.Errorf("client.RecommendHistory: %w", err)
	}
	return &out, nil
}

// GenerateComic requests the four-panel comic for a book.
func (c *Client) GenerateComic(ctx context.Context, bookID int) (*domain.ComicResult, error) {
	var out domain.ComicResult
	path := "/ai/books/" + strconv.Itoa(bookID) + "/ai-content/"
	if err := c.post(ctx, path, struct{}{}, &out); err != nil {
		return nil, fmt.Errorf("client.GenerateComic: %w", err)
	}
	return &out, nil
}

func pageParams(sizeKey string, page, size int) string {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(page, 1)))
	if size > 0 {
		params.Set(sizeKey, strconv.Itoa(size))
	}
	return params.Encode()
}

// --- HTTP helpers ---

type requestOption int

const withoutAuth requestOption = iota + 1

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, opts ...requestOption) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	anonymous := false
	for _, o := range opts {
		if o == withoutAuth {
			anonymous = true
		}
	}
	if !anonymous && c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(method, req.URL.Path, 0, time.Since(start))
		c.log.Debug().Err(err).Str("request_id", reqID).Str("method", method).Str("path", req.URL.Path).Msg("request failed")
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	elapsed := time.Since(start)
	metrics.ObserveRequest(method, req.URL.Path, resp.StatusCode, elapsed)
	c.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("request")

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return newHTTPError(resp.StatusCode, respBody)
	}

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
