// Package session owns the authentication lifecycle: the in-memory session,
// its persisted record, and the middleware that ends the session when the
// backend rejects its token.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

// ErrNotAuthenticated is returned by operations that need a live session.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// ErrSuperseded is returned by Login when the session was cleared or
// replaced while the login was in flight.
var ErrSuperseded = errors.New("session: superseded by a concurrent change")

// storageTimeout bounds storage calls made from methods without a context.
const storageTimeout = 5 * time.Second

// Session is the observable session state.
type Session struct {
	AccessToken   string
	RefreshToken  string
	UserID        string
	Username      string
	Authenticated bool
	ExpiresAt     time.Time // zero when the token carries no exp claim
}

func (s Session) record() Record {
	return Record{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserID:       s.UserID,
		Username:     s.Username,
	}
}

// AuthAPI is the slice of the backend the session needs.
type AuthAPI interface {
	Register(ctx context.Context, req domain.RegisterRequest) error
	Login(ctx context.Context, creds domain.Credentials) (*domain.TokenPair, error)
	Me(ctx context.Context) (*domain.User, error)
	UpdateMe(ctx context.Context, upd domain.ProfileUpdate) (*domain.User, error)
	Logout(ctx context.Context, refresh string) error
	DeleteAccount(ctx context.Context, password string) error
}

// Store is the single owner of session state. All mutation happens under mu,
// and every change to the persisted record writes or removes all four keys.
type Store struct {
	mu    sync.Mutex
	state Session
	gen   uint64 // bumped on every clear

	api     AuthAPI
	storage Storage
	nav     nav.Navigator
	log     zerolog.Logger
	now     func() time.Time
}

// NewStore creates a Store. Call Initialize before use.
func NewStore(api AuthAPI, storage Storage, navigator nav.Navigator, log zerolog.Logger) *Store {
	if navigator == nil {
		navigator = nav.Discard
	}
	return &Store{
		api:     api,
		storage: storage,
		nav:     navigator,
		log:     log.With().Str("component", "session").Logger(),
		now:     time.Now,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether the session is logged in.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Authenticated
}

// AccessToken implements client.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

// Initialize restores a persisted session. A record that does not decode, or
// whose token has visibly expired, is cleared without contacting the
// backend. Otherwise the session is marked authenticated straight away and
// then confirmed with the backend; any confirmation failure clears it. A 401
// there goes through the expiry middleware like any other request, so the
// user sees the expiry notice.
func (s *Store) Initialize(ctx context.Context) {
	values, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored session unreadable, clearing")
		s.Clear()
		return
	}
	rec, ok := Decode(values)
	if !ok {
		s.Clear()
		return
	}
	exp, hasExp := tokenExpiry(rec.AccessToken)
	if hasExp && !exp.After(s.now()) {
		s.log.Info().Time("expired_at", exp).Msg("stored token expired, clearing")
		s.Clear()
		return
	}

	s.mu.Lock()
	s.state = Session{
		AccessToken:   rec.AccessToken,
		RefreshToken:  rec.RefreshToken,
		UserID:        rec.UserID,
		Username:      rec.Username,
		Authenticated: true,
	}
	if hasExp {
		s.state.ExpiresAt = exp
	}
	gen := s.gen
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored token rejected, clearing")
		s.clearIfCurrent(gen)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.applyUserLocked(user)
	if err := s.persistLocked(ctx); err != nil {
		s.log.Warn().Err(err).Msg("persist session")
	}
}

// Login exchanges credentials for tokens, confirms the identity they belong
// to, then persists the session. On any failure the session is cleared and
// the error returned unchanged in kind: *client.HTTPError for server
// rejections (payload included), a transport error otherwise.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) (*domain.TokenPair, error) {
	if err := domain.Validate(creds); err != nil {
		return nil, fmt.Errorf("session.Login: %w", err)
	}

	pair, err := s.api.Login(ctx, creds)
	if err != nil {
		s.Clear()
		return nil, fmt.Errorf("session.Login: %w", err)
	}

	s.mu.Lock()
	s.state = Session{AccessToken: pair.Access, RefreshToken: pair.Refresh}
	if exp, ok := tokenExpiry(pair.Access); ok {
		s.state.ExpiresAt = exp
	}
	gen := s.gen
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		s.clearIfCurrent(gen)
		return nil, fmt.Errorf("session.Login: confirm identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.state.AccessToken != pair.Access {
		return nil, fmt.Errorf("session.Login: %w", ErrSuperseded)
	}
	s.applyUserLocked(user)
	s.state.Authenticated = true
	if err := s.persistLocked(ctx); err != nil {
		s.clearLocked()
		return nil, fmt.Errorf("session.Login: %w", err)
	}
	s.log.Info().Str("username", s.state.Username).Msg("logged in")
	return pair, nil
}

// Register creates the account and then logs in with the same credentials.
func (s *Store) Register(ctx context.Context, req domain.RegisterRequest) (*domain.TokenPair, error) {
	if err := domain.Validate(req); err != nil {
		return nil, fmt.Errorf("session.Register: %w", err)
	}
	if err := s.api.Register(ctx, req); err != nil {
		s.Clear()
		return nil, fmt.Errorf("session.Register: %w", err)
	}
	return s.Login(ctx, req.Credentials())
}

// Logout tells the backend to revoke the refresh token, then clears the
// session and navigates home regardless of the outcome.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	access, refresh := s.state.AccessToken, s.state.RefreshToken
	s.mu.Unlock()

	if access != "" {
		if err := s.api.Logout(ctx, refresh); err != nil {
			s.log.Warn().Err(err).Msg("logout request failed, clearing anyway")
		}
	}
	s.Clear()
	s.nav.Navigate(nav.Home)
}

// DeleteAccount removes the account. On failure the session is left as it
// was and the server error returned.
func (s *Store) DeleteAccount(ctx context.Context, password string) error {
	if !s.IsAuthenticated() {
		return fmt.Errorf("session.DeleteAccount: %w", ErrNotAuthenticated)
	}
	if password == "" {
		return fmt.Errorf("session.DeleteAccount: %w", &domain.ValidationError{Fields: []string{"password is required"}})
	}
	if err := s.api.DeleteAccount(ctx, password); err != nil {
		return fmt.Errorf("session.DeleteAccount: %w", err)
	}
	s.Clear()
	s.nav.Navigate(nav.Home)
	s.log.Info().Msg("account deleted")
	return nil
}

// UpdateProfile changes username or email and refreshes the stored identity.
func (s *Store) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (*domain.User, error) {
	if !s.IsAuthenticated() {
		return nil, fmt.Errorf("session.UpdateProfile: %w", ErrNotAuthenticated)
	}
	if err := domain.Validate(upd); err != nil {
		return nil, fmt.Errorf("session.UpdateProfile: %w", err)
	}
	user, err := s.api.UpdateMe(ctx, upd)
	if err != nil {
		return nil, fmt.Errorf("session.UpdateProfile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Authenticated {
		return user, nil
	}
	s.applyUserLocked(user)
	if err := s.persistLocked(ctx); err != nil {
		return user, fmt.Errorf("session.UpdateProfile: %w", err)
	}
	return user, nil
}

// Clear zeroes the session and removes every persisted key. Calling it again
// is a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Expire clears an authenticated session and reports true. It reports false
// when the session was already logged out, so among concurrent callers only
// one sees true.
func (s *Store) Expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Authenticated {
		return false
	}
	s.clearLocked()
	return true
}

func (s *Store) clearIfCurrent(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.clearLocked()
	}
}

func (s *Store) clearLocked() {
	s.state = Session{}
	s.gen++
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("clear stored session")
	}
}

func (s *Store) applyUserLocked(u *domain.User) {
	if u == nil {
		return
	}
	if u.ID != 0 {
		s.state.UserID = strconv.Itoa(u.ID)
	}
	if u.Username != "" {
		s.state.Username = u.Username
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	return s.storage.Save(context.WithoutCancel(ctx), s.state.record())
}
