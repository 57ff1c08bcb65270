package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/naveenspark/bookshelf/internal/metrics"
	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/pkg/client"
)

// Expirer is the part of Store the middleware needs.
type Expirer interface {
	Expire() bool
}

// ExpiryTransport ends the session when the backend answers 401. Login calls
// are passed through, since a 401 there is a bad password rather than an
// expired session, and so are logout calls. The response is always returned
// unchanged.
type ExpiryTransport struct {
	Base      http.RoundTripper // http.DefaultTransport if nil
	Session   Expirer
	Navigator nav.Navigator
	Log       zerolog.Logger
}

func (t *ExpiryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	path := req.URL.Path
	switch {
	case strings.HasSuffix(path, client.LoginPath):
	case strings.HasSuffix(path, client.LogoutPath):
	case t.Session.Expire():
		metrics.SessionExpiredTotal.Inc()
		t.Log.Info().Str("path", path).Msg("session expired")
		if t.Navigator != nil {
			t.Navigator.Notify(nav.Notice{Kind: nav.NoticeSessionExpired, Text: nav.SessionExpiredText})
			t.Navigator.Navigate(nav.Home)
		}
	}
	return resp, nil
}

// Options configures New.
type Options struct {
	BaseURL   string
	Storage   Storage
	Navigator nav.Navigator
	Log       zerolog.Logger
	Transport http.RoundTripper // beneath the expiry middleware; http.DefaultTransport if nil
	Timeout   time.Duration     // client.DefaultTimeout if zero
}

// New wires a Store, its ExpiryTransport and an API client that authenticates
// with the store's token.
func New(opts Options) (*Store, *client.Client) {
	st := NewStore(nil, opts.Storage, opts.Navigator, opts.Log)
	rt := &ExpiryTransport{Base: opts.Transport, Session: st, Navigator: st.nav, Log: st.log}
	c := client.New(opts.BaseURL, st,
		client.WithTransport(rt),
		client.WithTimeout(opts.Timeout),
		client.WithLogger(opts.Log),
	)
	st.api = c
	return st, c
}
