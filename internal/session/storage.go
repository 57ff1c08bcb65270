package session

import (
	"context"
	"maps"
	"sync"
)

// Persisted keys. They are always written and removed together.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserID       = "userId"
	KeyUsername     = "username"
)

// Storage persists the session record as a flat string map. Load returns an
// empty map (not an error) when nothing is stored.
type Storage interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// Record is the persisted form of a session.
type Record struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Username     string
}

// Values returns the record as the key/value group that is written to storage.
func (r Record) Values() map[string]string {
	return map[string]string{
		KeyAccessToken:  r.AccessToken,
		KeyRefreshToken: r.RefreshToken,
		KeyUserID:       r.UserID,
		KeyUsername:     r.Username,
	}
}

// Decode turns stored values into a Record. It fails closed: ok is false
// when the access or refresh token is missing, empty, or one of the
// placeholder strings "undefined" and "null" that a broken writer can leave
// behind. Placeholder identity fields decode as empty.
func Decode(values map[string]string) (rec Record, ok bool) {
	rec = Record{
		AccessToken:  clean(values[KeyAccessToken]),
		RefreshToken: clean(values[KeyRefreshToken]),
		UserID:       clean(values[KeyUserID]),
		Username:     clean(values[KeyUsername]),
	}
	if rec.AccessToken == "" || rec.RefreshToken == "" {
		return Record{}, false
	}
	return rec, true
}

func clean(v string) string {
	switch v {
	case "undefined", "null":
		return ""
	}
	return v
}

// MemoryStorage keeps the record in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns a MemoryStorage seeded with values, which may be nil.
func NewMemoryStorage(values map[string]string) *MemoryStorage {
	return &MemoryStorage{values: maps.Clone(values)}
}

func (m *MemoryStorage) Load(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := maps.Clone(m.values)
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

func (m *MemoryStorage) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = rec.Values()
	return nil
}

func (m *MemoryStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = nil
	return nil
}
