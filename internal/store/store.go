// Package store holds the feature stores behind the screens: the book
// catalog, comments, AI recommendations and the my-page lists. Each store
// issues one backend call per operation and replaces its state with the
// result. Reads log and swallow errors; writes return them.
package store

import (
	"sync"
	"sync/atomic"
)

// inflight counts running operations. The loading flag is true while any
// operation is running, so overlapping calls never clear each other's flag.
type inflight struct {
	n atomic.Int32
}

// begin marks an operation as started and returns its release func.
func (f *inflight) begin() func() {
	f.n.Add(1)
	var once sync.Once
	return func() { once.Do(func() { f.n.Add(-1) }) }
}

func (f *inflight) active() bool { return f.n.Load() > 0 }

// sequence stamps requests so that only the latest response is applied.
// Callers compare stamps under their own state lock.
type sequence struct {
	last atomic.Uint64
}

func (s *sequence) next() uint64 { return s.last.Add(1) }

func (s *sequence) latest(id uint64) bool { return s.last.Load() == id }
