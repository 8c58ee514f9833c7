// Package flight de-duplicates fetches keyed by resource id and makes sure a
// slow, older fetch can never overwrite the result of a newer one.
package flight

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Func performs one fetch. seq identifies the fetch within its key and must be
// handed to Commit together with the result.
type Func func(ctx context.Context, seq uint64) error

// Group coalesces concurrent fetches of the same key and orders their commits.
// The zero value is ready to use.
type Group struct {
	sf singleflight.Group

	mu      sync.Mutex
	issued  map[string]uint64
	applied map[string]uint64
}

// Do runs fn for key. If a fetch for key is already in flight the caller waits
// for it and shares its error instead of starting another one; shared reports
// whether that happened. The caller that ran fn always gets shared == false.
func (g *Group) Do(ctx context.Context, key string, fn Func) (shared bool, err error) {
	led := false
	_, err, _ = g.sf.Do(key, func() (any, error) {
		led = true
		return nil, fn(ctx, g.issue(key))
	})
	return !led, err
}

// DoFresh always starts a new fetch, even when one is in flight for key. It is
// used after a confirmed write: an in-flight fetch may have been issued before
// the write and would not observe it. Because the fresh fetch gets a newer
// sequence number, the older one is dropped at Commit if it finishes later.
func (g *Group) DoFresh(ctx context.Context, key string, fn Func) error {
	return fn(ctx, g.issue(key))
}

// Commit calls apply if seq is newer than every sequence already committed for
// key and reports whether it did. apply runs under the group lock and must not
// call back into the group.
func (g *Group) Commit(key string, seq uint64, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if seq <= g.applied[key] {
		return false
	}
	if g.applied == nil {
		g.applied = make(map[string]uint64)
	}
	g.applied[key] = seq
	apply()
	return true
}

// CommitLocal applies a local change to key's state under a fresh sequence
// number. Fetches issued before the call are dropped when they try to commit,
// so a poll that started before a confirmed delete cannot bring the deleted
// item back.
func (g *Group) CommitLocal(key string, apply func()) {
	g.Commit(key, g.issue(key), apply)
}

func (g *Group) issue(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.issued == nil {
		g.issued = make(map[string]uint64)
	}
	g.issued[key]++
	return g.issued[key]
}
