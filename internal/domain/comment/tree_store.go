package comment

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/infrastructure/metrics"
	"github.com/chloeho97/arcana-front/internal/infrastructure/observability"
	"github.com/chloeho97/arcana-front/internal/utils/flight"
)

// Fetcher loads the pre-assembled comment tree of a collection.
type Fetcher interface {
	FetchComments(ctx context.Context, collectionID string) ([]*Comment, error)
}

// Snapshot is the tree as of one successful load. It is never mutated; a
// later load produces a new Snapshot.
type Snapshot struct {
	ParentID string
	Comments []*Comment
	LoadedAt time.Time
}

// TreeStore holds the last server-confirmed tree for one collection.
// A failed load keeps the previous tree and raises the error flag.
type TreeStore struct {
	fetcher   Fetcher
	flights   flight.Group
	log       zerolog.Logger
	onReplace func(*Snapshot)

	mu       sync.RWMutex
	parentID string
	snapshot *Snapshot
	loadErr  error
}

func NewTreeStore(fetcher Fetcher, log zerolog.Logger) *TreeStore {
	return &TreeStore{
		fetcher:  fetcher,
		log:      log.With().Str("component", "tree-store").Logger(),
		snapshot: &Snapshot{},
	}
}

// OnReplace registers a callback run after every successful swap.
func (s *TreeStore) OnReplace(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReplace = fn
}

// Load fetches the tree for parentID. Concurrent loads of the same parent share
// one request. Switching parent drops the previous parent's tree first.
func (s *TreeStore) Load(ctx context.Context, parentID string) error {
	s.switchParent(parentID)

	key := resourceKey(parentID)
	shared, err := s.flights.Do(ctx, key, func(ctx context.Context, seq uint64) error {
		return s.fetch(ctx, parentID, seq)
	})
	if shared {
		metrics.RecordCoalesced("comments")
	}
	return err
}

// Reload fetches the current parent's tree without joining an in-flight load,
// so the result reflects a write that just completed.
func (s *TreeStore) Reload(ctx context.Context) error {
	parentID := s.ParentID()
	return s.flights.DoFresh(ctx, resourceKey(parentID), func(ctx context.Context, seq uint64) error {
		return s.fetch(ctx, parentID, seq)
	})
}

// Replace swaps in tree for parentID. It is ignored if the store has moved on
// to another parent.
func (s *TreeStore) Replace(parentID string, tree []*Comment) {
	s.mu.Lock()
	if parentID != s.parentID {
		s.mu.Unlock()
		return
	}
	snapshot := s.replaceLocked(tree)
	onReplace := s.onReplace
	s.mu.Unlock()

	if onReplace != nil {
		onReplace(snapshot)
	}
}

// Snapshot returns the current tree. The same pointer is returned until the
// next successful load.
func (s *TreeStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Err returns the error of the most recent failed load, cleared by the next
// successful one.
func (s *TreeStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

func (s *TreeStore) ParentID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parentID
}

func (s *TreeStore) fetch(ctx context.Context, parentID string, seq uint64) error {
	ctx, span := observability.StartPollSpan(ctx, "comments", resourceKey(parentID))
	defer span.End()

	tree, err := s.fetcher.FetchComments(ctx, parentID)
	if err != nil {
		observability.RecordError(span, err)
		s.flights.Commit(resourceKey(parentID), seq, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if parentID == s.parentID {
				s.loadErr = err
			}
		})
		s.log.Warn().Err(err).Str("parent_id", parentID).Msg("load comment tree")
		return err
	}

	var snapshot *Snapshot
	var onReplace func(*Snapshot)
	committed := s.flights.Commit(resourceKey(parentID), seq, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if parentID != s.parentID {
			return
		}
		snapshot = s.replaceLocked(tree)
		onReplace = s.onReplace
	})
	if !committed {
		metrics.RecordStaleResult("comments")
		observability.AddStaleResultEvent(span, seq)
		return nil
	}

	if snapshot != nil && onReplace != nil {
		onReplace(snapshot)
	}
	return nil
}

func (s *TreeStore) replaceLocked(tree []*Comment) *Snapshot {
	s.snapshot = &Snapshot{
		ParentID: s.parentID,
		Comments: tree,
		LoadedAt: time.Now(),
	}
	s.loadErr = nil
	return s.snapshot
}

func (s *TreeStore) switchParent(parentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if parentID == s.parentID {
		return
	}
	s.parentID = parentID
	s.snapshot = &Snapshot{ParentID: parentID}
	s.loadErr = nil
}

func resourceKey(parentID string) string {
	return "comments:" + parentID
}
