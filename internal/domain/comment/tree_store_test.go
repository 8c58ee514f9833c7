package comment

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher blocks each fetch until the test releases it.
type gatedFetcher struct {
	calls   atomic.Int32
	started chan int
	gates   []chan []*Comment
}

func newGatedFetcher(n int) *gatedFetcher {
	f := &gatedFetcher{started: make(chan int, n)}
	for i := 0; i < n; i++ {
		f.gates = append(f.gates, make(chan []*Comment, 1))
	}
	return f
}

func (f *gatedFetcher) FetchComments(ctx context.Context, _ string) ([]*Comment, error) {
	i := int(f.calls.Add(1)) - 1
	f.started <- i
	return <-f.gates[i], nil
}

func TestTreeStore_ConcurrentLoadsCoalesce(t *testing.T) {
	fetcher := newGatedFetcher(2)
	store := NewTreeStore(fetcher, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, store.Load(context.Background(), "c1"))
	}()
	<-fetcher.started

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Load(context.Background(), "c1"))
		}()
	}
	time.Sleep(20 * time.Millisecond)
	fetcher.gates[0] <- []*Comment{node("a", "u1")}
	fetcher.gates[1] <- nil
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Len(t, store.Snapshot().Comments, 1)
}

func TestTreeStore_OlderResultNeverOverwritesNewer(t *testing.T) {
	fetcher := newGatedFetcher(2)
	store := NewTreeStore(fetcher, zerolog.Nop())

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		_ = store.Load(context.Background(), "c1")
	}()
	require.Equal(t, 0, <-fetcher.started)

	reloadDone := make(chan struct{})
	go func() {
		defer close(reloadDone)
		_ = store.Reload(context.Background())
	}()
	require.Equal(t, 1, <-fetcher.started)

	fetcher.gates[1] <- []*Comment{node("new", "u1"), node("post", "u1")}
	<-reloadDone
	fetcher.gates[0] <- []*Comment{node("old", "u1")}
	<-pollDone

	assert.Equal(t, []string{"new", "post"}, []string{store.Snapshot().Comments[0].ID, store.Snapshot().Comments[1].ID})
}

func TestTreeStore_ReplaceIgnoresOtherParent(t *testing.T) {
	store := NewTreeStore(newFakeBackend(), zerolog.Nop())
	require.NoError(t, store.Load(context.Background(), "c1"))

	var replaced int
	store.OnReplace(func(*Snapshot) { replaced++ })

	store.Replace("c2", []*Comment{node("x", "u1")})
	assert.Empty(t, store.Snapshot().Comments)

	store.Replace("c1", []*Comment{node("x", "u1")})
	assert.Len(t, store.Snapshot().Comments, 1)
	assert.Equal(t, "c1", store.Snapshot().ParentID)
	assert.Equal(t, 1, replaced)
}
