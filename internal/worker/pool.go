package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Runnable is anything with a background loop that can be started and stopped.
type Runnable interface {
	Start(ctx context.Context) bool
	Stop()
}

// Pool starts and stops a set of pollers together.
type Pool struct {
	members []Runnable
	log     zerolog.Logger
}

// NewPool creates a pool of the given members. Nil members are skipped.
func NewPool(log zerolog.Logger, members ...Runnable) *Pool {
	p := &Pool{log: log.With().Str("component", "poller-pool").Logger()}
	for _, m := range members {
		if m != nil {
			p.members = append(p.members, m)
		}
	}
	return p
}

// Add registers another member. It must be called before Start.
func (p *Pool) Add(m Runnable) {
	if m != nil {
		p.members = append(p.members, m)
	}
}

func (p *Pool) Len() int {
	return len(p.members)
}

// Start launches every member.
func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("poller_count", len(p.members)).Msg("starting pollers")
	for _, m := range p.members {
		m.Start(ctx)
	}
}

// Stop stops all members concurrently and waits for every loop to exit.
func (p *Pool) Stop() {
	p.log.Info().Msg("stopping pollers")

	var wg sync.WaitGroup
	for _, m := range p.members {
		wg.Add(1)
		go func(m Runnable) {
			defer wg.Done()
			m.Stop()
		}(m)
	}
	wg.Wait()

	p.log.Info().Msg("all pollers stopped")
}
