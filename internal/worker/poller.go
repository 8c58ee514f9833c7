package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/infrastructure/metrics"
)

// Task is one poll cycle.
type Task func(ctx context.Context) error

// Poller runs a Task once immediately and then on every tick until stopped.
// A stopped Poller can be started again; the restart re-seeds an immediate run.
type Poller struct {
	name     string
	interval time.Duration
	task     Task
	log      zerolog.Logger

	mu       sync.Mutex
	stopChan chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPoller creates a poller named name. The name labels logs and metrics.
func NewPoller(name string, interval time.Duration, task Task, log zerolog.Logger) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		task:     task,
		log:      log.With().Str("component", "poller").Str("poller", name).Logger(),
	}
}

// Start launches the poll loop in the background. It returns false if the
// poller is already running.
func (p *Poller) Start(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopChan != nil {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	stopChan := make(chan struct{})
	done := make(chan struct{})
	p.stopChan, p.cancel, p.done = stopChan, cancel, done

	go func() {
		defer close(done)
		p.run(runCtx, stopChan)
	}()
	return true
}

// Stop ends the loop, cancels an in-flight cycle and waits for it to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	stopChan, cancel, done := p.stopChan, p.cancel, p.done
	p.stopChan, p.cancel, p.done = nil, nil, nil
	p.mu.Unlock()

	if stopChan == nil {
		return
	}
	close(stopChan)
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopChan != nil
}

func (p *Poller) run(ctx context.Context, stopChan <-chan struct{}) {
	p.log.Debug().Dur("interval", p.interval).Msg("poller started")

	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug().Msg("poller stopped by context")
			return
		case <-stopChan:
			p.log.Debug().Msg("poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	err := p.task(ctx)
	if ctx.Err() != nil {
		return
	}
	metrics.RecordPollCycle(p.name, metrics.Status(err))
	if err != nil {
		p.log.Debug().Err(err).Msg("poll cycle failed")
	}
}
