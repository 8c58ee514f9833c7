package message

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/domain/session"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
)

// ThreadSwitcher holds the Stream of the open conversation. Opening another
// counterpart stops the current Stream and polls a new one, so drafts, banners
// and pending deletes never leak between conversations.
type ThreadSwitcher struct {
	api     ThreadBackend
	session *session.Session
	opts    StreamOptions
	log     zerolog.Logger

	mu      sync.Mutex
	running bool
	runCtx  context.Context
	stream  *Stream
}

func NewThreadSwitcher(api ThreadBackend, sess *session.Session, opts StreamOptions, log zerolog.Logger) *ThreadSwitcher {
	return &ThreadSwitcher{
		api:     api,
		session: sess,
		opts:    opts,
		log:     log,
	}
}

// Start begins polling the open conversation, if any, and every conversation
// opened until Stop.
func (w *ThreadSwitcher) Start(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return false
	}
	w.running, w.runCtx = true, ctx
	if w.stream != nil {
		w.stream.Start(ctx)
	}
	return true
}

func (w *ThreadSwitcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running, w.runCtx = false, nil
	if w.stream != nil {
		w.stream.Stop()
	}
}

// Open makes counterpartID the open conversation. Opening the one already
// open is a no-op; an empty id closes the thread.
func (w *ThreadSwitcher) Open(counterpartID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stream != nil {
		if w.stream.CounterpartID() == counterpartID {
			return
		}
		w.stream.Stop()
		w.stream = nil
	}
	if counterpartID == "" {
		return
	}

	w.stream = NewStream(w.api, w.session, counterpartID, w.opts, w.log)
	if w.running {
		w.stream.Start(w.runCtx)
	}
	w.log.Debug().Str("counterpart_id", counterpartID).Msg("conversation opened")
}

// Current returns the open Stream, nil when no conversation is open.
func (w *ThreadSwitcher) Current() *Stream {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stream
}

// View returns the open thread, or an empty view when none is open.
func (w *ThreadSwitcher) View() StreamView {
	if s := w.Current(); s != nil {
		return s.View()
	}
	return StreamView{Entries: []Entry{}}
}

func (w *ThreadSwitcher) Send(ctx context.Context, content string) error {
	s, err := w.open(ctx)
	if err != nil {
		return err
	}
	return s.Send(ctx, content)
}

func (w *ThreadSwitcher) Delete(ctx context.Context, messageID string) error {
	s, err := w.open(ctx)
	if err != nil {
		return err
	}
	return s.Delete(ctx, messageID)
}

func (w *ThreadSwitcher) SetDraft(ctx context.Context, content string) error {
	s, err := w.open(ctx)
	if err != nil {
		return err
	}
	s.SetDraft(content)
	return nil
}

func (w *ThreadSwitcher) open(ctx context.Context) (*Stream, error) {
	if s := w.Current(); s != nil {
		return s, nil
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
		"no conversation is open", nil, "5c1e8a37-2f94-4b6d-a0d3-9e7b4f16c285")
}
