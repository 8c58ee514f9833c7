package message

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/chloeho97/arcana-front/internal/domain/comment"
	"github.com/chloeho97/arcana-front/internal/domain/session"
	"github.com/chloeho97/arcana-front/internal/infrastructure/metrics"
	"github.com/chloeho97/arcana-front/internal/infrastructure/observability"
	"github.com/chloeho97/arcana-front/internal/utils/flight"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
	"github.com/chloeho97/arcana-front/internal/worker"
)

// DateLayout formats date separators.
const DateLayout = "2006-01-02"

// ThreadBackend is the message API used by Stream.
type ThreadBackend interface {
	FetchThread(ctx context.Context, userID, otherID string) ([]Message, error)
	MarkRead(ctx context.Context, userID, otherID string) error
	SendMessage(ctx context.Context, senderID, receiverID, content string) error
	DeleteMessage(ctx context.Context, messageID, userID string) error
}

// StreamOptions tunes a Stream.
type StreamOptions struct {
	Interval  time.Duration
	MaxLength int
	// Location decides calendar days for date separators. Defaults to time.Local.
	Location *time.Location
}

// Entry is one rendered line of the thread.
type Entry struct {
	Message Message `json:"message"`
	// Separator is the date label shown above the message, empty when the
	// message is on the same day as the previous one.
	Separator string `json:"separator,omitempty"`
	Mine      bool   `json:"mine"`
	CanDelete bool   `json:"canDelete"`
}

// StreamView is the open thread as shown to the user.
type StreamView struct {
	CounterpartID string  `json:"counterpartId"`
	Entries       []Entry `json:"entries"`
	LoadFailed    bool    `json:"loadFailed"`
	Banner        string  `json:"banner,omitempty"`
	Draft         string  `json:"draft"`
}

// Stream is the message history between the session's user and one
// counterpart. Every fetch replaces the local list wholesale.
type Stream struct {
	api           ThreadBackend
	session       *session.Session
	counterpartID string
	validator     *comment.BodyValidator
	location      *time.Location
	flights       flight.Group
	poller        *worker.Poller
	log           zerolog.Logger

	mu             sync.RWMutex
	messages       []Message
	generation     uint64
	pendingDeletes map[string]struct{}
	draft          string
	loadErr        error
	banner         error
}

func NewStream(api ThreadBackend, sess *session.Session, counterpartID string, opts StreamOptions, log zerolog.Logger) *Stream {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	s := &Stream{
		api:            api,
		session:        sess,
		counterpartID:  counterpartID,
		validator:      comment.NewBodyValidator(opts.MaxLength, "message"),
		location:       opts.Location,
		log:            log.With().Str("component", "message-stream").Str("counterpart_id", counterpartID).Logger(),
		pendingDeletes: make(map[string]struct{}),
	}
	s.poller = worker.NewPoller("thread", opts.Interval, s.Refresh, log)
	return s
}

func (s *Stream) CounterpartID() string {
	return s.counterpartID
}

// Start begins polling the thread with one immediate fetch.
func (s *Stream) Start(ctx context.Context) bool {
	return s.poller.Start(ctx)
}

func (s *Stream) Stop() {
	s.poller.Stop()
}

// Refresh fetches the thread once. Overlapping calls share one fetch.
func (s *Stream) Refresh(ctx context.Context) error {
	if s.session.UserID() == "" {
		return errNotLoggedIn(ctx)
	}
	shared, err := s.flights.Do(ctx, s.resourceKey(), s.fetch)
	if shared {
		metrics.RecordCoalesced("thread")
	}
	return err
}

func (s *Stream) fetch(ctx context.Context, seq uint64) error {
	key := s.resourceKey()
	ctx, span := observability.StartPollSpan(ctx, "thread", key)
	defer span.End()

	me := s.session.UserID()
	messages, err := s.api.FetchThread(ctx, me, s.counterpartID)
	if err != nil {
		observability.RecordError(span, err)
		s.flights.Commit(key, seq, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.loadErr = err
		})
		s.log.Warn().Err(err).Msg("fetch thread")
		return err
	}

	hasUnread := slices.ContainsFunc(messages, func(m Message) bool { return m.UnreadFor(me) })
	committed := s.flights.Commit(key, seq, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.messages = slices.DeleteFunc(messages, func(m Message) bool {
			_, pending := s.pendingDeletes[m.ID]
			return pending
		})
		s.generation++
		s.loadErr = nil
	})
	if !committed {
		metrics.RecordStaleResult("thread")
		observability.AddStaleResultEvent(span, seq)
		return nil
	}

	if hasUnread {
		if err := s.api.MarkRead(ctx, me, s.counterpartID); err != nil {
			s.log.Warn().Err(err).Msg("mark thread read")
		}
	}
	return nil
}

// Send posts content to the counterpart and refetches right away so the new
// message shows without waiting for the next tick.
func (s *Stream) Send(ctx context.Context, content string) error {
	ctx, span := observability.StartMutationSpan(ctx, "send_message", s.counterpartID)
	defer span.End()

	body, err := s.validator.Check(ctx, content)
	if err != nil {
		return s.fail(span, "send_message", err)
	}
	if s.session.UserID() == "" {
		return s.fail(span, "send_message", errNotLoggedIn(ctx))
	}

	if err := s.api.SendMessage(ctx, s.session.UserID(), s.counterpartID, body); err != nil {
		return s.fail(span, "send_message", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "send message"))
	}

	s.mu.Lock()
	s.draft = ""
	s.banner = nil
	s.mu.Unlock()
	metrics.RecordMessageMutation("send_message", "success")

	err = s.flights.DoFresh(ctx, s.resourceKey(), s.fetch)
	if err != nil {
		s.log.Warn().Err(err).Msg("refresh after send")
	}
	return nil
}

// Delete removes the message from the list before the server is asked. If
// the server refuses, the message is put back where it was and the banner is
// set. Only the sender may delete a message.
func (s *Stream) Delete(ctx context.Context, messageID string) error {
	ctx, span := observability.StartMutationSpan(ctx, "delete_message", messageID)
	defer span.End()

	me := s.session.UserID()
	if me == "" {
		return s.fail(span, "delete_message", errNotLoggedIn(ctx))
	}

	s.mu.Lock()
	index := slices.IndexFunc(s.messages, func(m Message) bool { return m.ID == messageID })
	if index < 0 {
		s.mu.Unlock()
		return s.fail(span, "delete_message", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"message not found", nil, "3e9a6c14-7f2b-4d85-a0c9-52b8e1d7f604"))
	}
	removed := s.messages[index]
	if removed.SenderID != me {
		s.mu.Unlock()
		return s.fail(span, "delete_message", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"only the sender can delete a message", nil, "b72d0f58-1c4e-4a93-8e6f-09a3d5c7b1e2"))
	}
	s.messages = slices.Delete(slices.Clone(s.messages), index, index+1)
	s.pendingDeletes[messageID] = struct{}{}
	generation := s.generation
	s.mu.Unlock()

	err := s.api.DeleteMessage(ctx, messageID, me)

	s.mu.Lock()
	delete(s.pendingDeletes, messageID)
	if err == nil {
		s.banner = nil
		s.mu.Unlock()
		metrics.RecordMessageMutation("delete_message", "success")
		return nil
	}
	s.restoreLocked(removed, index, generation)
	s.mu.Unlock()

	metrics.RecordRollback()
	return s.fail(span, "delete_message", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete message"))
}

// restoreLocked puts a message back after a failed delete: at its old index
// if the list was not replaced meanwhile, otherwise in time order.
func (s *Stream) restoreLocked(m Message, index int, generation uint64) {
	if slices.ContainsFunc(s.messages, func(x Message) bool { return x.ID == m.ID }) {
		return
	}
	if generation != s.generation {
		index = slices.IndexFunc(s.messages, func(x Message) bool { return x.CreatedAt.After(m.CreatedAt) })
		if index < 0 {
			index = len(s.messages)
		}
	}
	index = min(index, len(s.messages))
	s.messages = slices.Insert(slices.Clone(s.messages), index, m)
}

// Messages returns a copy of the current list.
func (s *Stream) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

// Timeline renders the thread with a date separator above the first message
// and above every message on a different calendar day than its predecessor.
func (s *Stream) Timeline() []Entry {
	s.mu.RLock()
	messages := slices.Clone(s.messages)
	s.mu.RUnlock()
	return BuildTimeline(messages, s.session.UserID(), s.location)
}

// BuildTimeline is the pure form of Stream.Timeline.
func BuildTimeline(messages []Message, me string, loc *time.Location) []Entry {
	if loc == nil {
		loc = time.Local
	}
	entries := make([]Entry, len(messages))
	for i, m := range messages {
		mine := me != "" && m.SenderID == me
		entries[i] = Entry{Message: m, Mine: mine, CanDelete: mine}
		if i == 0 || !sameDay(m.CreatedAt, messages[i-1].CreatedAt, loc) {
			entries[i].Separator = m.CreatedAt.In(loc).Format(DateLayout)
		}
	}
	return entries
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func (s *Stream) SetDraft(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = content
}

func (s *Stream) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *Stream) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

func (s *Stream) Banner() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banner
}

func (s *Stream) View() StreamView {
	entries := s.Timeline()

	s.mu.RLock()
	defer s.mu.RUnlock()
	view := StreamView{
		CounterpartID: s.counterpartID,
		Entries:       entries,
		LoadFailed:    s.loadErr != nil,
		Draft:         s.draft,
	}
	if s.banner != nil {
		view.Banner = platformerrors.UserMessage(s.banner)
	}
	return view
}

func (s *Stream) fail(span trace.Span, operation string, err error) error {
	observability.RecordError(span, err)
	s.mu.Lock()
	s.banner = err
	s.mu.Unlock()
	metrics.RecordMessageMutation(operation, "error")
	s.log.Warn().Err(err).Str("operation", operation).Msg("message action failed")
	return err
}

func (s *Stream) resourceKey() string {
	return "thread:" + s.session.UserID() + ":" + s.counterpartID
}
