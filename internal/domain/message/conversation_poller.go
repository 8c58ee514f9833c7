package message

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/chloeho97/arcana-front/internal/domain/session"
	"github.com/chloeho97/arcana-front/internal/infrastructure/metrics"
	"github.com/chloeho97/arcana-front/internal/infrastructure/observability"
	"github.com/chloeho97/arcana-front/internal/utils/flight"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
	"github.com/chloeho97/arcana-front/internal/worker"
)

// DefaultConcurrency bounds parallel last-message lookups per cycle.
const DefaultConcurrency = 8

// ConversationBackend is the conversation API used by ConversationPoller.
type ConversationBackend interface {
	ListConversations(ctx context.Context, userID string) ([]session.User, error)
	LastMessage(ctx context.Context, userID, otherID string) (*Message, error)
	UnreadCount(ctx context.Context, userID, otherID string) (int, error)
	MarkRead(ctx context.Context, userID, otherID string) error
	StartConversation(ctx context.Context, userID, otherID string) (*session.User, error)
	DeleteConversation(ctx context.Context, userID, otherID string) error
}

// PollerOptions tunes a ConversationPoller.
type PollerOptions struct {
	Interval    time.Duration
	Concurrency int
	// OnSelect is called with the newly selected counterpart whenever the
	// selection changes, and with "" when it is cleared.
	OnSelect func(counterpartID string)
}

// ConversationsView is the conversation list as shown to the user.
type ConversationsView struct {
	Conversations []Conversation `json:"conversations"`
	Unread        map[string]int `json:"unread"`
	Selected      string         `json:"selected,omitempty"`
	LoadFailed    bool           `json:"loadFailed"`
	Banner        string         `json:"banner,omitempty"`
}

// ConversationPoller keeps the conversation list of the session's user fresh.
// Each cycle costs one list request plus one last-message request per
// conversation, so it is meant for small lists.
type ConversationPoller struct {
	api         ConversationBackend
	session     *session.Session
	concurrency int
	onSelect    func(string)
	flights     flight.Group
	poller      *worker.Poller
	background  sync.WaitGroup
	log         zerolog.Logger

	mu            sync.RWMutex
	conversations []Conversation
	unread        map[string]int
	selected      string
	loadErr       error
	banner        error
}

func NewConversationPoller(api ConversationBackend, sess *session.Session, opts PollerOptions, log zerolog.Logger) *ConversationPoller {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	p := &ConversationPoller{
		api:         api,
		session:     sess,
		concurrency: opts.Concurrency,
		onSelect:    opts.OnSelect,
		log:         log.With().Str("component", "conversation-poller").Str("user_id", sess.UserID()).Logger(),
		unread:      make(map[string]int),
	}
	p.poller = worker.NewPoller("conversations", opts.Interval, p.Refresh, log)
	return p
}

// Start begins polling with one immediate fetch. Calling Start on a stopped
// poller resumes it.
func (p *ConversationPoller) Start(ctx context.Context) bool {
	return p.poller.Start(ctx)
}

// Stop ends polling and waits for outstanding background mark-read calls.
func (p *ConversationPoller) Stop() {
	p.poller.Stop()
	p.background.Wait()
}

// Refresh runs one poll cycle. Overlapping calls share one cycle. Failures
// keep the previous list and are only logged.
func (p *ConversationPoller) Refresh(ctx context.Context) error {
	if p.session.UserID() == "" {
		return errNotLoggedIn(ctx)
	}
	key := p.resourceKey()
	shared, err := p.flights.Do(ctx, key, p.poll)
	if shared {
		metrics.RecordCoalesced("conversations")
	}
	return err
}

func (p *ConversationPoller) poll(ctx context.Context, seq uint64) error {
	key := p.resourceKey()
	ctx, span := observability.StartPollSpan(ctx, "conversations", key)
	defer span.End()

	me := p.session.UserID()
	users, err := p.api.ListConversations(ctx, me)
	if err != nil {
		return p.pollFailed(span, seq, err)
	}

	conversations := p.seed(users)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range conversations {
		c := &conversations[i]
		g.Go(func() error {
			if err := p.transition(span, c, StatusFetchingLastMessage); err != nil {
				return err
			}
			last, err := p.api.LastMessage(gctx, me, c.User.ID)
			if err != nil {
				return err
			}
			c.settle(last, me)
			return p.transition(span, c, StatusSettled)
		})
	}
	if err := g.Wait(); err != nil {
		return p.pollFailed(span, seq, err)
	}
	SortConversations(conversations)

	unread := make(map[string]int)
	for _, c := range conversations {
		if !c.HasUnread {
			continue
		}
		count, err := p.api.UnreadCount(ctx, me, c.User.ID)
		if err != nil {
			return p.pollFailed(span, seq, err)
		}
		if count > 0 {
			unread[c.User.ID] = count
		}
	}

	committed := p.flights.Commit(key, seq, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.conversations = conversations
		p.unread = unread
		p.loadErr = nil
	})
	if !committed {
		metrics.RecordStaleResult("conversations")
		observability.AddStaleResultEvent(span, seq)
	}
	return nil
}

// seed builds this cycle's items, carrying each known conversation's status
// over from the previous cycle.
func (p *ConversationPoller) seed(users []session.User) []Conversation {
	p.mu.RLock()
	previous := make(map[string]Status, len(p.conversations))
	for _, c := range p.conversations {
		previous[c.User.ID] = c.Status
	}
	p.mu.RUnlock()

	conversations := make([]Conversation, len(users))
	for i, u := range users {
		status, ok := previous[u.ID]
		if !ok {
			status = StatusUnknown
		}
		conversations[i] = Conversation{User: u, Status: status}
	}
	return conversations
}

func (p *ConversationPoller) transition(span trace.Span, c *Conversation, to Status) error {
	next, err := c.Status.TransitionTo(to)
	if err != nil {
		return err
	}
	observability.AddStatusTransition(span, c.Status.String(), next.String())
	c.Status = next
	return nil
}

func (p *ConversationPoller) pollFailed(span trace.Span, seq uint64, err error) error {
	observability.RecordError(span, err)
	p.flights.Commit(p.resourceKey(), seq, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.loadErr = err
	})
	p.log.Warn().Err(err).Msg("poll conversations")
	return err
}

// Select makes counterpartID the open conversation and reports it to
// OnSelect. If it has unread messages, mark-read is sent in the background; a
// failure is logged and the next cycle recomputes the unread state from the
// server.
func (p *ConversationPoller) Select(ctx context.Context, counterpartID string) {
	p.mu.Lock()
	p.selected = counterpartID
	_, hasUnread := p.unread[counterpartID]
	p.mu.Unlock()
	p.notifySelect(counterpartID)

	if !hasUnread || p.session.UserID() == "" {
		return
	}

	me := p.session.UserID()
	bg := context.WithoutCancel(ctx)
	p.background.Add(1)
	go func() {
		defer p.background.Done()
		if err := p.api.MarkRead(bg, me, counterpartID); err != nil {
			p.log.Warn().Err(err).Str("counterpart_id", counterpartID).Msg("mark conversation read")
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.unread, counterpartID)
		for i := range p.conversations {
			if p.conversations[i].User.ID == counterpartID {
				p.conversations[i].HasUnread = false
			}
		}
	}()
}

// StartConversation opens (or creates) a conversation with otherID. The
// counterpart is put first in the list if it is new, and selected.
func (p *ConversationPoller) StartConversation(ctx context.Context, otherID string) (*session.User, error) {
	ctx, span := observability.StartMutationSpan(ctx, "start_conversation", otherID)
	defer span.End()

	if p.session.UserID() == "" {
		return nil, p.fail(span, "start_conversation", errNotLoggedIn(ctx))
	}
	user, err := p.api.StartConversation(ctx, p.session.UserID(), otherID)
	if err != nil {
		return nil, p.fail(span, "start_conversation", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "start conversation"))
	}

	p.flights.CommitLocal(p.resourceKey(), func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		exists := slices.ContainsFunc(p.conversations, func(c Conversation) bool { return c.User.ID == user.ID })
		if !exists {
			p.conversations = append([]Conversation{{User: *user, Status: StatusUnknown}}, p.conversations...)
		}
		p.selected = user.ID
		p.banner = nil
	})
	p.notifySelect(user.ID)

	metrics.RecordMessageMutation("start_conversation", "success")
	return user, nil
}

// DeleteConversation removes the conversation with otherID and clears the
// selection if it was open. A poll that was already running when the delete
// was confirmed is discarded.
func (p *ConversationPoller) DeleteConversation(ctx context.Context, otherID string) error {
	ctx, span := observability.StartMutationSpan(ctx, "delete_conversation", otherID)
	defer span.End()

	if p.session.UserID() == "" {
		return p.fail(span, "delete_conversation", errNotLoggedIn(ctx))
	}
	if err := p.api.DeleteConversation(ctx, p.session.UserID(), otherID); err != nil {
		return p.fail(span, "delete_conversation", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete conversation"))
	}

	cleared := false
	p.flights.CommitLocal(p.resourceKey(), func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.conversations = slices.DeleteFunc(slices.Clone(p.conversations), func(c Conversation) bool { return c.User.ID == otherID })
		delete(p.unread, otherID)
		if p.selected == otherID {
			p.selected = ""
			cleared = true
		}
		p.banner = nil
	})
	if cleared {
		p.notifySelect("")
	}

	metrics.RecordMessageMutation("delete_conversation", "success")
	return nil
}

// Conversations returns a copy of the sorted list.
func (p *ConversationPoller) Conversations() []Conversation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.conversations)
}

// UnreadCount returns the unread count of one conversation, zero if none.
func (p *ConversationPoller) UnreadCount(counterpartID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.unread[counterpartID]
}

func (p *ConversationPoller) Selected() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

func (p *ConversationPoller) LoadErr() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadErr
}

func (p *ConversationPoller) Banner() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.banner
}

func (p *ConversationPoller) View() ConversationsView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	unread := make(map[string]int, len(p.unread))
	for id, n := range p.unread {
		unread[id] = n
	}
	view := ConversationsView{
		Conversations: slices.Clone(p.conversations),
		Unread:        unread,
		Selected:      p.selected,
		LoadFailed:    p.loadErr != nil,
	}
	for i := range view.Conversations {
		view.Conversations[i].User.Avatar = AvatarOrDefault(view.Conversations[i].User.Avatar)
	}
	if p.banner != nil {
		view.Banner = platformerrors.UserMessage(p.banner)
	}
	return view
}

func (p *ConversationPoller) fail(span trace.Span, operation string, err error) error {
	observability.RecordError(span, err)
	p.mu.Lock()
	p.banner = err
	p.mu.Unlock()
	metrics.RecordMessageMutation(operation, "error")
	p.log.Warn().Err(err).Str("operation", operation).Msg("conversation action failed")
	return err
}

func (p *ConversationPoller) notifySelect(counterpartID string) {
	if p.onSelect != nil {
		p.onSelect(counterpartID)
	}
}

func (p *ConversationPoller) resourceKey() string {
	return "conversations:" + p.session.UserID()
}

func errNotLoggedIn(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
		"must be logged in", nil, "0d7b4f2e-91a6-4c38-b5e0-6f2a8c1d9e43")
}
