package message

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/domain/session"
	"github.com/chloeho97/arcana-front/internal/infrastructure/metrics"
	"github.com/chloeho97/arcana-front/internal/infrastructure/observability"
	"github.com/chloeho97/arcana-front/internal/utils/flight"
	"github.com/chloeho97/arcana-front/internal/worker"
)

const (
	// DefaultBadgeCap is the largest total shown before the label becomes "N+".
	DefaultBadgeCap = 9
	// DefaultNotificationTTL is how long a new-message notification stays visible.
	DefaultNotificationTTL = 5 * time.Second
)

// UnreadBackend is the API used by UnreadBadge.
type UnreadBackend interface {
	UnreadTotal(ctx context.Context, userID string) (*UnreadTotal, error)
	UserByID(ctx context.Context, userID string) (*session.User, error)
}

// BadgeOptions tunes an UnreadBadge.
type BadgeOptions struct {
	Interval        time.Duration
	Cap             int
	NotificationTTL time.Duration
}

// Notification announces the latest unread message.
type Notification struct {
	MessageID string    `json:"messageId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// BadgeView is the badge as shown in the header.
type BadgeView struct {
	Total        int           `json:"total"`
	Label        string        `json:"label"`
	Notification *Notification `json:"notification,omitempty"`
	LoadFailed   bool          `json:"loadFailed"`
}

// UnreadBadge polls the sitewide unread total of the session's user and
// raises a short-lived notification when a new unread message shows up.
type UnreadBadge struct {
	api     UnreadBackend
	session *session.Session
	opts    BadgeOptions
	flights flight.Group
	poller  *worker.Poller
	now     func() time.Time
	log     zerolog.Logger

	mu           sync.RWMutex
	total        int
	lastNotified string
	notification *Notification
	loadErr      error
}

func NewUnreadBadge(api UnreadBackend, sess *session.Session, opts BadgeOptions, log zerolog.Logger) *UnreadBadge {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Cap <= 0 {
		opts.Cap = DefaultBadgeCap
	}
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = DefaultNotificationTTL
	}
	b := &UnreadBadge{
		api:     api,
		session: sess,
		opts:    opts,
		now:     time.Now,
		log:     log.With().Str("component", "unread-badge").Logger(),
	}
	b.poller = worker.NewPoller("unread", opts.Interval, b.Refresh, log)
	return b
}

func (b *UnreadBadge) Start(ctx context.Context) bool {
	return b.poller.Start(ctx)
}

func (b *UnreadBadge) Stop() {
	b.poller.Stop()
}

// Refresh fetches the unread total once.
func (b *UnreadBadge) Refresh(ctx context.Context) error {
	if b.session.UserID() == "" {
		return errNotLoggedIn(ctx)
	}
	shared, err := b.flights.Do(ctx, b.resourceKey(), b.fetch)
	if shared {
		metrics.RecordCoalesced("unread")
	}
	return err
}

func (b *UnreadBadge) fetch(ctx context.Context, seq uint64) error {
	key := b.resourceKey()
	ctx, span := observability.StartPollSpan(ctx, "unread", key)
	defer span.End()

	me := b.session.UserID()
	summary, err := b.api.UnreadTotal(ctx, me)
	if err != nil {
		observability.RecordError(span, err)
		b.flights.Commit(key, seq, func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.loadErr = err
		})
		b.log.Warn().Err(err).Msg("poll unread total")
		return err
	}

	var announce *Message
	committed := b.flights.Commit(key, seq, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.total = summary.Total
		b.loadErr = nil
		last := summary.LastMessage
		if last != nil && last.ID != b.lastNotified && last.SenderID != me {
			b.lastNotified = last.ID
			announce = last
		}
	})
	if !committed {
		metrics.RecordStaleResult("unread")
		observability.AddStaleResultEvent(span, seq)
		return nil
	}
	metrics.SetUnreadTotal(summary.Total)

	if announce != nil {
		b.notify(ctx, announce)
	}
	return nil
}

// notify looks up the sender's name. A failed lookup only costs the
// notification.
func (b *UnreadBadge) notify(ctx context.Context, m *Message) {
	sender, err := b.api.UserByID(ctx, m.SenderID)
	if err != nil {
		b.log.Warn().Err(err).Str("sender_id", m.SenderID).Msg("resolve notification sender")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.notification = &Notification{
		MessageID: m.ID,
		SenderID:  m.SenderID,
		Text:      "New message from " + sender.Username,
		ExpiresAt: b.now().Add(b.opts.NotificationTTL),
	}
}

func (b *UnreadBadge) Total() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}

// Label is the capped badge text, e.g. "9+".
func (b *UnreadBadge) Label() string {
	return BadgeLabel(b.Total(), b.opts.Cap)
}

// Notification returns the visible notification, or nil once it expired.
func (b *UnreadBadge) Notification() *Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.notification == nil || !b.now().Before(b.notification.ExpiresAt) {
		return nil
	}
	n := *b.notification
	return &n
}

// Dismiss hides the current notification.
func (b *UnreadBadge) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notification = nil
}

func (b *UnreadBadge) View() BadgeView {
	notification := b.Notification()

	b.mu.RLock()
	defer b.mu.RUnlock()
	return BadgeView{
		Total:        b.total,
		Label:        BadgeLabel(b.total, b.opts.Cap),
		Notification: notification,
		LoadFailed:   b.loadErr != nil,
	}
}

func (b *UnreadBadge) resourceKey() string {
	return "unread:" + b.session.UserID()
}
