package comment

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/chloeho97/arcana-front/internal/domain/session"
	"github.com/chloeho97/arcana-front/internal/infrastructure/metrics"
	"github.com/chloeho97/arcana-front/internal/infrastructure/observability"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
)

// ErrDeleteNotConfirmed is returned when the caller declines a delete.
var ErrDeleteNotConfirmed = errors.New("delete not confirmed")

// Backend is the comment API used by Thread.
type Backend interface {
	Fetcher
	PostComment(ctx context.Context, collectionID, userID, content string) error
	PostReply(ctx context.Context, targetID, token, content string) error
	DeleteComment(ctx context.Context, commentID, token string) error
}

// ThreadOptions tunes limits of a Thread.
type ThreadOptions struct {
	MaxLength int
	MaxDepth  int
}

// ReplyForm is the open/closed state and draft of one reply target.
type ReplyForm struct {
	Open  bool
	Draft string
}

// View is everything a UI needs to draw the thread.
type View struct {
	CollectionID string
	Nodes        []Node
	Count        int
	LoadFailed   bool
	Banner       string
	Draft        string
	DraftHint    string
	ReplyForms   map[string]ReplyForm
}

// Thread owns the discussion of one collection: its store, expand state,
// count, drafts and the user-visible error banner.
type Thread struct {
	api       Backend
	session   *session.Session
	store     *TreeStore
	expand    *ExpandState
	counter   Counter
	validator *BodyValidator
	maxDepth  int
	log       zerolog.Logger

	mu           sync.Mutex
	collectionID string
	draft        string
	replyForms   map[string]*ReplyForm
	banner       error
}

func NewThread(api Backend, sess *session.Session, collectionID string, opts ThreadOptions, log zerolog.Logger) *Thread {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	t := &Thread{
		api:          api,
		session:      sess,
		store:        NewTreeStore(api, log),
		expand:       NewExpandState(),
		validator:    NewBodyValidator(opts.MaxLength, "comment"),
		maxDepth:     opts.MaxDepth,
		log:          log.With().Str("component", "comment-thread").Str("collection_id", collectionID).Logger(),
		collectionID: collectionID,
		replyForms:   make(map[string]*ReplyForm),
	}
	t.store.switchParent(collectionID)
	t.store.OnReplace(func(s *Snapshot) {
		t.counter.Set(TotalCount(s.Comments))
	})
	return t
}

// CollectionID returns the collection currently shown.
func (t *Thread) CollectionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.collectionID
}

// SetCollection switches to another collection. Expand state, drafts and
// forms never carry over.
func (t *Thread) SetCollection(collectionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if collectionID == t.collectionID {
		return
	}
	t.collectionID = collectionID
	t.draft = ""
	t.replyForms = make(map[string]*ReplyForm)
	t.banner = nil
	t.expand.Reset()
	t.counter.Set(0)
	t.store.switchParent(collectionID)
}

// Refresh is one poll of the tree. Failures are logged and flagged on the
// store, never put on the banner.
func (t *Thread) Refresh(ctx context.Context) error {
	err := t.store.Load(ctx, t.CollectionID())
	if err != nil {
		t.log.Warn().Err(err).Msg("refresh comments")
	}
	return err
}

// Toggle flips the expand state of a node.
func (t *Thread) Toggle(commentID string) bool {
	return t.expand.Toggle(commentID)
}

// PostComment validates body, posts it as a top-level comment and reloads.
func (t *Thread) PostComment(ctx context.Context, body string) error {
	ctx, span := observability.StartMutationSpan(ctx, "post_comment", t.CollectionID())
	defer span.End()

	content, err := t.validator.Check(ctx, body)
	if err != nil {
		return t.fail(span, "post_comment", err)
	}
	if !t.session.Authenticated() {
		return t.fail(span, "post_comment", errNotLoggedIn(ctx))
	}

	if err := t.api.PostComment(ctx, t.CollectionID(), t.session.UserID(), content); err != nil {
		return t.fail(span, "post_comment", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "post comment"))
	}

	t.counter.Add(1)
	t.mu.Lock()
	t.draft = ""
	t.mu.Unlock()
	t.succeed("post_comment")
	t.reload(ctx)
	return nil
}

// PostReply validates body and posts it as a reply to targetID, which may be
// a top-level comment or a first-level reply. Sub-replies take no replies.
func (t *Thread) PostReply(ctx context.Context, targetID, body string) error {
	ctx, span := observability.StartMutationSpan(ctx, "post_reply", targetID)
	defer span.End()

	content, err := t.validator.Check(ctx, body)
	if err != nil {
		return t.fail(span, "post_reply", err)
	}
	if !t.session.Authenticated() {
		return t.fail(span, "post_reply", errNotLoggedIn(ctx))
	}
	if depth := DepthOf(t.store.Snapshot().Comments, targetID); depth >= t.maxDepth-1 {
		return t.fail(span, "post_reply", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"Replies cannot be nested any deeper", nil, "e2b5c9d4-7a13-4f08-9c6e-1d4a8b3f5e70"))
	}

	if err := t.api.PostReply(ctx, targetID, t.session.Token, content); err != nil {
		return t.fail(span, "post_reply", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "post reply"))
	}

	t.counter.Add(1)
	t.mu.Lock()
	delete(t.replyForms, targetID)
	t.mu.Unlock()
	t.succeed("post_reply")
	t.reload(ctx)
	return nil
}

// DeleteComment asks confirm, checks ownership locally and deletes. The server
// re-checks authorization; a 401 or 403 from it is reported as an auth error.
func (t *Thread) DeleteComment(ctx context.Context, commentID string, confirm func() bool) error {
	ctx, span := observability.StartMutationSpan(ctx, "delete_comment", commentID)
	defer span.End()

	if confirm == nil || !confirm() {
		return ErrDeleteNotConfirmed
	}
	if !t.session.Authenticated() {
		return t.fail(span, "delete_comment", errNotLoggedIn(ctx))
	}

	target := Find(t.store.Snapshot().Comments, commentID)
	if target != nil && !t.session.CanModerate(target.Author.ID) {
		return t.fail(span, "delete_comment", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"not authorized to delete this comment", nil, "a61f0e3b-94d2-4c7a-b8e5-3d0c1f9a7e26"))
	}

	if err := t.api.DeleteComment(ctx, commentID, t.session.Token); err != nil {
		return t.fail(span, "delete_comment", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete comment"))
	}

	removed := 1
	if target != nil {
		removed += TotalCount(target.Replies)
	}
	t.counter.Add(-removed)
	t.mu.Lock()
	delete(t.replyForms, commentID)
	t.mu.Unlock()
	t.succeed("delete_comment")
	t.reload(ctx)
	return nil
}

// SetDraft stores the top-level comment draft.
func (t *Thread) SetDraft(body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = body
}

// OpenReplyForm opens the form for targetID with an empty draft.
func (t *Thread) OpenReplyForm(targetID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replyForms[targetID] = &ReplyForm{Open: true}
}

// CloseReplyForm closes the form for targetID and discards its draft.
func (t *Thread) CloseReplyForm(targetID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.replyForms, targetID)
}

// SetReplyDraft updates the draft of an open reply form.
func (t *Thread) SetReplyDraft(targetID, body string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	form, ok := t.replyForms[targetID]
	if !ok {
		form = &ReplyForm{Open: true}
		t.replyForms[targetID] = form
	}
	form.Draft = body
}

// ReplyForm returns the form state for targetID.
func (t *Thread) ReplyForm(targetID string) ReplyForm {
	t.mu.Lock()
	defer t.mu.Unlock()
	if form, ok := t.replyForms[targetID]; ok {
		return *form
	}
	return ReplyForm{}
}

// Banner returns the last user-action error, if any.
func (t *Thread) Banner() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.banner
}

// Count returns the denormalized comment total.
func (t *Thread) Count() int {
	return t.counter.Value()
}

// Snapshot returns the current tree snapshot.
func (t *Thread) Snapshot() *Snapshot {
	return t.store.Snapshot()
}

// LoadErr returns the error flag of the last tree load.
func (t *Thread) LoadErr() error {
	return t.store.Err()
}

// View renders the thread for the session's user.
func (t *Thread) View() View {
	snapshot := t.store.Snapshot()
	nodes := Render(snapshot.Comments, t.expand, RenderOptions{MaxDepth: t.maxDepth, Viewer: t.session})

	t.mu.Lock()
	defer t.mu.Unlock()

	forms := make(map[string]ReplyForm, len(t.replyForms))
	for id, form := range t.replyForms {
		forms[id] = *form
	}
	view := View{
		CollectionID: t.collectionID,
		Nodes:        nodes,
		Count:        t.counter.Value(),
		LoadFailed:   t.store.Err() != nil,
		Draft:        t.draft,
		DraftHint:    LengthHint(t.draft, t.validator.MaxLength()),
		ReplyForms:   forms,
	}
	if t.banner != nil {
		view.Banner = platformerrors.UserMessage(t.banner)
	}
	return view
}

// reload resynchronizes after a confirmed write. A failure leaves the store's
// error flag set but does not fail the write.
func (t *Thread) reload(ctx context.Context) {
	if err := t.store.Reload(ctx); err != nil {
		t.log.Warn().Err(err).Msg("reload after mutation")
	}
}

func (t *Thread) fail(span trace.Span, operation string, err error) error {
	observability.RecordError(span, err)
	t.mu.Lock()
	t.banner = err
	t.mu.Unlock()
	metrics.RecordCommentMutation(operation, "error")
	t.log.Warn().Err(err).Str("operation", operation).Msg("comment mutation failed")
	return err
}

func (t *Thread) succeed(operation string) {
	t.mu.Lock()
	t.banner = nil
	t.mu.Unlock()
	metrics.RecordCommentMutation(operation, "success")
}

func errNotLoggedIn(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
		"must be logged in", nil, "5c8d2e71-0b3a-4f69-a4d1-9e6b3c0f2a87")
}
