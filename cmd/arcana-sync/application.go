package main

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chloeho97/arcana-front/internal/config"
	"github.com/chloeho97/arcana-front/internal/domain/comment"
	"github.com/chloeho97/arcana-front/internal/domain/message"
	"github.com/chloeho97/arcana-front/internal/domain/session"
	"github.com/chloeho97/arcana-front/internal/infrastructure/arcanaapi"
	"github.com/chloeho97/arcana-front/internal/infrastructure/cache"
	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver"
	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver/handlers"
	"github.com/chloeho97/arcana-front/internal/utils/telemetry"
	"github.com/chloeho97/arcana-front/internal/worker"
)

// Components holds the domain components enabled by configuration. Thread is
// nil unless a collection is configured; the messaging components are nil for
// anonymous sessions.
type Components struct {
	Thread        *comment.Thread
	Conversations *message.ConversationPoller
	Unread        *message.UnreadBadge
	Threads       *message.ThreadSwitcher
}

// Handlers exposes the non-nil components to the HTTP layer without leaking
// typed nils into its interfaces.
func (c *Components) Handlers() handlers.Components {
	var out handlers.Components
	if c.Thread != nil {
		out.Comments = c.Thread
	}
	if c.Conversations != nil {
		out.Conversations = c.Conversations
	}
	if c.Threads != nil {
		out.Messages = c.Threads
	}
	if c.Unread != nil {
		out.Unread = c.Unread
	}
	return out
}

// Pollers returns the components that refresh on a timer.
func (c *Components) Pollers() []worker.Runnable {
	var out []worker.Runnable
	if c.Conversations != nil {
		out = append(out, c.Conversations)
	}
	if c.Unread != nil {
		out = append(out, c.Unread)
	}
	if c.Threads != nil {
		out = append(out, c.Threads)
	}
	return out
}

type Application struct {
	httpServer *httpserver.HttpServer
	components *Components
	pool       *worker.Pool
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, components *Components, pool *worker.Pool, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		components: components,
		pool:       pool,
		log:        log,
	}
}

// Start loads the comment thread, starts every poller and serves HTTP until
// ctx is cancelled. Pollers are stopped before it returns.
func (a *Application) Start(ctx context.Context) error {
	if a.components.Thread != nil {
		if err := a.components.Thread.Refresh(ctx); err != nil {
			a.log.Warn().Err(err).Msg("initial comment load failed")
		}
	}

	a.pool.Start(ctx)
	defer func() {
		a.log.Info().Msg("stopping pollers")
		a.pool.Stop()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})
	return g.Wait()
}

func newSanitizer(cfg *config.Config) *telemetry.Sanitizer {
	return telemetry.NewSanitizer(telemetry.ParseLevel(cfg.PIILevel), cfg.ServiceName)
}

func newSessionCache(cfg *config.Config) (cache.Cache, error) {
	return cache.New(cache.Config{
		Type:      cfg.SessionCacheType,
		RedisURL:  cfg.SessionCacheRedisURL,
		KeyPrefix: cfg.ServiceName + ":session:",
		MaxSize:   cfg.SessionCacheMaxSize,
		TTL:       cfg.SessionCacheTTL,
	})
}

func newSessionResolver(cfg *config.Config, client *arcanaapi.Client, store cache.Cache, log zerolog.Logger) *session.Resolver {
	return session.NewResolver(client, store, cfg.SessionCacheTTL, log)
}

// newSession resolves the configured token. Without a token the daemon runs
// anonymously: comments are readable, every mutation is an auth error.
func newSession(ctx context.Context, cfg *config.Config, resolver *session.Resolver, log zerolog.Logger) (*session.Session, error) {
	if cfg.SessionToken == "" {
		log.Warn().Msg("no session token configured, running anonymously")
		return nil, nil
	}
	sess, err := resolver.Resolve(ctx, cfg.SessionToken)
	if err != nil {
		return nil, err
	}
	log.Info().Str("user_id", sess.UserID()).Msg("session resolved")
	return sess, nil
}

func newComponents(cfg *config.Config, client *arcanaapi.Client, sess *session.Session, log zerolog.Logger) *Components {
	c := &Components{}

	if cfg.CollectionID != "" {
		c.Thread = comment.NewThread(client, sess, cfg.CollectionID, comment.ThreadOptions{
			MaxLength: cfg.MaxCommentLength,
			MaxDepth:  cfg.MaxReplyDepth,
		}, log)
	}

	if !sess.Authenticated() {
		return c
	}

	c.Threads = message.NewThreadSwitcher(client, sess, message.StreamOptions{
		Interval:  cfg.ThreadPollInterval,
		MaxLength: cfg.MaxCommentLength,
	}, log)
	c.Conversations = message.NewConversationPoller(client, sess, message.PollerOptions{
		Interval:    cfg.ConversationPollInterval,
		Concurrency: cfg.LastMessageConcurrency,
		OnSelect:    c.Threads.Open,
	}, log)
	c.Unread = message.NewUnreadBadge(client, sess, message.BadgeOptions{
		Interval: cfg.UnreadPollInterval,
	}, log)
	if cfg.OpenConversation != "" {
		c.Conversations.Select(context.Background(), cfg.OpenConversation)
	}
	return c
}

func newPool(components *Components, log zerolog.Logger) *worker.Pool {
	return worker.NewPool(log, components.Pollers()...)
}

func newHandlerProvider(components *Components, log zerolog.Logger) *handlers.Provider {
	return handlers.NewProvider(components.Handlers(), log)
}
