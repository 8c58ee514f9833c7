package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/infrastructure/metrics"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
)

// UserDirectory looks up the user owning a session token.
type UserDirectory interface {
	UserByToken(ctx context.Context, token string) (*User, error)
}

// Cache stores resolved users keyed by token hash.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Type() string
}

// Resolver turns a token into a Session once, so nothing downstream reads
// ambient token storage.
type Resolver struct {
	directory UserDirectory
	cache     Cache
	ttl       time.Duration
	log       zerolog.Logger
}

func NewResolver(directory UserDirectory, cache Cache, ttl time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		cache:     cache,
		ttl:       ttl,
		log:       log.With().Str("component", "session-resolver").Logger(),
	}
}

// Resolve returns the session for token. An empty token is an auth error.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "session token is required", nil, "3f9a1c52-7be4-4d0e-9a61-0c2d5e8b7f14")
	}

	key := cacheKey(token)
	if user, ok := r.cached(ctx, key); ok {
		return New(token, *user), nil
	}

	user, err := r.directory.UserByToken(ctx, token)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "resolve session")
	}
	if user == nil || user.ID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "session token did not resolve to a user", nil, "b27d84e0-1c3f-4a95-8e06-6f5a9d2c4b31")
	}

	if raw, err := json.Marshal(user); err == nil {
		if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
			r.log.Warn().Err(err).Msg("cache resolved session")
		}
	}

	return New(token, *user), nil
}

// Invalidate drops the cached user for token.
func (r *Resolver) Invalidate(ctx context.Context, token string) error {
	return r.cache.Delete(ctx, cacheKey(strings.TrimSpace(token)))
}

func (r *Resolver) cached(ctx context.Context, key string) (*User, bool) {
	raw, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.log.Warn().Err(err).Msg("read session cache")
	}
	if err != nil || !ok {
		metrics.RecordCacheMiss(r.cache.Type())
		return nil, false
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		metrics.RecordCacheMiss(r.cache.Type())
		return nil, false
	}
	metrics.RecordCacheHit(r.cache.Type())
	return &user, true
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}
