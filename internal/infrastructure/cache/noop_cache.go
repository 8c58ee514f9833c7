package cache

import (
	"context"
	"time"
)

// NoopCache disables caching; every lookup is a miss.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (c *NoopCache) Set(context.Context, string, string, time.Duration) error {
	return nil
}

func (c *NoopCache) Delete(context.Context, string) error {
	return nil
}

func (c *NoopCache) Type() string {
	return "noop"
}
