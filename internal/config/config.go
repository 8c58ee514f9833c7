package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

const configFileKey = "ARCANA_CONFIG_FILE"

// Config holds the environment driven configuration for the sync daemon.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"arcana-sync"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8095"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	PIILevel        string        `env:"PII_LEVEL" envDefault:"hashed"`

	APIBaseURL     string        `env:"ARCANA_API_BASE_URL" envDefault:"http://localhost:3000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	ConversationPollInterval time.Duration `env:"CONVERSATION_POLL_INTERVAL" envDefault:"5s"`
	ThreadPollInterval       time.Duration `env:"THREAD_POLL_INTERVAL" envDefault:"5s"`
	UnreadPollInterval       time.Duration `env:"UNREAD_POLL_INTERVAL" envDefault:"10s"`
	LastMessageConcurrency   int           `env:"LAST_MESSAGE_CONCURRENCY" envDefault:"8"`

	MaxCommentLength int `env:"MAX_COMMENT_LENGTH" envDefault:"500"`
	MaxReplyDepth    int `env:"MAX_REPLY_DEPTH" envDefault:"3"`

	SessionToken     string `env:"ARCANA_SESSION_TOKEN"`
	CollectionID     string `env:"ARCANA_COLLECTION_ID"`
	OpenConversation string `env:"ARCANA_OPEN_CONVERSATION"`

	SessionCacheType     string        `env:"SESSION_CACHE_TYPE" envDefault:"memory"`
	SessionCacheRedisURL string        `env:"SESSION_CACHE_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	SessionCacheTTL      time.Duration `env:"SESSION_CACHE_TTL" envDefault:"15m"`
	SessionCacheMaxSize  int           `env:"SESSION_CACHE_MAX_SIZE" envDefault:"256"`
}

// Load resolves configuration from struct defaults, then the optional YAML file
// named by ARCANA_CONFIG_FILE, then the process environment.
func Load() (*Config, error) {
	return LoadFrom(environ())
}

// LoadFrom is Load with an explicit environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	merged := make(map[string]string, len(environment))

	if path := strings.TrimSpace(environment[configFileKey]); path != "" {
		fileValues, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range fileValues {
			merged[k] = v
		}
	}
	for k, v := range environment {
		merged[k] = v
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: merged}); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		return fmt.Errorf("ARCANA_API_BASE_URL is required")
	}

	durations := map[string]time.Duration{
		"REQUEST_TIMEOUT":            c.RequestTimeout,
		"CONVERSATION_POLL_INTERVAL": c.ConversationPollInterval,
		"THREAD_POLL_INTERVAL":       c.ThreadPollInterval,
		"UNREAD_POLL_INTERVAL":       c.UnreadPollInterval,
	}
	for key, value := range durations {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}

	switch c.SessionCacheType {
	case "memory", "redis", "noop":
	default:
		return fmt.Errorf("SESSION_CACHE_TYPE must be one of memory, redis, noop (got %q)", c.SessionCacheType)
	}

	if c.LastMessageConcurrency <= 0 {
		c.LastMessageConcurrency = 8
	}
	if c.MaxCommentLength <= 0 {
		c.MaxCommentLength = 500
	}
	if c.MaxReplyDepth <= 0 {
		c.MaxReplyDepth = 3
	}
	if c.SessionCacheMaxSize <= 0 {
		c.SessionCacheMaxSize = 256
	}

	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// readFile parses a flat KEY: value YAML document.
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}

func environ() map[string]string {
	values := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			values[k] = v
		}
	}
	return values
}
