package httpclient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
	"github.com/chloeho97/arcana-front/internal/utils/telemetry"
)

func TestNew_SetsRequestIDHeader(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(Options{Name: "test", BaseURL: server.URL, Timeout: time.Second, Log: zerolog.Nop()})

	_, err := client.R().SetContext(platformerrors.WithRequestID(context.Background(), "req-fixed")).Get("/a")
	require.NoError(t, err)
	_, err = client.R().SetContext(context.Background()).Get("/b")
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "req-fixed", seen[0])
	assert.NotEmpty(t, seen[1])
	assert.NotEqual(t, "req-fixed", seen[1])
}

func TestNew_DebugLogNeverContainsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	client := New(Options{
		Name:      "test",
		BaseURL:   server.URL,
		Timeout:   time.Second,
		Log:       log,
		Sanitizer: telemetry.NewSanitizer(telemetry.PIILevelFull, "salt"),
	})

	_, err := client.R().
		SetContext(context.Background()).
		SetBody(map[string]any{"token": "super-secret", "content": "hello"}).
		Post("/comments/a/reply")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "HTTP client request")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "super-secret")
}

func TestLogBody_Struct(t *testing.T) {
	body := struct {
		UserID  string `json:"userId"`
		Content string `json:"content"`
	}{UserID: "u1", Content: "hi"}

	out := LogBody(telemetry.NewSanitizer(telemetry.PIILevelNone, "salt"), body)
	assert.Equal(t, "[REDACTED]", out["userId"])
	assert.Equal(t, "[REDACTED]", out["content"])
	assert.Nil(t, LogBody(telemetry.NewSanitizer(telemetry.PIILevelNone, "salt"), nil))
}
