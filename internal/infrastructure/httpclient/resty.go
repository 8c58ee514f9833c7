package httpclient

import (
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
	"github.com/chloeho97/arcana-front/internal/utils/telemetry"
)

// RequestIDHeader carries the per-call id to the backend.
const RequestIDHeader = "X-Request-ID"

// Options configures a client built by New.
type Options struct {
	Name      string
	BaseURL   string
	Timeout   time.Duration
	Log       zerolog.Logger
	Sanitizer *telemetry.Sanitizer
}

// New builds a resty client that tags every call with a request id and logs it
// at debug level with its body passed through the sanitizer.
func New(opts Options) *resty.Client {
	log := opts.Log.With().Str("client", opts.Name).Logger()
	sanitizer := opts.Sanitizer
	if sanitizer == nil {
		sanitizer = telemetry.NewSanitizer(telemetry.PIILevelNone, opts.Name)
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout)

	client.OnBeforeRequest(func(c *resty.Client, r *resty.Request) error {
		ctx := r.Context()
		requestID := platformerrors.RequestIDFromContext(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
			r.SetContext(platformerrors.WithRequestID(ctx, requestID))
		}
		r.SetHeader(RequestIDHeader, requestID)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, r *resty.Response) error {
		if log.GetLevel() > zerolog.DebugLevel {
			return nil
		}
		log.Debug().
			Str("request_id", r.Request.Header.Get(RequestIDHeader)).
			Int("status", r.StatusCode()).
			Str("method", r.Request.Method).
			Str("path", r.Request.URL).
			Interface("req_body", LogBody(sanitizer, r.Request.Body)).
			Dur("latency", r.Time()).
			Msg("HTTP client request")
		return nil
	})

	client.OnError(func(r *resty.Request, err error) {
		log.Debug().
			Str("request_id", r.Header.Get(RequestIDHeader)).
			Str("method", r.Method).
			Str("path", r.URL).
			Err(err).
			Msg("HTTP client request failed")
	})

	return client
}

// LogBody converts a request body into a loggable, sanitized map.
func LogBody(sanitizer *telemetry.Sanitizer, body any) map[string]any {
	if body == nil {
		return nil
	}
	if m, ok := body.(map[string]any); ok {
		return sanitizer.SanitizeBody(m)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return sanitizer.SanitizeBody(m)
}
