// Package arcanaapi is the REST client for the Arcana backend. It implements
// the comment, message and session ports of the domain packages.
package arcanaapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/chloeho97/arcana-front/internal/config"
	"github.com/chloeho97/arcana-front/internal/domain/comment"
	"github.com/chloeho97/arcana-front/internal/domain/message"
	"github.com/chloeho97/arcana-front/internal/domain/session"
	"github.com/chloeho97/arcana-front/internal/infrastructure/httpclient"
	"github.com/chloeho97/arcana-front/internal/infrastructure/metrics"
	"github.com/chloeho97/arcana-front/internal/infrastructure/observability"
	"github.com/chloeho97/arcana-front/internal/utils/platformerrors"
	"github.com/chloeho97/arcana-front/internal/utils/telemetry"
)

var (
	_ comment.Backend             = (*Client)(nil)
	_ message.ConversationBackend = (*Client)(nil)
	_ message.ThreadBackend       = (*Client)(nil)
	_ message.UnreadBackend       = (*Client)(nil)
	_ session.UserDirectory       = (*Client)(nil)
)

// Client talks to one configured backend base URL.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// NewClient builds a client for cfg.APIBaseURL with cfg.RequestTimeout on
// every call.
func NewClient(cfg *config.Config, sanitizer *telemetry.Sanitizer, log zerolog.Logger) *Client {
	return NewClientWithResty(httpclient.New(httpclient.Options{
		Name:      "arcana-api",
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.RequestTimeout,
		Log:       log,
		Sanitizer: sanitizer,
	}), log)
}

// NewClientWithResty wraps an existing resty client.
func NewClientWithResty(http *resty.Client, log zerolog.Logger) *Client {
	return &Client{
		http: http,
		log:  log.With().Str("component", "arcana-api").Logger(),
	}
}

// call describes one backend request. path is the route pattern with
// {placeholders} filled from params.
type call struct {
	operation string
	method    string
	path      string
	params    map[string]string
	body      any
	result    any
}

func (c *Client) do(ctx context.Context, req call) error {
	ctx, span := observability.StartAPISpan(ctx, req.operation, req.method, req.path)
	defer span.End()

	start := time.Now()
	r := c.http.R().SetContext(ctx)
	if len(req.params) > 0 {
		r.SetPathParams(req.params)
	}
	if req.body != nil {
		r.SetBody(req.body)
	}
	if req.result != nil {
		r.SetResult(req.result)
	}

	resp, err := r.Execute(req.method, req.path)
	err = classify(ctx, req.operation, resp, err)

	metrics.RecordAPIRequest(req.operation, metrics.Status(err), time.Since(start).Seconds())
	observability.RecordError(span, err)
	return err
}

// classify turns a transport failure or a non-2xx status into a PlatformError.
func classify(ctx context.Context, operation string, resp *resty.Response, err error) error {
	if err != nil {
		if resp != nil && resp.RawResponse != nil {
			pe := platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
				operation+": malformed response", err, "")
			pe.StatusCode = resp.StatusCode()
			return pe
		}
		if isTimeout(err) {
			return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeTimeout,
				operation+": request timed out", err, "")
		}
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNetwork,
			operation+": request failed", err, "")
	}

	if resp.IsError() {
		pe := platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.FromHTTPStatus(resp.StatusCode()),
			fmt.Sprintf("%s: backend returned %d", operation, resp.StatusCode()), nil, "",
			map[string]any{"body": truncate(resp.String(), 200)})
		pe.StatusCode = resp.StatusCode()
		return pe
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// envelope is the {result, error} wrapper of most comment and user routes.
type envelope struct {
	Result *bool  `json:"result"`
	Error  string `json:"error,omitempty"`
}

// check reports a missing or false result flag as a server error.
func (e envelope) check(ctx context.Context, operation string) error {
	if e.Result != nil && *e.Result {
		return nil
	}
	msg := operation + ": backend reported failure"
	if e.Error != "" {
		msg += ": " + e.Error
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, msg, nil, "")
}

func missingField(ctx context.Context, operation, field string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
		fmt.Sprintf("%s: response has no %s", operation, field), nil, "")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
