// Package apiclient talks to the spreadsheet-backed remote endpoint. Every call
// posts an {action, ...payload} envelope and yields a Result; failures never
// escape as Go errors or panics.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kruchat2026/devlog/internal/metrics"
)

const (
	ActionGetMe        = "getMe"
	ActionLoginUser    = "loginUser"
	ActionRegisterUser = "registerUser"
	ActionListRecords  = "listRecords"
	ActionUpsertRecord = "upsertRecord"
	ActionDeleteRecord = "deleteRecord"
	ActionUploadFile   = "uploadFile"
	ActionReviewRecord = "reviewRecord"
	ActionGetUsers     = "getUsers"
	ActionUpdateUser   = "updateUser"
	ActionDeleteUser   = "deleteUser"
)

const maxResponseSize = 32 << 20

type Payload map[string]any

type Options struct {
	// URL of the deployed endpoint. Empty means mock mode.
	URL string
	// Timeout of zero leaves calls bounded only by their context.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
	tracer     trace.Tracer
	inFlight   atomic.Int64
}

func New(opts Options, logger zerolog.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		url:        opts.URL,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "apiclient").Logger(),
		tracer:     otel.Tracer("github.com/kruchat2026/devlog/internal/apiclient"),
	}
}

func (c *Client) MockMode() bool {
	return c.url == ""
}

func (c *Client) URL() string {
	return c.url
}

// InFlight is the loading flag: the number of calls currently running.
func (c *Client) InFlight() int64 {
	return c.inFlight.Load()
}

func (c *Client) Call(ctx context.Context, action string, payload Payload) Result {
	c.inFlight.Add(1)
	metrics.APICallsInFlight.Inc()
	defer func() {
		c.inFlight.Add(-1)
		metrics.APICallsInFlight.Dec()
	}()

	ctx, span := c.tracer.Start(ctx, "apiclient.call")
	defer span.End()
	span.SetAttributes(attribute.String("api.action", action))

	start := time.Now()
	res := c.call(ctx, action, payload)
	metrics.APICallDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())

	result := "ok"
	switch {
	case c.MockMode():
		result = "mock"
	case res.OK:
	case res.Error != nil && res.Error.Transport:
		result = "transport_error"
	default:
		result = "app_error"
	}
	metrics.APICallsTotal.WithLabelValues(action, result).Inc()

	if !res.OK {
		msg := res.Err().Error()
		span.SetStatus(codes.Error, msg)
		c.logger.Warn().Str("action", action).Str("result", result).Str("error", msg).Msg("remote call failed")
	}

	return res
}

func (c *Client) call(ctx context.Context, action string, payload Payload) Result {
	if c.MockMode() {
		c.logger.Warn().Str("action", action).Msg("API URL not set, returning mock data")
		return mockResult(action)
	}

	envelope := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		envelope[k] = v
	}
	envelope["action"] = action
	if _, ok := envelope["email"]; !ok {
		if email := EmailFrom(ctx); email != "" {
			envelope["email"] = email
		}
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return failure(fmt.Sprintf("encode request: %v", err), true)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return failure(err.Error(), true)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure(err.Error(), true)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return failure(err.Error(), true)
	}

	res := Result{}
	if err := json.Unmarshal(raw, &res); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return failure(fmt.Sprintf("HTTP %d", resp.StatusCode), true)
		}
		return failure(fmt.Sprintf("invalid response: %v", err), true)
	}

	return res
}

var mockUser = json.RawMessage(`{"email":"teacher@school.ac.th","name":"ครูสมใจ","role":"teacher","status":"active"}`)

func mockResult(action string) Result {
	switch action {
	case ActionGetMe, ActionLoginUser:
		return Result{OK: true, Data: mockUser}
	case ActionListRecords, ActionGetUsers:
		return Result{OK: true, Data: json.RawMessage(`[]`)}
	default:
		return Result{OK: true}
	}
}
