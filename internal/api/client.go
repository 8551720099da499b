package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/archnets/learn-miniapp/internal/host"
	"github.com/archnets/learn-miniapp/internal/logger"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client handles HTTP requests to the learning backend API.
type Client struct {
	http       Doer
	baseURL    string
	host       host.Bridge
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	now        func() time.Time
	log        logger.Scoped
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithHost sets the bridge that supplies the session token.
func WithHost(b host.Bridge) Option {
	return func(c *Client) {
		if b != nil {
			c.host = b
		}
	}
}

// WithRetryDelay sets the fixed pause between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithDefaultMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithClock overrides the time source used for error timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger requests are logged through.
func WithLogger(l logger.Scoped) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a new API client. baseURL is prefixed to every endpoint.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		host:       host.Unavailable(),
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		now:        time.Now,
		log:        logger.Named("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Result is a successful response. Data holds the JSON payload with any
// {"data": ...} envelope removed; Text holds non-JSON bodies.
type Result struct {
	StatusCode int
	Header     http.Header
	RequestID  string
	Data       json.RawMessage
	Text       string
	IsJSON     bool
	Attempts   int
}

// errorBody is the error format returned by the backend.
type errorBody struct {
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details"`
	Code      json.RawMessage `json:"code"`
	Timestamp string          `json:"timestamp"`
	RequestID string          `json:"requestId"`
}

// Do performs a request and returns the parsed result. Every failure is
// reported as *Error.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, opts ...RequestOption) (*Result, error) {
	req := c.newRequest(method, endpoint, body, opts)
	requestID := uuid.NewString()
	log := c.requestLogger(requestID)

	header := c.buildHeaders(req, requestID)
	start := time.Now()
	log.Debugf("%s %s", req.Method, req.Endpoint)

	raw, attempts, err := c.fetchWithRetry(ctx, req, header, requestID)
	if err != nil {
		apiErr := c.transportError(err, requestID, attempts)
		log.Warnf("%s %s failed after %d attempt(s): %v", req.Method, req.Endpoint, attempts, err)
		return nil, apiErr
	}
	log.Debugf("%s %s -> %d in %s", req.Method, req.Endpoint, raw.StatusCode, time.Since(start))

	if !IsSuccess(raw.StatusCode) {
		return nil, c.httpError(raw, requestID)
	}
	return c.parse(raw, requestID)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, opts ...RequestOption) (*Result, error) {
	return c.Do(ctx, http.MethodGet, endpoint, nil, opts...)
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*Result, error) {
	return c.Do(ctx, http.MethodPost, endpoint, body, opts...)
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*Result, error) {
	return c.Do(ctx, http.MethodPut, endpoint, body, opts...)
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, endpoint string, body any, opts ...RequestOption) (*Result, error) {
	return c.Do(ctx, http.MethodPatch, endpoint, body, opts...)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) (*Result, error) {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, opts...)
}

// Into decodes a result into T. It is meant to wrap a Client call:
//
//	course, err := api.Into[Course](client.Get(ctx, api.CoursePath(id)))
func Into[T any](res *Result, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if !res.IsJSON {
		if s, ok := any(&out).(*string); ok {
			*s = res.Text
			return out, nil
		}
		// No body at all, e.g. 204.
		if len(res.Text) == 0 {
			return out, nil
		}
		return out, &Error{
			Kind:       KindParse,
			Message:    "expected JSON response body",
			StatusCode: res.StatusCode,
			RequestID:  res.RequestID,
			Timestamp:  time.Now(),
			Attempts:   res.Attempts,
		}
	}
	if len(res.Data) == 0 || string(res.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(res.Data, &out); err != nil {
		return out, &Error{
			Kind:       KindParse,
			Message:    fmt.Sprintf("decode response: %v", err),
			StatusCode: res.StatusCode,
			RequestID:  res.RequestID,
			Timestamp:  time.Now(),
			Attempts:   res.Attempts,
			cause:      err,
		}
	}
	return out, nil
}

func (c *Client) parse(raw *rawResponse, requestID string) (*Result, error) {
	res := &Result{
		StatusCode: raw.StatusCode,
		Header:     raw.Header,
		RequestID:  requestID,
		Attempts:   raw.Attempts,
	}

	if !isJSONContent(raw.Header.Get("Content-Type")) {
		res.Text = string(raw.Body)
		return res, nil
	}
	res.IsJSON = true

	body := bytes.TrimSpace(raw.Body)
	if len(body) == 0 {
		return res, nil
	}
	if !json.Valid(body) {
		return nil, &Error{
			Kind:       KindParse,
			Message:    "response body is not valid JSON",
			StatusCode: raw.StatusCode,
			RequestID:  requestID,
			Timestamp:  c.now(),
			Attempts:   raw.Attempts,
		}
	}

	res.Data = json.RawMessage(body)
	if body[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err == nil {
			if data, ok := envelope["data"]; ok {
				res.Data = data
			}
		}
	}
	return res, nil
}

func (c *Client) httpError(raw *rawResponse, requestID string) *Error {
	apiErr := &Error{
		Kind:       KindHTTP,
		Message:    fmt.Sprintf("HTTP %d: %s", raw.StatusCode, http.StatusText(raw.StatusCode)),
		StatusCode: raw.StatusCode,
		RequestID:  requestID,
		Timestamp:  c.now(),
		Attempts:   raw.Attempts,
	}

	var body errorBody
	if err := json.Unmarshal(raw.Body, &body); err != nil {
		return apiErr
	}
	if body.Error != "" {
		apiErr.Kind = body.Error
	}
	if body.Message != "" {
		apiErr.Message = body.Message
	}
	if body.RequestID != "" {
		apiErr.RequestID = body.RequestID
	}
	if ts, err := time.Parse(time.RFC3339, body.Timestamp); err == nil {
		apiErr.Timestamp = ts
	}
	if len(body.Details) > 0 && string(body.Details) != "null" {
		apiErr.Details = body.Details
	}
	apiErr.Code = rawCode(body.Code)
	return apiErr
}

func (c *Client) transportError(err error, requestID string, attempts int) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		apiErr.RequestID = requestID
		return apiErr
	}
	return &Error{
		Kind:      KindNetwork,
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: c.now(),
		Attempts:  attempts,
		cause:     err,
	}
}

func (c *Client) requestLogger(requestID string) logger.Scoped {
	return c.log.With("request_id", requestID)
}

func marshalBody(body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{
			Kind:      KindEncode,
			Message:   fmt.Sprintf("marshal request: %v", err),
			Timestamp: time.Now(),
			cause:     err,
		}
	}
	return data, nil
}

func isJSONContent(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// rawCode renders a string or numeric code field.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
