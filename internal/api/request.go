package api

import (
	"maps"
	"time"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Request describes one outgoing call. It is built once per call from
// options and not modified afterwards.
type Request struct {
	Endpoint       string
	Method         string
	Headers        map[string]string
	Body           any
	Timeout        time.Duration
	MaxRetries     int
	IdempotencyKey string
	SkipAuth       bool
}

// RequestOption customises a single call.
type RequestOption func(*Request)

// WithTimeout bounds each attempt of the call.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		if d > 0 {
			r.Timeout = d
		}
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) RequestOption {
	return func(r *Request) {
		if n >= 0 {
			r.MaxRetries = n
		}
	}
}

func WithIdempotencyKey(key string) RequestOption {
	return func(r *Request) { r.IdempotencyKey = key }
}

// WithSkipAuth sends the call without the host session token.
func WithSkipAuth() RequestOption {
	return func(r *Request) { r.SkipAuth = true }
}

func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

func (c *Client) newRequest(method, endpoint string, body any, opts []RequestOption) Request {
	req := Request{
		Endpoint:   endpoint,
		Method:     method,
		Body:       body,
		Timeout:    c.timeout,
		MaxRetries: c.maxRetries,
	}
	for _, opt := range opts {
		opt(&req)
	}
	// Options may have shared a map with the caller.
	req.Headers = maps.Clone(req.Headers)
	return req
}
