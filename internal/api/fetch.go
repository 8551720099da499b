package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// rawResponse is a completed HTTP exchange, read fully into memory.
type rawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int
}

// serverError marks a 5xx response so the retry loop keeps going while
// the response itself is kept for error reporting.
type serverError struct{ resp *rawResponse }

func (e *serverError) Error() string { return fmt.Sprintf("server responded %d", e.resp.StatusCode) }

// timeoutError is an attempt that outlived its per-attempt deadline.
type timeoutError struct{ after time.Duration }

func (e *timeoutError) Error() string { return fmt.Sprintf("request timed out after %s", e.after) }

// fetchWithRetry performs req with a fixed delay between attempts.
// Network failures, timeouts and 5xx responses are retried up to
// req.MaxRetries times. Any other response is returned at once.
func (c *Client) fetchWithRetry(ctx context.Context, req Request, header http.Header, requestID string) (*rawResponse, int, error) {
	var body []byte
	if req.Body != nil {
		data, err := marshalBody(req.Body)
		if err != nil {
			return nil, 0, err
		}
		body = data
	}

	log := c.requestLogger(requestID)
	backoff := retry.WithMaxRetries(uint64(req.MaxRetries), retry.NewConstant(c.retryDelay))

	var (
		resp     *rawResponse
		attempts int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		r, err := c.attempt(ctx, req, header, body)
		if err != nil {
			if errors.Is(err, errInvalidRequest) {
				return err
			}
			log.Warnf("%s %s attempt %d/%d failed: %v", req.Method, req.Endpoint, attempts, req.MaxRetries+1, err)
			return retry.RetryableError(err)
		}
		if r.StatusCode >= 500 {
			log.Warnf("%s %s attempt %d/%d: status %d", req.Method, req.Endpoint, attempts, req.MaxRetries+1, r.StatusCode)
			return retry.RetryableError(&serverError{resp: r})
		}
		resp = r
		return nil
	})

	if err != nil {
		var se *serverError
		if errors.As(err, &se) {
			se.resp.Attempts = attempts
			return se.resp, attempts, nil
		}
		return nil, attempts, err
	}
	resp.Attempts = attempts
	return resp, attempts, nil
}

var errInvalidRequest = errors.New("invalid request")

func (c *Client) attempt(ctx context.Context, req Request, header http.Header, body []byte) (*rawResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, c.baseURL+req.Endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	httpReq.Header = header.Clone()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, attemptFailure(attemptCtx, ctx, req.Timeout, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, attemptFailure(attemptCtx, ctx, req.Timeout, err)
	}

	return &rawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// attemptFailure distinguishes our own per-attempt deadline from other
// transport failures.
func attemptFailure(attemptCtx, parent context.Context, timeout time.Duration, err error) error {
	if parent.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &timeoutError{after: timeout}
	}
	return err
}
