package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Error kinds produced by the client itself. Servers may declare their own.
const (
	KindNetwork = "NETWORK_ERROR"
	KindHTTP    = "HTTP_ERROR"
	KindParse   = "PARSE_ERROR"
	KindEncode  = "ENCODE_ERROR"
)

// Error is the uniform failure returned by every Client call.
type Error struct {
	Kind       string
	Message    string
	StatusCode int // 0 for network-level failures
	RequestID  string
	Timestamp  time.Time
	Code       string
	Details    json.RawMessage
	// Attempts is the number of HTTP attempts made before giving up.
	Attempts int

	cause error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api %s: %s (request %s)", e.Kind, e.Message, e.RequestID)
	}
	return fmt.Sprintf("api %s %d: %s (request %s)", e.Kind, e.StatusCode, e.Message, e.RequestID)
}

func (e *Error) Unwrap() error { return e.cause }

// IsNetworkError reports a failure that never produced an HTTP status.
func (e *Error) IsNetworkError() bool { return e.StatusCode == 0 }

func (e *Error) IsClientError() bool { return e.StatusCode >= 400 && e.StatusCode < 500 }

func (e *Error) IsServerError() bool { return e.StatusCode >= 500 && e.StatusCode < 600 }

// IsRetryable tells callers whether offering a manual retry makes sense.
// Automatic retries have already happened inside the client.
func (e *Error) IsRetryable() bool { return e.IsNetworkError() || e.IsServerError() }

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
