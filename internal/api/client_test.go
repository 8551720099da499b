package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archnets/learn-miniapp/internal/host"
)

type course struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []Option{
		WithHTTPClient(srv.Client()),
		WithRetryDelay(time.Millisecond),
		WithDefaultTimeout(time.Second),
	}
	return NewClient(srv.URL, append(base, opts...)...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}, WithHost(host.Available(host.User{ID: 1}, "query_id=abc&hash=f00", nil)))

	res, err := c.Post(context.Background(), EndpointAttempts, map[string]int{"score": 1},
		WithIdempotencyKey("key-1"), WithHeader("X-Extra", "yes"))
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "query_id=abc&hash=f00", got.Get(HeaderInitData))
	assert.Equal(t, "key-1", got.Get(HeaderIdempotencyKey))
	assert.Equal(t, "yes", got.Get("X-Extra"))
	assert.NotEmpty(t, got.Get(HeaderRequestID))
	assert.Equal(t, got.Get(HeaderRequestID), res.RequestID)
}

func TestClient_SkipAuthAndEmptyTokens(t *testing.T) {
	var got http.Header
	handler := func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}

	c := newTestClient(t, handler, WithHost(host.Available(host.User{ID: 1}, "token", nil)))
	_, err := c.Get(context.Background(), EndpointHealth, WithSkipAuth())
	require.NoError(t, err)
	assert.Empty(t, got.Get(HeaderInitData))

	for _, token := range []string{"", "null", "undefined", "{}"} {
		c := newTestClient(t, handler, WithHost(host.Available(host.User{ID: 1}, token, nil)))
		_, err := c.Get(context.Background(), EndpointHealth)
		require.NoError(t, err)
		assert.Empty(t, got.Get(HeaderInitData), "token %q", token)
	}

	c = newTestClient(t, handler)
	_, err = c.Get(context.Background(), EndpointHealth)
	require.NoError(t, err)
	assert.Empty(t, got.Get(HeaderInitData))
}

func TestClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":     "COURSE_NOT_FOUND",
			"message":   "Course not found",
			"details":   map[string]string{"courseId": "algebra-1"},
			"code":      "E404",
			"timestamp": "2026-01-02T03:04:05Z",
			"requestId": "srv-req-1",
		})
	})

	_, err := c.Get(context.Background(), CoursePath("algebra-1"))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "COURSE_NOT_FOUND", apiErr.Kind)
	assert.Equal(t, "Course not found", apiErr.Message)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "srv-req-1", apiErr.RequestID)
	assert.Equal(t, "E404", apiErr.Code)
	assert.JSONEq(t, `{"courseId":"algebra-1"}`, string(apiErr.Details))
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), apiErr.Timestamp)
	assert.True(t, apiErr.IsClientError())
	assert.False(t, apiErr.IsRetryable())
	assert.True(t, IsNotFound(err))
}

func TestClient_ServerErrorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Get(context.Background(), EndpointCourses)
	require.Error(t, err)
	assert.Equal(t, int32(DefaultMaxRetries+1), calls.Load())

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindHTTP, apiErr.Kind)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, DefaultMaxRetries+1, apiErr.Attempts)
	assert.True(t, apiErr.IsServerError())
	assert.True(t, apiErr.IsRetryable())
}

func TestClient_RecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": course{ID: "algebra-1", Title: "Algebra"}})
	})

	got, err := Into[course](c.Get(context.Background(), CoursePath("algebra-1")))
	require.NoError(t, err)
	assert.Equal(t, course{ID: "algebra-1", Title: "Algebra"}, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithDefaultTimeout(20*time.Millisecond))

	_, err := c.Get(context.Background(), EndpointCourses, WithMaxRetries(3))
	require.Error(t, err)
	assert.Equal(t, int32(4), calls.Load())

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "timed out")
	assert.True(t, apiErr.IsNetworkError())
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestInto_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	got, err := Into[course](c.Delete(context.Background(), CoursePath("algebra-1")))
	require.NoError(t, err)
	assert.Equal(t, course{}, got)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, WithRetryDelay(time.Millisecond), WithDefaultMaxRetries(1))
	_, err := c.Get(context.Background(), EndpointHealth)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Equal(t, 2, apiErr.Attempts)
}

func TestClient_RawJSONWithoutEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []course{{ID: "a"}, {ID: "b"}})
	})

	got, err := Into[[]course](c.Get(context.Background(), EndpointCourses))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestClient_TextBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("pong"))
	})

	res, err := c.Get(context.Background(), EndpointHealth)
	require.NoError(t, err)
	assert.False(t, res.IsJSON)
	assert.Equal(t, "pong", res.Text)

	text, err := Into[string](res, nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", text)

	_, err = Into[course](res, nil)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindParse, apiErr.Kind)
}

func TestClient_MalformedJSONIsParseError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":`))
	})

	_, err := c.Get(context.Background(), EndpointCourses)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindParse, apiErr.Kind)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestInto_DecodeMismatch(t *testing.T) {
	res := &Result{StatusCode: 200, IsJSON: true, Data: json.RawMessage(`{"id":42}`), RequestID: "r1"}
	_, err := Into[course](res, nil)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindParse, apiErr.Kind)
	assert.Equal(t, "r1", apiErr.RequestID)
}

func TestClient_AuthErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Get(context.Background(), EndpointUserProfile)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindHTTP, apiErr.Kind)
	assert.Equal(t, "HTTP 401: Unauthorized", apiErr.Message)
	assert.True(t, IsAuthError(err))
}

func TestClient_UnencodableBody(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })

	_, err := c.Post(context.Background(), EndpointProgress, map[string]any{"bad": make(chan int)})
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindEncode, apiErr.Kind)
	assert.Zero(t, calls.Load())
}

func TestEndpoints(t *testing.T) {
	assert.Equal(t, "/courses/algebra-1", CoursePath("algebra-1"))
	assert.Equal(t, "/courses/a%2Fb/lessons/l%201", LessonPath("a/b", "l 1"))
}
