package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archnets/learn-miniapp/internal/api"
)

const testInitData = `user=%7B%22id%22%3A42%2C%22first_name%22%3A%22Ada%22%7D&auth_date=1700000000&hash=x`

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func TestCoursesFilter(t *testing.T) {
	h := New().Handler()

	rec := do(t, h, http.MethodGet, "/courses?tag=interview", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	courses := decodeData[[]Course](t, rec)
	assert.Len(t, courses, 2)

	rec = do(t, h, http.MethodGet, "/courses/nope", "", map[string]string{api.HeaderRequestID: "req-9"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, api.CodeCourseNotFound, body.Error)
	assert.Equal(t, "req-9", body.RequestID)
}

func TestUserEndpointsRequireInitData(t *testing.T) {
	h := New().Handler()

	rec := do(t, h, http.MethodGet, "/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/user/profile", "", map[string]string{api.HeaderInitData: "garbage=%zz"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitAttemptIsIdempotent(t *testing.T) {
	h := New().Handler()
	header := map[string]string{api.HeaderInitData: testInitData, api.HeaderIdempotencyKey: "k1"}
	body := `{"lessonId":"l2","kind":"quiz","answers":[{"questionId":"q1","answer":"x=2"}]}`

	first := do(t, h, http.MethodPost, "/attempts", body, header)
	require.Equal(t, http.StatusCreated, first.Code)
	second := do(t, h, http.MethodPost, "/attempts", body, header)
	require.Equal(t, http.StatusOK, second.Code)

	assert.Equal(t, decodeData[Attempt](t, first).ID, decodeData[Attempt](t, second).ID)

	list := do(t, h, http.MethodGet, "/attempts", "", header)
	assert.Len(t, decodeData[[]Attempt](t, list), 1)

	missing := do(t, h, http.MethodPost, "/attempts", body, map[string]string{api.HeaderInitData: testInitData})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestProgressPercent(t *testing.T) {
	h := New().Handler()
	header := map[string]string{api.HeaderInitData: testInitData}

	rec := do(t, h, http.MethodPut, "/progress", `{"courseId":"algebra-1","lessonId":"l1","completed":true}`, header)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeData[Progress](t, rec)
	assert.Equal(t, 50.0, p.Percent)
	assert.Equal(t, "l2", p.CurrentLessonID)

	rec = do(t, h, http.MethodPut, "/progress", `{"courseId":"algebra-1","lessonId":"zz","completed":true}`, header)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFailNext(t *testing.T) {
	s := New()
	h := s.Handler()
	s.FailNext(2, http.StatusServiceUnavailable)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, 3, s.Hits("/health"))
}
