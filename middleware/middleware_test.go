package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijaru/yt-summarizer/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mark("first"), nil, mark("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	h := Chain(okHandler(), rl.Middleware)

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/get_video_info", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:3333"))

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1111"))
}

func TestRateLimiterResponse(t *testing.T) {
	rl := NewRateLimiter(30, 1)
	h := rl.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error": "Rate limit exceeded"}`, rr.Body.String())
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 1).(*rateLimiter)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	require.Len(t, rl.clients, 2)

	now = now.Add(time.Hour)
	rl.Allow("c")
	assert.Len(t, rl.clients, 1)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "given-id", seen)
}

func TestRecovery(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error": "Internal server error"}`, rr.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Panic recovered", hook.LastEntry().Message)
	assert.NotContains(t, rr.Body.String(), "boom")
}

func TestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var entry *logrus.Entry
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry = GetLogger(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}), RequestID(), Logging(logger))

	req := httptest.NewRequest(http.MethodGet, "/audio/missing.mp3", nil)
	req.Header.Set("X-Request-ID", "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, entry)
	assert.Equal(t, "req-1", entry.Data["request_id"])

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, http.StatusNotFound, last.Data["status"])
	assert.Equal(t, "/audio/missing.mp3", last.Data["path"])
}

func TestGetLoggerDefault(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))
}

func TestCORS(t *testing.T) {
	mw := CORS(config.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	require.NotNil(t, mw)
	h := mw(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/generate_summary", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	assert.Nil(t, CORS(config.CORSConfig{Enabled: false}))
}

func TestTimeout(t *testing.T) {
	h := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"error": "Request timeout"}`, rr.Body.String())
	assert.Nil(t, Timeout(0))
}
