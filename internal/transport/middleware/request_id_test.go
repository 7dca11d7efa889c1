package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexreview/internal/config"
	"github.com/heartmarshall/lexreview/pkg/ctxutil"
)

// captureID records the request ID the handler sees.
func captureID(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = ctxutil.RequestIDFromCtx(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequestID_KeepsIncoming(t *testing.T) {
	t.Parallel()

	var seen string
	req := httptest.NewRequest(http.MethodGet, "/callback?a=list", nil)
	req.Header.Set(RequestIDHeader, "frontend-42")
	rec := httptest.NewRecorder()

	RequestID()(captureID(&seen)).ServeHTTP(rec, req)

	assert.Equal(t, "frontend-42", seen)
	assert.Equal(t, "frontend-42", rec.Header().Get(RequestIDHeader))
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	t.Parallel()

	var seen string
	rec := httptest.NewRecorder()
	RequestID()(captureID(&seen)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_DistinctPerRequest(t *testing.T) {
	t.Parallel()

	var first, second string
	h := RequestID()
	h(captureID(&first)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	h(captureID(&second)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

// The ID is set before inner layers run, so it survives a panic answered
// by Recovery and is exposed to browsers through CORS.
func TestRequestID_ThroughChain(t *testing.T) {
	t.Parallel()

	cfg := config.CORSConfig{AllowedOrigins: "https://review.local", AllowedMethods: "GET,POST"}
	h := Chain(
		RequestID(),
		Recovery(slog.New(slog.NewTextHandler(io.Discard, nil))),
		CORS(cfg),
	)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("analyzer exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/callback", nil)
	req.Header.Set("Origin", "https://review.local")
	req.Header.Set(RequestIDHeader, "trace-7")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "trace-7", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "https://review.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), RequestIDHeader)
}
