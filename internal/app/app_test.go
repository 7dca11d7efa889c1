package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexreview/internal/config"
)

func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	err := serve(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), srv, config.ServerConfig{ShutdownTimeout: time.Second})
	require.NoError(t, err)
}

func TestServe_ListenError(t *testing.T) {
	t.Parallel()

	srv := &http.Server{Addr: "256.0.0.1:http", Handler: http.NotFoundHandler()}
	err := serve(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), srv, config.ServerConfig{ShutdownTimeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}

func TestNewPipe_AppendsArtifact(t *testing.T) {
	t.Parallel()

	cfg := config.AnalyzerConfig{Command: "/nonexistent/lt-proc", ArgsRaw: "-z"}
	p := newPipe(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, "primary", "eng.automorf.bin")

	assert.Equal(t, "primary", p.Name())
	err := p.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nonexistent/lt-proc")
}
