package app

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/lexreview/internal/config"
	"github.com/heartmarshall/lexreview/internal/metric"
	"github.com/heartmarshall/lexreview/internal/service/review"
	"github.com/heartmarshall/lexreview/internal/transport/middleware"
	"github.com/heartmarshall/lexreview/internal/transport/rest"
)

func newRouter(cfg *config.Config, logger *slog.Logger, svc *review.Service, metrics *metric.Metrics) http.Handler {
	mux := http.NewServeMux()

	callback := rest.NewCallbackHandler(svc, metrics, logger)
	path := strings.TrimSuffix(cfg.Server.CallbackPath, "/")
	mux.Handle(path, callback)
	mux.Handle(path+"/{$}", callback)

	health := rest.NewHealthHandler(svc, BuildVersion())
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)

	admin := rest.NewAdminHandler(svc, logger)
	guard := middleware.AdminToken(cfg.Admin.Token)
	mux.Handle("POST /admin/restart", guard(http.HandlerFunc(admin.Restart)))
	mux.Handle("GET /admin/stats", guard(http.HandlerFunc(admin.Stats)))

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, metrics.Handler())
	}

	// An empty origin list turns CORS off rather than falling back to "*".
	var cors middleware.Middleware
	if strings.TrimSpace(cfg.CORS.AllowedOrigins) != "" {
		cors = middleware.CORS(cfg.CORS)
	}

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		cors,
	)(mux)
}
