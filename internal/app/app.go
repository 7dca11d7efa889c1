package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/lexreview/internal/analyzer"
	"github.com/heartmarshall/lexreview/internal/config"
	"github.com/heartmarshall/lexreview/internal/lexicon"
	"github.com/heartmarshall/lexreview/internal/metric"
	"github.com/heartmarshall/lexreview/internal/service/review"
)

// Run is the application entry point. It loads configuration, starts both
// analyzer processes and serves HTTP until ctx is cancelled, then shuts the
// server down and stops the analyzers.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	primary := newPipe(logger, cfg.Analyzer, review.PipePrimary, cfg.Analyzer.PrimaryPath)
	guesser := newPipe(logger, cfg.Analyzer, review.PipeGuesser, cfg.Analyzer.GuesserPath)

	if err := primary.Start(ctx); err != nil {
		return err
	}
	if err := guesser.Start(ctx); err != nil {
		_ = primary.Close()
		return err
	}

	metrics := metric.New()
	svc := review.NewService(logger, primary, guesser, lexicon.New(), metrics)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("stop analyzers", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      newRouter(cfg, logger, svc, metrics),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return serve(ctx, logger, srv, cfg.Server)
}

func newPipe(logger *slog.Logger, cfg config.AnalyzerConfig, name, artifact string) *analyzer.Pipe {
	args := append(cfg.Args(), artifact)
	return analyzer.New(logger, name, cfg.Command, args...)
}

// serve runs srv until ctx is done or the listener fails, then shuts it
// down gracefully.
func serve(ctx context.Context, logger *slog.Logger, srv *http.Server, cfg config.ServerConfig) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening",
			slog.String("addr", srv.Addr),
			slog.String("callback_path", cfg.CallbackPath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
