package review

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/lexreview/internal/lexicon"
	"github.com/heartmarshall/lexreview/internal/stream"
)

// Pipe names as used in logs, metrics and the restart action.
const (
	PipePrimary = "primary"
	PipeGuesser = "guesser"
)

type analyzerPipe interface {
	Name() string
	Process(ctx context.Context, sentence string) (string, error)
	Restart(ctx context.Context) error
	Alive() bool
	Close() error
	// Interrupt kills the process out of band so that a round trip stuck
	// on it fails. Safe to call without holding the service lock.
	Interrupt()
}

type metricsRecorder interface {
	ObserveAnalyzer(pipe string, d time.Duration, err error)
	ObserveTokens(pipe string, stats stream.Stats)
	ObserveRegistry(stats lexicon.Stats)
	IncRestart(pipe string)
}

// Service is the single point of access to the analyzer pipes and the
// lexicon. Every operation holds one mutex for its whole duration, so
// requests never interleave: a list issued after a process call returns
// always sees that call's data.
type Service struct {
	mu      sync.Mutex
	primary analyzerPipe
	guesser analyzerPipe
	lex     *lexicon.Aggregator
	metrics metricsRecorder
	log     *slog.Logger
}

// NewService creates a new review service.
func NewService(
	log *slog.Logger,
	primary analyzerPipe,
	guesser analyzerPipe,
	lex *lexicon.Aggregator,
	metrics metricsRecorder,
) *Service {
	return &Service{
		primary: primary,
		guesser: guesser,
		lex:     lex,
		metrics: metrics,
		log:     log.With("service", "review"),
	}
}

// Status reports pipe liveness and registry sizes.
func (s *Service) Status(_ context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Pipes: map[string]bool{
			PipePrimary: s.primary.Alive(),
			PipeGuesser: s.guesser.Alive(),
		},
		Registry: s.lex.Stats(),
	}
}

// Close stops both analyzer processes. An operation still in flight is
// failed by killing the analyzers first.
func (s *Service) Close() error {
	s.lockInterrupting(context.Background(), s.primary, s.guesser)
	defer s.mu.Unlock()

	return errors.Join(s.primary.Close(), s.guesser.Close())
}

// lockInterrupting takes the service lock. If it is held, the given pipes
// are interrupted first so a round trip blocked on an unresponsive
// analyzer returns and releases it.
func (s *Service) lockInterrupting(ctx context.Context, pipes ...analyzerPipe) {
	if s.mu.TryLock() {
		return
	}
	for _, p := range pipes {
		s.log.WarnContext(ctx, "interrupting busy pipe", slog.String("pipe", p.Name()))
		p.Interrupt()
	}
	s.mu.Lock()
}
