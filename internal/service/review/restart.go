package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Restart relaunches the selected analyzer pipe, or both. This is the only
// way to recover a broken pipe. If another operation holds the service, the
// selected pipes are killed first so that operation fails instead of
// blocking the restart.
func (s *Service) Restart(ctx context.Context, input RestartInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	var pipes []analyzerPipe
	for _, p := range []analyzerPipe{s.primary, s.guesser} {
		if input.Pipe == "" || input.Pipe == p.Name() {
			pipes = append(pipes, p)
		}
	}

	s.lockInterrupting(ctx, pipes...)
	defer s.mu.Unlock()

	var errs []error
	for _, p := range pipes {
		s.metrics.IncRestart(p.Name())
		if err := p.Restart(ctx); err != nil {
			errs = append(errs, fmt.Errorf("restart %s: %w", p.Name(), err))
			continue
		}
		s.log.InfoContext(ctx, "pipe restarted", slog.String("pipe", p.Name()))
	}

	return errors.Join(errs...)
}
