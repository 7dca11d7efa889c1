package review

import (
	"context"
	"log/slog"
)

// ListTop returns the most frequent surfaces or lemmas.
func (s *Service) ListTop(ctx context.Context, input ListInput) (ListResult, error) {
	if err := input.Validate(); err != nil {
		return ListResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := ListResult{Method: input.Method}
	switch input.Method {
	case MethodSurface:
		res.Surfaces = s.lex.TopSurfaces(input.Count, input.GuessedOnly)
	case MethodLemma:
		res.Lemmas = s.lex.TopLemmas(input.Count, input.GuessedOnly)
	}

	s.log.DebugContext(ctx, "listed",
		slog.String("method", input.Method),
		slog.Int("count", input.Count),
		slog.Bool("guessed_only", input.GuessedOnly),
	)

	return res, nil
}
