package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/lexreview/internal/stream"
)

// ProcessText runs every non-blank line of the input through the primary
// analyzer and then the guesser, and records each resulting token under
// that line. It stops at the first pipe failure; lines already processed
// stay recorded.
func (s *Service) ProcessText(ctx context.Context, input ProcessInput) (ProcessResult, error) {
	if err := input.Validate(); err != nil {
		return ProcessResult{}, err
	}
	sentences := splitSentences(input.Text)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.metrics.ObserveRegistry(s.lex.Stats()) }()

	var res ProcessResult
	for _, sentence := range sentences {
		s.log.DebugContext(ctx, "processing sentence", slog.String("sentence", sentence))

		for _, p := range []analyzerPipe{s.primary, s.guesser} {
			tokens, created, err := s.analyze(ctx, p, sentence)
			if err != nil {
				return res, fmt.Errorf("process sentence %d: %w", res.Sentences+1, err)
			}
			res.Tokens += tokens
			res.NewSurfaces += created
		}
		res.Sentences++
	}

	s.log.InfoContext(ctx, "text processed",
		slog.Int("sentences", res.Sentences),
		slog.Int("tokens", res.Tokens),
		slog.Int("new_surfaces", res.NewSurfaces),
	)

	return res, nil
}

func (s *Service) analyze(ctx context.Context, p analyzerPipe, sentence string) (tokens, created int, err error) {
	start := time.Now()
	raw, err := p.Process(ctx, sentence)
	s.metrics.ObserveAnalyzer(p.Name(), time.Since(start), err)
	if err != nil {
		return 0, 0, err
	}

	toks, stats := stream.TokenizeStats(raw)
	s.metrics.ObserveTokens(p.Name(), stats)
	if stats.DroppedSurfaces > 0 || stats.EmptySurfaces > 0 {
		s.log.DebugContext(ctx, "analyzer units skipped",
			slog.String("pipe", p.Name()),
			slog.Int("dropped", stats.DroppedSurfaces),
			slog.Int("empty", stats.EmptySurfaces),
		)
	}

	for _, tok := range toks {
		if s.lex.Ingest(tok.Surface, tok.Readings, sentence) {
			created++
		}
	}
	return len(toks), created, nil
}

// splitSentences splits text into lines, dropping blank ones. Lines keep
// their inner whitespace.
func splitSentences(text string) []string {
	lines := strings.FieldsFunc(strings.TrimSpace(text), isLineBreak)

	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
