package review

import (
	"github.com/heartmarshall/lexreview/internal/domain"
	"github.com/heartmarshall/lexreview/internal/lexicon"
)

// ProcessResult summarises one ProcessText call.
type ProcessResult struct {
	Sentences   int
	Tokens      int // tokens ingested over both pipes
	NewSurfaces int
}

// ListResult holds a ranked listing. Exactly one of Surfaces or Lemmas is
// set, depending on Method.
type ListResult struct {
	Method   string
	Surfaces []domain.LexicalUnit
	Lemmas   [][]domain.LexicalUnit
}

// Status is a point-in-time view of the service.
type Status struct {
	Pipes    map[string]bool
	Registry lexicon.Stats
}

// Ready reports whether every pipe is alive.
func (s Status) Ready() bool {
	for _, alive := range s.Pipes {
		if !alive {
			return false
		}
	}
	return true
}
