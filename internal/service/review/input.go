package review

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/lexreview/internal/domain"
)

// Ranking methods accepted by ListTop.
const (
	MethodSurface = "surf"
	MethodLemma   = "lemma"
)

// ProcessInput holds the text to analyze, one sentence per line.
type ProcessInput struct {
	Text string
}

// Validate rejects text that is not valid UTF-8 or that contains a NUL
// byte, which the analyzer reads as the end of a request.
func (i ProcessInput) Validate() error {
	var errs []domain.FieldError
	if !utf8.ValidString(i.Text) {
		errs = append(errs, domain.FieldError{Field: "t", Message: "must be valid UTF-8"})
	}
	if strings.IndexByte(i.Text, 0) >= 0 {
		errs = append(errs, domain.FieldError{Field: "t", Message: "must not contain NUL bytes"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListInput holds the parameters for a ranked listing.
type ListInput struct {
	Count       int
	Method      string
	GuessedOnly bool
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError
	if i.Count < 0 {
		errs = append(errs, domain.FieldError{Field: "c", Message: "must be non-negative"})
	}
	if i.Method != MethodSurface && i.Method != MethodLemma {
		errs = append(errs, domain.FieldError{Field: "m", Message: "must be surf or lemma"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RestartInput selects the pipe to restart. An empty Pipe restarts both.
type RestartInput struct {
	Pipe string
}

// Validate checks the pipe name.
func (i RestartInput) Validate() error {
	switch i.Pipe {
	case "", PipePrimary, PipeGuesser:
		return nil
	}
	return domain.NewValidationError("pipe", "must be primary or guesser")
}
