// Package stream parses the escaped output format of the analyzer into
// surface forms and their readings.
//
// A response looks like
//
//	^cats/cat<n><pl>$ [<b>]^sat/sit<vblex><past>/*sat$
//
// Lexical units are delimited by '^' and '$', readings are separated by '/',
// a leading '*' marks an unknown word, bracketed spans are superblanks and
// '\' escapes the next character. Everything outside a unit is blank.
// Malformed input is skipped, never reported.
package stream

import (
	"strings"

	"github.com/heartmarshall/lexreview/internal/domain"
)

// Token is one lexical unit with at least one accepted reading.
type Token struct {
	Surface  string
	Readings []domain.Analysis
}

// Stats counts what the tokenizer skipped while scanning one response.
type Stats struct {
	Units            int // units opened with '^'
	EmptySurfaces    int
	RejectedReadings int // readings starting with '*'
	DroppedSurfaces  int // units with no accepted reading
}

// Tokenize scans one analyzer response and returns its tokens in order.
func Tokenize(raw string) []Token {
	tokens, _ := TokenizeStats(raw)
	return tokens
}

// TokenizeStats is Tokenize that also reports skip counters.
func TokenizeStats(raw string) ([]Token, Stats) {
	s := scanner{src: raw}
	var tokens []Token

	for {
		s.skipBlank()
		if s.done() {
			break
		}
		if s.peek() != '^' {
			s.pos++
			continue
		}
		s.pos++
		s.stats.Units++

		surface := s.scanRun()
		if surface == "" {
			s.stats.EmptySurfaces++
			continue
		}

		if s.peek() != '/' {
			// No readings at all: disambiguated units such as
			// "^cat<n><sg>$" are their own single reading.
			if tok, ok := s.bareUnit(surface); ok {
				tokens = append(tokens, tok)
			} else {
				s.stats.DroppedSurfaces++
			}
			continue
		}

		var readings []domain.Analysis
		for s.peek() == '/' {
			s.pos++
			rd := s.scanRun()
			if rd == "" {
				continue
			}
			if rd[0] == '*' {
				s.stats.RejectedReadings++
				continue
			}
			readings = append(readings, ParseReading(rd))
		}
		if s.peek() == '$' {
			s.pos++
		}

		if len(readings) == 0 {
			s.stats.DroppedSurfaces++
			continue
		}
		tokens = append(tokens, Token{Surface: surface, Readings: readings})
	}

	return tokens, s.stats
}

type scanner struct {
	src   string
	pos   int
	stats Stats
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

// peek returns the current byte, or 0 at end of input. All delimiters are
// ASCII so byte scanning never splits a multi-byte character at a boundary.
func (s *scanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.src[s.pos]
}

// skipBlank consumes everything up to the next unescaped '^' outside a
// superblank.
func (s *scanner) skipBlank() {
	for !s.done() {
		switch c := s.src[s.pos]; {
		case c == '^':
			return
		case c == '\\' && s.pos+1 < len(s.src):
			s.pos += 2
		case c == '[':
			if end := s.superblankEnd(); end > 0 {
				s.pos = end
			} else {
				// unterminated: treat the bracket as a plain character
				s.pos++
			}
		default:
			s.pos++
		}
	}
}

// superblankEnd returns the index just past the ']' closing the superblank
// that starts at s.pos, or -1 if it is never closed.
func (s *scanner) superblankEnd() int {
	for i := s.pos + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case ']':
			return i + 1
		}
	}
	return -1
}

// scanRun reads a maximal run of characters that are neither '/' nor '$',
// keeping escaped pairs intact. A trailing lone '\' ends the run.
func (s *scanner) scanRun() string {
	start := s.pos
	for !s.done() {
		c := s.src[s.pos]
		if c == '/' || c == '$' {
			break
		}
		if c == '\\' {
			if s.pos+1 >= len(s.src) {
				break
			}
			s.pos += 2
			continue
		}
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *scanner) bareUnit(content string) (Token, bool) {
	if s.peek() == '$' {
		s.pos++
	}
	if content[0] == '*' || !strings.Contains(content, "<") {
		return Token{}, false
	}
	a := ParseReading(content)
	if a.Lemma == "" {
		return Token{}, false
	}
	return Token{Surface: a.Lemma, Readings: []domain.Analysis{a}}, true
}
