// Package lexicon keeps the session's registry of surface forms and the
// lemma index over them, and answers the frequency-ranked queries.
package lexicon

import (
	"slices"

	"github.com/heartmarshall/lexreview/internal/domain"
)

// Aggregator owns the surface and lemma registries. They only ever grow.
// It is not safe for concurrent use; the review service serialises access.
type Aggregator struct {
	bySurface map[string]*domain.LexicalUnit
	byLemma   map[string][]string
	sightings int
}

// Stats summarises the registries.
type Stats struct {
	Surfaces  int
	Lemmas    int
	Sightings int // total sentences recorded over all surfaces
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		bySurface: make(map[string]*domain.LexicalUnit),
		byLemma:   make(map[string][]string),
	}
}

// Ingest records one sighting of surface in sentence. The first sighting
// creates the unit with readings and indexes it under each distinct lemma;
// later sightings only append the sentence. Empty readings are ignored so
// that no unit ever exists without an analysis. Reports whether a new unit
// was created.
func (a *Aggregator) Ingest(surface string, readings []domain.Analysis, sentence string) bool {
	if u, ok := a.bySurface[surface]; ok {
		u.Sentences = append(u.Sentences, sentence)
		a.sightings++
		return false
	}
	if len(readings) == 0 {
		return false
	}

	a.bySurface[surface] = &domain.LexicalUnit{
		Surface:   surface,
		Analyses:  slices.Clone(readings),
		Sentences: []string{sentence},
	}
	a.sightings++

	seen := make(map[string]struct{}, len(readings))
	for _, r := range readings {
		if _, dup := seen[r.Lemma]; dup {
			continue
		}
		seen[r.Lemma] = struct{}{}
		a.byLemma[r.Lemma] = append(a.byLemma[r.Lemma], surface)
	}
	return true
}

// Lookup returns a snapshot of the unit for surface.
func (a *Aggregator) Lookup(surface string) (domain.LexicalUnit, bool) {
	u, ok := a.bySurface[surface]
	if !ok {
		return domain.LexicalUnit{}, false
	}
	return u.Snapshot(), true
}

// Stats returns the current registry sizes.
func (a *Aggregator) Stats() Stats {
	return Stats{
		Surfaces:  len(a.bySurface),
		Lemmas:    len(a.byLemma),
		Sightings: a.sightings,
	}
}

// TopSurfaces returns up to limit units, most frequently seen first, ties
// in alphabetical order. With guessedOnly, units that have any dictionary
// reading are left out.
func (a *Aggregator) TopSurfaces(limit int, guessedOnly bool) []domain.LexicalUnit {
	keys := make([]string, 0, len(a.bySurface))
	for surface, u := range a.bySurface {
		if guessedOnly && !u.AllGuessed() {
			continue
		}
		keys = append(keys, surface)
	}

	rank(keys, func(k string) int { return a.bySurface[k].Occurrences() })

	keys = keys[:clamp(limit, len(keys))]
	out := make([]domain.LexicalUnit, 0, len(keys))
	for _, k := range keys {
		out = append(out, a.bySurface[k].Snapshot())
	}
	return out
}

// TopLemmas returns up to limit lemma groups, lemmas with the most distinct
// surfaces first, ties in alphabetical order. Each group lists the lemma's
// units in the order they were first seen. With guessedOnly, a lemma
// qualifies only if all of its units are fully guessed.
func (a *Aggregator) TopLemmas(limit int, guessedOnly bool) [][]domain.LexicalUnit {
	keys := make([]string, 0, len(a.byLemma))
	for lemma, surfaces := range a.byLemma {
		if guessedOnly && !a.allGuessed(surfaces) {
			continue
		}
		keys = append(keys, lemma)
	}

	rank(keys, func(k string) int { return len(a.byLemma[k]) })

	keys = keys[:clamp(limit, len(keys))]
	out := make([][]domain.LexicalUnit, 0, len(keys))
	for _, k := range keys {
		surfaces := a.byLemma[k]
		group := make([]domain.LexicalUnit, 0, len(surfaces))
		for _, s := range surfaces {
			group = append(group, a.bySurface[s].Snapshot())
		}
		out = append(out, group)
	}
	return out
}

func (a *Aggregator) allGuessed(surfaces []string) bool {
	for _, s := range surfaces {
		if !a.bySurface[s].AllGuessed() {
			return false
		}
	}
	return true
}

// rank orders keys alphabetically, then stably by descending count, so
// equal counts keep their alphabetical order.
func rank(keys []string, count func(string) int) {
	slices.Sort(keys)
	slices.SortStableFunc(keys, func(x, y string) int {
		return count(y) - count(x)
	})
}

func clamp(limit, n int) int {
	return max(0, min(limit, n))
}
