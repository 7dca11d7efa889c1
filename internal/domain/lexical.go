package domain

import "slices"

// Analysis is one morphological reading of a surface form.
// Tag order is the order the analyzer emitted them in and is significant.
type Analysis struct {
	Lemma     string
	Tags      []string
	Paradigm  *string // set only for readings produced by the guesser
	Frequency int
}

// Guessed reports whether the reading came from the fallback guesser
// rather than an exact dictionary match.
func (a Analysis) Guessed() bool {
	return a.Paradigm != nil || a.Frequency > 0
}

// LexicalUnit is a distinct surface form and the sentences it was seen in.
// Analyses are fixed when the unit is first created; only Sentences grows.
type LexicalUnit struct {
	Surface   string
	Analyses  []Analysis
	Sentences []string
}

// AllGuessed reports whether every analysis of the unit is guessed.
func (u *LexicalUnit) AllGuessed() bool {
	for _, a := range u.Analyses {
		if !a.Guessed() {
			return false
		}
	}
	return true
}

// Occurrences is the number of times the surface has been seen.
func (u *LexicalUnit) Occurrences() int {
	return len(u.Sentences)
}

// Snapshot returns a copy that shares no mutable slices with u.
func (u *LexicalUnit) Snapshot() LexicalUnit {
	return LexicalUnit{
		Surface:   u.Surface,
		Analyses:  slices.Clone(u.Analyses),
		Sentences: slices.Clone(u.Sentences),
	}
}
