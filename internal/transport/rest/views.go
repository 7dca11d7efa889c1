package rest

import "github.com/heartmarshall/lexreview/internal/domain"

type analysisResponse struct {
	Lemma    string   `json:"lemma"`
	Paradigm *string  `json:"paradigm"`
	Freq     int      `json:"freq"`
	Tags     []string `json:"tags"`
	Guessed  bool     `json:"guessed"`
}

type unitResponse struct {
	Surface   string             `json:"surface"`
	Analyses  []analysisResponse `json:"analyses"`
	Sentences []string           `json:"sentences"`
}

func toAnalysisResponse(a domain.Analysis) analysisResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return analysisResponse{
		Lemma:    a.Lemma,
		Paradigm: a.Paradigm,
		Freq:     a.Frequency,
		Tags:     tags,
		Guessed:  a.Guessed(),
	}
}

func toUnitResponse(u domain.LexicalUnit) unitResponse {
	analyses := make([]analysisResponse, 0, len(u.Analyses))
	for _, a := range u.Analyses {
		analyses = append(analyses, toAnalysisResponse(a))
	}
	sentences := u.Sentences
	if sentences == nil {
		sentences = []string{}
	}
	return unitResponse{
		Surface:   u.Surface,
		Analyses:  analyses,
		Sentences: sentences,
	}
}

func toUnitsResponse(units []domain.LexicalUnit) []unitResponse {
	out := make([]unitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitResponse(u))
	}
	return out
}

func toGroupsResponse(groups [][]domain.LexicalUnit) [][]unitResponse {
	out := make([][]unitResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, toUnitsResponse(g))
	}
	return out
}
