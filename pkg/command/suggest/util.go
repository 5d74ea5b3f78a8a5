package suggest

import (
	"cmp"
	"slices"
	"strings"

	"github.com/agext/levenshtein"
	"go.minekube.com/brigodier"
)

const DefaultMinimumSimilarityScore = 0.2

// Similar calls SimilarScore with DefaultMinimumSimilarityScore.
func Similar(builder *brigodier.SuggestionsBuilder, candidates []string) *brigodier.SuggestionsBuilder {
	return SimilarScore(builder, candidates, DefaultMinimumSimilarityScore)
}

// SimilarScore sorts and suggests only similar matching candidates based on the current argument input.
//
// It filters and sorts the best matching candidates based
// on the levenshtein similarity score of the argument typed so far.
// Candidates with equal score keep their order.
//
// A candidate Score below minScore is dropped from the suggestions.
// No candidates are dropped when minScore >= 1, this is useful for using
// this function for sorting candidates by score only.
func SimilarScore(builder *brigodier.SuggestionsBuilder, candidates []string, minScore float64) *brigodier.SuggestionsBuilder {
	for _, text := range Rank(builder.Remaining, candidates, minScore) {
		builder.Suggest(text)
	}
	return builder
}

// Rank returns the candidates similar to given, best match first.
// An empty given keeps all candidates in order.
func Rank(given string, candidates []string, minScore float64) []string {
	if given == "" {
		return slices.Clone(candidates)
	}
	type scored struct {
		text  string
		score float64
	}
	var result []scored
	for _, text := range candidates {
		score := Score(given, text)
		if score < minScore && minScore < 1 {
			continue
		}
		result = append(result, scored{text: text, score: score})
	}
	slices.SortStableFunc(result, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	out := make([]string, len(result))
	for i, s := range result {
		out[i] = s.text
	}
	return out
}

// Score calculates the similarity score in the range of 0..1 of two strings
// ignoring case. Only the prefix of suggestion as long as given is compared.
// A score of 1 means the strings are identical, and 0 means they have nothing in common.
func Score(given, suggestion string) float64 {
	given, suggestion = strings.ToLower(given), strings.ToLower(suggestion)
	i := len(given)
	if len(suggestion) < i {
		i = len(suggestion)
	}
	return levenshtein.Similarity(given, suggestion[:i], nil)
}
