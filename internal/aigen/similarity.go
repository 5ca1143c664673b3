package aigen

import (
	"strings"
	"unicode"
)

// tokenize lowercases the text and splits it into word tokens plus adjacent
// word bigrams. Bigrams keep the measure sensitive to phrasing, not just
// vocabulary.
func tokenize(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make(map[string]struct{}, len(words)*2)
	for i, w := range words {
		tokens[w] = struct{}{}
		if i > 0 {
			tokens[words[i-1]+" "+w] = struct{}{}
		}
	}
	return tokens
}

// Similarity returns the Jaccard index of the two texts' token sets, in
// [0, 1]. Two empty texts are considered identical.
func Similarity(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for token := range ta {
		if _, ok := tb[token]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// TooSimilar reports whether the candidate crosses the threshold against any
// of the previous texts.
func TooSimilar(candidate string, previous []string, threshold float64) bool {
	for _, p := range previous {
		if Similarity(candidate, p) > threshold {
			return true
		}
	}
	return false
}
