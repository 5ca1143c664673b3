package aigen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIdenticalTexts(t *testing.T) {
	text := "You ran 15 kilometers this week, the couch misses you."
	assert.Equal(t, 1.0, Similarity(text, text))
}

func TestSimilarityDisjointTexts(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("alpha bravo charlie", "delta echo foxtrot"))
}

func TestSimilarityCaseAndPunctuationInsensitive(t *testing.T) {
	a := "Nice streak! Three days in a row."
	b := "nice streak three days in a row"
	assert.Equal(t, 1.0, Similarity(a, b))
}

func TestSimilarityPartialOverlap(t *testing.T) {
	a := "you crushed that morning run"
	b := "you crushed that evening ride"
	sim := Similarity(a, b)
	assert.Greater(t, sim, 0.2)
	assert.Less(t, sim, 0.8)
}

func TestSimilarityEmpty(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("something", ""))
}

func TestTooSimilarThreshold(t *testing.T) {
	previous := []string{
		"you ran 15 kilometers this week",
		"three day streak, not bad at all",
	}

	assert.True(t, TooSimilar("you ran 15 kilometers this week", previous, 0.75))
	assert.False(t, TooSimilar("completely different motivational text about cycling uphill", previous, 0.75))
}
