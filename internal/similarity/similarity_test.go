package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreBounds(t *testing.T) {
	assert.Equal(t, 1.0, Score("", ""))
	assert.Equal(t, 1.0, Score("pielstr.", "pielstr."))
	assert.Equal(t, 0.0, Score("", "pielstr."))
	assert.Equal(t, 0.0, Score("pielstr.", ""))

	s := Score("bahnhofstr.", "bahnhofstrasse")
	assert.Greater(t, s, 0.7)
	assert.Less(t, s, 1.0)
}

func TestScoreCountsRunes(t *testing.T) {
	// "ß" is two bytes but one edit.
	s := Score("straße", "strasse")
	assert.InDelta(t, 0.3*(1-2.0/7)+0.4*(4.0/6)+0.3*(6.0/7), s, 1e-9)
}

func TestSelectBestMatch(t *testing.T) {
	best, score, ok := SelectBestMatch("bahnhofstr", []string{"hauptstr", "bahnhofstr.", "bahnhofweg"})
	assert.True(t, ok)
	assert.Equal(t, "bahnhofstr.", best)
	assert.Greater(t, score, AcceptThreshold)

	_, _, ok = SelectBestMatch("zzz", []string{"hauptstr"})
	assert.False(t, ok)

	_, score, ok = SelectBestMatch("x", nil)
	assert.False(t, ok)
	assert.Equal(t, 0.0, score)
}

func TestSelectBestMatchKeepsFirstOnTie(t *testing.T) {
	best, _, ok := SelectBestMatch("abcd", []string{"abce", "abcf"})
	assert.True(t, ok)
	assert.Equal(t, "abce", best)
}

func TestSelectBestMatchFunc(t *testing.T) {
	lower := func(s string) string {
		out := []rune(s)
		for i, r := range out {
			if r >= 'A' && r <= 'Z' {
				out[i] = r + 32
			}
		}
		return string(out)
	}
	best, score, ok := SelectBestMatchFunc("HAUPTWEG", []string{"Nebenweg", "Hauptweg"}, lower)
	assert.True(t, ok)
	assert.Equal(t, "Hauptweg", best)
	assert.Equal(t, 1.0, score)
}

func TestPhonetic(t *testing.T) {
	assert.True(t, Phonetic("paderborn", "paterborn"))
	assert.False(t, Phonetic("paderborn", "berlin"))
	assert.False(t, Phonetic("", "berlin"))
}

func TestJaroWinkler(t *testing.T) {
	assert.Greater(t, JaroWinkler("muenchen", "munchen"), 0.9)
	assert.Equal(t, 0.0, JaroWinkler("", "x"))
}
