// Package similarity scores how alike two names are.
package similarity

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// AcceptThreshold is the score a best match has to exceed.
const AcceptThreshold = 0.7

const (
	weightEdit   = 0.3
	weightPrefix = 0.4
	weightLength = 0.3
)

// Score blends edit distance, common prefix and length ratio into [0,1].
// Equal strings score 1.0, a single empty side scores 0.0.
func Score(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0.0
	}
	longest, shortest := max(la, lb), min(la, lb)

	edit := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
	prefix := float64(commonPrefix(a, b)) / float64(shortest)
	length := 1 - float64(longest-shortest)/float64(longest)

	return weightEdit*edit + weightPrefix*prefix + weightLength*length
}

func commonPrefix(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := 0
	for n < len(ra) && n < len(rb) && ra[n] == rb[n] {
		n++
	}
	return n
}

// SelectBestMatch returns the candidate with the strictly highest score.
// ok is false when nothing scores above AcceptThreshold.
func SelectBestMatch(query string, candidates []string) (best string, score float64, ok bool) {
	return SelectBestMatchFunc(query, candidates, nil)
}

// SelectBestMatchFunc is SelectBestMatch comparing key(query) against key(candidate).
// The returned string is the candidate as given. Ties keep the first candidate.
func SelectBestMatchFunc(query string, candidates []string, key func(string) string) (best string, score float64, ok bool) {
	if key == nil {
		key = func(s string) string { return s }
	}
	q := key(query)
	score = -1
	for _, c := range candidates {
		if s := Score(q, key(c)); s > score {
			best, score = c, s
		}
	}
	if score > AcceptThreshold {
		return best, score, true
	}
	if score < 0 {
		score = 0
	}
	return "", score, false
}

// Phonetic reports whether a and b share a Soundex code. Inputs should be ASCII folded.
func Phonetic(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return smetrics.Soundex(a) == smetrics.Soundex(b)
}

// JaroWinkler returns the Jaro-Winkler similarity with the usual boost settings.
func JaroWinkler(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, 0.7, 4)
}
