package normalizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Each pattern captures the character that follows the suffix so that a
// letter after it ("Straßenbahn", "Strödicke") blocks the rewrite.
var (
	reStrasse = regexp.MustCompile(`(?i)stra(?:ß|ss)e([^\p{L}\p{N}]|$)`)
	reStr     = regexp.MustCompile(`(?i)str(\.|[^\p{L}\p{N}]|$)`)
	rePlatz   = regexp.MustCompile(`(?i)pl\.([^\p{L}\p{N}-]|$)`)
	reSpaces  = regexp.MustCompile(`\s+`)
	reMarkup  = regexp.MustCompile(`&(?:[a-zA-Z]+|#\d+|#[xX][0-9a-fA-F]+);`)
)

const quoteChars = "\"'„“”‚‘’«»`´"

type abbreviation struct {
	re  *regexp.Regexp
	out string
}

var abbreviations = mustLoadAbbreviations()

// NormalizeStreetName writes every straße/strasse/str suffix as "str." and
// expands "pl." to "platz". Idempotent.
func NormalizeStreetName(street string) string {
	s := strings.TrimSpace(street)
	if s == "" {
		return ""
	}
	s = rewriteSuffix(s, reStrasse, "str.", false, nil)
	s = rewriteSuffix(s, reStr, "str.", true, nil)
	s = rewriteSuffix(s, rePlatz, "platz", false, isDiplom)
	return collapseSpaces(s)
}

// rewriteSuffix replaces each match of re with word, keeping the captured
// trailing character unless it is the period that dropTrailingDot consumes.
// The word is capitalised when the match starts a word in upper case.
// Matches for which skip returns true are left as they are.
func rewriteSuffix(s string, re *regexp.Regexp, word string, dropTrailingDot bool, skip func(s string, start int) bool) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		if skip != nil && skip(s, start) {
			continue
		}
		b.WriteString(s[last:start])

		w := word
		first, _ := utf8.DecodeRuneInString(s[start:])
		if unicode.IsUpper(first) && startsWord(s, start) {
			w = strings.ToUpper(word[:1]) + word[1:]
		}
		b.WriteString(w)

		tail := s[loc[2]:loc[3]]
		if !(dropTrailingDot && tail == ".") {
			b.WriteString(tail)
		}
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

// isDiplom reports whether the "pl." at start belongs to the title "Dipl.".
func isDiplom(s string, start int) bool {
	return start >= 2 && strings.EqualFold(s[start-2:start], "di") && startsWord(s, start-2)
}

func startsWord(s string, i int) bool {
	if i == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(prev) && !unicode.IsDigit(prev)
}

// NormalizeCityName drops everything from the first hyphen on ("Berlin-Mitte" -> "Berlin").
func NormalizeCityName(city string) string {
	c := strings.TrimSpace(city)
	if i := strings.Index(c, "-"); i >= 0 {
		if head := strings.TrimSpace(c[:i]); head != "" {
			return head
		}
	}
	return c
}

// StreetKey is the comparison key for street names. "Karl-Marx-Straße" and
// "karl marx str." share the key "karl marx str.".
func StreetKey(street string) string {
	k := strings.ToLower(NormalizeStreetName(street))
	k = strings.ReplaceAll(k, "-", " ")
	return collapseSpaces(k)
}

// ExpandAbbreviations returns street followed by its spelled-out variants.
func ExpandAbbreviations(street string) []string {
	street = strings.TrimSpace(street)
	variants := []string{street}
	seen := map[string]bool{street: true}
	add := func(v string) {
		v = collapseSpaces(v)
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	all := street
	for _, a := range abbreviations {
		if a.re.MatchString(street) {
			add(a.re.ReplaceAllString(street, a.out))
		}
		all = a.re.ReplaceAllString(all, a.out)
	}
	add(all)
	return variants
}

// StripMarkup removes HTML entities and quote characters.
func StripMarkup(s string) string {
	s = reMarkup.ReplaceAllString(s, " ")
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(quoteChars, r) {
			return -1
		}
		return r
	}, s)
	return collapseSpaces(s)
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}
