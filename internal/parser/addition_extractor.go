package parser

import (
	"regexp"
	"strings"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/internal/normalizer"
)

var streetSuffixes = []string{
	"straße", "strasse", "weg", "platz", "allee", "ring", "gasse", "ufer", "chaussee",
}

// Leading words that belong to a street name rather than to a person or company
// ("Am Ring 5", "Alte Gasse 5").
var streetPrefixWords = map[string]bool{
	"am": true, "an": true, "auf": true, "aus": true, "bei": true, "beim": true,
	"im": true, "in": true, "zum": true, "zur": true, "zu": true, "unter": true,
	"hinter": true, "vor": true, "über": true, "nach": true, "von": true, "vom": true,
	"der": true, "die": true, "das": true, "den": true, "dem": true, "des": true,
	"alte": true, "alter": true, "altes": true, "alten": true,
	"neue": true, "neuer": true, "neues": true, "neuen": true,
	"große": true, "großer": true, "großen": true, "grosse": true, "grosser": true,
	"kleine": true, "kleiner": true, "kleinen": true,
	"obere": true, "oberer": true, "untere": true, "unterer": true,
	"hohe": true, "hoher": true, "lange": true, "langer": true, "kurze": true, "breite": true,
	"sankt": true, "st.": true, "dr.": true, "bgm.": true, "prof.": true,
}

// AdditionExtractor moves non-street text out of the street field.
type AdditionExtractor struct {
	venue *regexp.Regexp
}

// NewAdditionExtractor builds an extractor for the given venue keywords.
func NewAdditionExtractor(keywords []string) *AdditionExtractor {
	e := &AdditionExtractor{}
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) > 0 {
		e.venue = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(quoted, "|") + `)(?:[^\p{L}\p{N}]|$)`)
	}
	return e
}

// ExtractLeading moves words in front of the street name into address_addition.
// "Dieter Strödicke Pielstraße 8" keeps "Pielstraße 8". It returns the moved phrase.
func (e *AdditionExtractor) ExtractLeading(f *models.AddressFields) string {
	tokens := strings.Fields(f.Street)
	last := len(tokens) - 1
	if last < 2 || !reNumberToken.MatchString(tokens[last]) {
		return ""
	}
	anchor := -1
	for i := 0; i < last; i++ {
		if hasStreetSuffix(tokens[i]) {
			anchor = i
			break
		}
	}
	if anchor <= 0 || allPrefixWords(tokens[:anchor]) {
		return ""
	}
	phrase := strings.Join(tokens[:anchor], " ")
	f.Street = strings.Join(tokens[anchor:], " ")
	f.AppendAddition(phrase)
	return phrase
}

// hasStreetSuffix reports whether token ends in a street suffix. Only the
// token end counts so surnames like "Bringmann" or "Wegner" are not anchors.
func hasStreetSuffix(token string) bool {
	t := strings.ToLower(strings.TrimRight(token, ",;"))
	if strings.HasSuffix(t, "str.") {
		return true
	}
	for _, s := range streetSuffixes {
		if strings.HasSuffix(t, s) {
			return true
		}
	}
	return false
}

func allPrefixWords(tokens []string) bool {
	for _, t := range tokens {
		if !streetPrefixWords[strings.ToLower(t)] {
			return false
		}
	}
	return true
}

// ExtractVenue strips markup from the street and moves everything from the
// first venue keyword on into address_addition. It returns the moved text.
func (e *AdditionExtractor) ExtractVenue(f *models.AddressFields) string {
	f.Street = normalizer.StripMarkup(f.Street)
	if e.venue == nil || f.Street == "" {
		return ""
	}
	loc := e.venue.FindStringSubmatchIndex(f.Street)
	if loc == nil {
		return ""
	}
	venue := strings.TrimSpace(f.Street[loc[2]:])
	f.Street = cleanFragment(f.Street[:loc[2]])
	f.AppendAddition(venue)
	return venue
}
