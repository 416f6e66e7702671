package parser

import (
	"regexp"
	"strings"
)

var (
	reLeadingNumber  = regexp.MustCompile(`^(\d+[A-Za-z]?)[\s,]+(.+)$`)
	reTrailingNumber = regexp.MustCompile(`^(.+?)[\s,]+(\d+[A-Za-z]?)$`)
	reHouseNumber    = regexp.MustCompile(`\b\d{1,5}[A-Za-z]?(?:[/-]\d{1,5}[A-Za-z]?)?\b`)
	reNumberAfter    = regexp.MustCompile(`^[\s,]*(\d{1,5}[A-Za-z]?(?:[/-]\d{1,5}[A-Za-z]?)?)\b`)
	reNumberToken    = regexp.MustCompile(`^\d+[A-Za-z]?$`)
	reSpaces         = regexp.MustCompile(`\s+`)
)

// SplitStreet separates a house number at the start or end of street.
// "12a Musterstraße" and "Musterstraße 12a" both give ("Musterstraße", "12a").
func SplitStreet(street string) (name, number string) {
	s := strings.TrimSpace(street)
	if m := reLeadingNumber.FindStringSubmatch(s); m != nil {
		return cleanFragment(m[2]), m[1]
	}
	if m := reTrailingNumber.FindStringSubmatch(s); m != nil {
		return cleanFragment(m[1]), m[2]
	}
	return s, ""
}

// ExtractHouseNumber finds the first house number in text ("12", "12a", "12-14", "3/1")
// and returns it with the remaining text.
func ExtractHouseNumber(text string) (number, rest string, ok bool) {
	loc := reHouseNumber.FindStringIndex(text)
	if loc == nil {
		return "", text, false
	}
	return text[loc[0]:loc[1]], cleanFragment(text[:loc[0]] + " " + text[loc[1]:]), true
}

// numberAfter reads a house number directly following position i of text.
// It returns the number and how many bytes it consumed.
func numberAfter(text string, i int) (string, int) {
	m := reNumberAfter.FindStringSubmatchIndex(text[i:])
	if m == nil {
		return "", 0
	}
	return text[i+m[2] : i+m[3]], m[1]
}

// cleanFragment collapses whitespace and trims separator characters.
func cleanFragment(s string) string {
	s = reSpaces.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " ,", ",")
	return strings.Trim(s, " ,;-")
}
