package filtering

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Casers keep state, so a new one is built per call.

// NormalizeText lowercases and trims s after NFC composition.
func NormalizeText(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(norm.NFC.String(s)))
}

// NormalizeStatus uppercases and trims a status marker.
func NormalizeStatus(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(norm.NFC.String(s)))
}
