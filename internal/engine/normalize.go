package engine

// normalize.go provides the two normalization forms used across the engine:
// a display-preserving trim for stored values, and a case/accent-folding
// form used exclusively for identity-matching keys.

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// foldAccents decomposes to NFD, drops combining marks, recomposes.
// "Nicolò" and "Nicolo" collapse to the same key form.
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize trims a raw field value. Returns invalid (null) if the input
// is empty after trimming; otherwise the trimmed string unchanged.
// Every input maps to a defined output.
func Normalize(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// NormalizeKey produces the case-insensitive matching form of a value:
// trimmed, lowercased, accents stripped, internal whitespace runs
// collapsed to a single space. Used only for identity matching, never
// for stored display values.
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(foldAccents, s); err == nil {
		s = folded
	}
	return whitespaceRun.ReplaceAllString(s, " ")
}
