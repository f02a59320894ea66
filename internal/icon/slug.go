package icon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugReplacer maps characters that have no ASCII decomposition, or that
// carry meaning in brand names, to their slug spelling.
var slugReplacer = strings.NewReplacer(
	"+", "plus",
	".", "dot",
	"&", "and",
	"đ", "d",
	"ħ", "h",
	"ı", "i",
	"ĸ", "k",
	"ŀ", "l",
	"ł", "l",
	"ß", "ss",
	"ŧ", "t",
	"ø", "o",
)

// TitleToSlug derives the default slug for a title:
// 1. Lowercase
// 2. Apply the fixed character replacements
// 3. Decompose (NFD) and drop combining marks
// 4. Keep only [a-z0-9]
func TitleToSlug(title string) string {
	s := slugReplacer.Replace(strings.ToLower(title))

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
