package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Characters dropped outright rather than turned into a separator, so that
// "Joe's" becomes "joes" and not "joe-s".
const droppedPunctuation = "!\"£$%^&*()+[]{};:@#~?\\/,|><`¬'=‘’©®™"

// NormalizeString turns free text into a code: diacritics are removed, the
// result is lower-cased, a fixed set of punctuation is dropped and every
// remaining run of separators is collapsed into one replacer. Leading and
// trailing replacers are trimmed.
func NormalizeString(input, replacer string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(stripMarks, input)
	if err != nil {
		s = input
	}
	s = strings.ToLower(s)

	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		switch {
		case strings.ContainsRune(droppedPunctuation, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSep && b.Len() > 0 {
				b.WriteString(replacer)
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
