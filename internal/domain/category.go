package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Category classifies articles and groups them inside newsletters.
type Category struct {
	Record
	Name string `json:"name"`
	Slug string `json:"slug"`
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify turns a display name into a URL segment:
// "Arts & Culture" -> "arts-culture", "Économie" -> "economie".
func Slugify(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = slugInvalid.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}
