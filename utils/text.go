package utils

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// StripAccents removes combining marks: "Categoría" -> "Categoria".
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify builds a URL-friendly identifier: "Lámpara Arc Doré" -> "lampara-arc-dore".
func Slugify(text string) string {
	s := strings.ToLower(StripAccents(text))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FormatPrice renders a whole-unit currency amount with the locale's grouping,
// e.g. 1890000 in es-CL -> "$1.890.000".
func FormatPrice(price float64, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse("es-CL")
	}
	p := message.NewPrinter(tag)
	return "$" + p.Sprintf("%d", int64(math.Round(price)))
}

// Truncate cuts text to maxLength runes, adding an ellipsis when shortened.
func Truncate(text string, maxLength int) string {
	r := []rune(text)
	if len(r) <= maxLength {
		return text
	}
	return strings.TrimRightFunc(string(r[:maxLength]), unicode.IsSpace) + "…"
}
