package jsonfile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxNameLen = 100

var unsafeChars = strings.NewReplacer(
	`\`, "", "/", "", "*", "", "?", "", ":", "",
	`"`, "", "<", "", ">", "", "|", "",
)

// FileName builds "<jobId>_<company>_<title>.json" with a filesystem safe
// stem of at most 100 characters.
func FileName(jobID, company, title string) string {
	if company == "" {
		company = "Unknown"
	}
	if title == "" {
		title = "Unknown"
	}

	stem := jobID + "_" + Sanitize(company) + "_" + Sanitize(title)
	if r := []rune(stem); len(r) > maxNameLen {
		stem = string(r[:maxNameLen])
	}
	return stem + ".json"
}

// Sanitize drops characters that are not allowed in file names, folds
// accents to ASCII letters and joins words with underscores.
func Sanitize(s string) string {
	s = unsafeChars.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	return strings.Join(strings.Fields(s), "_")
}
