package extractor

import (
	"fmt"
	"hash/crc32"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Title separators LinkedIn appends to page titles. The earliest one found
// ends the job title.
var titleSeparators = []string{" | LinkedIn", " - LinkedIn", " at ", " | "}

var (
	digitsRe  = regexp.MustCompile(`\d+`)
	yearRe    = regexp.MustCompile(`\b\d{4}\b`)
	urnIDRe   = regexp.MustCompile(`:(\d+)$`)
	remoteRe  = regexp.MustCompile(`(?i)remote|remoto`)
	sentEndRe = regexp.MustCompile(`[.!?](\s|$)`)
)

// CleanTitle cuts a page or og:title down to the job title.
func CleanTitle(s string) string {
	cut := -1
	for _, sep := range titleSeparators {
		if i := strings.Index(s, sep); i > 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut > 0 {
		s = s[:cut]
	}
	return strings.TrimSpace(s)
}

// MarkRemote appends " (Remote)" to locations that mention remote work and
// do not already say so.
func MarkRemote(location string) string {
	if remoteRe.MatchString(location) && !strings.Contains(location, "Remote") {
		return location + " (Remote)"
	}
	return location
}

// ParseEmployeeCount reads counts like "1,000-5,000 employees" (midpoint,
// rounded down) or "51 employees".
func ParseEmployeeCount(s string) (int, bool) {
	nums := digitsRe.FindAllString(strings.ReplaceAll(s, ",", ""), 2)
	switch len(nums) {
	case 0:
		return 0, false
	case 1:
		n, err := strconv.Atoi(nums[0])
		return n, err == nil
	}

	a, errA := strconv.Atoi(nums[0])
	b, errB := strconv.Atoi(nums[1])
	if errA != nil || errB != nil {
		return 0, false
	}
	return (a + b) / 2, true
}

// ParseFoundedYear returns the first four-digit number in s.
func ParseFoundedYear(s string) (int, bool) {
	m := yearRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

// PosterIDFromCompany derives a seven digit id from a company name: CRC-32
// (IEEE) of the UTF-8 bytes, modulo 10,000,000, zero padded. Stable across
// runs and platforms but not unique: different companies can collide.
func PosterIDFromCompany(name string) string {
	return fmt.Sprintf("%07d", crc32.ChecksumIEEE([]byte(name))%10000000)
}

// StripHTML turns an HTML fragment into single-spaced plain text. Text of
// separate nodes is joined with a space; script and style bodies are dropped.
func StripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanText(s)
	}

	var parts []string
	var walk func(sel *goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "#text":
				parts = append(parts, node.Text())
			case "script", "style", "#comment":
			default:
				walk(node)
			}
		})
	}
	walk(doc.Selection)

	return cleanText(strings.Join(parts, " "))
}

// FirstSentence returns s up to and including its first sentence terminator.
func FirstSentence(s string) string {
	s = strings.TrimSpace(s)
	if loc := sentEndRe.FindStringIndex(s); loc != nil {
		return s[:loc[0]+1]
	}
	return s
}

func urnID(urn string) (string, bool) {
	m := urnIDRe.FindStringSubmatch(strings.TrimSpace(urn))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripLabel(s string, labels ...string) string {
	for _, l := range labels {
		if len(s) >= len(l) && strings.EqualFold(s[:len(l)], l) {
			s = s[len(l):]
			break
		}
	}
	return strings.TrimSpace(strings.TrimLeft(s, ": "))
}
