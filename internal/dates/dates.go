// Package dates turns the free-text posting dates LinkedIn shows ("3 days ago",
// "Pubblicato 2 settimane fa", "Mar 15, 2023") into timestamps.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	Day = 24 * time.Hour

	// FallbackAge is how far back an unparseable posting date is placed.
	FallbackAge = 30 * Day

	// maxAgeDays bounds relative dates; larger ages are treated as unparseable.
	maxAgeDays = 100 * 365
)

var (
	prefixRe = regexp.MustCompile(`(?i)^\s*(?:posted|pubblicato)\s+`)

	daysAgoRe   = regexp.MustCompile(`(?i)(\d+)\s+(?:days?|giorn[oi])\s+(?:ago|fa)`)
	weeksAgoRe  = regexp.MustCompile(`(?i)(\d+)\s+(?:weeks?|settiman[ae])\s+(?:ago|fa)`)
	monthsAgoRe = regexp.MustCompile(`(?i)(\d+)\s+(?:months?|mes[ei])\s+(?:ago|fa)`)
	sameDayRe   = regexp.MustCompile(`(?i)(\d+)\s+(?:hours?|minutes?|or[ae]|minut[oi])\s+(?:ago|fa)`)

	monthDayYearRe = regexp.MustCompile(`(?i)\b([a-z]{3})[a-z]*\.?\s+(\d{1,2}),?\s+(\d{4})\b`)
	dayMonthYearRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+([a-z]{3})[a-z]*\.?\s+(\d{4})\b`)
)

// months maps English and Italian three-letter abbreviations.
var months = map[string]time.Month{
	"jan": time.January, "gen": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May, "mag": time.May,
	"jun": time.June, "giu": time.June,
	"jul": time.July, "lug": time.July,
	"aug": time.August, "ago": time.August,
	"sep": time.September, "set": time.September,
	"oct": time.October, "ott": time.October,
	"nov": time.November,
	"dec": time.December, "dic": time.December,
}

// Normalize converts text relative to now. It never fails: text that matches
// no known form yields now minus FallbackAge.
func Normalize(text string, now time.Time) time.Time {
	if t, ok := Parse(text, now); ok {
		return t
	}
	return now.Add(-FallbackAge)
}

// Parse is Normalize without the fallback. The rules are tried in order and
// the first match wins. Months count as 30 days.
func Parse(text string, now time.Time) (time.Time, bool) {
	s := strings.TrimSpace(prefixRe.ReplaceAllString(text, ""))
	if s == "" {
		return time.Time{}, false
	}

	if n, ok := count(daysAgoRe, s); ok {
		return daysAgo(now, n, 1)
	}

	if n, ok := count(weeksAgoRe, s); ok {
		return daysAgo(now, n, 7)
	}

	if n, ok := count(monthsAgoRe, s); ok {
		return daysAgo(now, n, 30)
	}

	lower := strings.ToLower(s)

	if sameDayRe.MatchString(s) || containsAny(lower, "today", "oggi", "just now", "appena") {
		return now, true
	}

	if containsAny(lower, "yesterday", "ieri") {
		return now.Add(-Day), true
	}

	if t, ok := absolute(s, now.Location()); ok {
		return t, true
	}

	return time.Time{}, false
}

func daysAgo(now time.Time, n, unit int) (time.Time, bool) {
	if n > maxAgeDays/unit {
		return time.Time{}, false
	}
	return now.Add(-time.Duration(n*unit) * Day), true
}

func count(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func absolute(s string, loc *time.Location) (time.Time, bool) {
	if m := monthDayYearRe.FindStringSubmatch(s); m != nil {
		if t, ok := buildDate(m[3], m[1], m[2], loc); ok {
			return t, true
		}
	}

	if m := dayMonthYearRe.FindStringSubmatch(s); m != nil {
		if t, ok := buildDate(m[3], m[2], m[1], loc); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

func buildDate(year, month, day string, loc *time.Location) (time.Time, bool) {
	mon, ok := months[strings.ToLower(month)]
	if !ok {
		return time.Time{}, false
	}

	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}

	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}

	t := time.Date(y, mon, d, 0, 0, 0, 0, loc)
	if t.Month() != mon {
		// Feb 30 and friends roll into the next month
		return time.Time{}, false
	}

	return t, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
