package layout

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var dateTokenPattern = regexp.MustCompile(`\p{Nd}+/\p{Nd}+/\p{Nd}+`)

// centuryWindow bounds two-digit years to the 100 years starting this far
// before the reference year.
const centuryWindow = 50

// ParseDateToken interprets a slash-separated numeric date. The first field is
// the year when it exceeds 31 or is written with more than two digits, giving
// year/month/day. Otherwise a first field above 12 reads as day/month/year and
// anything else as month/day/year. A field of more than two digits counts as a
// year with its century given, so at most one such field is allowed and no
// two-digit expansion applies. ok is false when no calendar date fits.
func ParseDateToken(token string, reference time.Time) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(token), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	fields := make([]int, 3)
	long := 0
	for i, part := range parts {
		n, ok := parseDigits(part)
		if !ok {
			return time.Time{}, false
		}
		fields[i] = n
		if utf8.RuneCountInString(part) > 2 {
			long++
		}
	}
	if long > 1 {
		return time.Time{}, false
	}
	centurySpecified := long == 1

	var year, month, day int
	switch {
	case fields[0] > 31 || utf8.RuneCountInString(parts[0]) > 2:
		year, month, day = fields[0], fields[1], fields[2]
	case fields[0] > 12:
		day, month, year = fields[0], fields[1], fields[2]
	default:
		month, day, year = fields[0], fields[1], fields[2]
	}
	if !centurySpecified {
		year = expandYear(year, reference.Year())
	}
	return makeDate(year, month, day)
}

// RewriteTitle moves the first date found in title to the front in
// YYYY-MM-DD form, joining it with the trimmed text on either side by " - ".
// The title is returned unchanged when it holds no parseable date.
func RewriteTitle(title string, reference time.Time) (string, bool) {
	loc := dateTokenPattern.FindStringIndex(title)
	if loc == nil {
		return title, false
	}
	date, ok := ParseDateToken(title[loc[0]:loc[1]], reference)
	if !ok {
		return title, false
	}
	parts := []string{date.Format("2006-01-02")}
	if left := strings.TrimSpace(title[:loc[0]]); left != "" {
		parts = append(parts, left)
	}
	if right := strings.TrimSpace(title[loc[1]:]); right != "" {
		parts = append(parts, right)
	}
	return strings.Join(parts, " - "), true
}

func expandYear(year, refYear int) int {
	if year >= 100 {
		return year
	}
	year += refYear - refYear%100
	switch {
	case year >= refYear+centuryWindow:
		year -= 100
	case year < refYear-centuryWindow:
		year += 100
	}
	return year
}

// parseDigits reads a run of decimal digits from any script.
func parseDigits(s string) (int, bool) {
	if s == "" || utf8.RuneCountInString(s) > 9 {
		return 0, false
	}
	n := 0
	for _, r := range s {
		d, ok := digitValue(r)
		if !ok {
			return 0, false
		}
		n = n*10 + d
	}
	return n, true
}

// digitValue relies on every Nd range being made of whole zero-to-nine runs.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	for _, rng := range unicode.Nd.R16 {
		if lo, hi := rune(rng.Lo), rune(rng.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	for _, rng := range unicode.Nd.R32 {
		if lo, hi := rune(rng.Lo), rune(rng.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, true
		}
	}
	return 0, false
}

func makeDate(year, month, day int) (time.Time, bool) {
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
