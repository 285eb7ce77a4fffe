package table

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateOutputLayout is how every date leaves the pipeline.
const DateOutputLayout = "02/01/2006"

var firstIntPattern = regexp.MustCompile(`\d+`)

// ParseAge extracts the leading integer from a free-text age field
// ("45 años" -> 45). Absent or unparseable values report ok=false;
// the caller decides what a missing age means.
func ParseAge(s string) (float64, bool) {
	m := firstIntPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Day-first layouts tried in order. Sources mix separators and
// sometimes carry a time component.
var dateLayouts = []string{
	"2/1/2006",
	"02/01/2006",
	"2-1-2006",
	"02-01-2006",
	"2/1/2006 15:04:05",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseDate parses a free-text date day-first. It never fails hard:
// unparseable input reports ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateOutputLayout)
}

// ReformatDate parses a free-text date and re-renders it DD/MM/YYYY,
// or returns "" when the input does not parse.
func ReformatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return FormatDate(t)
}
