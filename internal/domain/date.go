package domain

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DisplayDateLayout is the normalized DD.MM.YYYY form shown in popups.
const DisplayDateLayout = "02.01.2006"

// dayFirstLayouts cover what the sheet actually contains. They are tried
// before the generic parser so day/month never get swapped.
var dayFirstLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2.1.06",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
}

var timeSuffixes = []string{"", " 15:04", " 15:04:05"}

// ParseDate parses a day-first date. The boolean is false when nothing
// matched.
func ParseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range dayFirstLayouts {
		for _, suffix := range timeSuffixes {
			if t, err := time.Parse(layout+suffix, text); err == nil {
				return t, true
			}
		}
	}

	t, err := dateparse.ParseIn(text, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate normalizes a day-first date to DD.MM.YYYY, or returns "" when
// the text cannot be parsed.
func FormatDate(text string) string {
	t, ok := ParseDate(text)
	if !ok {
		return ""
	}
	return t.Format(DisplayDateLayout)
}
