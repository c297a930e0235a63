package loader

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// dateLayouts are tried in order. Month-first layouts come before
// day-first ones, matching how the sales report writes dates (04-30-22).
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"01-02-06",
	"1-2-06",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"1/2/06",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	"2006/01/02",
	"2006.01.02",
	"02-Jan-2006",
	"02-Jan-06",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// parseDate parses s with the first matching layout and drops the time of day.
// ok is false for blank, null-like or unparseable input.
func parseDate(s string) (d civil.Date, ok bool) {
	s = strings.TrimSpace(s)
	if isNull(s) {
		return civil.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}
