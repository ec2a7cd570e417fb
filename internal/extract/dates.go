package extract

import (
	"strings"
	"time"
)

// dateLayouts covers the formats seen in procurement documents: ISO,
// US slash dates, and natural-language dates.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2006/01/02",
}

// NormalizeDate converts a date string to ISO form (YYYY-MM-DD). If the
// string cannot be parsed as a calendar date it is returned unchanged;
// normalization never fails.
func NormalizeDate(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}
