package services

import (
	"regexp"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var brDate = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// NormalizeDate accepts DD/MM/YYYY, an ISO timestamp or YYYY-MM-DD and
// returns YYYY-MM-DD. Anything else yields nil.
func NormalizeDate(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	var ymd string
	switch {
	case brDate.MatchString(value):
		m := brDate.FindStringSubmatch(value)
		ymd = m[3] + "-" + m[2] + "-" + m[1]
	case strings.Contains(value, "T") && len(value) >= 10:
		ymd = value[:10]
	default:
		ymd = value
	}

	if _, err := time.Parse(isoDate, ymd); err != nil {
		return nil
	}
	return &ymd
}

// middayTimestamp renders a stored date anchored at noon, so clients in any
// timezone display the same calendar day.
func middayTimestamp(ymd *string) *string {
	if ymd == nil || len(*ymd) < 10 {
		return ymd
	}
	s := (*ymd)[:10] + "T12:00:00"
	return &s
}
