package lastfm

import (
	"fmt"
	"strings"
)

// Period is the time window of a top albums chart.
type Period string

const (
	PeriodOverall Period = "overall"
	Period7Day    Period = "7day"
	Period1Month  Period = "1month"
	Period3Month  Period = "3month"
	Period6Month  Period = "6month"
	Period12Month Period = "12month"
)

const (
	// DefaultPeriod is used when a request names no period.
	DefaultPeriod = PeriodOverall

	// DefaultLimit is the number of albums requested when none is given.
	DefaultLimit = 10
)

// Periods lists every period Last.fm accepts.
var Periods = []Period{PeriodOverall, Period7Day, Period1Month, Period3Month, Period6Month, Period12Month}

// ParsePeriod validates s. An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPeriod, nil
	}
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid period %q", s)
}

// ClampLimit returns limit bounded to [1, maxLimit]; zero or less means
// DefaultLimit.
func ClampLimit(limit, maxLimit int) int {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
