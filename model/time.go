package model

import (
	"fmt"
	"strings"
	"time"
)

// Acquisition plans publish their TimeSpan values as ISO-8601, but attribute
// blocks and hand-edited plans are not consistent about fractional seconds,
// zone designators, or the date/time separator. Thus, we need lenient
// "multi-format" parsing functionality, implemented here.

var planTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParsePlanTime is a drop-in replacement for time.Parse, but matching against
// multiple possible plan time formats. Values without a zone are UTC.
func ParsePlanTime(planTime string) (time.Time, error) {
	trimmed := strings.TrimSpace(planTime)
	for _, layout := range planTimeLayouts {
		if output, err := time.Parse(layout, trimmed); err == nil {
			return output, nil
		}
	}
	return time.Time{}, fmt.Errorf("Date could not be parsed by any expected time format: `%s`", planTime)
}
