// Package transittime parses the bus agency's Pacific wall-clock timestamps
// into absolute instants with fixed offsets, never the process timezone.
package transittime

import (
	"fmt"
	"strconv"
	"time"
)

// timestamps arrive as "yyyyMMdd HH:mm", fixed width
const timestampLength = 14

var (
	pacificStandard = time.FixedZone("PST", -8*60*60)
	pacificDaylight = time.FixedZone("PDT", -7*60*60)
)

// ParseError indicates a timestamp did not match the agency's fixed-width
// layout.
type ParseError struct {
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse timestamp %q: %s", e.Value, e.Reason)
}

// ParsePacific converts an agency-local "yyyyMMdd HH:mm" timestamp into an
// absolute instant, applying -07:00 when the calendar date falls within US
// Pacific daylight saving time and -08:00 otherwise.
func ParsePacific(value string) (time.Time, error) {
	if len(value) != timestampLength {
		return time.Time{}, &ParseError{Value: value, Reason: "expected 14 characters"}
	}
	if value[8] != ' ' || value[11] != ':' {
		return time.Time{}, &ParseError{Value: value, Reason: "expected \"yyyyMMdd HH:mm\" layout"}
	}
	year, err := parseField(value, 0, 4)
	if err != nil {
		return time.Time{}, err
	}
	month, err := parseField(value, 4, 6)
	if err != nil {
		return time.Time{}, err
	}
	day, err := parseField(value, 6, 8)
	if err != nil {
		return time.Time{}, err
	}
	hour, err := parseField(value, 9, 11)
	if err != nil {
		return time.Time{}, err
	}
	minute, err := parseField(value, 12, 14)
	if err != nil {
		return time.Time{}, err
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, &ParseError{Value: value, Reason: "field out of range"}
	}

	zone := pacificStandard
	if inDaylightSaving(year, time.Month(month), day) {
		zone = pacificDaylight
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, zone), nil
}

func parseField(value string, start int, end int) (int, error) {
	field, err := strconv.Atoi(value[start:end])
	if err != nil || field < 0 {
		return 0, &ParseError{Value: value, Reason: fmt.Sprintf("non-numeric field at positions %d-%d", start, end)}
	}
	return field, nil
}

// inDaylightSaving reports whether the calendar date falls within US Pacific
// daylight saving time: the second Sunday of March through the first Sunday
// of November, half-open [start, end) with each date taken at local midnight.
func inDaylightSaving(year int, month time.Month, day int) bool {
	switch {
	case month < time.March || month > time.November:
		return false
	case month > time.March && month < time.November:
		return true
	case month == time.March:
		return day >= nthSunday(year, time.March, 2)
	default:
		return day < nthSunday(year, time.November, 1)
	}
}

// nthSunday returns the day of the month of the nth Sunday in the given month.
func nthSunday(year int, month time.Month, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysUntilSunday := (7 - int(first.Weekday())) % 7
	return 1 + daysUntilSunday + 7*(n-1)
}
