// Package yearmonth normalizes loosely formatted human dates ("2021",
// "04/2021", "2021-4", "Sept 2019") into a canonical "YYYY-MM" value.
package yearmonth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	MinYear = 1950
	MaxYear = 2100
)

// ErrUnparsable is the sentinel for input that has no canonical form.
var ErrUnparsable = errors.New("unparsable year-month")

// YearMonth is a calendar month. The zero value means "could not parse".
type YearMonth struct {
	Year  int
	Month time.Month
}

var (
	yearOnly       = regexp.MustCompile(`^(\d{4})$`)
	monthSlashYear = regexp.MustCompile(`^(\d{1,2})[/-](\d{4})$`)
	isoYearMonth   = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	namedMonth     = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{4})$`)
	canonical      = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// Parse normalizes free text into a YearMonth. It never panics; ok is false
// for any unrecognized shape, a month outside 1-12 or a year outside
// [MinYear, MaxYear]. A bare year maps to January.
func Parse(input string) (YearMonth, bool) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return YearMonth{}, false
	}

	if m := yearOnly.FindStringSubmatch(raw); m != nil {
		return build(atoi(m[1]), 1)
	}
	if m := monthSlashYear.FindStringSubmatch(raw); m != nil {
		return build(atoi(m[2]), atoi(m[1]))
	}
	if m := isoYearMonth.FindStringSubmatch(raw); m != nil {
		return build(atoi(m[1]), atoi(m[2]))
	}
	if m := namedMonth.FindStringSubmatch(raw); m != nil {
		month, ok := monthNames[strings.ToLower(m[1])]
		if !ok {
			return YearMonth{}, false
		}
		return build(atoi(m[2]), int(month))
	}
	return YearMonth{}, false
}

// Normalize is Parse rendered to the canonical string; "" when unparsable.
func Normalize(input string) string {
	ym, ok := Parse(input)
	if !ok {
		return ""
	}
	return ym.String()
}

// ParseCanonical accepts only the strict "YYYY-MM" form produced by String.
func ParseCanonical(value string) (YearMonth, error) {
	m := canonical.FindStringSubmatch(value)
	if m == nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrUnparsable, value)
	}
	ym, ok := build(atoi(m[1]), atoi(m[2]))
	if !ok {
		return YearMonth{}, fmt.Errorf("%w: %q out of range", ErrUnparsable, value)
	}
	return ym, nil
}

// IsZero reports whether ym is the "could not parse" value.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// String renders the canonical "YYYY-MM" form with a zero-padded month.
func (ym YearMonth) String() string {
	if ym.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Time returns the first day of the month at midnight UTC.
func (ym YearMonth) Time() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

func build(year, month int) (YearMonth, bool) {
	if month < 1 || month > 12 || year < MinYear || year > MaxYear {
		return YearMonth{}, false
	}
	return YearMonth{Year: year, Month: time.Month(month)}, true
}

// atoi is only called on regexp-validated digit groups.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
