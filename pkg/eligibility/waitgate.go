package eligibility

import (
	"math"
	"time"
)

const (
	msPerDay       = 24 * 60 * 60 * 1000
	daysPerYear    = 365.25
	dateLayoutLong = "January 2, 2006"
)

// Wait is a statutory waiting period. Years are applied before Days.
type Wait struct {
	Years int
	Days  int
}

// Gate is the outcome of a wait-gate check.
type Gate struct {
	Met        bool
	EligibleOn time.Time
}

// EligibleDate returns anchor + w.Years calendar years + w.Days days.
func EligibleDate(anchor time.Time, w Wait) time.Time {
	return anchor.AddDate(w.Years, 0, 0).Add(time.Duration(w.Days) * 24 * time.Hour)
}

// CheckWait evaluates the gate: it is met when the eligibility date is at or before now.
func CheckWait(anchor time.Time, w Wait, now time.Time) Gate {
	on := EligibleDate(anchor, w)
	return Gate{Met: !on.After(now), EligibleOn: on}
}

// YearsUntil estimates the years left before date, using 365.25-day years and
// rounding up to one decimal. It is never negative.
func YearsUntil(date, now time.Time) float64 {
	diffMs := date.Sub(now).Milliseconds()
	if diffMs <= 0 {
		return 0
	}
	return math.Max(0, math.Ceil(float64(diffMs)/(daysPerYear*msPerDay)*10)/10)
}

// FormatDate renders a date in long US form in UTC ("January 2, 2006").
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayoutLong)
}
