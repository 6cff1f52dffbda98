package eligibility_test

import (
	"testing"
	"time"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEligibleDate_YearsBeforeDays(t *testing.T) {
	// Adding the year first lands on the leap day; adding days first would not.
	got := eligibility.EligibleDate(date(2023, time.January, 1), eligibility.Wait{Years: 1, Days: 59})
	assert.Equal(t, date(2024, time.February, 29), got)
}

func TestCheckWait(t *testing.T) {
	anchor := date(2020, time.March, 1)
	w := eligibility.Wait{Years: 2}

	assert.True(t, eligibility.CheckWait(anchor, w, date(2022, time.March, 1)).Met, "met on the exact date")
	assert.False(t, eligibility.CheckWait(anchor, w, date(2022, time.February, 28)).Met)

	g := eligibility.CheckWait(anchor, w, date(2030, time.January, 1))
	assert.True(t, g.Met)
	assert.Equal(t, date(2022, time.March, 1), g.EligibleOn)
}

func TestYearsUntil(t *testing.T) {
	now := date(2026, time.January, 1)

	tests := []struct {
		name   string
		target time.Time
		want   float64
	}{
		{"Past", date(2020, time.January, 1), 0},
		{"Exactly Now", now, 0},
		{"One Day Rounds Up", now.Add(24 * time.Hour), 0.1},
		{"Half Year", date(2026, time.July, 2), 0.5},
		{"Exact Leap Cycle", now.Add(4 * 365.25 * 24 * time.Hour), 4},
		{"Just Past Two Years", date(2028, time.January, 3), 2.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eligibility.YearsUntil(tt.target, now))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "January 2, 2006", eligibility.FormatDate(date(2006, time.January, 2)))
	loc := time.FixedZone("CST", -6*60*60)
	assert.Equal(t, "March 1, 2024", eligibility.FormatDate(time.Date(2024, time.February, 29, 19, 0, 0, 0, loc)))
}

func TestBuildContext(t *testing.T) {
	r := &domain.EligibilityResult{
		Bucket:         domain.BucketNotEligible,
		Status:         domain.StatusWaitlist,
		Pathway:        domain.PathwayExpunction,
		Reason:         "Not yet.",
		NextSteps:      "1. Wait.",
		Disclaimer:     eligibility.Disclaimer,
		EligibleOnDate: "October 1, 2033",
	}

	want := "## Eligibility Assessment (Texas)\n" +
		"**Bucket**: not_eligible\n" +
		"**Status**: waitlist\n" +
		"**Pathway**: expunction\n" +
		"**Estimated Eligibility Date**: October 1, 2033\n" +
		"**Assessment**: Not yet.\n" +
		"**Next Steps**: 1. Wait.\n" +
		"\n⚠️ " + eligibility.Disclaimer
	assert.Equal(t, want, eligibility.BuildContext(r))

	r.Pathway = domain.PathwayNone
	r.EligibleOnDate = ""
	out := eligibility.BuildContext(r)
	assert.NotContains(t, out, "**Pathway**")
	assert.NotContains(t, out, "**Estimated Eligibility Date**")
	assert.Empty(t, eligibility.BuildContext(nil))
}
