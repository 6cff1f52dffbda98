package eligibility_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func newEvaluator(t *testing.T, rules *eligibility.Rules) *eligibility.Evaluator {
	t.Helper()
	e, err := eligibility.New(rules, eligibility.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return e
}

func texas() domain.CollectedData {
	return domain.CollectedData{
		FirstName:    "Dana",
		Jurisdiction: domain.JurisdictionTexas,
		LifetimeBar:  domain.Bool(false),
	}
}

func intPtr(v int) *int { return &v }

func TestEvaluate_JurisdictionGate(t *testing.T) {
	e := newEvaluator(t, nil)

	for _, j := range []domain.Jurisdiction{domain.JurisdictionOther, domain.JurisdictionFederal, ""} {
		t.Run(string(j), func(t *testing.T) {
			d := texas()
			d.Jurisdiction = j
			d.LifetimeBar = domain.Bool(true)
			d.CaseOutcome = domain.OutcomeAcquitted

			r := e.Evaluate(d)
			assert.Equal(t, domain.BucketNotEligible, r.Bucket)
			assert.Equal(t, domain.StatusNotTexas, r.Status)
			assert.Equal(t, domain.ConfidenceHigh, r.Confidence)
			assert.Equal(t, domain.EligibleBlocked, r.Eligible)
		})
	}
}

func TestEvaluate_LifetimeBar(t *testing.T) {
	e := newEvaluator(t, nil)
	d := texas()
	d.LifetimeBar = domain.Bool(true)
	d.CaseOutcome = domain.OutcomeAcquitted

	r := e.Evaluate(d)
	assert.Equal(t, domain.BucketNotEligible, r.Bucket)
	assert.Equal(t, domain.StatusLifetimeBar, r.Status)
}

func TestEvaluate_UnknownOutcome(t *testing.T) {
	e := newEvaluator(t, nil)
	for _, outcome := range []domain.CaseOutcome{"", domain.OutcomeUnsure} {
		d := texas()
		d.CaseOutcome = outcome
		r := e.Evaluate(d)
		assert.Equal(t, domain.BucketNeedsReview, r.Bucket)
		assert.Equal(t, domain.StatusNeedsDiscovery, r.Status)
		assert.Contains(t, r.NextSteps, "$49 Record Discovery")
	}
}

func TestEvaluate_Acquitted(t *testing.T) {
	e := newEvaluator(t, nil)
	d := texas()
	d.CaseOutcome = domain.OutcomeAcquitted

	r := e.Evaluate(d)
	assert.Equal(t, domain.BucketEligible, r.Bucket)
	assert.Equal(t, domain.StatusEligibleExpunction, r.Status)
	assert.Equal(t, domain.PathwayExpunction, r.Pathway)
	assert.Equal(t, domain.EligibleLikely, r.Eligible)
	assert.Empty(t, r.EligibleOnDate)
	assert.Nil(t, r.EligibleOn)
	assert.Contains(t, r.Reason, "Strong result, Dana.")
	assert.Contains(t, r.NextSteps, "Standard ($1,395) or Rush ($2,000)")
}

func TestEvaluate_UnfiledFelony_ConfiguredWait(t *testing.T) {
	rules := eligibility.DefaultRules()
	rules.WaitPeriods.Unfiled.FelonyYears = intPtr(8)
	e := newEvaluator(t, rules)

	t.Run("Ten Years Ago Is Eligible", func(t *testing.T) {
		d := texas()
		d.OffenseLevel = domain.OffenseFelony
		d.CaseOutcome = domain.OutcomeUnfiled
		d.ArrestDate = "2016-10"

		r := e.Evaluate(d)
		assert.Equal(t, domain.BucketEligible, r.Bucket)
		assert.Equal(t, domain.StatusEligibleExpunction, r.Status)
		require.NotNil(t, r.EligibleOn)
		assert.Equal(t, time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), *r.EligibleOn)
		assert.Equal(t, "October 1, 2024", r.EligibleOnDate)
		assert.Nil(t, r.YearsRemaining)
	})

	t.Run("One Year Ago Is Waitlisted", func(t *testing.T) {
		d := texas()
		d.OffenseLevel = domain.OffenseFelony
		d.CaseOutcome = domain.OutcomeUnfiled
		d.ArrestDate = "2025-10"

		r := e.Evaluate(d)
		assert.Equal(t, domain.BucketNotEligible, r.Bucket)
		assert.Equal(t, domain.StatusWaitlist, r.Status)
		assert.Equal(t, domain.EligibleNotYet, r.Eligible)
		require.NotNil(t, r.YearsRemaining)
		assert.Equal(t, 7.0, *r.YearsRemaining)
		assert.Equal(t, "October 1, 2033", r.EligibleOnDate)
		assert.Equal(t,
			"1. Estimated eligibility date: October 1, 2033.\n"+
				"2. Join the priority waitlist and we will notify you when filing opens (about 7 year(s) remaining).",
			r.NextSteps)
	})
}

func TestEvaluate_UnfiledClassCUsesDays(t *testing.T) {
	e := newEvaluator(t, nil)
	d := texas()
	d.OffenseLevel = domain.OffenseClassC
	d.CaseOutcome = domain.OutcomeUnfiled
	d.ArrestDate = "2026-05"

	r := e.Evaluate(d)
	assert.Equal(t, domain.StatusWaitlist, r.Status)
	assert.Equal(t, "October 28, 2026", r.EligibleOnDate)
	require.NotNil(t, r.YearsRemaining)
	assert.Equal(t, 0.1, *r.YearsRemaining)
}

func TestEvaluate_DismissedCategories(t *testing.T) {
	e := newEvaluator(t, nil)

	tests := []struct {
		name     string
		level    domain.OffenseLevel
		category domain.DismissedCategory
		arrest   string
		want     domain.Status
		wantDate string
	}{
		{"Misdemeanor Two Years", domain.OffenseMisdemeanor, domain.DismissedNotSure, "2024-01", domain.StatusEligibleExpunction, "January 1, 2026"},
		{"Felony Standard Three Years", domain.OffenseFelony, domain.DismissedStandard, "2024-01", domain.StatusWaitlist, "January 1, 2027"},
		{"Felony Fraud Five Years", domain.OffenseFelony, domain.DismissedFraudFinancial, "2020-01", domain.StatusEligibleExpunction, "January 1, 2025"},
		{"Felony Deed Theft Ten Years", domain.OffenseFelony, domain.DismissedDeedTheft, "2020-01", domain.StatusWaitlist, "January 1, 2030"},
		{"Empty Level Is Felony", "", domain.DismissedNotSure, "2024-01", domain.StatusWaitlist, "January 1, 2027"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := texas()
			d.OffenseLevel = tt.level
			d.CaseOutcome = domain.OutcomeDismissed
			d.DismissedCategory = tt.category
			d.ArrestDate = tt.arrest

			r := e.Evaluate(d)
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, tt.wantDate, r.EligibleOnDate)
			assert.Equal(t, domain.PathwayExpunction, r.Pathway)
			assert.Equal(t, domain.ConfidenceMedium, r.Confidence)
		})
	}
}

func TestEvaluate_Deferred(t *testing.T) {
	e := newEvaluator(t, nil)

	base := func() domain.CollectedData {
		d := texas()
		d.CaseOutcome = domain.OutcomeDeferred
		d.DeferredDischargeDate = "2024-03"
		d.DeferredBannedCharge = domain.Bool(false)
		d.InterveningOffense = domain.Bool(false)
		return d
	}

	t.Run("Banned Charge Needs Review", func(t *testing.T) {
		d := base()
		d.DeferredBannedCharge = domain.Bool(true)
		d.InterveningOffense = domain.Bool(true)
		r := e.Evaluate(d)
		assert.Equal(t, domain.BucketNeedsReview, r.Bucket)
		assert.Equal(t, domain.StatusNeedsHumanReview, r.Status)
	})

	t.Run("Intervening Offense Disqualifies", func(t *testing.T) {
		d := base()
		d.InterveningOffense = domain.Bool(true)
		r := e.Evaluate(d)
		assert.Equal(t, domain.StatusInterveningOffense, r.Status)
		assert.Equal(t, domain.PathwayNondisclosure, r.Pathway)
	})

	t.Run("Felony Five Years", func(t *testing.T) {
		d := base()
		d.OffenseLevel = domain.OffenseFelony
		r := e.Evaluate(d)
		assert.Equal(t, domain.StatusWaitlist, r.Status)
		assert.Equal(t, "March 1, 2029", r.EligibleOnDate)
	})

	t.Run("Minor Nonviolent Misdemeanor Has No Wait", func(t *testing.T) {
		d := base()
		d.OffenseLevel = domain.OffenseMisdemeanor
		d.DeferredMisdCategory = domain.DeferredMinorNonviolent
		r := e.Evaluate(d)
		assert.Equal(t, domain.StatusEligibleNondisclosure, r.Status)
		assert.Equal(t, "March 1, 2024", r.EligibleOnDate)
	})

	t.Run("Standard Class C Two Years", func(t *testing.T) {
		d := base()
		d.OffenseLevel = domain.OffenseClassC
		d.DeferredMisdCategory = domain.DeferredStandardOrUnsure
		r := e.Evaluate(d)
		assert.Equal(t, domain.StatusEligibleNondisclosure, r.Status)
		assert.Equal(t, "March 1, 2026", r.EligibleOnDate)
	})

	t.Run("Missing Discharge Date", func(t *testing.T) {
		d := base()
		d.DeferredDischargeDate = ""
		r := e.Evaluate(d)
		assert.Equal(t, domain.StatusNeedsHumanReview, r.Status)
		assert.Contains(t, r.Reason, "deferred discharge date")
	})
}

func TestEvaluate_Convicted(t *testing.T) {
	e := newEvaluator(t, nil)

	t.Run("Felony Always Disqualified", func(t *testing.T) {
		for _, sentence := range []string{"", "1990-01", "2026-09", "not-a-date"} {
			d := texas()
			d.CaseOutcome = domain.OutcomeConvicted
			d.OffenseLevel = domain.OffenseFelony
			d.ArrestDate = "2001-01"
			d.ConvictionSentenceDate = sentence

			r := e.Evaluate(d)
			assert.Equal(t, domain.BucketNotEligible, r.Bucket, "sentence %q", sentence)
			assert.Equal(t, domain.StatusFelonyConviction, r.Status, "sentence %q", sentence)
		}
	})

	t.Run("Prior History Disqualifies", func(t *testing.T) {
		d := texas()
		d.CaseOutcome = domain.OutcomeConvicted
		d.OffenseLevel = domain.OffenseMisdemeanor
		d.PriorHistory = domain.Bool(true)
		assert.Equal(t, domain.StatusRepeatHistory, e.Evaluate(d).Status)
	})

	t.Run("Misdemeanor Waits Two Years From Sentence", func(t *testing.T) {
		d := texas()
		d.CaseOutcome = domain.OutcomeConvicted
		d.OffenseLevel = domain.OffenseMisdemeanor
		d.PriorHistory = domain.Bool(false)
		d.ConvictionSentenceDate = "2019-07"

		r := e.Evaluate(d)
		assert.Equal(t, domain.StatusEligibleNondisclosure, r.Status)
		assert.Equal(t, "July 1, 2021", r.EligibleOnDate)
	})
}

func TestEvaluate_ContradictionGate(t *testing.T) {
	e := newEvaluator(t, nil)
	d := texas()
	d.CaseOutcome = domain.OutcomeConvicted
	d.OffenseLevel = domain.OffenseMisdemeanor
	d.DismissedCategory = domain.DismissedFraudFinancial
	d.ConvictionSentenceDate = "2019-07"

	r := e.Evaluate(d)
	assert.Equal(t, domain.BucketNeedsReview, r.Bucket)
	assert.Equal(t, domain.StatusNeedsHumanReview, r.Status)
	assert.Contains(t, r.Reason, "conflict")
}

func TestEvaluate_CriminalEpisodeGate(t *testing.T) {
	e := newEvaluator(t, nil)
	d := texas()
	d.MultipleCharges = domain.Bool(true)
	d.AnyConvictionFromArrest = domain.Bool(true)
	d.CaseOutcome = domain.OutcomeAcquitted

	r := e.Evaluate(d)
	assert.Equal(t, domain.StatusNeedsHumanReview, r.Status)
	assert.Contains(t, r.Reason, "criminal-episode rule")
}

func TestEvaluate_MissingArrestDate(t *testing.T) {
	e := newEvaluator(t, nil)
	for _, outcome := range []domain.CaseOutcome{domain.OutcomeUnfiled, domain.OutcomeDismissed} {
		d := texas()
		d.CaseOutcome = outcome
		r := e.Evaluate(d)
		assert.Equal(t, domain.BucketNeedsReview, r.Bucket)
		assert.Equal(t, domain.StatusNeedsHumanReview, r.Status)
		assert.Contains(t, r.Reason, "arrest date")
	}
}

func TestEvaluate_ConservativeAssumption(t *testing.T) {
	e := newEvaluator(t, nil)

	d := texas()
	d.OffenseLevel = domain.OffenseFelony
	d.OffenseLevelAssumed = true
	d.CaseOutcome = domain.OutcomeUnfiled
	d.ArrestDate = "2010-01"

	r := e.Evaluate(d)
	assert.True(t, strings.HasSuffix(r.NextSteps, "\n\n"+eligibility.ConservativeNote))

	// Gates before the outcome branch never carry the note.
	d.CaseOutcome = domain.OutcomeUnsure
	r = e.Evaluate(d)
	assert.NotContains(t, r.NextSteps, eligibility.ConservativeNote)

	// Neither do the conviction disqualifiers, assumed level or not.
	d.CaseOutcome = domain.OutcomeConvicted
	r = e.Evaluate(d)
	assert.Equal(t, domain.StatusFelonyConviction, r.Status)
	assert.NotContains(t, r.NextSteps, eligibility.ConservativeNote)
}

func TestEvaluate_IsPure(t *testing.T) {
	e := newEvaluator(t, nil)
	d := texas()
	d.CaseOutcome = domain.OutcomeDismissed
	d.OffenseLevel = domain.OffenseFelony
	d.ArrestDate = "2024-06"

	first := e.Evaluate(d)
	second := e.Evaluate(d)
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)

	// Mutating a returned result never leaks into the next evaluation.
	first.Reason = "changed"
	assert.NotEqual(t, "changed", e.Evaluate(d).Reason)
}

func TestEvaluate_AlwaysCarriesDisclaimer(t *testing.T) {
	e := newEvaluator(t, nil)
	inputs := []domain.CollectedData{
		{},
		texas(),
		{Jurisdiction: domain.JurisdictionTexas, CaseOutcome: "bogus"},
		{Jurisdiction: domain.JurisdictionTexas, CaseOutcome: domain.OutcomeConvicted},
	}
	for _, d := range inputs {
		r := e.Evaluate(d)
		require.NotNil(t, r)
		assert.Equal(t, eligibility.Disclaimer, r.Disclaimer)
		assert.NotEmpty(t, r.Bucket)
		assert.NotEmpty(t, r.Status)
	}
}

func TestEvaluate_FallbackForUnknownOutcome(t *testing.T) {
	e := newEvaluator(t, nil)
	d := texas()
	d.CaseOutcome = "pardoned"

	r := e.Evaluate(d)
	assert.Equal(t, domain.StatusNeedsHumanReview, r.Status)
	assert.Equal(t, domain.ConfidenceMedium, r.Confidence)
	assert.Equal(t, "1. Request priority callback.\n2. We will verify your records and map the correct path.", r.NextSteps)
}

func TestNew_RejectsMissingConstant(t *testing.T) {
	rules := eligibility.DefaultRules()
	rules.WaitPeriods.Deferred.FelonyYears = nil

	_, err := eligibility.New(rules)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Detail, "wait_periods.deferred.felony_years")
}
