package domain

import "time"

// Bucket is the top-level triage classification.
type Bucket string

const (
	BucketEligible    Bucket = "eligible"
	BucketNeedsReview Bucket = "needs_review"
	BucketNotEligible Bucket = "not_eligible"
)

// Status is the finer-grained outcome code.
type Status string

const (
	StatusEligibleExpunction    Status = "eligible_expunction"
	StatusEligibleNondisclosure Status = "eligible_nondisclosure"
	StatusWaitlist              Status = "waitlist"
	StatusNeedsDiscovery        Status = "needs_discovery"
	StatusNeedsHumanReview      Status = "needs_human_review"
	StatusNotTexas              Status = "not_texas"
	StatusLifetimeBar           Status = "disqualified_lifetime_bar"
	StatusInterveningOffense    Status = "disqualified_intervening_offense"
	StatusFelonyConviction      Status = "disqualified_felony_conviction"
	StatusRepeatHistory         Status = "disqualified_repeat_history"
)

// Pathway is the statutory remedy a result points to. Empty means none.
type Pathway string

const (
	PathwayNone          Pathway = ""
	PathwayExpunction    Pathway = "expunction"
	PathwayNondisclosure Pathway = "nondisclosure"
)

// Confidence expresses how settled a classification is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Summary values of EligibilityResult.Eligible.
const (
	EligibleLikely      = "likely"
	EligibleNotYet      = "not_yet"
	EligibleNeedsReview = "needs_review"
	EligibleBlocked     = "blocked"
)

// EligibilityResult is an immutable classification produced by the rules engine.
// It is always embedded in a Session and never persisted on its own.
type EligibilityResult struct {
	Bucket     Bucket     `json:"bucket"`
	Status     Status     `json:"status"`
	Pathway    Pathway    `json:"pathway,omitempty"`
	Eligible   string     `json:"eligible"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
	NextSteps  string     `json:"next_steps"`
	Disclaimer string     `json:"disclaimer"`

	// EligibleOnDate is the formatted statutory date ("January 2, 2006"), empty when no wait applies.
	EligibleOnDate string     `json:"eligible_on_date,omitempty"`
	EligibleOn     *time.Time `json:"eligible_on,omitempty"`
	YearsRemaining *float64   `json:"years_remaining,omitempty"`
}

// IsEligible reports whether the result lands in the eligible bucket.
func (r *EligibilityResult) IsEligible() bool {
	return r != nil && r.Bucket == BucketEligible
}
