package domain

// Jurisdiction is where the arrest or court case happened.
type Jurisdiction string

const (
	JurisdictionTexas   Jurisdiction = "TX"
	JurisdictionFederal Jurisdiction = "FEDERAL"
	JurisdictionOther   Jurisdiction = "OTHER"
)

// OffenseLevel is the severity class of the offense being evaluated.
type OffenseLevel string

const (
	OffenseClassC      OffenseLevel = "class_c"
	OffenseMisdemeanor OffenseLevel = "misdemeanor"
	OffenseFelony      OffenseLevel = "felony"
)

// CaseOutcome is the final disposition of the case.
type CaseOutcome string

const (
	OutcomeDismissed CaseOutcome = "dismissed"
	OutcomeUnfiled   CaseOutcome = "unfiled"
	OutcomeAcquitted CaseOutcome = "acquitted"
	OutcomeDeferred  CaseOutcome = "deferred"
	OutcomeConvicted CaseOutcome = "convicted"
	OutcomeUnsure    CaseOutcome = "unsure"
)

// DismissedCategory selects the statute of limitations for a dismissed felony.
type DismissedCategory string

const (
	DismissedStandard       DismissedCategory = "standard"
	DismissedFraudFinancial DismissedCategory = "fraud_financial"
	DismissedDeedTheft      DismissedCategory = "deed_theft"
	DismissedNotSure        DismissedCategory = "not_sure"
)

// DeferredMisdCategory sub-classifies a deferred misdemeanor.
type DeferredMisdCategory string

const (
	DeferredMinorNonviolent  DeferredMisdCategory = "minor_nonviolent"
	DeferredStandardOrUnsure DeferredMisdCategory = "standard_or_unsure"
)

// CollectedData holds every answer gathered during the conversation.
// Pointer fields are tri-state: nil means the question was never answered.
// Dates are canonical "YYYY-MM" strings produced by the yearmonth package.
type CollectedData struct {
	FirstName string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone     string `json:"phone,omitempty" yaml:"phone,omitempty"`

	Jurisdiction Jurisdiction `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`
	LifetimeBar  *bool        `json:"lifetime_bar,omitempty" yaml:"lifetime_bar,omitempty"`

	OffenseLevel        OffenseLevel `json:"offense_level,omitempty" yaml:"offense_level,omitempty"`
	OffenseLevelAssumed bool         `json:"offense_level_assumed,omitempty" yaml:"offense_level_assumed,omitempty"`

	MultipleCharges         *bool `json:"multiple_charges,omitempty" yaml:"multiple_charges,omitempty"`
	AnyConvictionFromArrest *bool `json:"any_conviction_from_arrest,omitempty" yaml:"any_conviction_from_arrest,omitempty"`

	CaseOutcome CaseOutcome `json:"case_outcome,omitempty" yaml:"case_outcome,omitempty"`

	ArrestDate        string            `json:"arrest_date,omitempty" yaml:"arrest_date,omitempty"`
	DismissedCategory DismissedCategory `json:"dismissed_category,omitempty" yaml:"dismissed_category,omitempty"`

	DeferredDischargeDate string               `json:"deferred_discharge_date,omitempty" yaml:"deferred_discharge_date,omitempty"`
	DeferredMisdCategory  DeferredMisdCategory `json:"deferred_misd_category,omitempty" yaml:"deferred_misd_category,omitempty"`
	DeferredBannedCharge  *bool                `json:"deferred_banned_charge,omitempty" yaml:"deferred_banned_charge,omitempty"`
	InterveningOffense    *bool                `json:"intervening_offense,omitempty" yaml:"intervening_offense,omitempty"`

	PriorHistory           *bool  `json:"prior_history,omitempty" yaml:"prior_history,omitempty"`
	ConvictionSentenceDate string `json:"conviction_sentence_date,omitempty" yaml:"conviction_sentence_date,omitempty"`
}

// Clone returns a deep copy, so later corrections never leak into a snapshot.
func (d CollectedData) Clone() CollectedData {
	out := d
	out.LifetimeBar = cloneBool(d.LifetimeBar)
	out.MultipleCharges = cloneBool(d.MultipleCharges)
	out.AnyConvictionFromArrest = cloneBool(d.AnyConvictionFromArrest)
	out.DeferredBannedCharge = cloneBool(d.DeferredBannedCharge)
	out.InterveningOffense = cloneBool(d.InterveningOffense)
	out.PriorHistory = cloneBool(d.PriorHistory)
	return out
}

// IsTrue reports whether a tri-state answer is an explicit yes.
func IsTrue(b *bool) bool {
	return b != nil && *b
}

// Bool returns a pointer to v, for populating tri-state answers.
func Bool(v bool) *bool {
	return &v
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
