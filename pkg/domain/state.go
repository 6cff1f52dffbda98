package domain

// StateID identifies a state of the intake flow.
type StateID string

// InputType tags what an answer to a state means and how it is coerced
// into CollectedData. An empty InputType means the answer only routes.
type InputType string

const (
	InputJurisdiction         InputType = "jurisdiction"
	InputLifetimeBar          InputType = "lifetime_bar"
	InputName                 InputType = "name"
	InputContactForm          InputType = "contact_form"
	InputOffenseLevel         InputType = "offense_level"
	InputMultipleCharges      InputType = "multiple_charges"
	InputAnyConviction        InputType = "any_conviction_from_arrest"
	InputCaseOutcome          InputType = "case_outcome"
	InputArrestDate           InputType = "arrest_date"
	InputDismissedCategory    InputType = "dismissed_category"
	InputDischargeDate        InputType = "deferred_discharge_date"
	InputDeferredMisdCategory InputType = "deferred_misd_category"
	InputDeferredBannedCharge InputType = "deferred_banned_charge"
	InputInterveningOffense   InputType = "intervening_offense"
	InputPriorHistory         InputType = "prior_history"
	InputSentenceDate         InputType = "conviction_sentence_date"
	InputLeadForm             InputType = "lead_form"
)

// Redacted reports whether answers of this type carry contact details.
func (t InputType) Redacted() bool {
	return t == InputContactForm || t == InputLeadForm
}

// QuickReply is a labeled option the host renders as a button.
type QuickReply struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// View is the read-only rendering of a state.
type View struct {
	StateID      StateID      `json:"step"`
	Prompt       string       `json:"message"`
	QuickReplies []QuickReply `json:"quick_replies"`
	InputType    InputType    `json:"input_type,omitempty"`
}

// Turn is the outcome of advancing a session by one answer.
type Turn struct {
	View
	EligibilityResult *EligibilityResult `json:"eligibility_result"`
	ValidationError   *ValidationError   `json:"-"`
}

// ValidationMessage returns the user-facing validation text, if any.
func (t *Turn) ValidationMessage() string {
	if t == nil || t.ValidationError == nil {
		return ""
	}
	return t.ValidationError.Message
}
