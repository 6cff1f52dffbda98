package domain

import "time"

// Session represents the per-visitor conversation record.
// It is created on first contact, mutated on every turn and evicted by the
// session store after an idle timeout.
type Session struct {
	// ID is the host-assigned session identifier.
	ID string `json:"id"`

	// CurrentStateID is the identifier of the active flow state.
	CurrentStateID StateID `json:"current_state_id"`

	// CollectedData holds the typed answers gathered so far.
	CollectedData CollectedData `json:"collected_data"`

	// EligibilityResult is the last computed classification, or nil.
	EligibilityResult *EligibilityResult `json:"eligibility_result,omitempty"`

	// Bucket and Status mirror EligibilityResult for quick inspection.
	Bucket Bucket `json:"bucket,omitempty"`
	Status Status `json:"status,omitempty"`

	// Lead is the contact payload captured on a human handoff.
	Lead *ContactForm `json:"lead,omitempty"`

	// ReturnAfterLead is the state to resume after a contact-capture detour.
	ReturnAfterLead StateID `json:"return_after_lead,omitempty"`

	// Events is the append-only audit log.
	Events []Event `json:"events"`

	StartedAt  time.Time `json:"started_at"`
	LastAccess time.Time `json:"last_access"`

	// Sealed carries the encrypted session when it is stored through an
	// encrypting store. The answers, result and log are then empty.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates a clean session positioned at startStateID.
func NewSession(id string, startStateID StateID, now time.Time) *Session {
	return &Session{
		ID:             id,
		CurrentStateID: startStateID,
		Events:         []Event{},
		StartedAt:      now,
		LastAccess:     now,
	}
}

// Snapshot returns a deep copy of the session.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.CollectedData = s.CollectedData.Clone()
	if s.EligibilityResult != nil {
		r := *s.EligibilityResult
		out.EligibilityResult = &r
	}
	if s.Lead != nil {
		l := *s.Lead
		out.Lead = &l
	}
	out.Events = make([]Event, len(s.Events))
	copy(out.Events, s.Events)
	return &out
}

// ContactForm is the structured payload of the contact and lead forms.
// Missing fields stay empty.
type ContactForm struct {
	Name  string `json:"name,omitempty" mapstructure:"name"`
	Email string `json:"email,omitempty" mapstructure:"email"`
	Phone string `json:"phone,omitempty" mapstructure:"phone"`
}

// IsEmpty reports whether no contact field was provided.
func (c ContactForm) IsEmpty() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

// Lead is a contact record handed to the host recorder.
type Lead struct {
	SessionID         string    `json:"session_id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Jurisdiction      string    `json:"state"`
	OffenseType       string    `json:"offense_type"`
	EligibilityResult string    `json:"eligibility_result"`
	CreatedAt         time.Time `json:"created_at"`
}

// AnalyticsEvent is a free-form analytics row handed to the host recorder.
type AnalyticsEvent struct {
	SessionID string         `json:"session_id"`
	Name      string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
