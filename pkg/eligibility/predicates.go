package eligibility

import "github.com/aretw0/clearance/pkg/domain"

// ContradictionDetected reports answers that cannot coexist for one case.
// It usually means the client and the server drifted apart mid-conversation.
//
// Any one of these triggers it:
//   - outcome is deferred but no deferred follow-up was ever answered
//   - outcome is not deferred but a deferred follow-up was answered
//   - outcome is not convicted but prior history or a sentence date is set
//   - outcome is not dismissed but a dismissed category other than not_sure is set
func ContradictionDetected(d domain.CollectedData) bool {
	deferredAnswered := d.DeferredDischargeDate != "" ||
		d.DeferredMisdCategory != "" ||
		d.InterveningOffense != nil

	if d.CaseOutcome == domain.OutcomeDeferred && !deferredAnswered {
		return true
	}
	if d.CaseOutcome != domain.OutcomeDeferred && deferredAnswered {
		return true
	}
	if d.CaseOutcome != domain.OutcomeConvicted && (d.PriorHistory != nil || d.ConvictionSentenceDate != "") {
		return true
	}
	if d.CaseOutcome != domain.OutcomeDismissed &&
		d.DismissedCategory != "" && d.DismissedCategory != domain.DismissedNotSure {
		return true
	}
	return false
}

// CriminalEpisodeBlocks reports whether a companion conviction from the same
// arrest may block clearing an otherwise favorable outcome.
func CriminalEpisodeBlocks(d domain.CollectedData) bool {
	if !domain.IsTrue(d.MultipleCharges) || !domain.IsTrue(d.AnyConvictionFromArrest) {
		return false
	}
	switch d.CaseOutcome {
	case domain.OutcomeDismissed, domain.OutcomeUnfiled, domain.OutcomeAcquitted:
		return true
	}
	return false
}
