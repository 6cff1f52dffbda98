/*
Package clearance runs the intake conversation of a Texas record-clearing
practice and classifies each visitor's case into an eligibility result.

The conversation is a deterministic state machine: every answer is coerced
into typed case data, the next state is chosen by a pure function of that
data, and the final classification is produced by a rules engine with no
I/O. Hosts (HTTP, MCP, terminal) drive an Engine with a session id and an
answer; sessions are persisted through a pluggable store, and leads and
analytics events flow to a pluggable recorder.

# Usage

	eng, err := clearance.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	view, _ := eng.State(ctx, "visitor-1")
	fmt.Println(view.Prompt)

	turn, err := eng.Advance(ctx, "visitor-1", "start_check")
	if err != nil {
		log.Fatal(err)
	}
	if msg := turn.ValidationMessage(); msg != "" {
		fmt.Println(msg)
	}

Answers are quick-reply ids or free text. The contact and lead steps accept a
domain.ContactForm or a map decoded from JSON.

# Direct evaluation

Evaluate skips the conversation entirely:

	result := eng.Evaluate(domain.CollectedData{
		Jurisdiction: domain.JurisdictionTexas,
		OffenseLevel: domain.OffenseMisdemeanor,
		CaseOutcome:  domain.OutcomeDismissed,
		ArrestDate:   "2019-04",
	})

The result is advisory and never legal advice; every result carries the
disclaimer text.
*/
package clearance
