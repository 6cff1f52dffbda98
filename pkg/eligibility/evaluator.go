package eligibility

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/yearmonth"
)

// Disclaimer is attached to every result.
const Disclaimer = "This automated assessment provides general information and not legal advice. " +
	"Final eligibility depends on full court records and attorney review."

// ConservativeNote is appended to next steps when the offense level was assumed.
const ConservativeNote = "Conservative estimate applied: because offense level was uncertain, " +
	"timeline calculations used felony-level assumptions pending document confirmation."

// Evaluator is the rules engine. It is safe for concurrent use and performs no I/O.
type Evaluator struct {
	rules *Rules
	now   func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock overrides the wall clock used by wait gates.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

// New validates rules and builds an Evaluator. Nil rules select the embedded defaults.
func New(rules *Rules, opts ...Option) (*Evaluator, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	e := &Evaluator{rules: rules, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Rules returns the configuration the evaluator was built with.
func (e *Evaluator) Rules() *Rules {
	return e.rules
}

// verdict is the raw material of a result before normalization.
type verdict struct {
	bucket     domain.Bucket
	status     domain.Status
	pathway    domain.Pathway
	confidence domain.Confidence
	reason     string
	nextSteps  string
	eligibleOn *time.Time
	remaining  *float64
}

// Evaluate classifies the collected answers. The first matching gate wins and
// every input, including the zero value, resolves to a result.
func (e *Evaluator) Evaluate(d domain.CollectedData) *domain.EligibilityResult {
	name := d.FirstName
	if name == "" {
		name = "there"
	}

	switch {
	case d.Jurisdiction != e.rules.Jurisdiction:
		return e.makeResult(verdict{
			bucket:     domain.BucketNotEligible,
			status:     domain.StatusNotTexas,
			confidence: domain.ConfidenceHigh,
			reason: name + ", we only handle Texas state arrests and Texas state court charges. " +
				"We do not handle federal cases or cases from other states.",
			nextSteps: "1. If any part of your history is in Texas state court, request a Texas-specific review.\n" +
				"2. For federal or out-of-state matters, use local counsel in that jurisdiction.",
		})

	case domain.IsTrue(d.LifetimeBar):
		return e.makeResult(verdict{
			bucket:     domain.BucketNotEligible,
			status:     domain.StatusLifetimeBar,
			confidence: domain.ConfidenceHigh,
			reason: name + ", based on your answer, standard expunction and nondisclosure pathways appear blocked " +
				"by Texas lifetime statutory bars for specific offense categories.",
			nextSteps: "1. Request an attorney consultation for advanced remedies.\n" +
				"2. Discuss whether pardon or post-conviction relief pathways may apply to your facts.",
		})

	case d.CaseOutcome == "" || d.CaseOutcome == domain.OutcomeUnsure:
		return e.makeResult(verdict{
			bucket:     domain.BucketNeedsReview,
			status:     domain.StatusNeedsDiscovery,
			confidence: domain.ConfidenceHigh,
			reason: name + ", your case outcome is unclear, so we should not guess. Texas eligibility depends on " +
				"the exact final disposition shown on your official record.",
			nextSteps: fmt.Sprintf("1. Start the %s Record Discovery & Strategy Session.\n", e.rules.PriceLabel(ServiceDiscovery)) +
				"2. We pull your official DPS history and provide a verified legal pathway review.",
		})

	case ContradictionDetected(d):
		return e.makeResult(verdict{
			bucket:     domain.BucketNeedsReview,
			status:     domain.StatusNeedsHumanReview,
			confidence: domain.ConfidenceHigh,
			reason: name + ", one or more answers conflict with typical Texas statutory outcomes. " +
				"This usually means the case paperwork classification is different than expected.",
			nextSteps: "1. Route this file to priority human legal review.\n" +
				"2. Confirm the exact disposition from county/DPS records before filing.",
		})

	case CriminalEpisodeBlocks(d):
		return e.makeResult(verdict{
			bucket:     domain.BucketNeedsReview,
			status:     domain.StatusNeedsHumanReview,
			confidence: domain.ConfidenceHigh,
			reason: name + ", because multiple charges were tied to one arrest and at least one ended in " +
				"conviction/jail, the criminal-episode rule may block direct expunction for related counts.",
			nextSteps: "1. Attorney review is required to isolate any remaining sealing pathway.\n" +
				"2. We can map charge-by-charge options from your complete docket history.",
		})
	}

	switch d.CaseOutcome {
	case domain.OutcomeAcquitted:
		return e.conservative(e.makeResult(verdict{
			bucket:     domain.BucketEligible,
			status:     domain.StatusEligibleExpunction,
			pathway:    domain.PathwayExpunction,
			confidence: domain.ConfidenceHigh,
			reason: "Strong result, " + name + ". A not-guilty acquittal is generally on the expunction pathway " +
				"in Texas, meaning record destruction rather than simple sealing.",
			nextSteps: "1. Begin filing now to lock in removal from public-record channels.\n" +
				"2. " + e.choosePlan(),
		}), d)
	case domain.OutcomeUnfiled:
		return e.unfiled(d, name)
	case domain.OutcomeDismissed:
		return e.dismissed(d, name)
	case domain.OutcomeDeferred:
		return e.deferred(d, name)
	case domain.OutcomeConvicted:
		return e.convicted(d, name)
	}

	return e.makeResult(verdict{
		bucket:    domain.BucketNeedsReview,
		status:    domain.StatusNeedsHumanReview,
		reason:    name + ", this case pattern needs direct legal review to avoid a misclassification.",
		nextSteps: "1. Request priority callback.\n2. We will verify your records and map the correct path.",
	})
}

func (e *Evaluator) unfiled(d domain.CollectedData, name string) *domain.EligibilityResult {
	anchor, ok := anchorDate(d.ArrestDate)
	if !ok {
		return e.missingDate(name+", we need the arrest date to calculate statute-based waiting periods for unfiled arrests.",
			"1. Confirm the arrest month/year from your records.\n2. Re-run this check or request legal review.")
	}

	waits := e.rules.WaitPeriods.Unfiled
	var w Wait
	switch levelOrFelony(d.OffenseLevel) {
	case domain.OffenseClassC:
		w = Wait{Days: years(waits.ClassCDays)}
	case domain.OffenseMisdemeanor:
		w = Wait{Years: years(waits.MisdemeanorYears)}
	default:
		w = Wait{Years: years(waits.FelonyYears)}
	}

	gate := CheckWait(anchor, w, e.now())
	if gate.Met {
		return e.conservative(e.makeResult(verdict{
			bucket:     domain.BucketEligible,
			status:     domain.StatusEligibleExpunction,
			pathway:    domain.PathwayExpunction,
			confidence: domain.ConfidenceHigh,
			reason:     name + ", your unfiled-arrest timeline appears to satisfy Texas wait-period rules for expunction filing.",
			nextSteps: "1. We can file your expunction petition now.\n" +
				"2. " + e.selectPlan(),
			eligibleOn: &gate.EligibleOn,
		}), d)
	}

	return e.conservative(e.waitlist(gate, verdict{
		pathway:    domain.PathwayExpunction,
		confidence: domain.ConfidenceHigh,
		reason:     name + ", you are on the expunction path, but the statutory wait period has not expired yet.",
	}, "Join the priority waitlist and we will notify you when filing opens"), d)
}

func (e *Evaluator) dismissed(d domain.CollectedData, name string) *domain.EligibilityResult {
	anchor, ok := anchorDate(d.ArrestDate)
	if !ok {
		return e.missingDate(name+", we need the arrest date to calculate statute-of-limitation timing for dismissed charges.",
			"1. Confirm arrest month/year from your records.\n2. Re-run this check or request legal review.")
	}

	waits := e.rules.WaitPeriods.Dismissed
	required := years(waits.MisdemeanorYears)
	if levelOrFelony(d.OffenseLevel) == domain.OffenseFelony {
		switch d.DismissedCategory {
		case domain.DismissedFraudFinancial:
			required = years(waits.FelonyFraudYears)
		case domain.DismissedDeedTheft:
			required = years(waits.FelonyDeedTheftYears)
		default:
			required = years(waits.FelonyStandardYears)
		}
	}

	gate := CheckWait(anchor, Wait{Years: required}, e.now())
	if gate.Met {
		return e.conservative(e.makeResult(verdict{
			bucket:     domain.BucketEligible,
			status:     domain.StatusEligibleExpunction,
			pathway:    domain.PathwayExpunction,
			confidence: domain.ConfidenceMedium,
			reason:     name + ", your dismissed-case timeline appears to satisfy current Texas statute timing for expunction filing.",
			nextSteps: "1. Begin your expunction petition now.\n" +
				"2. " + e.choosePlan(),
			eligibleOn: &gate.EligibleOn,
		}), d)
	}

	return e.conservative(e.waitlist(gate, verdict{
		pathway:    domain.PathwayExpunction,
		confidence: domain.ConfidenceMedium,
		reason:     name + ", this dismissed charge appears to remain inside the current waiting window under Texas statute timing rules.",
	}, "Join priority waitlist for automatic filing-window alerts"), d)
}

func (e *Evaluator) deferred(d domain.CollectedData, name string) *domain.EligibilityResult {
	if domain.IsTrue(d.DeferredBannedCharge) {
		return e.makeResult(verdict{
			bucket:     domain.BucketNeedsReview,
			status:     domain.StatusNeedsHumanReview,
			confidence: domain.ConfidenceHigh,
			reason: name + ", the offense category selected is typically restricted for deferred-adjudication " +
				"sealing pathways. We should verify the exact disposition before moving forward.",
			nextSteps: "1. Route to priority legal review.\n" +
				"2. Confirm charge coding and final order details from official records.",
		})
	}
	if domain.IsTrue(d.InterveningOffense) {
		return e.makeResult(verdict{
			bucket:     domain.BucketNotEligible,
			status:     domain.StatusInterveningOffense,
			pathway:    domain.PathwayNondisclosure,
			confidence: domain.ConfidenceHigh,
			reason: name + ", Texas clean-period rules can block nondisclosure when new arrests/convictions " +
				"occur during the waiting window.",
			nextSteps: "1. Request attorney analysis for any remaining legal options.\n" +
				"2. We can review whether alternate post-conviction remedies may apply.",
		})
	}

	anchor, ok := anchorDate(d.DeferredDischargeDate)
	if !ok {
		return e.missingDate(name+", we need your deferred discharge date to calculate nondisclosure waiting periods.",
			"1. Confirm discharge month/year from court records.\n2. Re-run this check or request legal review.")
	}

	waits := e.rules.WaitPeriods.Deferred
	required := years(waits.FelonyYears)
	switch levelOrFelony(d.OffenseLevel) {
	case domain.OffenseMisdemeanor, domain.OffenseClassC:
		if d.DeferredMisdCategory == domain.DeferredMinorNonviolent {
			required = years(waits.MisdemeanorMinorNonviolentYears)
		} else {
			required = years(waits.MisdemeanorYears)
		}
	}

	gate := CheckWait(anchor, Wait{Years: required}, e.now())
	if gate.Met {
		return e.conservative(e.makeResult(verdict{
			bucket:     domain.BucketEligible,
			status:     domain.StatusEligibleNondisclosure,
			pathway:    domain.PathwayNondisclosure,
			confidence: domain.ConfidenceHigh,
			reason:     name + ", your deferred-adjudication timeline appears to satisfy Texas nondisclosure waiting requirements.",
			nextSteps: "1. Start your nondisclosure filing now.\n" +
				"2. " + e.choosePlan(),
			eligibleOn: &gate.EligibleOn,
		}), d)
	}

	return e.conservative(e.waitlist(gate, verdict{
		pathway:    domain.PathwayNondisclosure,
		confidence: domain.ConfidenceHigh,
		reason:     name + ", you may qualify for nondisclosure, but the required post-discharge waiting window has not fully matured.",
	}, "Join priority waitlist for automatic alerting"), d)
}

func (e *Evaluator) convicted(d domain.CollectedData, name string) *domain.EligibilityResult {
	if d.OffenseLevel == domain.OffenseFelony {
		return e.makeResult(verdict{
			bucket:     domain.BucketNotEligible,
			status:     domain.StatusFelonyConviction,
			confidence: domain.ConfidenceHigh,
			reason:     name + ", Texas generally does not allow nondisclosure for final felony convictions under standard pathways.",
			nextSteps: "1. Request attorney consultation for advanced remedies (pardon/habeas analysis).\n" +
				"2. Review whether any separate non-felony records remain clearable.",
		})
	}
	if domain.IsTrue(d.PriorHistory) {
		return e.makeResult(verdict{
			bucket:     domain.BucketNotEligible,
			status:     domain.StatusRepeatHistory,
			pathway:    domain.PathwayNondisclosure,
			confidence: domain.ConfidenceHigh,
			reason: name + ", first-time misdemeanor conviction sealing in Texas is narrow. " +
				"Multiple prior convictions/probations can block the standard pathway.",
			nextSteps: "1. Request legal review for any alternative pathways.\n" +
				"2. We can analyze whether any charge-specific relief remains available.",
		})
	}

	anchor, ok := anchorDate(d.ConvictionSentenceDate)
	if !ok {
		return e.missingDate(name+", we need sentence completion date details to calculate the misdemeanor conviction waiting period.",
			"1. Confirm completion month/year.\n2. Re-run this check or request legal review.")
	}

	required := years(e.rules.WaitPeriods.ConvictedMisdemeanorYears)
	gate := CheckWait(anchor, Wait{Years: required}, e.now())
	if gate.Met {
		return e.conservative(e.makeResult(verdict{
			bucket:     domain.BucketEligible,
			status:     domain.StatusEligibleNondisclosure,
			pathway:    domain.PathwayNondisclosure,
			confidence: domain.ConfidenceMedium,
			reason:     name + ", your first-time misdemeanor conviction timeline appears to satisfy the standard Texas nondisclosure waiting period.",
			nextSteps: "1. Start your nondisclosure filing now.\n" +
				"2. " + e.choosePlan(),
			eligibleOn: &gate.EligibleOn,
		}), d)
	}

	return e.conservative(e.waitlist(gate, verdict{
		pathway:    domain.PathwayNondisclosure,
		confidence: domain.ConfidenceMedium,
		reason:     name + ", you appear to be on a nondisclosure path, but the post-sentence waiting period has not fully elapsed.",
	}, "Join priority waitlist for a filing-window alert"), d)
}

// waitlist fills in the not-yet-eligible half of a wait gate.
func (e *Evaluator) waitlist(gate Gate, v verdict, cta string) *domain.EligibilityResult {
	eta := YearsUntil(gate.EligibleOn, e.now())
	v.bucket = domain.BucketNotEligible
	v.status = domain.StatusWaitlist
	v.eligibleOn = &gate.EligibleOn
	v.remaining = &eta
	v.nextSteps = fmt.Sprintf("1. Estimated eligibility date: %s.\n2. %s (about %s year(s) remaining).",
		FormatDate(gate.EligibleOn), cta, strconv.FormatFloat(eta, 'f', -1, 64))
	return e.makeResult(v)
}

func (e *Evaluator) missingDate(reason, nextSteps string) *domain.EligibilityResult {
	return e.makeResult(verdict{
		bucket:     domain.BucketNeedsReview,
		status:     domain.StatusNeedsHumanReview,
		confidence: domain.ConfidenceMedium,
		reason:     reason,
		nextSteps:  nextSteps,
	})
}

func (e *Evaluator) choosePlan() string {
	return fmt.Sprintf("Choose Standard (%s) or Rush (%s) processing.",
		e.rules.PriceLabel(ServiceStandard), e.rules.PriceLabel(ServiceRush))
}

func (e *Evaluator) selectPlan() string {
	return fmt.Sprintf("Select Standard (%s) or Rush (%s) processing.",
		e.rules.PriceLabel(ServiceStandard), e.rules.PriceLabel(ServiceRush))
}

func (e *Evaluator) makeResult(v verdict) *domain.EligibilityResult {
	if v.confidence == "" {
		v.confidence = domain.ConfidenceMedium
	}
	r := &domain.EligibilityResult{
		Bucket:         v.bucket,
		Status:         v.status,
		Pathway:        v.pathway,
		Eligible:       summarize(v.bucket, v.status),
		Confidence:     v.confidence,
		Reason:         v.reason,
		NextSteps:      normalizeSteps(v.nextSteps),
		Disclaimer:     Disclaimer,
		YearsRemaining: v.remaining,
	}
	if v.eligibleOn != nil {
		on := *v.eligibleOn
		r.EligibleOn = &on
		r.EligibleOnDate = FormatDate(on)
	}
	return r
}

// conservative appends ConservativeNote when the offense level was not a direct answer.
func (e *Evaluator) conservative(r *domain.EligibilityResult, d domain.CollectedData) *domain.EligibilityResult {
	if d.OffenseLevelAssumed {
		r.NextSteps = r.NextSteps + "\n\n" + ConservativeNote
	}
	return r
}

func summarize(bucket domain.Bucket, status domain.Status) string {
	switch {
	case bucket == domain.BucketEligible:
		return domain.EligibleLikely
	case status == domain.StatusWaitlist:
		return domain.EligibleNotYet
	case bucket == domain.BucketNeedsReview:
		return domain.EligibleNeedsReview
	default:
		return domain.EligibleBlocked
	}
}

// normalizeSteps trims every line and drops blank ones.
func normalizeSteps(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func levelOrFelony(l domain.OffenseLevel) domain.OffenseLevel {
	if l == "" {
		return domain.OffenseFelony
	}
	return l
}

func anchorDate(canonical string) (time.Time, bool) {
	ym, err := yearmonth.ParseCanonical(canonical)
	if err != nil {
		return time.Time{}, false
	}
	return ym.Time(), true
}
