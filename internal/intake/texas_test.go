package intake_test

import (
	"testing"

	"github.com/aretw0/clearance/internal/intake"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texasTable(t *testing.T) *intake.Table {
	t.Helper()
	table := intake.Texas(eligibility.DefaultRules())
	require.NoError(t, table.Validate())
	return table
}

func snapshots() []intake.Snapshot {
	levels := []domain.OffenseLevel{"", domain.OffenseClassC, domain.OffenseMisdemeanor, domain.OffenseFelony}
	outcomes := []domain.CaseOutcome{"", domain.OutcomeDismissed, domain.OutcomeUnfiled, domain.OutcomeAcquitted,
		domain.OutcomeDeferred, domain.OutcomeConvicted, domain.OutcomeUnsure}
	var out []intake.Snapshot
	for _, j := range []domain.Jurisdiction{domain.JurisdictionTexas, domain.JurisdictionOther} {
		for _, l := range levels {
			for _, o := range outcomes {
				for _, flag := range []*bool{nil, domain.Bool(true), domain.Bool(false)} {
					for _, ret := range []domain.StateID{"", intake.WaitlistConfirmed, intake.ConsultConfirmed} {
						out = append(out, intake.Snapshot{
							Data: domain.CollectedData{
								Jurisdiction:    j,
								LifetimeBar:     flag,
								OffenseLevel:    l,
								CaseOutcome:     o,
								MultipleCharges: flag,
								PriorHistory:    flag,
							},
							ReturnAfterLead: ret,
						})
					}
				}
			}
		}
	}
	return out
}

func TestTexas_TransitionsStayWithinDeclaredTargets(t *testing.T) {
	table := texasTable(t)
	snaps := snapshots()

	for _, s := range table.States() {
		replies := []string{"", "garbage", intake.ReplyStartOver, intake.ReplyUpdateContact}
		for _, qr := range s.QuickReplies {
			replies = append(replies, qr.ID)
		}
		for _, qr := range intake.ResultReplies(&domain.EligibilityResult{Status: domain.StatusEligibleExpunction}, eligibility.DefaultRules()) {
			replies = append(replies, qr.ID)
		}

		for _, reply := range replies {
			for _, snap := range snaps {
				route := s.Next(reply, snap)
				assert.Contains(t, s.Targets, route.Next, "state %s reply %q", s.ID, reply)
			}
		}
	}
}

func TestTexas_KeyBranches(t *testing.T) {
	table := texasTable(t)
	next := func(id domain.StateID, reply string, d domain.CollectedData) domain.StateID {
		s, ok := table.Get(id)
		require.True(t, ok)
		return s.Next(reply, intake.Snapshot{Data: d}).Next
	}
	tx := domain.CollectedData{Jurisdiction: domain.JurisdictionTexas}

	assert.Equal(t, intake.EligibilityResult, next(intake.AskTexasCase, "federal", domain.CollectedData{Jurisdiction: domain.JurisdictionFederal}))
	assert.Equal(t, intake.AskLifetimeBan, next(intake.AskTexasCase, "tx_yes", tx))

	barred := tx
	barred.LifetimeBar = domain.Bool(true)
	assert.Equal(t, intake.EligibilityResult, next(intake.AskLifetimeBan, "yes", barred))

	multi := tx
	multi.MultipleCharges = domain.Bool(true)
	assert.Equal(t, intake.AskAnyConviction, next(intake.AskMultipleCharges, "multiple", multi))

	felonyConviction := tx
	felonyConviction.OffenseLevel = domain.OffenseFelony
	felonyConviction.CaseOutcome = domain.OutcomeConvicted
	assert.Equal(t, intake.EligibilityResult, next(intake.AskCaseOutcome, "convicted", felonyConviction))

	misdConviction := felonyConviction
	misdConviction.OffenseLevel = domain.OffenseMisdemeanor
	assert.Equal(t, intake.AskPriorHistory, next(intake.AskCaseOutcome, "convicted", misdConviction))

	deferredMisd := tx
	deferredMisd.OffenseLevel = domain.OffenseClassC
	deferredMisd.CaseOutcome = domain.OutcomeDeferred
	assert.Equal(t, intake.AskDischargeDate, next(intake.AskCaseOutcome, "deferred", deferredMisd))
	assert.Equal(t, intake.AskDeferredMisdCategory, next(intake.AskDischargeDate, "2020", deferredMisd))

	dismissed := tx
	dismissed.CaseOutcome = domain.OutcomeDismissed
	assert.Equal(t, intake.AskArrestDate, next(intake.AskCaseOutcome, "dismissed", dismissed))
	assert.Equal(t, intake.AskDismissedCategory, next(intake.AskArrestDate, "2020", dismissed))

	unfiled := tx
	unfiled.CaseOutcome = domain.OutcomeUnfiled
	assert.Equal(t, intake.EligibilityResult, next(intake.AskArrestDate, "2020", unfiled))
}

func TestTexas_LeadCaptureDetour(t *testing.T) {
	table := texasTable(t)

	consult, _ := table.Get(intake.BookConsult)
	route := consult.Next(intake.ReplyUpdateContact, intake.Snapshot{})
	assert.Equal(t, intake.LeadCapture, route.Next)
	assert.Equal(t, intake.ConsultConfirmed, route.Detour)

	lead, _ := table.Get(intake.LeadCapture)
	route = lead.Next("", intake.Snapshot{ReturnAfterLead: intake.ConsultConfirmed})
	assert.Equal(t, intake.ConsultConfirmed, route.Next)
	assert.True(t, route.Resumed)

	route = lead.Next("", intake.Snapshot{})
	assert.Equal(t, intake.Complete, route.Next)
}

func TestTexas_StartOverRestarts(t *testing.T) {
	table := texasTable(t)
	for _, id := range []domain.StateID{intake.EligibilityResult, intake.Complete, intake.FreeChat, intake.PaymentRush} {
		s, _ := table.Get(id)
		route := s.Next(intake.ReplyStartOver, intake.Snapshot{})
		assert.Equal(t, intake.AskTexasCase, route.Next, "state %s", id)
		assert.True(t, route.Restart, "state %s", id)
	}
}

func TestTexas_TemplatedPrompts(t *testing.T) {
	table := texasTable(t)

	waitlist, _ := table.Get(intake.WaitlistCapture)
	require.True(t, waitlist.Prompt.IsTemplated())
	assert.Contains(t, waitlist.Prompt.Render(intake.Snapshot{Data: domain.CollectedData{FirstName: "Dana"}}), "Dana are on the right path.")
	assert.Contains(t, waitlist.Prompt.Render(intake.Snapshot{}), "You are on the right path.")

	consult, _ := table.Get(intake.BookConsult)
	assert.Contains(t, consult.Prompt.Render(intake.Snapshot{Data: domain.CollectedData{FirstName: "Dana"}}), "Dana, is the current contact")

	greeting, _ := table.Get(intake.Greeting)
	assert.False(t, greeting.Prompt.IsTemplated())
}

func TestTexas_PricesComeFromRules(t *testing.T) {
	rules := eligibility.DefaultRules()
	for i := range rules.Services {
		if rules.Services[i].ID == eligibility.ServiceRush {
			rules.Services[i].Price = 2500
		}
	}
	table := intake.Texas(rules)

	rush, _ := table.Get(intake.PaymentRush)
	assert.Contains(t, rush.Prompt.Render(intake.Snapshot{}), "Complete Rush Retainer — $2,500")
	preview, _ := table.Get(intake.PricingPreview)
	assert.Contains(t, preview.Prompt.Render(intake.Snapshot{}), "Rush Processing — $2,500")
}

func TestValidate_ReportsBrokenTables(t *testing.T) {
	next := func(string, intake.Snapshot) intake.Route { return intake.To("NOWHERE") }
	table := intake.NewTable("A", "A", "A",
		&intake.State{ID: "A", Next: next, Targets: []domain.StateID{"NOWHERE"}},
		&intake.State{ID: "ORPHAN", Next: next},
	)

	err := table.Validate()
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Detail, "unknown state 'NOWHERE'")
	assert.Contains(t, cfgErr.Detail, "'ORPHAN' is unreachable")

	assert.Error(t, intake.NewTable("MISSING", "A", "A", &intake.State{ID: "A", Next: next}).Validate())
}

func TestResultReplies(t *testing.T) {
	rules := eligibility.DefaultRules()
	ids := func(r *domain.EligibilityResult) []string {
		var out []string
		for _, qr := range intake.ResultReplies(r, rules) {
			out = append(out, qr.ID)
		}
		return out
	}

	tests := []struct {
		status domain.Status
		want   []string
	}{
		{domain.StatusEligibleExpunction, []string{"retain_standard", "retain_rush", "payment_plan", "schedule_consult"}},
		{domain.StatusEligibleNondisclosure, []string{"retain_standard", "retain_rush", "payment_plan", "schedule_consult"}},
		{domain.StatusWaitlist, []string{"join_waitlist", "schedule_consult", "ask_questions"}},
		{domain.StatusNeedsDiscovery, []string{"discovery_49", "schedule_consult", "ask_questions"}},
		{domain.StatusNeedsHumanReview, []string{"schedule_priority_call", "ask_questions"}},
		{domain.StatusNotTexas, []string{"schedule_consult", "start_over"}},
		{domain.StatusLifetimeBar, []string{"schedule_consult", "ask_questions"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			// Bucket is deliberately inconsistent: only status selects the set.
			assert.Equal(t, tt.want, ids(&domain.EligibilityResult{Bucket: domain.BucketEligible, Status: tt.status}))
		})
	}

	assert.Equal(t, []string{"schedule_consult", "ask_questions"}, ids(nil))
	assert.Equal(t, "Start Standard — $1,395", intake.ResultReplies(&domain.EligibilityResult{Status: domain.StatusEligibleExpunction}, rules)[0].Label)
}
