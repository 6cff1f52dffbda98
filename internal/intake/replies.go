package intake

import (
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
)

// ResultReplies selects the quick replies shown with a result. The choice
// depends on the status only; a nil result gets the generic consult set.
func ResultReplies(r *domain.EligibilityResult, rules *eligibility.Rules) []domain.QuickReply {
	generic := []domain.QuickReply{
		{ID: ReplyScheduleConsult, Label: "Speak With Legal Team"},
		{ID: ReplyAskQuestions, Label: "Ask a Question"},
	}
	if r == nil {
		return generic
	}

	switch r.Status {
	case domain.StatusEligibleExpunction, domain.StatusEligibleNondisclosure:
		return []domain.QuickReply{
			{ID: ReplyRetainStandard, Label: "Start Standard — " + rules.PriceLabel(eligibility.ServiceStandard)},
			{ID: ReplyRetainRush, Label: "Start Rush — " + rules.PriceLabel(eligibility.ServiceRush)},
			{ID: ReplyPaymentPlan, Label: "See Payment Plan Options"},
			{ID: ReplyScheduleConsult, Label: "Speak With Legal Team"},
		}
	case domain.StatusWaitlist:
		return []domain.QuickReply{
			{ID: ReplyJoinWaitlist, Label: "Join Priority Waitlist"},
			{ID: ReplyScheduleConsult, Label: "Request Legal Review"},
			{ID: ReplyAskQuestions, Label: "Ask a Question"},
		}
	case domain.StatusNeedsDiscovery:
		return []domain.QuickReply{
			{ID: ReplyDiscovery, Label: "Start Record Discovery — " + rules.PriceLabel(eligibility.ServiceDiscovery)},
			{ID: ReplyScheduleConsult, Label: "Speak With Legal Team"},
			{ID: ReplyAskQuestions, Label: "Ask a Question"},
		}
	case domain.StatusNeedsHumanReview:
		return []domain.QuickReply{
			{ID: ReplySchedulePriorityCall, Label: "Request Priority Callback"},
			{ID: ReplyAskQuestions, Label: "Ask a Question"},
		}
	case domain.StatusNotTexas:
		return []domain.QuickReply{
			{ID: ReplyScheduleConsult, Label: "Discuss Texas-Specific Portion"},
			{ID: ReplyStartOver, Label: "Restart Check"},
		}
	}
	return generic
}
