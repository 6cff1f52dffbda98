package intake

import (
	"fmt"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
)

const (
	Greeting                domain.StateID = "GREETING"
	LearnMore               domain.StateID = "LEARN_MORE"
	PricingPreview          domain.StateID = "PRICING_PREVIEW"
	AskTexasCase            domain.StateID = "ASK_TEXAS_CASE"
	AskLifetimeBan          domain.StateID = "ASK_LIFETIME_BAN"
	AskName                 domain.StateID = "ASK_NAME"
	AskContact              domain.StateID = "ASK_CONTACT"
	AskOffenseLevel         domain.StateID = "ASK_OFFENSE_LEVEL"
	AskMultipleCharges      domain.StateID = "ASK_MULTIPLE_CHARGES"
	AskAnyConviction        domain.StateID = "ASK_ANY_CONVICTION_FROM_ARREST"
	AskCaseOutcome          domain.StateID = "ASK_CASE_OUTCOME"
	AskArrestDate           domain.StateID = "ASK_ARREST_DATE"
	AskDismissedCategory    domain.StateID = "ASK_DISMISSED_CATEGORY"
	AskDischargeDate        domain.StateID = "ASK_DEFERRED_DISCHARGE_DATE"
	AskDeferredMisdCategory domain.StateID = "ASK_DEFERRED_MISD_CATEGORY"
	AskDeferredBannedCharge domain.StateID = "ASK_DEFERRED_BANNED_CHARGE"
	AskCleanPeriod          domain.StateID = "ASK_CLEAN_PERIOD"
	AskPriorHistory         domain.StateID = "ASK_PRIOR_HISTORY"
	AskSentenceDate         domain.StateID = "ASK_CONVICTION_SENTENCE_DATE"
	EligibilityResult       domain.StateID = "ELIGIBILITY_RESULT"
	PaymentRush             domain.StateID = "PAYMENT_RUSH"
	PaymentStandard         domain.StateID = "PAYMENT_STANDARD"
	PaymentPlan             domain.StateID = "PAYMENT_PLAN"
	DiscoveryCheckout       domain.StateID = "DISCOVERY_CHECKOUT"
	WaitlistCapture         domain.StateID = "WAITLIST_CAPTURE"
	WaitlistConfirmed       domain.StateID = "WAITLIST_CONFIRMED"
	BookConsult             domain.StateID = "BOOK_CONSULT"
	ConsultConfirmed        domain.StateID = "CONSULT_CONFIRMED"
	LeadCapture             domain.StateID = "LEAD_CAPTURE"
	Complete                domain.StateID = "COMPLETE"
	FreeChat                domain.StateID = "FREE_CHAT"
)

// Reply ids that drive routing.
const (
	ReplyYes                  = "yes"
	ReplyNo                   = "no"
	ReplyLearnMore            = "learn_more"
	ReplyPricing              = "pricing"
	ReplyStartOver            = "start_over"
	ReplyRetainRush           = "retain_rush"
	ReplyRetainStandard       = "retain_standard"
	ReplyPaymentPlan          = "payment_plan"
	ReplyDiscovery            = "discovery_49"
	ReplyJoinWaitlist         = "join_waitlist"
	ReplyScheduleConsult      = "schedule_consult"
	ReplySchedulePriorityCall = "schedule_priority_call"
	ReplyUpdateContact        = "update_contact"
	ReplyAskQuestions         = "ask_questions"
)

var yesNo = []domain.QuickReply{{ID: ReplyYes, Label: "Yes"}, {ID: ReplyNo, Label: "No"}}

// Texas builds the Texas intake flow. Prices and links come from rules.
func Texas(rules *eligibility.Rules) *Table {
	standard := rules.PriceLabel(eligibility.ServiceStandard)
	rush := rules.PriceLabel(eligibility.ServiceRush)
	discovery := rules.PriceLabel(eligibility.ServiceDiscovery)

	return NewTable(Greeting, FreeChat, EligibilityResult,
		// Phase 1: intake and gatekeeping.
		&State{
			ID: Greeting,
			Prompt: Static("A criminal record should not be a life sentence. Recent Texas law updates have expanded " +
				"record-clearing pathways. Let's run your automated eligibility check now.\n\n" +
				"Note: This tool reviews public-record eligibility only. It is general information, not legal advice. " +
				"Please do not share details of undiscovered crimes."),
			QuickReplies: []domain.QuickReply{
				{ID: "start_check", Label: "Start Eligibility Check"},
				{ID: ReplyLearnMore, Label: "Learn How This Works"},
			},
			Next: func(reply string, _ Snapshot) Route {
				if reply == ReplyLearnMore {
					return To(LearnMore)
				}
				return To(AskTexasCase)
			},
			Targets: []domain.StateID{LearnMore, AskTexasCase},
		},
		&State{
			ID: LearnMore,
			Prompt: Static("We evaluate your path under Texas expunction and nondisclosure rules using a deterministic " +
				"checklist. If your case needs document verification, we route you to a legal review step instead of " +
				"guessing.\n\nReady to continue?"),
			QuickReplies: []domain.QuickReply{
				{ID: "continue", Label: "Continue Eligibility Check"},
				{ID: ReplyPricing, Label: "Show Pricing First"},
			},
			Next: func(reply string, _ Snapshot) Route {
				if reply == ReplyPricing {
					return To(PricingPreview)
				}
				return To(AskTexasCase)
			},
			Targets: []domain.StateID{PricingPreview, AskTexasCase},
		},
		&State{
			ID: PricingPreview,
			Prompt: Static(fmt.Sprintf("Our flat-fee options:\n\n• Standard Processing — %s\n• Rush Processing — %s\n"+
				"• Payment plans available\n\nWe recommend completing eligibility first so pricing is matched to the "+
				"correct legal pathway.", standard, rush)),
			QuickReplies: []domain.QuickReply{{ID: "continue", Label: "Continue Eligibility Check"}},
			Next:         func(string, Snapshot) Route { return To(AskTexasCase) },
			Targets:      []domain.StateID{AskTexasCase},
		},
		&State{
			ID:     AskTexasCase,
			Prompt: Static("Phase 1 of 4 — Checking State Qualifications. Did the arrest or court case happen in Texas?"),
			QuickReplies: []domain.QuickReply{
				{ID: "tx_yes", Label: "Yes, Texas"},
				{ID: "other_state", Label: "No, Another State"},
				{ID: "federal", Label: "Federal Court"},
			},
			InputType: domain.InputJurisdiction,
			Next: func(_ string, s Snapshot) Route {
				if s.Data.Jurisdiction == domain.JurisdictionTexas {
					return To(AskLifetimeBan)
				}
				return To(EligibilityResult)
			},
			Targets: []domain.StateID{AskLifetimeBan, EligibilityResult},
		},
		&State{
			ID: AskLifetimeBan,
			Prompt: Static("Have you ever been convicted of, or placed on probation for, sex offenses, murder, kidnapping, " +
				"human trafficking, or family/domestic violence?\n\nIf one of these was only arrested and fully " +
				"dismissed/not guilty, select 'No'."),
			QuickReplies: yesNo,
			InputType:    domain.InputLifetimeBar,
			Next: func(_ string, s Snapshot) Route {
				if s.Data.Jurisdiction != domain.JurisdictionTexas || domain.IsTrue(s.Data.LifetimeBar) {
					return To(EligibilityResult)
				}
				return To(AskName)
			},
			Targets: []domain.StateID{EligibilityResult, AskName},
		},
		&State{
			ID:        AskName,
			Prompt:    Static("Great. What is your first name?"),
			InputType: domain.InputName,
			Next:      func(string, Snapshot) Route { return To(AskContact) },
			Targets:   []domain.StateID{AskContact},
		},
		&State{
			ID: AskContact,
			Prompt: Static("Before we run the legal matrix, share your best email and mobile number so we can save your " +
				"progress if the session disconnects.\n\n🔒 Your data is encrypted and never sold."),
			InputType: domain.InputContactForm,
			Next:      func(string, Snapshot) Route { return To(AskOffenseLevel) },
			Targets:   []domain.StateID{AskOffenseLevel},
		},

		// Phase 2: disposition routing.
		&State{
			ID:     AskOffenseLevel,
			Prompt: Static("Phase 2 of 4 — Analyzing Chapter 55A Pathways. What level of offense are we evaluating?"),
			QuickReplies: []domain.QuickReply{
				{ID: string(domain.OffenseClassC), Label: "Class C Misdemeanor"},
				{ID: string(domain.OffenseMisdemeanor), Label: "Misdemeanor (A/B)"},
				{ID: string(domain.OffenseFelony), Label: "Felony"},
				{ID: "unsure", Label: "I'm Not Sure"},
			},
			InputType: domain.InputOffenseLevel,
			Next:      func(string, Snapshot) Route { return To(AskMultipleCharges) },
			Targets:   []domain.StateID{AskMultipleCharges},
		},
		&State{
			ID:     AskMultipleCharges,
			Prompt: Static("For that same arrest event, were you charged with one offense or multiple offenses at the same time?"),
			QuickReplies: []domain.QuickReply{
				{ID: "single", Label: "One Charge"},
				{ID: "multiple", Label: "Multiple Charges"},
			},
			InputType: domain.InputMultipleCharges,
			Next: func(_ string, s Snapshot) Route {
				if domain.IsTrue(s.Data.MultipleCharges) {
					return To(AskAnyConviction)
				}
				return To(AskCaseOutcome)
			},
			Targets: []domain.StateID{AskAnyConviction, AskCaseOutcome},
		},
		&State{
			ID: AskAnyConviction,
			Prompt: Static("If there were multiple charges from that same arrest, did any of them end in a final guilty " +
				"conviction or jail sentence?"),
			QuickReplies: yesNo,
			InputType:    domain.InputAnyConviction,
			Next:         func(string, Snapshot) Route { return To(AskCaseOutcome) },
			Targets:      []domain.StateID{AskCaseOutcome},
		},
		&State{
			ID:     AskCaseOutcome,
			Prompt: Static("What was the final result of the specific case you want to clear?"),
			QuickReplies: []domain.QuickReply{
				{ID: string(domain.OutcomeDismissed), Label: "Filed, Then Dismissed"},
				{ID: string(domain.OutcomeUnfiled), Label: "Arrested, Charges Never Filed"},
				{ID: string(domain.OutcomeAcquitted), Label: "Found Not Guilty (Acquitted)"},
				{ID: string(domain.OutcomeDeferred), Label: "Deferred Adjudication Completed"},
				{ID: string(domain.OutcomeConvicted), Label: "Convicted"},
				{ID: string(domain.OutcomeUnsure), Label: "I'm Not Sure"},
			},
			InputType: domain.InputCaseOutcome,
			Next: func(_ string, s Snapshot) Route {
				switch s.Data.CaseOutcome {
				case domain.OutcomeUnsure, "":
					return To(EligibilityResult)
				case domain.OutcomeDeferred:
					return To(AskDischargeDate)
				case domain.OutcomeConvicted:
					if s.Data.OffenseLevel == domain.OffenseFelony {
						return To(EligibilityResult)
					}
					return To(AskPriorHistory)
				}
				return To(AskArrestDate)
			},
			Targets: []domain.StateID{EligibilityResult, AskDischargeDate, AskPriorHistory, AskArrestDate},
		},

		// Phase 3: statutory validation and edge cases.
		&State{
			ID:        AskArrestDate,
			Prompt:    Static("What month and year did the arrest happen?\n\nExamples: 2021, 04/2021, or April 2021."),
			InputType: domain.InputArrestDate,
			Next: func(_ string, s Snapshot) Route {
				if s.Data.CaseOutcome == domain.OutcomeDismissed {
					return To(AskDismissedCategory)
				}
				return To(EligibilityResult)
			},
			Targets: []domain.StateID{AskDismissedCategory, EligibilityResult},
		},
		&State{
			ID: AskDismissedCategory,
			Prompt: Static("For dismissed cases, some offense categories carry longer statutes of limitation. " +
				"Which best matches the dismissed charge?"),
			QuickReplies: []domain.QuickReply{
				{ID: string(domain.DismissedStandard), Label: "Standard Offense"},
				{ID: string(domain.DismissedFraudFinancial), Label: "Fraud / Financial Crime"},
				{ID: string(domain.DismissedDeedTheft), Label: "Deed / Document Transfer Theft"},
				{ID: string(domain.DismissedNotSure), Label: "Not Sure"},
			},
			InputType: domain.InputDismissedCategory,
			Next:      func(string, Snapshot) Route { return To(EligibilityResult) },
			Targets:   []domain.StateID{EligibilityResult},
		},
		&State{
			ID: AskDischargeDate,
			Prompt: Static("What month and year did you successfully finish deferred adjudication and get discharged?\n\n" +
				"Examples: 2020, 09/2020, or September 2020."),
			InputType: domain.InputDischargeDate,
			Next: func(_ string, s Snapshot) Route {
				switch s.Data.OffenseLevel {
				case domain.OffenseMisdemeanor, domain.OffenseClassC:
					return To(AskDeferredMisdCategory)
				}
				return To(AskDeferredBannedCharge)
			},
			Targets: []domain.StateID{AskDeferredMisdCategory, AskDeferredBannedCharge},
		},
		&State{
			ID:     AskDeferredMisdCategory,
			Prompt: Static("Was this a minor non-violent misdemeanor, or a standard misdemeanor category?"),
			QuickReplies: []domain.QuickReply{
				{ID: string(domain.DeferredMinorNonviolent), Label: "Minor Non-Violent Misdemeanor"},
				{ID: string(domain.DeferredStandardOrUnsure), Label: "Standard or Not Sure"},
			},
			InputType: domain.InputDeferredMisdCategory,
			Next:      func(string, Snapshot) Route { return To(AskDeferredBannedCharge) },
			Targets:   []domain.StateID{AskDeferredBannedCharge},
		},
		&State{
			ID:     AskDeferredBannedCharge,
			Prompt: Static("Was this deferred case for murder, a sex offense, kidnapping, trafficking, or family violence?"),
			QuickReplies: []domain.QuickReply{
				{ID: ReplyYes, Label: "Yes"},
				{ID: ReplyNo, Label: "No"},
				{ID: "not_sure", Label: "Not Sure"},
			},
			InputType: domain.InputDeferredBannedCharge,
			Next:      func(string, Snapshot) Route { return To(AskCleanPeriod) },
			Targets:   []domain.StateID{AskCleanPeriod},
		},
		&State{
			ID: AskCleanPeriod,
			Prompt: Static("Since discharge on this case, have you been arrested or convicted for any new crimes " +
				"(other than traffic tickets)?"),
			QuickReplies: yesNo,
			InputType:    domain.InputInterveningOffense,
			Next:         func(string, Snapshot) Route { return To(EligibilityResult) },
			Targets:      []domain.StateID{EligibilityResult},
		},
		&State{
			ID: AskPriorHistory,
			Prompt: Static("For first-time misdemeanor conviction sealing, this must be your only offense ever. " +
				"Do you have any other convictions or probations in your lifetime?"),
			QuickReplies: yesNo,
			InputType:    domain.InputPriorHistory,
			Next: func(_ string, s Snapshot) Route {
				if domain.IsTrue(s.Data.PriorHistory) {
					return To(EligibilityResult)
				}
				return To(AskSentenceDate)
			},
			Targets: []domain.StateID{EligibilityResult, AskSentenceDate},
		},
		&State{
			ID: AskSentenceDate,
			Prompt: Static("What month and year did you complete all terms of sentence (including probation)?\n\n" +
				"Examples: 2019, 07/2019, or July 2019."),
			InputType: domain.InputSentenceDate,
			Next:      func(string, Snapshot) Route { return To(EligibilityResult) },
			Targets:   []domain.StateID{EligibilityResult},
		},

		// Phase 4: resolution and conversion.
		&State{
			ID:     EligibilityResult,
			Prompt: Static("Phase 4 of 4 — Finalizing Eligibility Report. Here is your tailored pathway analysis."),
			Next: func(reply string, _ Snapshot) Route {
				switch reply {
				case ReplyRetainRush:
					return To(PaymentRush)
				case ReplyRetainStandard:
					return To(PaymentStandard)
				case ReplyPaymentPlan:
					return To(PaymentPlan)
				case ReplyDiscovery:
					return To(DiscoveryCheckout)
				case ReplyJoinWaitlist:
					return To(WaitlistCapture)
				case ReplyScheduleConsult, ReplySchedulePriorityCall:
					return To(BookConsult)
				case ReplyStartOver:
					return restart()
				}
				return To(FreeChat)
			},
			Targets: []domain.StateID{PaymentRush, PaymentStandard, PaymentPlan, DiscoveryCheckout,
				WaitlistCapture, BookConsult, AskTexasCase, FreeChat},
		},
		&State{
			ID: PaymentRush,
			Prompt: Static(fmt.Sprintf("Rush selected.\n\n👉 [Complete Rush Retainer — %s](%s)\n\n"+
				"We prioritize drafting and filing to shorten your time-to-clearance where legally possible.",
				rush, rules.URL(eligibility.ServiceRush))),
			QuickReplies: []domain.QuickReply{
				{ID: ReplyRetainStandard, Label: "Switch to Standard"},
				{ID: ReplyScheduleConsult, Label: "Speak With Legal Team"},
				{ID: ReplyStartOver, Label: "Check Another Record"},
			},
			Next: func(reply string, _ Snapshot) Route {
				switch reply {
				case ReplyRetainStandard:
					return To(PaymentStandard)
				case ReplyScheduleConsult:
					return To(BookConsult)
				case ReplyStartOver:
					return restart()
				}
				return To(FreeChat)
			},
			Targets: []domain.StateID{PaymentStandard, BookConsult, AskTexasCase, FreeChat},
		},
		&State{
			ID: PaymentStandard,
			Prompt: Static(fmt.Sprintf("Standard selected.\n\n👉 [Complete Standard Retainer — %s](%s)\n\n"+
				"We handle the petition, filing, prosecutor notice, and final order process start-to-finish.",
				standard, rules.URL(eligibility.ServiceStandard))),
			QuickReplies: []domain.QuickReply{
				{ID: ReplyRetainRush, Label: "Upgrade to Rush"},
				{ID: ReplyPaymentPlan, Label: "View Payment Plans"},
				{ID: ReplyScheduleConsult, Label: "Speak With Legal Team"},
			},
			Next: func(reply string, _ Snapshot) Route {
				switch reply {
				case ReplyRetainRush:
					return To(PaymentRush)
				case ReplyPaymentPlan:
					return To(PaymentPlan)
				case ReplyScheduleConsult:
					return To(BookConsult)
				}
				return To(FreeChat)
			},
			Targets: []domain.StateID{PaymentRush, PaymentPlan, BookConsult, FreeChat},
		},
		&State{
			ID: PaymentPlan,
			Prompt: Static(fmt.Sprintf("Payment plan options are available with no interest.\n\n"+
				"👉 [Review Payment Plan Options](%s)\n\nIf you prefer, our team can walk you through the best option live.",
				rules.URL(eligibility.ServicePaymentPlan))),
			QuickReplies: []domain.QuickReply{
				{ID: ReplyRetainStandard, Label: "Proceed With Standard"},
				{ID: ReplyRetainRush, Label: "Proceed With Rush"},
				{ID: ReplyScheduleConsult, Label: "Call Me to Review Options"},
			},
			Next: func(reply string, _ Snapshot) Route {
				switch reply {
				case ReplyRetainStandard:
					return To(PaymentStandard)
				case ReplyRetainRush:
					return To(PaymentRush)
				case ReplyScheduleConsult:
					return To(BookConsult)
				}
				return To(FreeChat)
			},
			Targets: []domain.StateID{PaymentStandard, PaymentRush, BookConsult, FreeChat},
		},
		&State{
			ID: DiscoveryCheckout,
			Prompt: Static(fmt.Sprintf("To avoid guessing on court outcomes, we offer a Record Discovery & Strategy Session.\n\n"+
				"👉 [Start Record Discovery — %s](%s)\n\nWe pull the official DPS history and provide a legal strategy review.",
				discovery, rules.URL(eligibility.ServiceDiscovery))),
			QuickReplies: []domain.QuickReply{
				{ID: ReplyScheduleConsult, Label: "Speak With Legal Team First"},
				{ID: ReplyStartOver, Label: "Restart Eligibility Check"},
			},
			Next: func(reply string, _ Snapshot) Route {
				switch reply {
				case ReplyScheduleConsult:
					return To(BookConsult)
				case ReplyStartOver:
					return restart()
				}
				return To(FreeChat)
			},
			Targets: []domain.StateID{BookConsult, AskTexasCase, FreeChat},
		},
		&State{
			ID: WaitlistCapture,
			Prompt: Templated(func(s Snapshot) string {
				return fmt.Sprintf("%s are on the right path. We can place your file on our priority waitlist and notify "+
					"you as soon as your eligibility window opens. Is your current contact information correct?",
					orDefault(s.Data.FirstName, "You"))
			}),
			QuickReplies: []domain.QuickReply{
				{ID: "yes_correct", Label: "Yes, Keep Me Updated"},
				{ID: ReplyUpdateContact, Label: "Update Contact Info"},
			},
			Next:    detourOnUpdate(WaitlistConfirmed),
			Targets: []domain.StateID{LeadCapture, WaitlistConfirmed},
		},
		&State{
			ID: WaitlistConfirmed,
			Prompt: Static("Done. We saved your file and will alert you when your statutory waiting period is met. " +
				"You can still ask additional questions now."),
			QuickReplies: []domain.QuickReply{
				{ID: "more_questions", Label: "Ask a Question"},
				{ID: ReplyStartOver, Label: "Check Another Record"},
			},
			Next:    restartOrChat,
			Targets: []domain.StateID{AskTexasCase, FreeChat},
		},
		&State{
			ID: BookConsult,
			Prompt: Templated(func(s Snapshot) string {
				question := "Is the current contact information still best for callback?"
				if s.Data.FirstName != "" {
					question = s.Data.FirstName + ", is the current contact information still best for callback?"
				}
				return "We can route this to a legal specialist for direct review. " + question
			}),
			QuickReplies: []domain.QuickReply{
				{ID: "yes_correct", Label: "Yes, Contact Me There"},
				{ID: ReplyUpdateContact, Label: "Update Contact Info"},
			},
			Next:    detourOnUpdate(ConsultConfirmed),
			Targets: []domain.StateID{LeadCapture, ConsultConfirmed},
		},
		&State{
			ID: ConsultConfirmed,
			Prompt: Static("Confirmed. Our legal team will follow up within one business day. You can continue chatting " +
				"if you want help preparing documents in the meantime."),
			QuickReplies: []domain.QuickReply{
				{ID: "more_questions", Label: "Ask a Question"},
				{ID: ReplyStartOver, Label: "Check Another Record"},
			},
			Next:    restartOrChat,
			Targets: []domain.StateID{AskTexasCase, FreeChat},
		},
		&State{
			ID:        LeadCapture,
			Prompt:    Static("Share updated contact details and our team will follow up within one business day."),
			InputType: domain.InputLeadForm,
			Next: func(_ string, s Snapshot) Route {
				if s.ReturnAfterLead != "" {
					return Route{Next: s.ReturnAfterLead, Resumed: true}
				}
				return To(Complete)
			},
			Targets: []domain.StateID{WaitlistConfirmed, ConsultConfirmed, Complete},
		},
		&State{
			ID:     Complete,
			Prompt: Static("Thank you. Your request was logged successfully. You can continue chatting or run another check."),
			QuickReplies: []domain.QuickReply{
				{ID: ReplyStartOver, Label: "Run Another Eligibility Check"},
				{ID: "more_questions", Label: "Ask a Question"},
			},
			Next:    restartOrChat,
			Targets: []domain.StateID{AskTexasCase, FreeChat},
		},
		&State{
			ID:           FreeChat,
			Prompt:       Static(""),
			QuickReplies: []domain.QuickReply{{ID: ReplyStartOver, Label: "Run Eligibility Check Again"}},
			Next:         restartOrChat,
			Targets:      []domain.StateID{AskTexasCase, FreeChat},
		},
	)
}

func restart() Route {
	return Route{Next: AskTexasCase, Restart: true}
}

func restartOrChat(reply string, _ Snapshot) Route {
	if reply == ReplyStartOver {
		return restart()
	}
	return To(FreeChat)
}

// detourOnUpdate sends "update contact" through lead capture before confirming.
func detourOnUpdate(confirmed domain.StateID) NextFunc {
	return func(reply string, _ Snapshot) Route {
		if reply == ReplyUpdateContact {
			return Route{Next: LeadCapture, Detour: confirmed}
		}
		return To(confirmed)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
