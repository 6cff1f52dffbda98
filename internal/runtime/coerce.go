package runtime

import (
	"strings"

	"github.com/aretw0/clearance/internal/intake"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/yearmonth"
	"github.com/mitchellh/mapstructure"
)

const (
	msgName         = "Please share at least your first name so we can continue."
	msgArrestDate   = "Please enter the arrest date as YYYY, MM/YYYY, or Month YYYY (example: 2021 or 04/2021)."
	msgDischargeDay = "Please enter the deferred discharge date as YYYY, MM/YYYY, or Month YYYY."
	msgSentenceDate = "Please enter the sentence completion date as YYYY, MM/YYYY, or Month YYYY."
)

// coerce stores the answer for the state's input type. Replies that are not
// recognized fall back to the conservative value for their field; only
// free-text names and dates can be rejected.
func (e *Engine) coerce(state *intake.State, s *domain.Session, reply string, input any) *domain.ValidationError {
	d := &s.CollectedData
	reject := func(field, msg string) *domain.ValidationError {
		return &domain.ValidationError{StateID: state.ID, Field: field, Message: msg}
	}

	switch state.InputType {
	case domain.InputJurisdiction:
		switch reply {
		case "tx_yes":
			d.Jurisdiction = domain.JurisdictionTexas
		case "federal":
			d.Jurisdiction = domain.JurisdictionFederal
		default:
			d.Jurisdiction = domain.JurisdictionOther
		}
	case domain.InputLifetimeBar:
		d.LifetimeBar = domain.Bool(reply == intake.ReplyYes)
	case domain.InputName:
		fields := strings.Fields(reply)
		if len(fields) == 0 {
			return reject("first_name", msgName)
		}
		d.FirstName = fields[0]
	case domain.InputContactForm:
		form, ok := decodeForm(input)
		if !ok {
			break
		}
		d.Email = form.Email
		d.Phone = form.Phone
	case domain.InputOffenseLevel:
		switch level := domain.OffenseLevel(reply); level {
		case domain.OffenseClassC, domain.OffenseMisdemeanor, domain.OffenseFelony:
			d.OffenseLevel = level
			d.OffenseLevelAssumed = false
		default:
			d.OffenseLevel = domain.OffenseFelony
			d.OffenseLevelAssumed = true
		}
	case domain.InputMultipleCharges:
		d.MultipleCharges = domain.Bool(reply == "multiple")
	case domain.InputAnyConviction:
		d.AnyConvictionFromArrest = domain.Bool(reply == intake.ReplyYes)
	case domain.InputCaseOutcome:
		switch outcome := domain.CaseOutcome(reply); outcome {
		case domain.OutcomeDismissed, domain.OutcomeUnfiled, domain.OutcomeAcquitted,
			domain.OutcomeDeferred, domain.OutcomeConvicted, domain.OutcomeUnsure:
			d.CaseOutcome = outcome
		default:
			d.CaseOutcome = domain.OutcomeUnsure
		}
	case domain.InputArrestDate:
		v := yearmonth.Normalize(reply)
		if v == "" {
			return reject("arrest_date", msgArrestDate)
		}
		d.ArrestDate = v
	case domain.InputDismissedCategory:
		switch cat := domain.DismissedCategory(reply); cat {
		case domain.DismissedStandard, domain.DismissedFraudFinancial, domain.DismissedDeedTheft:
			d.DismissedCategory = cat
		default:
			d.DismissedCategory = domain.DismissedNotSure
		}
	case domain.InputDischargeDate:
		v := yearmonth.Normalize(reply)
		if v == "" {
			return reject("deferred_discharge_date", msgDischargeDay)
		}
		d.DeferredDischargeDate = v
	case domain.InputDeferredMisdCategory:
		if domain.DeferredMisdCategory(reply) == domain.DeferredMinorNonviolent {
			d.DeferredMisdCategory = domain.DeferredMinorNonviolent
		} else {
			d.DeferredMisdCategory = domain.DeferredStandardOrUnsure
		}
	case domain.InputDeferredBannedCharge:
		switch reply {
		case intake.ReplyYes:
			d.DeferredBannedCharge = domain.Bool(true)
		case intake.ReplyNo:
			d.DeferredBannedCharge = domain.Bool(false)
		default:
			d.DeferredBannedCharge = nil
		}
	case domain.InputInterveningOffense:
		d.InterveningOffense = domain.Bool(reply == intake.ReplyYes)
	case domain.InputPriorHistory:
		d.PriorHistory = domain.Bool(reply == intake.ReplyYes)
	case domain.InputSentenceDate:
		v := yearmonth.Normalize(reply)
		if v == "" {
			return reject("conviction_sentence_date", msgSentenceDate)
		}
		d.ConvictionSentenceDate = v
	case domain.InputLeadForm:
		if form, ok := decodeForm(input); ok {
			s.Lead = &form
		} else {
			s.Lead = nil
		}
	}
	return nil
}

// decodeForm accepts a ContactForm or a loosely typed map, as decoded from
// JSON. Anything else is not a form.
func decodeForm(input any) (domain.ContactForm, bool) {
	switch v := input.(type) {
	case domain.ContactForm:
		return v, true
	case *domain.ContactForm:
		if v == nil {
			return domain.ContactForm{}, false
		}
		return *v, true
	case map[string]any, map[string]string:
		var form domain.ContactForm
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &form,
		})
		if err != nil {
			return domain.ContactForm{}, false
		}
		if err := dec.Decode(v); err != nil {
			return domain.ContactForm{}, false
		}
		return form, true
	}
	return domain.ContactForm{}, false
}

// DecodeForm exposes form decoding to transports that receive raw payloads.
func DecodeForm(input any) (domain.ContactForm, bool) {
	return decodeForm(input)
}
