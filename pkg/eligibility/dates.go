package eligibility

import (
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/yearmonth"
)

// NormalizeDates rewrites the date answers of d into canonical YYYY-MM form.
// Empty dates are left alone. It stops at the first date that cannot be
// parsed and returns its field name.
func NormalizeDates(d *domain.CollectedData) (field string, ok bool) {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"arrest_date", &d.ArrestDate},
		{"deferred_discharge_date", &d.DeferredDischargeDate},
		{"conviction_sentence_date", &d.ConvictionSentenceDate},
	} {
		if *f.value == "" {
			continue
		}
		canonical := yearmonth.Normalize(*f.value)
		if canonical == "" {
			return f.name, false
		}
		*f.value = canonical
	}
	return "", true
}
