package eligibility_test

import (
	"testing"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeDates(t *testing.T) {
	d := domain.CollectedData{ArrestDate: "2019", ConvictionSentenceDate: "Jan 2021"}
	field, ok := eligibility.NormalizeDates(&d)
	assert.True(t, ok)
	assert.Empty(t, field)
	assert.Equal(t, "2019-01", d.ArrestDate)
	assert.Equal(t, "2021-01", d.ConvictionSentenceDate)
	assert.Empty(t, d.DeferredDischargeDate)

	d = domain.CollectedData{DeferredDischargeDate: "13/2020"}
	field, ok = eligibility.NormalizeDates(&d)
	assert.False(t, ok)
	assert.Equal(t, "deferred_discharge_date", field)
}
