package eligibility

import (
	"strings"

	"github.com/aretw0/clearance/pkg/domain"
)

// BuildContext renders a result as the markdown block handed to the
// free-form chat collaborator. Pathway and date lines are omitted when empty.
func BuildContext(r *domain.EligibilityResult) string {
	if r == nil {
		return ""
	}
	lines := []string{
		"## Eligibility Assessment (Texas)",
		"**Bucket**: " + string(r.Bucket),
		"**Status**: " + string(r.Status),
	}
	if r.Pathway != domain.PathwayNone {
		lines = append(lines, "**Pathway**: "+string(r.Pathway))
	}
	if r.EligibleOnDate != "" {
		lines = append(lines, "**Estimated Eligibility Date**: "+r.EligibleOnDate)
	}
	lines = append(lines,
		"**Assessment**: "+r.Reason,
		"**Next Steps**: "+r.NextSteps,
		"\n⚠️ "+r.Disclaimer,
	)
	return strings.Join(lines, "\n")
}
