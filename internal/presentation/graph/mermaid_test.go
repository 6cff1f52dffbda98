package graph_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/clearance/internal/intake"
	"github.com/aretw0/clearance/internal/presentation/graph"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid_Shapes(t *testing.T) {
	out := graph.GenerateMermaid(intake.Texas(eligibility.DefaultRules()), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	for _, want := range []string{
		`GREETING(("GREETING"))`,
		`ELIGIBILITY_RESULT{{"ELIGIBILITY_RESULT"}}`,
		`ASK_NAME[/"ASK_NAME"/]`,
		`LEARN_MORE["LEARN_MORE"]`,
		"ASK_TEXAS_CASE --> ASK_LIFETIME_BAN",
		"ELIGIBILITY_RESULT -.-> FREE_CHAT",
		"FREE_CHAT --> FREE_CHAT",
		"LEAD_CAPTURE --> CONSULT_CONFIRMED",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_EveryTargetIsDeclared(t *testing.T) {
	table := intake.Texas(eligibility.DefaultRules())
	out := graph.GenerateMermaid(table, nil)
	for _, s := range table.States() {
		assert.Contains(t, out, `"`+string(s.ID)+`"`)
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	table := intake.Texas(eligibility.DefaultRules())
	s := domain.NewSession("s1", intake.Greeting, time.Time{})
	s.Events = []domain.Event{{State: intake.Greeting}, {State: intake.AskTexasCase}, {State: intake.AskTexasCase}, {State: "GONE"}}
	s.CurrentStateID = intake.AskLifetimeBan

	out := graph.GenerateMermaid(table, graph.OverlayFor(s))

	assert.Equal(t, 1, strings.Count(out, "class ASK_TEXAS_CASE visited;"))
	assert.Contains(t, out, "class GREETING visited;")
	assert.Contains(t, out, "class ASK_LIFETIME_BAN current;")
	assert.NotContains(t, out, "GONE")
	assert.Nil(t, graph.OverlayFor(nil))
}
