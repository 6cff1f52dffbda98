package intake

import (
	"fmt"
	"strings"

	"github.com/aretw0/clearance/pkg/domain"
)

// Snapshot is the read-only view a transition function gets of the session.
type Snapshot struct {
	Data            domain.CollectedData
	ReturnAfterLead domain.StateID
}

// Route is what a transition decides. All mutation it implies is applied
// by the caller, never by the transition itself.
type Route struct {
	Next domain.StateID

	// Detour, when set, is recorded as the state to resume after lead capture.
	Detour domain.StateID

	// Resumed clears a pending detour once it has been followed.
	Resumed bool

	// Restart discards case answers before the next question, keeping contact details.
	Restart bool
}

// To is a plain transition.
func To(id domain.StateID) Route {
	return Route{Next: id}
}

// NextFunc chooses the next state from the latest reply and a snapshot.
// Structured form replies arrive as an empty string.
type NextFunc func(reply string, snap Snapshot) Route

// State is an immutable entry of the table.
type State struct {
	ID           domain.StateID
	Prompt       Prompt
	QuickReplies []domain.QuickReply
	InputType    domain.InputType
	Next         NextFunc

	// Targets lists every state Next may return. It drives validation and graph rendering.
	Targets []domain.StateID
}

// Replies returns a copy of the quick replies.
func (s *State) Replies() []domain.QuickReply {
	if s.QuickReplies == nil {
		return nil
	}
	return append([]domain.QuickReply(nil), s.QuickReplies...)
}

// Table is the complete flow definition.
type Table struct {
	states   map[domain.StateID]*State
	order    []domain.StateID
	initial  domain.StateID
	fallback domain.StateID
	result   domain.StateID
}

// NewTable assembles states in declaration order.
func NewTable(initial, fallback, result domain.StateID, states ...*State) *Table {
	t := &Table{
		states:   make(map[domain.StateID]*State, len(states)),
		initial:  initial,
		fallback: fallback,
		result:   result,
	}
	for _, s := range states {
		if _, dup := t.states[s.ID]; !dup {
			t.order = append(t.order, s.ID)
		}
		t.states[s.ID] = s
	}
	return t
}

func (t *Table) Initial() domain.StateID  { return t.initial }
func (t *Table) Fallback() domain.StateID { return t.fallback }
func (t *Table) Result() domain.StateID   { return t.result }

// Get looks a state up.
func (t *Table) Get(id domain.StateID) (*State, bool) {
	s, ok := t.states[id]
	return s, ok
}

// Has reports whether id is a key of the table.
func (t *Table) Has(id domain.StateID) bool {
	_, ok := t.states[id]
	return ok
}

// States returns the states in declaration order.
func (t *Table) States() []*State {
	out := make([]*State, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.states[id])
	}
	return out
}

// Validate checks that the special states exist, every declared target exists,
// and every state is reachable from the initial state.
func (t *Table) Validate() error {
	for _, id := range []domain.StateID{t.initial, t.fallback, t.result} {
		if !t.Has(id) {
			return &domain.ConfigurationError{StateID: id, Detail: "special state is not defined"}
		}
	}

	var problems []string
	for _, s := range t.States() {
		if s.Next == nil {
			problems = append(problems, fmt.Sprintf("state '%s' has no transition", s.ID))
		}
		for _, target := range s.Targets {
			if !t.Has(target) {
				problems = append(problems, fmt.Sprintf("state '%s' targets unknown state '%s'", s.ID, target))
			}
		}
	}

	visited := map[domain.StateID]bool{}
	queue := []domain.StateID{t.initial}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		if s, ok := t.states[id]; ok {
			queue = append(queue, s.Targets...)
		}
	}
	for _, id := range t.order {
		if !visited[id] {
			problems = append(problems, fmt.Sprintf("state '%s' is unreachable", id))
		}
	}

	if len(problems) > 0 {
		return &domain.ConfigurationError{
			Detail: fmt.Sprintf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- ")),
		}
	}
	return nil
}
