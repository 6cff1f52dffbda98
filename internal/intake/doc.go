// Package intake defines the state table of the record-clearing conversation.
//
// States are immutable. Transitions are pure functions of the latest reply and
// a Snapshot; whatever a transition implies (a detour, a restart) is returned
// in a Route and applied by the runtime.
package intake
