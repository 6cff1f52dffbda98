/*
Package domain contains the core domain models of the clearance intake engine.

It defines the per-visitor Session, the answers collected during the scripted
conversation, and the eligibility classification produced from those answers.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Session: the unit of mutation for a conversation (current state, answers, result, audit log).
  - CollectedData: the typed answers gathered by the flow, consumed by the rules engine.
  - EligibilityResult: an immutable classification (bucket, status, pathway, reasoning).
  - QuickReply / InputType: what the host should render for the active state.
*/
package domain
