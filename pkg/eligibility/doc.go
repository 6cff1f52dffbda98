/*
Package eligibility implements the Texas record-clearing rules engine.

Evaluate is a pure function of domain.CollectedData and an injected clock. It
walks an ordered cascade of gates and the first match decides the result:

  - jurisdiction: anything but the target jurisdiction is not_texas
  - lifetime bar: disqualified_lifetime_bar
  - unknown outcome: needs_discovery
  - contradiction: answers that cannot coexist route to human review
  - criminal episode: a companion conviction from the same arrest routes to human review
  - outcome branch: acquitted, unfiled, dismissed, deferred or convicted, with wait gates
  - fallback: human review

Statutory constants and the host catalog live in Rules, loaded from YAML or JSON.
The embedded rules.yaml is used when no override is supplied.
*/
package eligibility
