package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError reports a malformed or missing free-text answer.
// It is recovered inside the turn by re-prompting; it never aborts a conversation.
type ValidationError struct {
	StateID StateID
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("state '%s': invalid %s: %s", e.StateID, e.Field, e.Message)
}

// ConfigurationError reports a broken state table or rule set: an unknown
// state identifier, or a statutory constant that was never configured.
type ConfigurationError struct {
	StateID StateID
	Detail  string
}

func (e *ConfigurationError) Error() string {
	if e.StateID == "" {
		return "configuration error: " + e.Detail
	}
	return fmt.Sprintf("configuration error at state '%s': %s", e.StateID, e.Detail)
}
