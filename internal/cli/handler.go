package cli

import (
	"context"

	"github.com/aretw0/clearance/pkg/domain"
)

// IOHandler is one terminal rendition of the conversation.
type IOHandler interface {
	// Output shows a turn. The first prompt arrives as a Turn with only View set.
	Output(ctx context.Context, turn *domain.Turn) error
	// Input reads the next answer for view. It returns a string, or a
	// domain.ContactForm / map for form states.
	Input(ctx context.Context, view domain.View) (any, error)
}
