package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/clearance/pkg/domain"
	"github.com/muesli/termenv"
)

// FormatReplies lists quick replies as numbered options, one per line.
func FormatReplies(p termenv.Profile, replies []domain.QuickReply) string {
	var sb strings.Builder
	for i, qr := range replies {
		n := p.String(fmt.Sprintf("%2d)", i+1)).Foreground(p.Color("#14b8a6")).Bold()
		fmt.Fprintf(&sb, "%s %s\n", n, qr.Label)
	}
	return sb.String()
}

// ResolveReply maps what the user typed to a reply id: an option number,
// an id, or a label (case-insensitive). Anything else is returned as typed.
func ResolveReply(replies []domain.QuickReply, typed string) string {
	typed = strings.TrimSpace(typed)
	if n, err := strconv.Atoi(typed); err == nil && n >= 1 && n <= len(replies) {
		return replies[n-1].ID
	}
	for _, qr := range replies {
		if strings.EqualFold(typed, qr.ID) || strings.EqualFold(typed, qr.Label) {
			return qr.ID
		}
	}
	return typed
}
