package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/clearance/internal/intake"
	"github.com/aretw0/clearance/pkg/domain"
)

// Overlay contains session data to highlight on the graph.
type Overlay struct {
	Visited []domain.StateID
	Current domain.StateID
}

// OverlayFor builds an overlay from a session's audit log.
func OverlayFor(s *domain.Session) *Overlay {
	if s == nil {
		return nil
	}
	o := &Overlay{Current: s.CurrentStateID}
	for _, ev := range s.Events {
		o.Visited = append(o.Visited, ev.State)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the state table.
// It applies semantic styling:
// - Initial: ((Circle))
// - Result: {{Hexagon}}
// - States that collect an answer: [/Parallelogram/]
// - Default: [Rectangle]
// Edges into the fallback state are dotted.
func GenerateMermaid(table *intake.Table, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, s := range table.States() {
		safeID := sanitizeMermaidID(string(s.ID))

		opener, closer := "[", "]"
		switch {
		case s.ID == table.Initial():
			opener, closer = "((", "))"
		case s.ID == table.Result():
			opener, closer = "{{", "}}"
		case s.InputType != "":
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, s.ID, closer)

		for _, to := range s.Targets {
			arrow := "-->"
			if to == table.Fallback() && s.ID != table.Fallback() {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(string(to)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			if !table.Has(id) {
				continue
			}
			safeID := sanitizeMermaidID(string(id))
			if !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.Current != "" && table.Has(overlay.Current) {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.Current)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
