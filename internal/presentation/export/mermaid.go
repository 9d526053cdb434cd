package export

import (
	"fmt"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/flow"
)

// Mermaid produces a Mermaid flowchart from a flow.
// The entry node renders as a ((circle)), everything else as a
// [rectangle] labelled with its message text (or id when the payload has
// none). Edges carry their source handle as the arrow label, which is
// how branch choices stay readable in the diagram.
func Mermaid(f flow.Flow) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entry, hasEntry := f.Entry()

	for _, n := range f.Nodes {
		safeID := sanitizeMermaidID(n.ID)

		opener, closer := "[", "]"
		if hasEntry && n.ID == entry.ID {
			opener, closer = "((", "))" // Circle
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(nodeLabel(n)), closer))
	}

	for _, e := range f.Edges {
		arrow := "-->"
		if e.SourceHandle != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeMermaidLabel(e.SourceHandle))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target)))
	}

	return sb.String()
}

// nodeLabel prefers the human text of the payload over the raw id.
func nodeLabel(n flow.Node) string {
	if p, err := flow.DecodeNodePayload(n); err == nil {
		if msg, ok := p.(*flow.MessagePayload); ok && msg.Text != "" {
			return truncateLabel(msg.Text, 24)
		}
	}
	return n.ID
}

func truncateLabel(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func escapeMermaidLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
