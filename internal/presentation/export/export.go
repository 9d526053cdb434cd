package export

import (
	"errors"
	"fmt"

	"github.com/flowsmith/flowsmith/pkg/flow"
)

// Formats supported by Render.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMermaid = "mermaid"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
)

// Formats lists every renderable format, in the order shown to users.
var Formats = []string{FormatJSON, FormatYAML, FormatMermaid, FormatDOT, FormatSVG}

// ErrUnknownFormat is returned for formats outside Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Render produces a rendition of the flow in the given format.
// The second result is the MIME content type.
func Render(f flow.Flow, format string) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		data, err := flow.EncodeFlow(f, flow.FormatJSON)
		return data, "application/json", err
	case FormatYAML:
		data, err := flow.EncodeFlow(f, flow.FormatYAML)
		return data, "application/yaml", err
	case FormatMermaid:
		return []byte(Mermaid(f)), "text/vnd.mermaid", nil
	case FormatDOT:
		return []byte(DOT(f)), "text/vnd.graphviz", nil
	case FormatSVG:
		data, err := SVG(f)
		return data, "image/svg+xml", err
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
