package flow

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flowsmith/flowsmith/pkg/canvas"
)

// Document formats accepted by the codec helpers.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatForPath guesses the document format from a file extension.
// Anything that is not .yaml or .yml is treated as JSON.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeSnapshot parses an editor export (a {nodes, edges} document) in
// the given format.
func DecodeSnapshot(data []byte, format string) (canvas.Snapshot, error) {
	var s canvas.Snapshot
	if err := unmarshal(data, format, &s); err != nil {
		return canvas.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// DecodeFlow parses a saved flow document in the given format.
func DecodeFlow(data []byte, format string) (Flow, error) {
	var f Flow
	if err := unmarshal(data, format, &f); err != nil {
		return Flow{}, fmt.Errorf("decode flow: %w", err)
	}
	return f, nil
}

// EncodeFlow renders a flow document in the given format. JSON output is
// indented for readability; saved flows are meant to be diffable.
func EncodeFlow(f Flow, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(f)
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func unmarshal(data []byte, format string, v any) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatJSON:
		return json.Unmarshal(data, v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
