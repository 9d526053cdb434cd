package canvas

// Node type tags understood by the builder. New node kinds register a
// payload decoder in pkg/flow; the canvas itself treats types as opaque.
const (
	// NodeTypeMessage sends a text message to the conversation.
	NodeTypeMessage = "message"
)

// Position is a node's placement on the editor canvas. It has no meaning
// for validation; it is carried so layouts survive a save/load cycle.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Node is a single step of a flow as the visual editor sees it.
type Node struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"` // e.g. "message"
	Position Position       `json:"position" yaml:"position"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`

	// Editor state. These fields exist only while a canvas is open and are
	// stripped from the stable form on save.
	Selected         bool      `json:"selected,omitempty" yaml:"selected,omitempty"`
	Dragging         bool      `json:"dragging,omitempty" yaml:"dragging,omitempty"`
	Width            float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Height           float64   `json:"height,omitempty" yaml:"height,omitempty"`
	PositionAbsolute *Position `json:"positionAbsolute,omitempty" yaml:"positionAbsolute,omitempty"`
}

// Edge is a directed connection between two nodes. SourceHandle and
// TargetHandle name the connector ports on each side; the editor enforces
// at most one outgoing edge per source handle.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`

	// Editor state, stripped on save like the node equivalents.
	Selected bool `json:"selected,omitempty" yaml:"selected,omitempty"`
	Animated bool `json:"animated,omitempty" yaml:"animated,omitempty"`
}

// Snapshot is a point-in-time view of the whole canvas. Functions in this
// package treat it as read-only; nothing here mutates nodes or edges.
type Snapshot struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}
