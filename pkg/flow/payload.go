package flow

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/flowsmith/flowsmith/pkg/canvas"
)

// Payload is the typed view of a node's data map. Each node type has one
// payload shape; adding a node type to the builder means registering a
// payload here and teaching the editor its form fields.
type Payload interface {
	// NodeType returns the node type tag this payload belongs to.
	NodeType() string
}

// MessagePayload is the payload of a "message" node: the text sent to the
// conversation when the node is reached.
type MessagePayload struct {
	Text string `json:"text" yaml:"text" mapstructure:"text"`
}

// NodeType implements Payload.
func (MessagePayload) NodeType() string { return canvas.NodeTypeMessage }

var payloads = map[string]func() Payload{}

// RegisterPayload registers a payload factory for a node type. Call from
// init; the registry is not synchronized for concurrent mutation.
// Registering a node type twice panics, matching the double-registration
// behavior of expvar and http.Handle.
func RegisterPayload(nodeType string, factory func() Payload) {
	if _, exists := payloads[nodeType]; exists {
		panic(fmt.Sprintf("flow: payload for node type %q already registered", nodeType))
	}
	payloads[nodeType] = factory
}

func init() {
	RegisterPayload(canvas.NodeTypeMessage, func() Payload { return &MessagePayload{} })
}

// DecodePayload converts a node's raw data map into its registered typed
// payload. Unknown node types return ErrUnknownNodeType; the builder
// treats them as opaque rather than rejecting the flow.
func DecodePayload(nodeType string, data map[string]any) (Payload, error) {
	factory, ok := payloads[nodeType]
	if !ok {
		return nil, fmt.Errorf("node type %q: %w", nodeType, ErrUnknownNodeType)
	}
	p := factory()
	if err := mapstructure.Decode(data, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", nodeType, err)
	}
	return p, nil
}

// DecodeNodePayload is DecodePayload for a stable node.
func DecodeNodePayload(n Node) (Payload, error) {
	return DecodePayload(n.Type, n.Data)
}
