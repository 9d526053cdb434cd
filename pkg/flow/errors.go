package flow

import "errors"

// ErrFlowNotFound is returned when a flow id cannot be found in the store.
var ErrFlowNotFound = errors.New("flow not found")

// ErrUnknownNodeType is returned when a payload decode is requested for a
// node type with no registered payload.
var ErrUnknownNodeType = errors.New("unknown node type")
