// Package api carries the OpenAPI description of the flowsmith HTTP
// surface. The document is embedded so the server can publish it at
// /openapi.yaml and tests can hold the routes to it.
package api

import (
	_ "embed"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var spec []byte

// Spec returns the raw OpenAPI document.
func Spec() []byte {
	return spec
}

// Document parses the embedded OpenAPI document.
func Document() (*openapi3.T, error) {
	return openapi3.NewLoader().LoadFromData(spec)
}
