package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders flow node content as
// markdown using glamour. When no styled renderer can be built for the
// terminal, content passes through unchanged.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
