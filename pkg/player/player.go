// Package player walks a saved flow interactively, the closest thing
// to running the chatbot without a bot runtime attached. It reads
// choices from an io.Reader and writes node content to an io.Writer,
// so it drops into a CLI, a test, or any other frontend.
package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/flowsmith/flowsmith/pkg/flow"
)

// ErrNoEntry is returned when the flow has no unique starting node.
// Validated flows always have one.
var ErrNoEntry = errors.New("flow has no unique starting node")

const defaultMaxSteps = 1000

// ContentRenderer transforms node content before it is written. This
// allows TUI rendering (markdown to ANSI) without coupling the package
// to a terminal library.
type ContentRenderer func(string) (string, error)

// Player handles the walkthrough loop over a flow using provided IO.
type Player struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// MaxSteps bounds the walk so cyclic flows terminate. Zero means
	// the default of 1000.
	MaxSteps int
}

// New creates a Player. The caller sets Input/Output explicitly
// (os.Stdin and os.Stdout for a CLI, buffers for tests).
func New() *Player {
	return &Player{}
}

// Play walks the flow from its entry node until a node with no
// outgoing edges is reached, the input ends, or the user quits.
//
// At nodes with a single outgoing edge the walk advances after the
// user acknowledges; nodes with several outgoing edges present a
// branch menu keyed by edge handle. In headless mode no input is read
// and branches always follow the first edge.
func (p *Player) Play(ctx context.Context, f flow.Flow) error {
	writer := p.Output
	if writer == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	var lineReader *bufio.Reader
	if !p.Headless {
		if p.Input == nil {
			return fmt.Errorf("input reader must be set (use os.Stdin)")
		}
		lineReader = bufio.NewReader(p.Input)
	}

	entry, ok := f.Entry()
	if !ok {
		return ErrNoEntry
	}

	maxSteps := p.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	if !p.Headless {
		title := f.Name
		if title == "" {
			title = f.ID
		}
		fmt.Fprintf(writer, "--- Playing %s ---\n", title)
	}

	current := entry
	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if step >= maxSteps {
			return fmt.Errorf("stopped after %d steps; the flow likely cycles", maxSteps)
		}

		p.printNode(writer, current)

		outgoing := f.Outgoing(current.ID)
		if len(outgoing) == 0 {
			if !p.Headless {
				fmt.Fprintln(writer, "--- End of flow ---")
			}
			return nil
		}

		next := outgoing[0]
		if !p.Headless {
			choice, done, err := p.prompt(lineReader, writer, outgoing)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			next = choice
		}

		node, ok := f.NodeByID(next.Target)
		if !ok {
			return fmt.Errorf("edge %s points to unknown node %q", next.ID, next.Target)
		}
		current = node
	}
}

func (p *Player) printNode(w io.Writer, n flow.Node) {
	text := nodeText(n)
	if text == "" {
		return
	}
	if p.Renderer != nil {
		if rendered, err := p.Renderer(text); err == nil {
			text = rendered
		}
	}
	fmt.Fprintln(w, strings.TrimSpace(text))
}

// nodeText resolves what a node says. Message payloads carry text;
// unknown node types fall back to a placeholder so the walk stays
// readable.
func nodeText(n flow.Node) string {
	payload, err := flow.DecodeNodePayload(n)
	if err == nil {
		if msg, ok := payload.(*flow.MessagePayload); ok {
			return msg.Text
		}
	}
	if raw, ok := n.Data["text"].(string); ok {
		return raw
	}
	return fmt.Sprintf("[%s node %s]", n.Type, n.ID)
}

// prompt reads the user's next move. The done result is true when the
// walk should stop (quit command or end of input).
func (p *Player) prompt(r *bufio.Reader, w io.Writer, outgoing []flow.Edge) (flow.Edge, bool, error) {
	if len(outgoing) > 1 {
		for i, e := range outgoing {
			fmt.Fprintf(w, "  %d) %s\n", i+1, edgeLabel(e))
		}
	}

	for {
		fmt.Fprint(w, "> ")
		text, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Graceful exit on EOF
				return flow.Edge{}, true, nil
			}
			return flow.Edge{}, false, fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(text)

		if input == "exit" || input == "quit" {
			fmt.Fprintln(w, "Bye!")
			return flow.Edge{}, true, nil
		}
		if len(outgoing) == 1 {
			return outgoing[0], false, nil
		}

		if e, ok := matchChoice(outgoing, input); ok {
			return e, false, nil
		}
		fmt.Fprintf(w, "Unknown choice %q. Pick 1-%d or a handle name.\n", input, len(outgoing))
	}
}

// edgeLabel names a branch for the menu: the source handle when the
// editor set one, the target node id otherwise.
func edgeLabel(e flow.Edge) string {
	if e.SourceHandle != "" {
		return e.SourceHandle
	}
	return e.Target
}

func matchChoice(outgoing []flow.Edge, input string) (flow.Edge, bool) {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(outgoing) {
		return outgoing[n-1], true
	}
	for _, e := range outgoing {
		if strings.EqualFold(edgeLabel(e), input) {
			return e, true
		}
	}
	return flow.Edge{}, false
}
