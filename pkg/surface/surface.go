// Package surface renders opportunity documents for different output
// targets: terminal, Markdown, JSON.
package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/districtscope/districtscope/pkg/pipeline"
)

// Renderer produces formatted output from an opportunity document.
type Renderer interface {
	// Render writes the formatted document to the writer.
	Render(w io.Writer, doc *pipeline.Document) error
}

// Formats lists the names accepted by ForFormat.
var Formats = []string{"json", "text", "markdown"}

// ForFormat returns the renderer registered under name. top limits the
// number of ranked districts listed by the text and Markdown renderers.
func ForFormat(name string, top int) (Renderer, error) {
	switch strings.ToLower(name) {
	case "json":
		return &JSONRenderer{}, nil
	case "text", "terminal", "":
		return &TerminalRenderer{Top: top}, nil
	case "markdown", "md":
		return &MarkdownRenderer{Top: top}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Formats, ", "))
	}
}

// DefaultTop is the ranked-district count used when Top is zero.
const DefaultTop = 10
