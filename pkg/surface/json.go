package surface

import (
	"encoding/json"
	"io"

	"github.com/districtscope/districtscope/pkg/pipeline"
)

// JSONRenderer marshals the document to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, doc *pipeline.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
