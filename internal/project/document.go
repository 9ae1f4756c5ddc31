// internal/project/document.go
package project

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Document is the on-disk shape of one graph session.
type Document struct {
	Operators   []OperatorState   `json:"operators"`
	Connections []ConnectionState `json:"connections,omitempty"`
}

// OperatorState persists one operator: its path, registered type, locked
// flag and the serialized inputs that differ from their defaults.
type OperatorState struct {
	Path   string                             `json:"path"`
	Type   string                             `json:"type"`
	Locked bool                               `json:"locked,omitempty"`
	Inputs map[string]ctyjson.SimpleJSONValue `json:"inputs,omitempty"`
}

// ConnectionState persists one value connection. From names an output field
// (`/path.field`); To names an input field, optionally a compound child
// (`/path.field.child`).
type ConnectionState struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// DecodeDocument reads a document from JSON.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding project document: %w", err)
	}
	return &doc, nil
}

// splitFieldRef splits a `/path/to/op.field[.child...]` reference into its
// operator path and dotted field path. Operator path segments never contain
// dots, so the first dot is the boundary.
func splitFieldRef(raw string) (opPath string, fieldPath []string, err error) {
	i := strings.IndexByte(raw, '.')
	if i < 0 || i == len(raw)-1 {
		return "", nil, fmt.Errorf("field reference %q must look like /path.field", raw)
	}
	return raw[:i], strings.Split(raw[i+1:], "."), nil
}

func fieldRef(opPath, field string) string {
	return opPath + "." + field
}
