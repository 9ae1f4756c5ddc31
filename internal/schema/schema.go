// internal/schema/schema.go
package schema

import (
	"github.com/zclconf/go-cty/cty"
)

// Kind identifies one member of the closed set of field kinds.
type Kind string

const (
	Number     Kind = "number"
	Text       Kind = "text"
	TextLines  Kind = "text_lines"
	Toggle     Kind = "toggle"
	Menu       Kind = "menu"
	Color      Kind = "color"
	Coordinate Kind = "coordinate"
	Data       Kind = "data"
	Code       Kind = "code"
	Wildcard   Kind = "any"
	Compound   Kind = "compound"
	Array      Kind = "array"
	List       Kind = "list"
)

// Schema is the capability interface implemented by every field kind.
//
// Parse validates and normalizes a candidate value, returning an error when
// the value cannot satisfy the kind's contract. Serialize and Deserialize
// convert between the in-memory shape and the wire shape.
type Schema interface {
	Kind() Kind
	CtyType() cty.Type
	Parse(v cty.Value) (cty.Value, error)
	Default() cty.Value
	Serialize(v cty.Value) (cty.Value, error)
	Deserialize(v cty.Value) (cty.Value, error)
}

// colorType is the in-memory channel form of a color value.
var colorType = cty.Object(map[string]cty.Type{
	"r": cty.Number,
	"g": cty.Number,
	"b": cty.Number,
})

// coordinateType is a lon/lat pair in degrees.
var coordinateType = cty.Object(map[string]cty.Type{
	"lon": cty.Number,
	"lat": cty.Number,
})
