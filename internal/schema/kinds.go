// internal/schema/kinds.go
package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// --- number ---

type numberSchema struct{ def cty.Value }

// NewNumber creates a number schema. A NilVal default falls back to zero.
func NewNumber(def cty.Value) Schema {
	if def == cty.NilVal {
		def = cty.Zero
	}
	return &numberSchema{def: def}
}

func (s *numberSchema) Kind() Kind            { return Number }
func (s *numberSchema) CtyType() cty.Type     { return cty.Number }
func (s *numberSchema) Default() cty.Value    { return s.def }
func (s *numberSchema) Parse(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("number value is required")
	}
	out, err := convert.Convert(v, cty.Number)
	if err != nil {
		return cty.NilVal, fmt.Errorf("not a number: %w", err)
	}
	return out, nil
}
func (s *numberSchema) Serialize(v cty.Value) (cty.Value, error)   { return v, nil }
func (s *numberSchema) Deserialize(v cty.Value) (cty.Value, error) { return s.Parse(v) }

// --- text ---

type textSchema struct {
	def  cty.Value
	kind Kind
}

// NewText creates a single-line text schema.
func NewText(def cty.Value) Schema {
	if def == cty.NilVal {
		def = cty.StringVal("")
	}
	return &textSchema{def: def, kind: Text}
}

// NewCode creates a free-form code/expression schema. Code fields are
// open-ended and scanned for embedded operator references.
func NewCode(def cty.Value) Schema {
	if def == cty.NilVal {
		def = cty.StringVal("")
	}
	return &textSchema{def: def, kind: Code}
}

func (s *textSchema) Kind() Kind         { return s.kind }
func (s *textSchema) CtyType() cty.Type  { return cty.String }
func (s *textSchema) Default() cty.Value { return s.def }
func (s *textSchema) Parse(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("text value is required")
	}
	out, err := convert.Convert(v, cty.String)
	if err != nil {
		return cty.NilVal, fmt.Errorf("not a string: %w", err)
	}
	return out, nil
}
func (s *textSchema) Serialize(v cty.Value) (cty.Value, error)   { return v, nil }
func (s *textSchema) Deserialize(v cty.Value) (cty.Value, error) { return s.Parse(v) }

// --- multi-line text ---

type textLinesSchema struct{ def cty.Value }

// NewTextLines creates a multi-line text schema. In memory the value is a
// single string; on the wire it is an array of lines.
func NewTextLines(def cty.Value) Schema {
	if def == cty.NilVal {
		def = cty.StringVal("")
	}
	return &textLinesSchema{def: def}
}

func (s *textLinesSchema) Kind() Kind         { return TextLines }
func (s *textLinesSchema) CtyType() cty.Type  { return cty.String }
func (s *textLinesSchema) Default() cty.Value { return s.def }
func (s *textLinesSchema) Parse(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("text value is required")
	}
	out, err := convert.Convert(v, cty.String)
	if err != nil {
		return cty.NilVal, fmt.Errorf("not a string: %w", err)
	}
	return out, nil
}

func (s *textLinesSchema) Serialize(v cty.Value) (cty.Value, error) {
	lines := strings.Split(v.AsString(), "\n")
	vals := make([]cty.Value, len(lines))
	for i, line := range lines {
		vals[i] = cty.StringVal(line)
	}
	return cty.ListVal(vals), nil
}

func (s *textLinesSchema) Deserialize(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("text value is required")
	}
	if v.Type() == cty.String {
		return v, nil
	}
	if !v.CanIterateElements() {
		return cty.NilVal, fmt.Errorf("multi-line text must deserialize from a line array, got %s", v.Type().FriendlyName())
	}
	var lines []string
	for it := v.ElementIterator(); it.Next(); {
		_, line := it.Element()
		str, err := convert.Convert(line, cty.String)
		if err != nil {
			return cty.NilVal, fmt.Errorf("line is not a string: %w", err)
		}
		lines = append(lines, str.AsString())
	}
	return cty.StringVal(strings.Join(lines, "\n")), nil
}

// --- toggle ---

type toggleSchema struct{ def cty.Value }

// NewToggle creates a boolean on/off schema.
func NewToggle(def cty.Value) Schema {
	if def == cty.NilVal {
		def = cty.False
	}
	return &toggleSchema{def: def}
}

func (s *toggleSchema) Kind() Kind         { return Toggle }
func (s *toggleSchema) CtyType() cty.Type  { return cty.Bool }
func (s *toggleSchema) Default() cty.Value { return s.def }
func (s *toggleSchema) Parse(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("toggle value is required")
	}
	out, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return cty.NilVal, fmt.Errorf("not a bool: %w", err)
	}
	return out, nil
}
func (s *toggleSchema) Serialize(v cty.Value) (cty.Value, error)   { return v, nil }
func (s *toggleSchema) Deserialize(v cty.Value) (cty.Value, error) { return s.Parse(v) }

// --- menu ---

type menuSchema struct {
	options []string
	def     cty.Value
}

// NewMenu creates a schema constrained to a fixed set of string options.
// A NilVal default falls back to the first option.
func NewMenu(options []string, def cty.Value) Schema {
	if len(options) == 0 {
		panic("menu schema requires at least one option")
	}
	if def == cty.NilVal {
		def = cty.StringVal(options[0])
	}
	return &menuSchema{options: options, def: def}
}

func (s *menuSchema) Kind() Kind         { return Menu }
func (s *menuSchema) CtyType() cty.Type  { return cty.String }
func (s *menuSchema) Default() cty.Value { return s.def }
func (s *menuSchema) Parse(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("menu value is required")
	}
	out, err := convert.Convert(v, cty.String)
	if err != nil {
		return cty.NilVal, fmt.Errorf("not a string: %w", err)
	}
	got := out.AsString()
	for _, opt := range s.options {
		if opt == got {
			return out, nil
		}
	}
	return cty.NilVal, fmt.Errorf("%q is not one of the menu options %v", got, s.options)
}
func (s *menuSchema) Serialize(v cty.Value) (cty.Value, error)   { return v, nil }
func (s *menuSchema) Deserialize(v cty.Value) (cty.Value, error) { return s.Parse(v) }

// --- color ---

type colorSchema struct{ def cty.Value }

// NewColor creates an RGB color schema. In memory the value is an object of
// r/g/b channels (0-255); on the wire it is always a `#rrggbb` hex string.
func NewColor(def cty.Value) Schema {
	if def == cty.NilVal {
		def = cty.ObjectVal(map[string]cty.Value{
			"r": cty.Zero, "g": cty.Zero, "b": cty.Zero,
		})
	}
	return &colorSchema{def: def}
}

func (s *colorSchema) Kind() Kind         { return Color }
func (s *colorSchema) CtyType() cty.Type  { return colorType }
func (s *colorSchema) Default() cty.Value { return s.def }

func (s *colorSchema) Parse(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("color value is required")
	}
	if v.Type() == cty.String {
		return parseHexColor(v.AsString())
	}
	out, err := convert.Convert(v, colorType)
	if err != nil {
		return cty.NilVal, fmt.Errorf("not a color: %w", err)
	}
	return out, nil
}

func (s *colorSchema) Serialize(v cty.Value) (cty.Value, error) {
	return cty.StringVal(fmt.Sprintf("#%02x%02x%02x",
		channelByte(v.GetAttr("r")),
		channelByte(v.GetAttr("g")),
		channelByte(v.GetAttr("b")),
	)), nil
}

func (s *colorSchema) Deserialize(v cty.Value) (cty.Value, error) { return s.Parse(v) }

// channelByte clamps a cty number channel into the 0-255 byte range.
func channelByte(v cty.Value) int {
	f, _ := v.AsBigFloat().Float64()
	n := int(math.Round(f))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

func parseHexColor(raw string) (cty.Value, error) {
	hex := strings.TrimPrefix(raw, "#")
	if len(hex) != 6 {
		return cty.NilVal, fmt.Errorf("invalid hex color %q", raw)
	}
	channels := make([]cty.Value, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid hex color %q: %w", raw, err)
		}
		channels[i] = cty.NumberIntVal(int64(n))
	}
	return cty.ObjectVal(map[string]cty.Value{
		"r": channels[0], "g": channels[1], "b": channels[2],
	}), nil
}

// --- coordinate ---

type coordinateSchema struct{ def cty.Value }

// NewCoordinate creates a lon/lat pair schema (degrees). Both an object form
// {lon, lat} and a two-element [lon, lat] sequence parse to the object form.
func NewCoordinate(def cty.Value) Schema {
	if def == cty.NilVal {
		def = cty.ObjectVal(map[string]cty.Value{"lon": cty.Zero, "lat": cty.Zero})
	}
	return &coordinateSchema{def: def}
}

func (s *coordinateSchema) Kind() Kind         { return Coordinate }
func (s *coordinateSchema) CtyType() cty.Type  { return coordinateType }
func (s *coordinateSchema) Default() cty.Value { return s.def }

func (s *coordinateSchema) Parse(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("coordinate value is required")
	}
	ty := v.Type()
	if ty.IsTupleType() || ty.IsListType() {
		parts := v.AsValueSlice()
		if len(parts) != 2 {
			return cty.NilVal, fmt.Errorf("coordinate sequence must be [lon, lat], got %d elements", len(parts))
		}
		lon, err := convert.Convert(parts[0], cty.Number)
		if err != nil {
			return cty.NilVal, fmt.Errorf("longitude: %w", err)
		}
		lat, err := convert.Convert(parts[1], cty.Number)
		if err != nil {
			return cty.NilVal, fmt.Errorf("latitude: %w", err)
		}
		return cty.ObjectVal(map[string]cty.Value{"lon": lon, "lat": lat}), nil
	}
	out, err := convert.Convert(v, coordinateType)
	if err != nil {
		return cty.NilVal, fmt.Errorf("not a coordinate: %w", err)
	}
	return out, nil
}

func (s *coordinateSchema) Serialize(v cty.Value) (cty.Value, error)   { return v, nil }
func (s *coordinateSchema) Deserialize(v cty.Value) (cty.Value, error) { return s.Parse(v) }

// --- data / wildcard ---

type anySchema struct {
	def  cty.Value
	kind Kind
}

// NewData creates a free-form data schema accepting any value shape.
func NewData(def cty.Value) Schema {
	if def == cty.NilVal {
		def = cty.NullVal(cty.DynamicPseudoType)
	}
	return &anySchema{def: def, kind: Data}
}

// NewWildcard creates the wildcard schema, which matches anything in either
// direction of a connection.
func NewWildcard() Schema {
	return &anySchema{def: cty.NullVal(cty.DynamicPseudoType), kind: Wildcard}
}

// --- typed data ---

type typedDataSchema struct {
	ty  cty.Type
	def cty.Value
}

// NewTypedData creates a data schema constrained to a specific cty type,
// typically produced from a manifest type expression like `list(number)`.
func NewTypedData(ty cty.Type, def cty.Value) Schema {
	if def == cty.NilVal {
		def = cty.NullVal(ty)
	}
	return &typedDataSchema{ty: ty, def: def}
}

func (s *typedDataSchema) Kind() Kind         { return Data }
func (s *typedDataSchema) CtyType() cty.Type  { return s.ty }
func (s *typedDataSchema) Default() cty.Value { return s.def }
func (s *typedDataSchema) Parse(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NullVal(s.ty), nil
	}
	out, err := convert.Convert(v, s.ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("does not fit %s: %w", s.ty.FriendlyName(), err)
	}
	return out, nil
}
func (s *typedDataSchema) Serialize(v cty.Value) (cty.Value, error)   { return v, nil }
func (s *typedDataSchema) Deserialize(v cty.Value) (cty.Value, error) { return s.Parse(v) }

func (s *anySchema) Kind() Kind                                 { return s.kind }
func (s *anySchema) CtyType() cty.Type                          { return cty.DynamicPseudoType }
func (s *anySchema) Default() cty.Value                         { return s.def }
func (s *anySchema) Parse(v cty.Value) (cty.Value, error)       { return v, nil }
func (s *anySchema) Serialize(v cty.Value) (cty.Value, error)   { return v, nil }
func (s *anySchema) Deserialize(v cty.Value) (cty.Value, error) { return v, nil }
