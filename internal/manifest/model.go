// internal/manifest/model.go
package manifest

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/geogridgo/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// FieldDef is the parsed definition of one input or output field.
type FieldDef struct {
	Name        string
	Kind        schema.Kind
	Description string
	Schema      schema.Schema
	Optional    bool
	Accessor    bool
}

// Definition is the parsed manifest for one operator type.
type Definition struct {
	Type        string
	Description string
	Inputs      []*FieldDef
	Outputs     []*FieldDef
}

// Input returns the input field definition with the given name, or nil.
func (d *Definition) Input(name string) *FieldDef {
	for _, in := range d.Inputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

// Output returns the output field definition with the given name, or nil.
func (d *Definition) Output(name string) *FieldDef {
	for _, out := range d.Outputs {
		if out.Name == name {
			return out
		}
	}
	return nil
}

// --- raw HCL shapes ---

type manifestHCL struct {
	Operator *operatorHCL `hcl:"operator,block"`
}

type operatorHCL struct {
	Type        string      `hcl:"type,label"`
	Description string      `hcl:"description,optional"`
	Inputs      []*fieldHCL `hcl:"input,block"`
	Outputs     []*fieldHCL `hcl:"output,block"`
}

// fieldHCL is the raw shape of an `input`, `output` or nested `field`
// block. The type attribute stays an expression so it can be translated
// into a cty.Type without evaluation.
type fieldHCL struct {
	Name        string         `hcl:"name,label"`
	Kind        string         `hcl:"kind"`
	Description string         `hcl:"description,optional"`
	Type        hcl.Expression `hcl:"type,optional"`
	Default     *cty.Value     `hcl:"default,optional"`
	Optional    bool           `hcl:"optional,optional"`
	Accessor    bool           `hcl:"accessor,optional"`
	Options     []string       `hcl:"options,optional"`
	Elem        *elemHCL       `hcl:"elem,block"`
	Fields      []*fieldHCL    `hcl:"field,block"`
}

// elemHCL is the element template of an array or list field.
type elemHCL struct {
	Kind    string         `hcl:"kind"`
	Type    hcl.Expression `hcl:"type,optional"`
	Options []string       `hcl:"options,optional"`
}
