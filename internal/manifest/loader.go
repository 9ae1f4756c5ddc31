// internal/manifest/loader.go
package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/geogridgo/internal/ctxlog"
	"github.com/vk/geogridgo/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// ParseDefinition parses one operator-type manifest from HCL source.
func ParseDefinition(ctx context.Context, filename, src string) (*Definition, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclsyntax.ParseConfig([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing manifest %s: %s", filename, diags.Error())
	}

	var raw manifestHCL
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("decoding manifest %s: %s", filename, diags.Error())
	}
	if raw.Operator == nil {
		return nil, fmt.Errorf("manifest %s declares no operator block", filename)
	}

	def := &Definition{
		Type:        raw.Operator.Type,
		Description: raw.Operator.Description,
	}

	seen := make(map[string]bool)
	for _, in := range raw.Operator.Inputs {
		if seen["in:"+in.Name] {
			return nil, fmt.Errorf("operator %q declares input %q twice", def.Type, in.Name)
		}
		seen["in:"+in.Name] = true
		fd, err := buildFieldDef(in)
		if err != nil {
			return nil, fmt.Errorf("operator %q, input %q: %w", def.Type, in.Name, err)
		}
		def.Inputs = append(def.Inputs, fd)
	}
	for _, out := range raw.Operator.Outputs {
		if seen["out:"+out.Name] {
			return nil, fmt.Errorf("operator %q declares output %q twice", def.Type, out.Name)
		}
		seen["out:"+out.Name] = true
		fd, err := buildFieldDef(out)
		if err != nil {
			return nil, fmt.Errorf("operator %q, output %q: %w", def.Type, out.Name, err)
		}
		def.Outputs = append(def.Outputs, fd)
	}

	logger.Debug("Parsed operator manifest.",
		"type", def.Type, "inputs", len(def.Inputs), "outputs", len(def.Outputs))
	return def, nil
}

func buildFieldDef(f *fieldHCL) (*FieldDef, error) {
	s, err := buildSchema(f)
	if err != nil {
		return nil, err
	}
	return &FieldDef{
		Name:        f.Name,
		Kind:        schema.Kind(f.Kind),
		Description: f.Description,
		Schema:      s,
		Optional:    f.Optional,
		Accessor:    f.Accessor,
	}, nil
}

func buildSchema(f *fieldHCL) (schema.Schema, error) {
	var s schema.Schema

	switch kind := schema.Kind(f.Kind); kind {
	case schema.Number:
		s = schema.NewNumber(cty.NilVal)
	case schema.Text:
		s = schema.NewText(cty.NilVal)
	case schema.TextLines:
		s = schema.NewTextLines(cty.NilVal)
	case schema.Toggle:
		s = schema.NewToggle(cty.NilVal)
	case schema.Menu:
		if len(f.Options) == 0 {
			return nil, fmt.Errorf("menu field requires options")
		}
		s = schema.NewMenu(f.Options, cty.NilVal)
	case schema.Color:
		s = schema.NewColor(cty.NilVal)
	case schema.Coordinate:
		s = schema.NewCoordinate(cty.NilVal)
	case schema.Code:
		s = schema.NewCode(cty.NilVal)
	case schema.Data:
		ty, err := typeExprToCtyType(f.Type)
		if err != nil {
			return nil, err
		}
		s = schema.NewTypedData(ty, cty.NilVal)
	case schema.Wildcard:
		s = schema.NewWildcard()
	case schema.Compound:
		if len(f.Fields) == 0 {
			return nil, fmt.Errorf("compound field requires nested field blocks")
		}
		children := make(map[string]schema.Schema, len(f.Fields))
		order := make([]string, 0, len(f.Fields))
		for _, child := range f.Fields {
			if _, dup := children[child.Name]; dup {
				return nil, fmt.Errorf("compound child %q declared twice", child.Name)
			}
			childSchema, err := buildSchema(child)
			if err != nil {
				return nil, fmt.Errorf("child %q: %w", child.Name, err)
			}
			children[child.Name] = childSchema
			order = append(order, child.Name)
		}
		s = schema.NewCompound(children, order)
	case schema.Array, schema.List:
		elem, err := buildElemSchema(f.Elem)
		if err != nil {
			return nil, err
		}
		if kind == schema.Array {
			s = schema.NewArray(elem)
		} else {
			s = schema.NewList(elem)
		}
	default:
		return nil, fmt.Errorf("unknown field kind %q", f.Kind)
	}

	if f.Default != nil {
		parsed, err := s.Parse(*f.Default)
		if err != nil {
			return nil, fmt.Errorf("default value: %w", err)
		}
		s = schema.WithDefault(s, parsed)
	}
	if f.Optional {
		s = schema.Optional(s)
	}
	return s, nil
}

func buildElemSchema(e *elemHCL) (schema.Schema, error) {
	if e == nil {
		// No elem block means an untyped element template.
		return schema.NewData(cty.NilVal), nil
	}
	switch kind := schema.Kind(e.Kind); kind {
	case schema.Number:
		return schema.NewNumber(cty.NilVal), nil
	case schema.Text:
		return schema.NewText(cty.NilVal), nil
	case schema.Toggle:
		return schema.NewToggle(cty.NilVal), nil
	case schema.Menu:
		if len(e.Options) == 0 {
			return nil, fmt.Errorf("menu element requires options")
		}
		return schema.NewMenu(e.Options, cty.NilVal), nil
	case schema.Color:
		return schema.NewColor(cty.NilVal), nil
	case schema.Coordinate:
		return schema.NewCoordinate(cty.NilVal), nil
	case schema.Data:
		ty, err := typeExprToCtyType(e.Type)
		if err != nil {
			return nil, err
		}
		return schema.NewTypedData(ty, cty.NilVal), nil
	default:
		return nil, fmt.Errorf("unsupported element kind %q", e.Kind)
	}
}
