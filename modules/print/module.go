package print

import (
	"context"
	"fmt"

	"github.com/vk/geogridgo/internal/manifest"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const printManifest = `
operator "print" {
  description = "Prints its input to standard output and passes it through."

  input "value" { kind = "any" }
  input "label" {
    kind     = "text"
    optional = true
  }

  output "value" { kind = "any" }
}
`

// OnExecutePrint is the handler for the 'print' operator type.
func OnExecutePrint(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	v := inputs["value"]

	rendered := "null"
	if !v.IsNull() {
		raw, err := ctyjson.Marshal(v, v.Type())
		if err != nil {
			return nil, fmt.Errorf("failed to render value: %w", err)
		}
		rendered = string(raw)
	}

	if label := inputs["label"]; !label.IsNull() && label.AsString() != "" {
		fmt.Printf("%s: %s\n", label.AsString(), rendered)
	} else {
		fmt.Println(rendered)
	}

	return map[string]cty.Value{"value": v}, nil
}

// Register registers the print operator type with the engine.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	def, err := manifest.ParseDefinition(ctx, "print/print.hcl", printManifest)
	if err != nil {
		return err
	}
	r.RegisterOperator(&registry.RegisteredOperator{
		Definition: def,
		Execute:    OnExecutePrint,
	})
	return nil
}
