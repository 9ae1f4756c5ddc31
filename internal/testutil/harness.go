// Package testutil provides a shared harness of small operator types for
// graph tests: a constant source, an arithmetic transform, a list collector
// and an expression-like consumer.
package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/geogridgo/internal/directory"
	"github.com/vk/geogridgo/internal/manifest"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Harness bundles a populated registry and an empty directory.
type Harness struct {
	Registry  *registry.Registry
	Directory *directory.Directory
}

// NewHarness builds a registry holding the test operator types and a fresh
// directory.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	r := registry.New()
	m := &Module{}
	require.NoError(t, m.Register(context.Background(), r))
	require.NoError(t, r.Validate(context.Background()))

	return &Harness{Registry: r, Directory: directory.New()}
}

// Type returns a registered test operator type, failing the test when it is
// unknown.
func (h *Harness) Type(t *testing.T, name string) *registry.RegisteredOperator {
	t.Helper()
	ro, ok := h.Registry.Lookup(name)
	require.True(t, ok, "operator type %q is not registered", name)
	return ro
}

// Module registers the test operator types.
type Module struct{}

const sourceManifest = `
operator "source" {
  description = "Emits its single input unchanged."

  input "val" { kind = "number" }

  output "val" { kind = "number" }
}
`

const doubleManifest = `
operator "double" {
  input "x" { kind = "number" }

  output "y" { kind = "number" }
}
`

const sumManifest = `
operator "sum" {
  input "values" {
    kind = "list"
    elem { kind = "number" }
  }

  output "total" { kind = "number" }
}
`

const noteManifest = `
operator "note" {
  description = "Holds free-form text; embedded references track upstream edits."

  input "text" { kind = "code" }

  output "text" { kind = "text" }
}
`

// Register registers the test operator types with the engine.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	for _, reg := range []struct {
		src     string
		execute registry.Handler
	}{
		{sourceManifest, onExecuteSource},
		{doubleManifest, onExecuteDouble},
		{sumManifest, onExecuteSum},
		{noteManifest, onExecuteNote},
	} {
		def, err := manifest.ParseDefinition(ctx, "testutil.hcl", reg.src)
		if err != nil {
			return err
		}
		r.RegisterOperator(&registry.RegisteredOperator{Definition: def, Execute: reg.execute})
	}
	return nil
}

func onExecuteSource(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	return map[string]cty.Value{"val": inputs["val"]}, nil
}

func onExecuteDouble(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	x, _ := inputs["x"].AsBigFloat().Float64()
	return map[string]cty.Value{"y": cty.NumberFloatVal(x * 2)}, nil
}

func onExecuteSum(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	values := inputs["values"]
	total := 0.0
	if !values.IsNull() {
		for it := values.ElementIterator(); it.Next(); {
			_, v := it.Element()
			f, _ := v.AsBigFloat().Float64()
			total += f
		}
	}
	return map[string]cty.Value{"total": cty.NumberFloatVal(total)}, nil
}

func onExecuteNote(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	text := inputs["text"].AsString()
	return map[string]cty.Value{"text": cty.StringVal(strings.ToUpper(text))}, nil
}
