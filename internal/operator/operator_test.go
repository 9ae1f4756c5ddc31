package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/geogridgo/internal/field"
	"github.com/vk/geogridgo/internal/manifest"
	"github.com/vk/geogridgo/internal/oppath"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// mapLookup is a minimal Lookup over a fixed set of operators.
type mapLookup map[string]*Operator

func (l mapLookup) Find(p oppath.Path) (*Operator, bool) {
	op, ok := l[p.String()]
	return op, ok
}

func (l mapLookup) add(ops ...*Operator) {
	for _, op := range ops {
		l[op.Path().String()] = op
		op.SetLookup(l)
	}
}

const sourceSrc = `
operator "source" {
  input "val" { kind = "number" }
  output "val" { kind = "number" }
}
`

const doubleSrc = `
operator "double" {
  input "x" { kind = "number" }
  output "y" { kind = "number" }
}
`

const noteSrc = `
operator "note" {
  input "text" { kind = "code" }
  output "text" { kind = "text" }
}
`

func newType(t *testing.T, src string, execute registry.Handler) *registry.RegisteredOperator {
	t.Helper()
	def, err := manifest.ParseDefinition(context.Background(), "test.hcl", src)
	require.NoError(t, err)
	return &registry.RegisteredOperator{Definition: def, Execute: execute}
}

func sourceType(t *testing.T) *registry.RegisteredOperator {
	return newType(t, sourceSrc, func(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
		return map[string]cty.Value{"val": inputs["val"]}, nil
	})
}

func doubleType(t *testing.T) *registry.RegisteredOperator {
	return newType(t, doubleSrc, func(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
		x, _ := inputs["x"].AsBigFloat().Float64()
		return map[string]cty.Value{"y": cty.NumberFloatVal(x * 2)}, nil
	})
}

func noteType(t *testing.T) *registry.RegisteredOperator {
	return newType(t, noteSrc, func(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
		return map[string]cty.Value{"text": inputs["text"]}, nil
	})
}

func numOf(t *testing.T, v cty.Value) float64 {
	t.Helper()
	require.False(t, v.IsNull())
	f, _ := v.AsBigFloat().Float64()
	return f
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("fields come up holding their defaults", func(t *testing.T) {
		op, err := New(ctx, oppath.MustParse("/a"), sourceType(t), nil)
		require.NoError(t, err)

		assert.Equal(t, "source", op.Type())
		assert.Equal(t, []string{"val"}, op.InputNames())
		assert.Equal(t, []string{"val"}, op.OutputNames())
		assert.Equal(t, 0.0, numOf(t, op.Input("val").Value().Concrete()))
	})

	t.Run("serialized inputs apply on construction", func(t *testing.T) {
		op, err := New(ctx, oppath.MustParse("/a"), sourceType(t), map[string]cty.Value{
			"val": cty.NumberIntVal(7),
		})
		require.NoError(t, err)
		assert.Equal(t, 7.0, numOf(t, op.Input("val").Value().Concrete()))
	})

	t.Run("an invalid serialized input keeps the default", func(t *testing.T) {
		op, err := New(ctx, oppath.MustParse("/a"), sourceType(t), map[string]cty.Value{
			"val":  cty.StringVal("garbage"),
			"nope": cty.True,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, numOf(t, op.Input("val").Value().Concrete()))
	})

	t.Run("missing registration is an error", func(t *testing.T) {
		_, err := New(ctx, oppath.MustParse("/a"), nil, nil)
		assert.Error(t, err)
	})
}

func TestExecutePipeline(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, oppath.MustParse("/a"), sourceType(t), nil)
	require.NoError(t, err)
	b, err := New(ctx, oppath.MustParse("/b"), doubleType(t), nil)
	require.NoError(t, err)

	require.NoError(t, a.Input("val").SetConcrete(ctx, cty.NumberIntVal(10)))
	assert.Equal(t, 10.0, numOf(t, a.Output("val").Value().Concrete()),
		"an input edit re-executes the operator")

	require.True(t, field.CanConnect(a.Output("val"), b.Input("x")))
	require.NoError(t, b.Input("x").AddConnection(ctx, "e1", a.Output("val"), field.ValueConn))

	assert.Equal(t, 10.0, numOf(t, b.Input("x").Value().Concrete()))
	assert.Equal(t, 20.0, numOf(t, b.Output("y").Value().Concrete()),
		"connecting seeds the downstream and runs it")

	require.NoError(t, a.Input("val").SetConcrete(ctx, cty.NumberIntVal(11)))
	assert.Equal(t, 22.0, numOf(t, b.Output("y").Value().Concrete()),
		"upstream edits flow through synchronously")

	require.NoError(t, b.Input("x").RemoveConnection(ctx, "e1", field.ValueConn))
	assert.Equal(t, 0.0, numOf(t, b.Input("x").Value().Concrete()),
		"disconnecting resets to the default")
	assert.Equal(t, 0.0, numOf(t, b.Output("y").Value().Concrete()))
}

func TestReferenceSync(t *testing.T) {
	ctx := context.Background()

	newGraph := func(t *testing.T) (*Operator, *Operator, *Operator) {
		a, err := New(ctx, oppath.MustParse("/a"), sourceType(t), nil)
		require.NoError(t, err)
		b, err := New(ctx, oppath.MustParse("/b"), sourceType(t), nil)
		require.NoError(t, err)
		n, err := New(ctx, oppath.MustParse("/n"), noteType(t), nil)
		require.NoError(t, err)
		mapLookup{}.add(a, b, n)
		return a, b, n
	}

	t.Run("editing text materializes and prunes edges", func(t *testing.T) {
		_, _, n := newGraph(t)

		require.NoError(t, n.Input("text").SetConcrete(ctx, cty.StringVal("{{/a.out.val}}")))
		assert.True(t, n.Input("text").HasConnection("xref:/a:out:val"))

		require.NoError(t, n.Input("text").SetConcrete(ctx, cty.StringVal("{{/a.out.val}} + {{/b.out.val}}")))
		assert.True(t, n.Input("text").HasConnection("xref:/a:out:val"))
		assert.True(t, n.Input("text").HasConnection("xref:/b:out:val"))
		assert.Len(t, n.Input("text").Connections(), 2)

		require.NoError(t, n.Input("text").SetConcrete(ctx, cty.StringVal("{{/b.out.val}}")))
		assert.False(t, n.Input("text").HasConnection("xref:/a:out:val"))
		assert.Len(t, n.Input("text").Connections(), 1)
	})

	t.Run("a referenced edit re-executes the referencing operator", func(t *testing.T) {
		a, _, n := newGraph(t)

		require.NoError(t, n.Input("text").SetConcrete(ctx, cty.StringVal("val is {{/a.out.val}}")))
		require.NoError(t, a.Input("val").SetConcrete(ctx, cty.NumberIntVal(5)))

		got := n.Output("text").Value().Concrete()
		assert.Equal(t, cty.StringVal("val is {{/a.out.val}}"), got,
			"the reference pulses execution without rewriting the text")
	})

	t.Run("a dangling reference is an error but the text stays", func(t *testing.T) {
		_, _, n := newGraph(t)

		err := n.Input("text").SetConcrete(ctx, cty.StringVal("{{/ghost.out.val}}"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no live operator")
		assert.Equal(t, cty.StringVal("{{/ghost.out.val}}"), n.Input("text").Value().Concrete())
	})

	t.Run("SyncReferences wires a loaded graph in one pass", func(t *testing.T) {
		a, _, n := newGraph(t)

		// Simulate a deserialized operator: the text exists before the sync.
		n2, err := New(ctx, oppath.MustParse("/n2"), noteType(t), map[string]cty.Value{
			"text": cty.StringVal("{{/a.out.val}}"),
		})
		require.NoError(t, err)
		lookup := mapLookup{}
		lookup.add(a, n, n2)

		require.NoError(t, n2.SyncReferences(ctx))
		assert.True(t, n2.Input("text").HasConnection("xref:/a:out:val"))
	})
}

func TestSerializeInputs(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults are omitted", func(t *testing.T) {
		op, err := New(ctx, oppath.MustParse("/a"), sourceType(t), nil)
		require.NoError(t, err)

		out, err := op.SerializeInputs()
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("edited values serialize and round-trip", func(t *testing.T) {
		op, err := New(ctx, oppath.MustParse("/a"), sourceType(t), nil)
		require.NoError(t, err)
		require.NoError(t, op.Input("val").SetConcrete(ctx, cty.NumberIntVal(7)))

		out, err := op.SerializeInputs()
		require.NoError(t, err)
		require.Contains(t, out, "val")

		clone, err := New(ctx, oppath.MustParse("/a2"), sourceType(t), out)
		require.NoError(t, err)
		assert.Equal(t, 7.0, numOf(t, clone.Input("val").Value().Concrete()))
	})

	t.Run("upstream-driven inputs are omitted unless locked", func(t *testing.T) {
		a, err := New(ctx, oppath.MustParse("/a"), sourceType(t), nil)
		require.NoError(t, err)
		b, err := New(ctx, oppath.MustParse("/b"), doubleType(t), nil)
		require.NoError(t, err)

		require.NoError(t, a.Input("val").SetConcrete(ctx, cty.NumberIntVal(9)))
		require.NoError(t, b.Input("x").AddConnection(ctx, "e1", a.Output("val"), field.ValueConn))

		out, err := b.SerializeInputs()
		require.NoError(t, err)
		assert.NotContains(t, out, "x", "the upstream repopulates it on load")

		b.SetLocked(true)
		out, err = b.SerializeInputs()
		require.NoError(t, err)
		require.Contains(t, out, "x")
		assert.Equal(t, 9.0, numOf(t, out["x"]))
	})
}
