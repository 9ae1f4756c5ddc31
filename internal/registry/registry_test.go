package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/geogridgo/internal/manifest"
	"github.com/zclconf/go-cty/cty"
)

const doubleManifest = `
operator "double" {
  input "x" {
    kind    = "number"
    default = 1
  }
  output "y" { kind = "number" }
}
`

func newDoubleType(t *testing.T) *RegisteredOperator {
	t.Helper()
	def, err := manifest.ParseDefinition(context.Background(), "double.hcl", doubleManifest)
	require.NoError(t, err)
	return &RegisteredOperator{
		Definition: def,
		Execute: func(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
			x, _ := inputs["x"].AsBigFloat().Float64()
			return map[string]cty.Value{"y": cty.NumberFloatVal(x * 2)}, nil
		},
	}
}

func TestRegisterOperator(t *testing.T) {
	r := New()
	r.RegisterOperator(newDoubleType(t))

	ro, ok := r.Lookup("double")
	require.True(t, ok)
	assert.Equal(t, "double", ro.Definition.Type)

	_, ok = r.Lookup("nope")
	assert.False(t, ok)

	assert.PanicsWithValue(t, "operator type 'double' already registered", func() {
		r.RegisterOperator(newDoubleType(t))
	})
	assert.Panics(t, func() { r.RegisterOperator(nil) })
}

func TestTypes(t *testing.T) {
	r := New()
	r.RegisterOperator(newDoubleType(t))

	def, err := manifest.ParseDefinition(context.Background(), "a.hcl", `
operator "abs" {
  input "x" { kind = "number" }
  output "y" { kind = "number" }
}
`)
	require.NoError(t, err)
	r.RegisterOperator(&RegisteredOperator{
		Definition: def,
		Execute: func(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
			return nil, nil
		},
	})

	assert.Equal(t, []string{"abs", "double"}, r.Types())
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("complete registry passes", func(t *testing.T) {
		r := New()
		r.RegisterOperator(newDoubleType(t))
		assert.NoError(t, r.Validate(ctx))
	})

	t.Run("missing handler fails", func(t *testing.T) {
		r := New()
		ro := newDoubleType(t)
		ro.Execute = nil
		r.RegisterOperator(ro)

		err := r.Validate(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no execute handler")
	})
}

func TestInvoke(t *testing.T) {
	ctx := context.Background()
	ro := newDoubleType(t)

	t.Run("provided input is validated and used", func(t *testing.T) {
		out, err := ro.Invoke(ctx, map[string]cty.Value{"x": cty.NumberIntVal(5)})
		require.NoError(t, err)
		assert.True(t, cty.NumberIntVal(10).RawEquals(out["y"]))
	})

	t.Run("missing input falls back to the default", func(t *testing.T) {
		out, err := ro.Invoke(ctx, nil)
		require.NoError(t, err)
		assert.True(t, cty.NumberIntVal(2).RawEquals(out["y"]))
	})

	t.Run("invalid input is rejected before the handler runs", func(t *testing.T) {
		called := false
		guarded := &RegisteredOperator{
			Definition: ro.Definition,
			Execute: func(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
				called = true
				return nil, nil
			},
		}
		_, err := guarded.Invoke(ctx, map[string]cty.Value{"x": cty.StringVal("oops")})
		require.Error(t, err)
		assert.False(t, called)
	})

	t.Run("handler errors surface", func(t *testing.T) {
		boom := fmt.Errorf("boom")
		failing := &RegisteredOperator{
			Definition: ro.Definition,
			Execute: func(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
				return nil, boom
			},
		}
		_, err := failing.Invoke(ctx, nil)
		assert.ErrorIs(t, err, boom)
	})
}
