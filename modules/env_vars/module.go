package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/geogridgo/internal/manifest"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const envManifest = `
operator "env_vars" {
  description = "Exposes the process environment as a string map."

  input "prefix" {
    kind     = "text"
    optional = true
  }

  output "all" {
    kind = "data"
    type = map(string)
  }
}
`

// OnExecuteEnvVars is the handler for the 'env_vars' operator type.
func OnExecuteEnvVars(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	prefix := ""
	if v := inputs["prefix"]; !v.IsNull() {
		prefix = v.AsString()
	}

	envMap := make(map[string]cty.Value)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			envMap[pair[0]] = cty.StringVal(pair[1])
		}
	}

	all := cty.MapValEmpty(cty.String)
	if len(envMap) > 0 {
		all = cty.MapVal(envMap)
	}
	return map[string]cty.Value{"all": all}, nil
}

// Register registers the env_vars operator type with the engine.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	def, err := manifest.ParseDefinition(ctx, "env_vars/env_vars.hcl", envManifest)
	if err != nil {
		return err
	}
	r.RegisterOperator(&registry.RegisteredOperator{
		Definition: def,
		Execute:    OnExecuteEnvVars,
	})
	return nil
}
