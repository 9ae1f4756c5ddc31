package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/geogridgo/internal/app"
	"github.com/vk/geogridgo/internal/oppath"
	"github.com/vk/geogridgo/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

func writeProject(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRun(t *testing.T) {
	t.Run("loads, evaluates and prints outputs", func(t *testing.T) {
		path := writeProject(t, `{
  "operators": [
    {
      "path": "/dist",
      "type": "geo_distance",
      "inputs": {
        "from": {"lon": 0, "lat": 0},
        "to": {"lon": 0, "lat": 1}
      }
    }
  ]
}`)
		var out bytes.Buffer
		cfg, err := app.NewConfig(app.Config{ProjectPath: path, LogFormat: "json", LogLevel: "error"})
		require.NoError(t, err)

		a := app.NewApp(&out, cfg)
		require.NoError(t, a.Run(context.Background(), cfg))

		assert.Contains(t, out.String(), "/dist.distance = 111.1")
	})

	t.Run("save writes the normalized document back", func(t *testing.T) {
		path := writeProject(t, `{
  "operators": [
    {"path": "/env", "type": "env_vars", "inputs": {"prefix": "GEOGRIDGO_TEST_"}}
  ]
}`)
		savePath := filepath.Join(t.TempDir(), "saved.json")

		var out bytes.Buffer
		cfg, err := app.NewConfig(app.Config{ProjectPath: path, SavePath: savePath, LogFormat: "json", LogLevel: "error"})
		require.NoError(t, err)

		a := app.NewApp(&out, cfg)
		require.NoError(t, a.Run(context.Background(), cfg))

		saved, err := os.ReadFile(savePath)
		require.NoError(t, err)
		assert.Contains(t, string(saved), `"/env"`)
		assert.Contains(t, string(saved), `"env_vars"`)
	})

	t.Run("missing project file is an error", func(t *testing.T) {
		var out bytes.Buffer
		cfg, err := app.NewConfig(app.Config{ProjectPath: "/does/not/exist.json", LogFormat: "json", LogLevel: "error"})
		require.NoError(t, err)

		a := app.NewApp(&out, cfg)
		assert.Error(t, a.Run(context.Background(), cfg))
	})
}

func TestConnect(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	cfg, err := app.NewConfig(app.Config{ProjectPath: "unused.json", LogFormat: "json", LogLevel: "error"})
	require.NoError(t, err)

	a := app.NewApp(&out, cfg, &testutil.Module{})

	src, ok := a.Registry().Lookup("source")
	require.True(t, ok)
	dbl, ok := a.Registry().Lookup("double")
	require.True(t, ok)

	sOp, err := a.Directory().Instantiate(ctx, src, "src", oppath.Root(),
		map[string]cty.Value{"val": cty.NumberIntVal(3)})
	require.NoError(t, err)
	require.NoError(t, sOp.Execute(ctx))
	dOp, err := a.Directory().Instantiate(ctx, dbl, "dbl", oppath.Root(), nil)
	require.NoError(t, err)

	id, err := a.Connect(ctx, "/src.val", "/dbl.x")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	y, _ := dOp.Output("y").Value().Concrete().AsBigFloat().Float64()
	assert.Equal(t, 6.0, y)

	t.Run("incompatible values refuse to connect", func(t *testing.T) {
		note, ok := a.Registry().Lookup("note")
		require.True(t, ok)
		nOp, err := a.Directory().Instantiate(ctx, note, "note", oppath.Root(),
			map[string]cty.Value{"text": cty.StringVal("plain words")})
		require.NoError(t, err)
		require.NoError(t, nOp.Execute(ctx))

		_, err = a.Connect(ctx, "/note.text", "/dbl.x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not fit")
	})

	t.Run("disconnect resets the input", func(t *testing.T) {
		require.NoError(t, a.Disconnect(ctx, "/dbl.x", id))
		x, _ := dOp.Input("x").Value().Concrete().AsBigFloat().Float64()
		assert.Equal(t, 0.0, x)
	})
}
