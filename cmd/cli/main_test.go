package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/geogridgo/internal/cli"
)

func TestRun(t *testing.T) {
	t.Run("no arguments prints usage and exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		err := run(&out, nil)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("help flag exits cleanly", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run(&out, []string{"-h"}))
	})

	t.Run("invalid flag returns an exit error", func(t *testing.T) {
		var out bytes.Buffer
		err := run(&out, []string{"--frobnicate"})
		require.Error(t, err)
		exitErr, ok := err.(*cli.ExitError)
		require.True(t, ok)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("evaluates a project end to end", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "project.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
  "operators": [
    {
      "path": "/center",
      "type": "geo_centroid",
      "inputs": {"points": [{"lon": 0, "lat": 0}, {"lon": 2, "lat": 2}]}
    }
  ]
}`), 0o644))

		var out bytes.Buffer
		err := run(&out, []string{"--log-level", "error", "--log-format", "json", path})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "/center.center")
	})
}
