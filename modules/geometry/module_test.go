package geometry

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, (&Module{}).Register(context.Background(), r))
	require.NoError(t, r.Validate(context.Background()))
	return r
}

func coord(lon, lat float64) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"lon": cty.NumberFloatVal(lon),
		"lat": cty.NumberFloatVal(lat),
	})
}

func floatOf(t *testing.T, v cty.Value) float64 {
	t.Helper()
	require.False(t, v.IsNull())
	f, _ := v.AsBigFloat().Float64()
	return f
}

func TestGeoDistance(t *testing.T) {
	r := newRegistry(t)
	ro, ok := r.Lookup("geo_distance")
	require.True(t, ok)
	ctx := context.Background()

	t.Run("one degree of latitude", func(t *testing.T) {
		out, err := ro.Invoke(ctx, map[string]cty.Value{
			"from": coord(0, 0),
			"to":   coord(0, 1),
		})
		require.NoError(t, err)
		assert.InDelta(t, 111.19, floatOf(t, out["distance"]), 0.05)
	})

	t.Run("berlin to paris in miles", func(t *testing.T) {
		out, err := ro.Invoke(ctx, map[string]cty.Value{
			"from": coord(13.405, 52.52),
			"to":   coord(2.3522, 48.8566),
			"unit": cty.StringVal("mi"),
		})
		require.NoError(t, err)
		assert.InDelta(t, 545.4, floatOf(t, out["distance"]), 2.0)
	})

	t.Run("zero distance", func(t *testing.T) {
		out, err := ro.Invoke(ctx, map[string]cty.Value{
			"from": coord(13.405, 52.52),
			"to":   coord(13.405, 52.52),
		})
		require.NoError(t, err)
		assert.InDelta(t, 0, floatOf(t, out["distance"]), 1e-9)
	})

	t.Run("unknown unit is rejected by the menu schema", func(t *testing.T) {
		_, err := ro.Invoke(ctx, map[string]cty.Value{
			"from": coord(0, 0),
			"to":   coord(0, 1),
			"unit": cty.StringVal("furlong"),
		})
		require.Error(t, err)
	})
}

func TestGeoCentroid(t *testing.T) {
	r := newRegistry(t)
	ro, ok := r.Lookup("geo_centroid")
	require.True(t, ok)
	ctx := context.Background()

	t.Run("mean of the points", func(t *testing.T) {
		out, err := ro.Invoke(ctx, map[string]cty.Value{
			"points": cty.TupleVal([]cty.Value{coord(0, 0), coord(2, 4)}),
		})
		require.NoError(t, err)
		center := out["center"]
		assert.InDelta(t, 1, floatOf(t, center.GetAttr("lon")), 1e-9)
		assert.InDelta(t, 2, floatOf(t, center.GetAttr("lat")), 1e-9)
	})

	t.Run("empty point set is an error", func(t *testing.T) {
		_, err := ro.Invoke(ctx, nil)
		require.Error(t, err)
	})
}

func TestHaversineSymmetry(t *testing.T) {
	ab := haversineKm(13.405, 52.52, 2.3522, 48.8566)
	ba := haversineKm(2.3522, 48.8566, 13.405, 52.52)
	assert.True(t, math.Abs(ab-ba) < 1e-9)
}
