package geometry

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/geogridgo/internal/manifest"
	"github.com/vk/geogridgo/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

const distanceManifest = `
operator "geo_distance" {
  description = "Great-circle distance between two coordinates."

  input "from" { kind = "coordinate" }
  input "to"   { kind = "coordinate" }
  input "unit" {
    kind    = "menu"
    options = ["km", "mi"]
    default = "km"
  }

  output "distance" { kind = "number" }
}
`

const centroidManifest = `
operator "geo_centroid" {
  description = "Arithmetic centroid of a set of coordinates."

  input "points" {
    kind = "list"
    elem { kind = "coordinate" }
  }

  output "center" { kind = "coordinate" }
}
`

const earthRadiusKm = 6371.0088

// OnExecuteDistance is the handler for the 'geo_distance' operator type.
func OnExecuteDistance(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	lon1, lat1 := coordOf(inputs["from"])
	lon2, lat2 := coordOf(inputs["to"])

	km := haversineKm(lon1, lat1, lon2, lat2)
	distance := km
	if inputs["unit"].AsString() == "mi" {
		distance = km * 0.621371
	}

	return map[string]cty.Value{
		"distance": cty.NumberFloatVal(distance),
	}, nil
}

// OnExecuteCentroid is the handler for the 'geo_centroid' operator type.
func OnExecuteCentroid(ctx context.Context, inputs map[string]cty.Value) (map[string]cty.Value, error) {
	points := inputs["points"]
	if points.IsNull() || points.LengthInt() == 0 {
		return nil, fmt.Errorf("centroid of an empty point set is undefined")
	}

	var lonSum, latSum float64
	n := 0
	for it := points.ElementIterator(); it.Next(); n++ {
		_, p := it.Element()
		lon, lat := coordOf(p)
		lonSum += lon
		latSum += lat
	}

	return map[string]cty.Value{
		"center": cty.ObjectVal(map[string]cty.Value{
			"lon": cty.NumberFloatVal(lonSum / float64(n)),
			"lat": cty.NumberFloatVal(latSum / float64(n)),
		}),
	}, nil
}

func coordOf(v cty.Value) (lon, lat float64) {
	lon, _ = v.GetAttr("lon").AsBigFloat().Float64()
	lat, _ = v.GetAttr("lat").AsBigFloat().Float64()
	return lon, lat
}

func haversineKm(lon1, lat1, lon2, lat2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Register registers the geometry operator types with the engine.
func (m *Module) Register(ctx context.Context, r *registry.Registry) error {
	distance, err := manifest.ParseDefinition(ctx, "geometry/geo_distance.hcl", distanceManifest)
	if err != nil {
		return err
	}
	r.RegisterOperator(&registry.RegisteredOperator{
		Definition: distance,
		Execute:    OnExecuteDistance,
	})

	centroid, err := manifest.ParseDefinition(ctx, "geometry/geo_centroid.hcl", centroidManifest)
	if err != nil {
		return err
	}
	r.RegisterOperator(&registry.RegisteredOperator{
		Definition: centroid,
		Execute:    OnExecuteCentroid,
	})
	return nil
}
