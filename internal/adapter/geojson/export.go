// Package geojson renders cyclone tracks as GeoJSON feature collections so
// scenario output can be dropped straight into mapping tools.
package geojson

import (
	"encoding/json"
	"io"
	"time"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

// Geometry is a GeoJSON geometry. Coordinates are in lon-lat order per RFC 7946.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// FeatureCollection is the top-level GeoJSON document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// FromTrack converts a track into a feature collection: one LineString for
// the full path carrying the storm attributes, plus one Point per fix with
// its instantaneous intensity readings.
func FromTrack(track domain.Track) FeatureCollection {
	path := make([][2]float64, track.Len())
	for i := range path {
		path[i] = [2]float64{track.Lon[i], track.Lat[i]}
	}

	features := make([]Feature, 0, track.Len()+1)
	features = append(features, Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "LineString", Coordinates: path},
		Properties: map[string]any{
			"sid":             track.Attrs.SID,
			"name":            track.Attrs.Name,
			"scenario":        track.Attrs.Scenario,
			"category":        track.Attrs.Category,
			"orig_event_flag": track.Attrs.OrigEventFlag,
			"max_wind_unit":   track.Attrs.MaxSustainedWindUnit,
			"pressure_unit":   track.Attrs.CentralPressureUnit,
		},
	})

	for i := 0; i < track.Len(); i++ {
		props := map[string]any{
			"time":               track.Times[i].UTC().Format(time.RFC3339),
			"max_sustained_wind": track.MaxSustainedWind[i],
		}
		if len(track.CentralPressure) > 0 {
			props["central_pressure"] = track.CentralPressure[i]
		}
		if len(track.RadiusMaxWind) > 0 {
			props["radius_max_wind"] = track.RadiusMaxWind[i]
		}
		if len(track.Basin) > 0 {
			props["basin"] = track.Basin[i]
		}
		features = append(features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{track.Lon[i], track.Lat[i]}},
			Properties: props,
		})
	}

	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Write marshals the track's feature collection as indented JSON.
func Write(w io.Writer, track domain.Track) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(FromTrack(track))
}
