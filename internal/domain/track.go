package domain

import (
	"fmt"
	"slices"
	"time"
)

// TrackAttrs holds per-storm metadata with no positional alignment to the
// time series. Field names mirror the attrs the upstream collector emits.
type TrackAttrs struct {
	SID           string `json:"sid"`
	Name          string `json:"name,omitempty"`
	Agency        string `json:"agency,omitempty"`
	Scenario      string `json:"scenario,omitempty"`
	OrigEventFlag bool   `json:"orig_event_flag"`
	Category      int    `json:"category,omitempty"`

	MaxSustainedWindUnit      string `json:"max_sustained_wind_unit,omitempty"`
	CentralPressureUnit       string `json:"central_pressure_unit,omitempty"`
	EnvironmentalPressureUnit string `json:"environmental_pressure_unit,omitempty"`
	RadiusMaxWindUnit         string `json:"radius_max_wind_unit,omitempty"`

	ProcessedAt time.Time `json:"processed_at,omitempty"`
}

// Track is an ordered time series describing one storm's life cycle.
// Times, Lat, Lon, and MaxSustainedWind are mandatory and share one length;
// the remaining series are optional but, when present, align 1:1 with Times.
//
// Tracks are treated as immutable once produced by a pipeline stage: every
// transformation returns a new Track (see Clone), so an analog and its
// synthetic derivative never share storage.
type Track struct {
	Times            []time.Time `json:"times"`
	Lat              []float64   `json:"lat"`
	Lon              []float64   `json:"lon"`
	MaxSustainedWind []float64   `json:"max_sustained_wind"`

	CentralPressure       []float64 `json:"central_pressure,omitempty"`
	EnvironmentalPressure []float64 `json:"environmental_pressure,omitempty"`
	RadiusMaxWind         []float64 `json:"radius_max_wind,omitempty"`
	TimeStep              []float64 `json:"time_step,omitempty"`
	Basin                 []string  `json:"basin,omitempty"`

	Attrs TrackAttrs `json:"attrs"`
}

// Len returns the number of points in the track.
func (t Track) Len() int { return len(t.Times) }

// Validate checks the time-alignment invariant: all mandatory series are
// non-empty and every present series matches the length of Times, timestamps
// are strictly increasing, and wind speeds are non-negative.
func (t Track) Validate() error {
	n := len(t.Times)
	if n == 0 {
		return &ValidationError{Field: "times", Reason: "track has no points"}
	}

	mandatory := []struct {
		name   string
		length int
	}{
		{"lat", len(t.Lat)},
		{"lon", len(t.Lon)},
		{"max_sustained_wind", len(t.MaxSustainedWind)},
	}
	for _, f := range mandatory {
		if f.length != n {
			return &ValidationError{
				Field:  f.name,
				Reason: fmt.Sprintf("length %d does not match %d time points", f.length, n),
			}
		}
	}

	optional := []struct {
		name   string
		length int
	}{
		{"central_pressure", len(t.CentralPressure)},
		{"environmental_pressure", len(t.EnvironmentalPressure)},
		{"radius_max_wind", len(t.RadiusMaxWind)},
		{"time_step", len(t.TimeStep)},
		{"basin", len(t.Basin)},
	}
	for _, f := range optional {
		if f.length != 0 && f.length != n {
			return &ValidationError{
				Field:  f.name,
				Reason: fmt.Sprintf("length %d does not match %d time points", f.length, n),
			}
		}
	}

	for i := 1; i < n; i++ {
		if !t.Times[i].After(t.Times[i-1]) {
			return &ValidationError{
				Field:  "times",
				Reason: fmt.Sprintf("timestamps must be strictly increasing (index %d)", i),
			}
		}
	}

	for i, w := range t.MaxSustainedWind {
		if w < 0 {
			return &ValidationError{
				Field:  "max_sustained_wind",
				Reason: fmt.Sprintf("negative wind %g at index %d", w, i),
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the track. The copy shares no storage with
// the original, so callers may modify it freely.
func (t Track) Clone() Track {
	return Track{
		Times:            slices.Clone(t.Times),
		Lat:              slices.Clone(t.Lat),
		Lon:              slices.Clone(t.Lon),
		MaxSustainedWind: slices.Clone(t.MaxSustainedWind),

		CentralPressure:       slices.Clone(t.CentralPressure),
		EnvironmentalPressure: slices.Clone(t.EnvironmentalPressure),
		RadiusMaxWind:         slices.Clone(t.RadiusMaxWind),
		TimeStep:              slices.Clone(t.TimeStep),
		Basin:                 slices.Clone(t.Basin),

		Attrs: t.Attrs,
	}
}
