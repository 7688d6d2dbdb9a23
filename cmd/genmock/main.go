// Command genmock generates deterministic cyclone track fixtures for the
// analog test suites: the synthetic Bhola 2035 reference storm, and a mock
// historical pool containing a North Indian Ocean cluster around it plus
// Atlantic decoys that should land outside the target cluster.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -pool-out data/mock/historical_pool.json \
//	  -reference-out data/mock/synthetic_bhola_2035.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

var baseTime = time.Date(2035, time.October, 1, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	poolOut := flag.String("pool-out", "", "output path for the historical pool JSON fixture")
	refOut := flag.String("reference-out", "", "output path for the synthetic Bhola 2035 JSON fixture")
	neighbors := flag.Int("neighbors", 12, "North Indian Ocean tracks generated around the reference")
	decoys := flag.Int("decoys", 8, "Atlantic tracks generated far from the reference")
	seed := flag.Int64("seed", 1970, "RNG seed; fixtures are reproducible for a given seed")
	flag.Parse()

	if *poolOut == "" || *refOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -pool-out, -reference-out")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2035, time.November, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	reference := syntheticBholaTrack()
	if err := reference.Validate(); err != nil {
		return fmt.Errorf("reference fixture invalid: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	pool := make([]domain.Track, 0, 1+*neighbors+*decoys)
	pool = append(pool, reference)
	// Neighbors scatter around the reference's mean position (19.5N, 89.75E)
	// so DBSCAN groups them with it at the default eps.
	for i := 0; i < *neighbors; i++ {
		pool = append(pool, randomTrack(rng, fmt.Sprintf("NI%03d", i+1), 19.5, 89.75, "NI"))
	}
	for i := 0; i < *decoys; i++ {
		pool = append(pool, randomTrack(rng, fmt.Sprintf("AL%03d", i+1), 28.0, -60.0, "NA"))
	}

	for i, track := range pool {
		if err := track.Validate(); err != nil {
			return fmt.Errorf("pool fixture %d (%s) invalid: %w", i, track.Attrs.SID, err)
		}
	}

	if err := writeJSON(*refOut, reference); err != nil {
		return err
	}
	if err := writeJSON(*poolOut, pool); err != nil {
		return err
	}

	log.Printf("reference: %s (%d points)", reference.Attrs.SID, reference.Len())
	log.Printf("pool: %d tracks (%d neighbors, %d decoys)", len(pool), *neighbors, *decoys)
	return nil
}

// syntheticBholaTrack builds the 2035 Bhola re-run: a 15-point, 3-hourly
// northward path over the Bay of Bengal with pressure derived from the wind
// curve via the 1000 - 0.5*wind closure.
func syntheticBholaTrack() domain.Track {
	wind := []float64{
		40, 45, 50, 60, 70, 85, 100, 120,
		135, 145, 140, 130, 115, 100, 85,
	}
	rmw := []float64{
		60, 55, 50, 45, 40, 35, 30, 25,
		20, 20, 25, 30, 35, 40, 45,
	}
	n := len(wind)

	track := domain.Track{
		Times:                 make([]time.Time, n),
		Lat:                   make([]float64, n),
		Lon:                   make([]float64, n),
		MaxSustainedWind:      wind,
		CentralPressure:       make([]float64, n),
		EnvironmentalPressure: make([]float64, n),
		RadiusMaxWind:         rmw,
		TimeStep:              make([]float64, n),
		Basin:                 make([]string, n),
		Attrs: domain.TrackAttrs{
			SID:           "Synthetic_Bhola_2035",
			Name:          "Synthetic Bhola",
			Agency:        "CCART-AI",
			Scenario:      "+2°C warming",
			OrigEventFlag: false,
			Category:      5,

			MaxSustainedWindUnit:      "kn",
			CentralPressureUnit:       "mb",
			EnvironmentalPressureUnit: "mb",
			RadiusMaxWindUnit:         "km",
		},
	}

	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		track.Times[i] = baseTime.Add(time.Duration(i) * 3 * time.Hour)
		track.Lat[i] = 16.0 + frac*(23.0-16.0)
		track.Lon[i] = 89.0 + frac*(90.5-89.0)
		track.CentralPressure[i] = 1000 - 0.5*wind[i]
		track.EnvironmentalPressure[i] = 1010
		track.TimeStep[i] = 3
		track.Basin[i] = "NI"
	}
	return track
}

// randomTrack generates a plausible storm whose mean position scatters within
// about half a degree of the given centre, keeping the whole group inside one
// DBSCAN neighbourhood at the default eps.
func randomTrack(rng *rand.Rand, sid string, lat0, lon0 float64, basin string) domain.Track {
	n := 10 + rng.Intn(8)
	peak := 80 + rng.Float64()*65
	latDrift := 4 + rng.Float64()*4
	lonDrift := -1 + rng.Float64()*2
	latStart := lat0 - latDrift/2 + rng.Float64() - 0.5
	lonStart := lon0 - lonDrift/2 + rng.Float64() - 0.5

	track := domain.Track{
		Times:            make([]time.Time, n),
		Lat:              make([]float64, n),
		Lon:              make([]float64, n),
		MaxSustainedWind: make([]float64, n),
		CentralPressure:  make([]float64, n),
		RadiusMaxWind:    make([]float64, n),
		Basin:            make([]string, n),
		Attrs: domain.TrackAttrs{
			SID:           sid,
			Agency:        "usa",
			OrigEventFlag: true,

			MaxSustainedWindUnit: "kn",
			CentralPressureUnit:  "mb",
			RadiusMaxWindUnit:    "km",
		},
	}

	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		track.Times[i] = baseTime.Add(time.Duration(i) * 3 * time.Hour)
		track.Lat[i] = latStart + frac*latDrift
		track.Lon[i] = lonStart + frac*lonDrift
		// Triangular intensity profile peaking mid-track.
		shape := 1 - 2*absFloat(frac-0.5)
		track.MaxSustainedWind[i] = 40 + (peak-40)*shape
		track.CentralPressure[i] = 1000 - 0.5*track.MaxSustainedWind[i]
		track.RadiusMaxWind[i] = 60 - 40*shape
		track.Basin[i] = basin
	}
	return track
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
