// Command analogctl runs one analog scenario cycle offline over a JSON pool
// of historical tracks, without Kafka. It writes the synthetic tracks as a
// single JSON file plus one GeoJSON document per track for map inspection.
//
// Usage:
//
//	go run ./cmd/analogctl \
//	  -pool data/mock/historical_pool.json \
//	  -reference-sid 2035314N16089 \
//	  -out-dir out/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/cyclone-analog-service/internal/adapter/geojson"
	"github.com/couchcryptid/cyclone-analog-service/internal/analog"
	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	poolPath := flag.String("pool", "", "path to JSON file holding the historical track pool")
	referenceSID := flag.String("reference-sid", "", "SID of the reference storm")
	outDir := flag.String("out-dir", "out", "directory for synthetic JSON and GeoJSON output")
	nPoints := flag.Int("n-points", 20, "resampled points per track in the encoded vector")
	eps := flag.Float64("eps", 1.0, "DBSCAN neighbourhood radius in mean-position degrees")
	minSamples := flag.Int("min-samples", 3, "DBSCAN core point threshold")
	nComponents := flag.Int("n-components", 10, "principal components kept for refinement")
	topN := flag.Int("top-n", 5, "number of analogs to synthesize")
	windBoost := flag.Float64("wind-boost", 1.15, "wind multiplier for the warming scenario")
	rmwShrink := flag.Float64("rmw-shrink", 0.85, "radius-of-maximum-wind multiplier")
	flag.Parse()

	if *poolPath == "" || *referenceSID == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -pool, -reference-sid")
	}

	pool, err := loadPool(*poolPath)
	if err != nil {
		return err
	}
	log.Printf("loaded pool: %d tracks", len(pool))

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	features, err := analog.MeanPositionFeatures(pool)
	if err != nil {
		return fmt.Errorf("computing position features: %w", err)
	}
	labels, err := analog.NewDBSCAN(logger).Fit(features, *eps, *minSamples)
	if err != nil {
		return fmt.Errorf("clustering pool: %w", err)
	}

	target := -1
	for i, track := range pool {
		if track.Attrs.SID == *referenceSID {
			if labels[i] == analog.Noise {
				return fmt.Errorf("reference track %q fell into noise", *referenceSID)
			}
			target = labels[i]
			break
		}
	}
	if target < 0 {
		return fmt.Errorf("reference track %q not in pool", *referenceSID)
	}
	log.Printf("reference %s in cluster %d", *referenceSID, target)

	refiner := analog.NewRefiner(analog.PCA{}, *nPoints, 0, logger)
	matches, analogs, err := refiner.Refine(ctx, pool, labels, target, *nComponents, *topN)
	if err != nil {
		return fmt.Errorf("refining analogs: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	synthetic := make([]domain.Track, 0, len(analogs))
	for i, track := range analogs {
		syn, err := analog.Synthesize(track, *windBoost, *rmwShrink)
		if err != nil {
			return fmt.Errorf("synthesizing analog %q: %w", track.Attrs.SID, err)
		}
		syn.Attrs.ProcessedAt = domain.Now()
		synthetic = append(synthetic, syn)
		log.Printf("analog %d: %s score=%.4f -> %s", i+1, track.Attrs.SID, matches[i].Score, syn.Attrs.SID)

		if err := writeGeoJSON(*outDir, syn); err != nil {
			return err
		}
	}

	outPath := filepath.Join(*outDir, "synthetic_tracks.json")
	if err := writeJSON(outPath, synthetic); err != nil {
		return err
	}
	log.Printf("wrote %d synthetic tracks to %s", len(synthetic), outPath)
	return nil
}

func loadPool(path string) ([]domain.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pool: %w", err)
	}
	var pool []domain.Track
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("parsing pool: %w", err)
	}
	for i, track := range pool {
		if err := track.Validate(); err != nil {
			return nil, fmt.Errorf("pool track %d (%s): %w", i, track.Attrs.SID, err)
		}
	}
	return pool, nil
}

func writeGeoJSON(dir string, track domain.Track) error {
	name := strings.ReplaceAll(track.Attrs.SID, "/", "_")
	path := filepath.Join(dir, name+"_track.geojson")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return geojson.Write(f, track)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
