package analog

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

// Match pairs a track index with its cosine similarity to the target
// cluster's centroid.
type Match struct {
	Index int
	Score float64
}

// Refiner ranks an entire track collection against the centroid of one
// cluster, in a reduced-dimensional encoding space. Scoring deliberately
// spans the whole collection, not just the target cluster, so a
// structurally similar out-of-cluster track can still surface as an analog;
// see the package documentation for the rationale.
type Refiner struct {
	reducer Reducer
	nPoints int
	cache   *encodingCache
	logger  *slog.Logger
}

// NewRefiner creates a Refiner that encodes tracks to 2*nPoints-length
// vectors and reduces them with reducer. cacheSize bounds the encoded-vector
// LRU; zero or negative disables caching.
func NewRefiner(reducer Reducer, nPoints, cacheSize int, logger *slog.Logger) *Refiner {
	r := &Refiner{
		reducer: reducer,
		nPoints: nPoints,
		logger:  logger,
	}
	if cacheSize > 0 {
		r.cache = newEncodingCache(cacheSize)
	}
	return r
}

// Refine encodes every track, projects the collection into nComponents
// dimensions, computes the centroid of the tracks labelled targetCluster,
// and returns the topN most similar tracks across the whole collection,
// ranked by descending cosine similarity with ties broken by ascending
// track index. topN larger than the collection returns the full ordered
// collection rather than failing.
func (r *Refiner) Refine(ctx context.Context, tracks []domain.Track, labels []int, targetCluster, nComponents, topN int) ([]Match, []domain.Track, error) {
	if len(tracks) == 0 {
		return nil, nil, &domain.ValidationError{Field: "tracks", Reason: "empty collection"}
	}
	if len(labels) != len(tracks) {
		return nil, nil, &domain.ValidationError{
			Field:  "labels",
			Reason: fmt.Sprintf("%d labels for %d tracks", len(labels), len(tracks)),
		}
	}
	if topN < 1 {
		return nil, nil, &domain.ValidationError{Field: "top_n", Reason: "must be at least 1"}
	}

	encoded, err := r.encodeAll(ctx, tracks)
	if err != nil {
		return nil, nil, err
	}

	reduced, err := r.reducer.FitTransform(encoded, nComponents)
	if err != nil {
		return nil, nil, err
	}

	centroid, members, err := clusterCentroid(reduced, labels, targetCluster)
	if err != nil {
		return nil, nil, err
	}

	matches := make([]Match, len(reduced))
	for i, v := range reduced {
		matches[i] = Match{Index: i, Score: cosine(v, centroid)}
	}
	// Stable sort over ascending indices gives the deterministic
	// ascending-index tie-break.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topN > len(matches) {
		topN = len(matches)
	}
	matches = matches[:topN]

	analogs := make([]domain.Track, len(matches))
	for i, m := range matches {
		analogs[i] = tracks[m.Index]
	}

	r.logger.Info("refined analogs",
		"candidates", len(tracks),
		"target_cluster", targetCluster,
		"cluster_members", members,
		"selected", len(matches),
	)

	return matches, analogs, nil
}

// encodeAll encodes every track in parallel, recombining results in input
// order. Encoding is pure per track, so only the recombination order matters.
func (r *Refiner) encodeAll(ctx context.Context, tracks []domain.Track) ([][]float64, error) {
	encoded := make([][]float64, len(tracks))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, track := range tracks {
		g.Go(func() error {
			key := encodingKey(track, r.nPoints)
			if r.cache != nil && track.Attrs.SID != "" {
				if v, ok := r.cache.get(key); ok {
					encoded[i] = v
					return nil
				}
			}
			v, err := Encode(track, r.nPoints)
			if err != nil {
				return fmt.Errorf("encode track %d (%s): %w", i, track.Attrs.SID, err)
			}
			encoded[i] = v
			if r.cache != nil && track.Attrs.SID != "" {
				r.cache.put(key, v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return encoded, nil
}

// clusterCentroid returns the arithmetic mean of the reduced vectors whose
// label equals target, plus the member count.
func clusterCentroid(reduced [][]float64, labels []int, target int) ([]float64, int, error) {
	centroid := make([]float64, len(reduced[0]))
	members := 0
	for i, label := range labels {
		if label != target {
			continue
		}
		floats.Add(centroid, reduced[i])
		members++
	}
	if members == 0 {
		return nil, 0, &domain.ConfigError{
			Param:  "target_cluster",
			Reason: fmt.Sprintf("no tracks carry label %d", target),
		}
	}
	floats.Scale(1/float64(members), centroid)
	return centroid, members, nil
}

// cosine returns the cosine similarity of a and b, or 0 when either vector
// has zero norm. Zero-norm vectors happen at the margins of real data and
// are defined as dissimilar rather than an error.
func cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
