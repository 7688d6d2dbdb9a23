package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/cyclone-analog-service/internal/analog"
	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
	"github.com/couchcryptid/cyclone-analog-service/internal/observability"
)

// AnalogRefiner ranks tracks against a cluster centroid in component space.
type AnalogRefiner interface {
	Refine(ctx context.Context, tracks []domain.Track, labels []int, targetCluster, nComponents, topN int) ([]analog.Match, []domain.Track, error)
}

// ScenarioParams are the tuning knobs of a warming scenario cycle.
type ScenarioParams struct {
	ReferenceSID string
	Eps          float64
	MinSamples   int
	NComponents  int
	TopN         int
	WindBoost    float64
	RMWShrink    float64
}

// Scenario runs one cluster-refine-synthesize cycle over a track pool:
// mean-position clustering locates the reference storm's neighbourhood,
// refinement ranks analogs against that cluster, and each analog is
// perturbed into a warming-scenario track.
type Scenario struct {
	clusterer analog.Clusterer
	refiner   AnalogRefiner
	params    ScenarioParams
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewScenario creates a Scenario with the given collaborators.
func NewScenario(c analog.Clusterer, r AnalogRefiner, params ScenarioParams, logger *slog.Logger, metrics *observability.Metrics) *Scenario {
	return &Scenario{
		clusterer: c,
		refiner:   r,
		params:    params,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes the cycle and returns the synthetic tracks. The pool is not
// modified. An error means the whole cycle is unusable; the caller decides
// whether to drop or retry the pool.
func (s *Scenario) Run(ctx context.Context, pool []domain.Track) ([]domain.Track, error) {
	features, err := analog.MeanPositionFeatures(pool)
	if err != nil {
		return nil, fmt.Errorf("computing position features: %w", err)
	}

	labels, err := s.clusterer.Fit(features, s.params.Eps, s.params.MinSamples)
	if err != nil {
		return nil, fmt.Errorf("clustering pool: %w", err)
	}

	clusters, noise := summarizeLabels(labels)
	s.metrics.ClustersFound.Set(float64(clusters))
	s.metrics.NoiseTracks.Set(float64(noise))

	target, err := s.targetCluster(pool, labels)
	if err != nil {
		return nil, err
	}

	matches, analogs, err := s.refiner.Refine(ctx, pool, labels, target, s.params.NComponents, s.params.TopN)
	if err != nil {
		return nil, fmt.Errorf("refining analogs: %w", err)
	}

	synthetic := make([]domain.Track, 0, len(analogs))
	for i, track := range analogs {
		syn, err := analog.Synthesize(track, s.params.WindBoost, s.params.RMWShrink)
		if err != nil {
			return nil, fmt.Errorf("synthesizing analog %q: %w", track.Attrs.SID, err)
		}
		syn.Attrs.ProcessedAt = domain.Now()
		s.logger.Debug("synthesized scenario track",
			"sid", syn.Attrs.SID, "score", matches[i].Score, "source_index", matches[i].Index)
		synthetic = append(synthetic, syn)
	}

	s.logger.Info("scenario cycle complete",
		"pool_size", len(pool),
		"clusters", clusters,
		"noise", noise,
		"target_cluster", target,
		"synthetic_tracks", len(synthetic),
	)
	return synthetic, nil
}

// targetCluster resolves the cluster label of the reference storm.
func (s *Scenario) targetCluster(pool []domain.Track, labels []int) (int, error) {
	for i, track := range pool {
		if track.Attrs.SID != s.params.ReferenceSID {
			continue
		}
		if labels[i] == analog.Noise {
			return 0, fmt.Errorf("reference track %q fell into noise", s.params.ReferenceSID)
		}
		return labels[i], nil
	}
	return 0, fmt.Errorf("reference track %q not in pool", s.params.ReferenceSID)
}

func summarizeLabels(labels []int) (clusters, noise int) {
	for _, l := range labels {
		if l == analog.Noise {
			noise++
			continue
		}
		if l+1 > clusters {
			clusters = l + 1
		}
	}
	return clusters, noise
}
