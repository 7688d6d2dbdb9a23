package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
	"github.com/couchcryptid/cyclone-analog-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// ScenarioRunner turns an accumulated pool of historical tracks into
// synthetic scenario tracks.
type ScenarioRunner interface {
	Run(ctx context.Context, pool []domain.Track) ([]domain.Track, error)
}

// BatchLoader writes multiple output messages to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, msgs []domain.OutputMessage) error
}

// Pipeline orchestrates the extract-accumulate-scenario-load loop. Tracks
// are parsed off the source topic into an in-memory pool; once the pool
// reaches poolSize a scenario cycle runs and its synthetic tracks are
// published. Offsets are committed only after the cycle that consumed them
// resolves, so a crash mid-pool replays the uncommitted tracks.
type Pipeline struct {
	extractor BatchExtractor
	scenario  ScenarioRunner
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	batchSize int
	poolSize  int

	pool    []domain.Track
	pending []domain.RawMessage
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, s ScenarioRunner, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize, poolSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		scenario:  s,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
		poolSize:  poolSize,
	}
}

// CheckReadiness returns nil if the pipeline has completed at least one
// scenario cycle, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a scenario cycle yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize, "pool_size", p.poolSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during Kafka outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-accumulate cycle, triggering a scenario run
// when the pool is full. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) > 0 {
		*backoff = 200 * time.Millisecond
		p.accumulate(ctx, rawBatch)
	}

	// The pool may already be full from a previous iteration whose publish
	// failed, so the threshold check runs even on an empty batch.
	if len(p.pool) < p.poolSize {
		return ctx.Err() == nil
	}

	return p.runScenario(ctx, backoff, maxBackoff)
}

// accumulate parses raw messages into the pool. Unparseable messages are
// committed immediately; they will never contribute to a scenario.
func (p *Pipeline) accumulate(ctx context.Context, rawBatch []domain.RawMessage) {
	for _, raw := range rawBatch {
		track, err := domain.ParseRawTrack(raw)
		if err != nil {
			p.logger.Warn("track rejected, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TrackParseErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		p.pool = append(p.pool, track)
		p.pending = append(p.pending, raw)
		p.metrics.TracksConsumed.Inc()
	}
}

// runScenario executes one scenario cycle over the accumulated pool.
// A failed cycle drops the pool and moves on; only a failed publish keeps
// the pool for retry. Returns false if the pipeline should stop.
func (p *Pipeline) runScenario(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()
	p.metrics.ScenarioRuns.Inc()
	p.metrics.PoolSize.Observe(float64(len(p.pool)))

	synthetic, err := p.scenario.Run(ctx, p.pool)
	if err != nil {
		p.logger.Error("scenario cycle failed, dropping pool", "error", err, "pool_size", len(p.pool))
		p.metrics.ScenarioErrors.Inc()
		p.commitPool(ctx)
		return ctx.Err() == nil
	}

	outBatch := make([]domain.OutputMessage, 0, len(synthetic))
	for _, track := range synthetic {
		out, err := domain.SerializeTrack(track)
		if err != nil {
			p.logger.Error("serialize synthetic track failed", "error", err, "sid", track.Attrs.SID)
			p.metrics.ScenarioErrors.Inc()
			continue
		}
		outBatch = append(outBatch, out)
	}

	if err := p.loader.LoadBatch(ctx, outBatch); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(outBatch))
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.SyntheticTracksProduced.Add(float64(len(outBatch)))
	p.metrics.ScenarioDuration.Observe(time.Since(start).Seconds())
	p.commitPool(ctx)
	p.ready.Store(true)
	return true
}

// commitPool commits every pending offset and resets the pool.
func (p *Pipeline) commitPool(ctx context.Context) {
	for _, raw := range p.pending {
		p.commitOffset(ctx, raw)
	}
	p.pool = p.pool[:0]
	p.pending = p.pending[:0]
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
