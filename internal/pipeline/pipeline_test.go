package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
	"github.com/couchcryptid/cyclone-analog-service/internal/observability"
	"github.com/couchcryptid/cyclone-analog-service/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawMessage
	index   int
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawMessage, error) {
	if m.index >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	batch := m.batches[m.index]
	m.index++
	return batch, nil
}

type mockScenario struct {
	pools     [][]domain.Track
	synthetic []domain.Track
	err       error
}

func (m *mockScenario) Run(_ context.Context, pool []domain.Track) ([]domain.Track, error) {
	snapshot := make([]domain.Track, len(pool))
	copy(snapshot, pool)
	m.pools = append(m.pools, snapshot)
	if m.err != nil {
		return nil, m.err
	}
	return m.synthetic, nil
}

type mockLoader struct {
	loaded   [][]domain.OutputMessage
	failures int
}

func (m *mockLoader) LoadBatch(_ context.Context, msgs []domain.OutputMessage) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, msgs)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	var commits int
	batch := []domain.RawMessage{
		makeRawTrack(t, "SID-A", 16.0, 90.0, &commits),
		makeRawTrack(t, "SID-B", 16.1, 90.1, &commits),
	}

	ext := &mockExtractor{batches: [][]domain.RawMessage{batch}}
	scn := &mockScenario{synthetic: []domain.Track{makeTrack("SYNTH_SID-A_WARMED")}}
	ldr := &mockLoader{}
	metrics := newTestMetrics()

	p := pipeline.New(ext, scn, ldr, slog.Default(), metrics, 10, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	require.Len(t, scn.pools, 1)
	assert.Len(t, scn.pools[0], 2)
	require.Len(t, ldr.loaded, 1)
	require.Len(t, ldr.loaded[0], 1)
	assert.Equal(t, []byte("SYNTH_SID-A_WARMED"), ldr.loaded[0][0].Key)
	assert.Equal(t, 2, commits)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	scn := &mockScenario{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, scn, ldr, slog.Default(), newTestMetrics(), 10, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_AccumulatesAcrossBatches(t *testing.T) {
	var commits int
	batches := [][]domain.RawMessage{
		{makeRawTrack(t, "SID-A", 16.0, 90.0, &commits), makeRawTrack(t, "SID-B", 16.1, 90.1, &commits)},
		{makeRawTrack(t, "SID-C", 16.2, 90.2, &commits)},
	}

	ext := &mockExtractor{batches: batches}
	scn := &mockScenario{synthetic: []domain.Track{makeTrack("SYNTH_SID-A_WARMED")}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, scn, ldr, slog.Default(), newTestMetrics(), 10, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	require.Len(t, scn.pools, 1)
	assert.Len(t, scn.pools[0], 3)
	assert.Equal(t, 3, commits)
}

func TestPipeline_Run_RejectsUnparseableMessages(t *testing.T) {
	var commits int
	bad := domain.RawMessage{
		Value:  []byte("not json"),
		Commit: func(_ context.Context) error { commits++; return nil },
	}

	ext := &mockExtractor{batches: [][]domain.RawMessage{{bad}}}
	scn := &mockScenario{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, scn, ldr, slog.Default(), newTestMetrics(), 10, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	// The bad message is committed so it is never replayed, and it never
	// counts toward the pool.
	assert.Equal(t, 1, commits)
	assert.Empty(t, scn.pools)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_ScenarioErrorDropsPool(t *testing.T) {
	var commits int
	batch := []domain.RawMessage{
		makeRawTrack(t, "SID-A", 16.0, 90.0, &commits),
		makeRawTrack(t, "SID-B", 16.1, 90.1, &commits),
	}

	ext := &mockExtractor{batches: [][]domain.RawMessage{batch}}
	scn := &mockScenario{err: errors.New("reference track not in pool")}
	ldr := &mockLoader{}

	p := pipeline.New(ext, scn, ldr, slog.Default(), newTestMetrics(), 10, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	// The pool is consumed exactly once: committed and dropped, not retried.
	assert.Len(t, scn.pools, 1)
	assert.Empty(t, ldr.loaded)
	assert.Equal(t, 2, commits)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_RetriesFailedPublish(t *testing.T) {
	var commits int
	batches := [][]domain.RawMessage{
		{makeRawTrack(t, "SID-A", 16.0, 90.0, &commits), makeRawTrack(t, "SID-B", 16.1, 90.1, &commits)},
		{}, // empty poll after the failed publish
	}

	ext := &mockExtractor{batches: batches}
	scn := &mockScenario{synthetic: []domain.Track{makeTrack("SYNTH_SID-A_WARMED")}}
	ldr := &mockLoader{failures: 1}

	p := pipeline.New(ext, scn, ldr, slog.Default(), newTestMetrics(), 10, 2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	// Publish failed once, so the pool survived and the cycle ran again.
	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, 2, commits)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

// --- helpers ---

func makeTrack(sid string) domain.Track {
	base := time.Date(1970, time.November, 8, 0, 0, 0, 0, time.UTC)
	return domain.Track{
		Times:            []time.Time{base, base.Add(3 * time.Hour)},
		Lat:              []float64{16.0, 16.5},
		Lon:              []float64{90.0, 90.2},
		MaxSustainedWind: []float64{40, 70},
		Attrs:            domain.TrackAttrs{SID: sid},
	}
}

func makeRawTrack(t *testing.T, sid string, lat, lon float64, commits *int) domain.RawMessage {
	t.Helper()
	track := makeTrack(sid)
	track.Lat = []float64{lat, lat + 0.5}
	track.Lon = []float64{lon, lon + 0.2}
	data, err := json.Marshal(track)
	require.NoError(t, err)
	return domain.RawMessage{
		Key:   []byte(sid),
		Value: data,
		Commit: func(_ context.Context) error {
			*commits++
			return nil
		},
	}
}
