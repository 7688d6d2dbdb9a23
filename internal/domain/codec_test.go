package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawTrack(t *testing.T) {
	t.Run("valid track JSON", func(t *testing.T) {
		payload, err := json.Marshal(makeTrack(5))
		require.NoError(t, err)

		track, err := ParseRawTrack(RawMessage{Value: payload})
		require.NoError(t, err)
		assert.Equal(t, "1970329N10072", track.Attrs.SID)
		assert.Equal(t, 5, track.Len())
		assert.Equal(t, 89.0, track.Lon[0])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawTrack(RawMessage{Value: []byte("not-json{{{")})
		assert.Error(t, err)
	})

	t.Run("misaligned series rejected", func(t *testing.T) {
		tr := makeTrack(5)
		tr.Lon = tr.Lon[:3]
		payload, err := json.Marshal(tr)
		require.NoError(t, err)

		_, err = ParseRawTrack(RawMessage{Value: payload})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "lon", verr.Field)
	})
}

func TestSerializeTrack(t *testing.T) {
	fixed := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	tr := makeTrack(3)
	tr.Attrs.SID = "SYNTH_1970329N10072_WARMED"
	tr.Attrs.Scenario = "Wind x1.15, RMW x0.85"

	out, err := SerializeTrack(tr)
	require.NoError(t, err)

	assert.Equal(t, []byte("SYNTH_1970329N10072_WARMED"), out.Key)
	assert.Equal(t, "SYNTH_1970329N10072_WARMED", out.Headers["sid"])
	assert.Equal(t, "Wind x1.15, RMW x0.85", out.Headers["scenario"])
	assert.Equal(t, fixed.Format(time.RFC3339), out.Headers["processed_at"])

	var roundtrip Track
	require.NoError(t, json.Unmarshal(out.Value, &roundtrip))
	assert.Equal(t, tr.Lat, roundtrip.Lat)
	assert.Equal(t, tr.Attrs.Scenario, roundtrip.Attrs.Scenario)
}
