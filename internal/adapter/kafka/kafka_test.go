package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

func TestMapMessageToRawMessage(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("1970329N10072"),
		Value:     []byte(`{"data":{"lat":[16.0]}}`),
		Topic:     "historical-cyclone-tracks",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("ibtracs")},
		},
	}

	r := &Reader{}
	raw := r.mapMessageToRawMessage(msg)

	assert.Equal(t, []byte("1970329N10072"), raw.Key)
	assert.JSONEq(t, `{"data":{"lat":[16.0]}}`, string(raw.Value))
	assert.Equal(t, "historical-cyclone-tracks", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "ibtracs", raw.Headers["source"])
	require.NotNil(t, raw.Commit)
}

func TestMapOutputToMessage(t *testing.T) {
	out := domain.OutputMessage{
		Key:   []byte("SYNTH_1970329N10072_WARMED"),
		Value: []byte(`{"attrs":{"sid":"SYNTH_1970329N10072_WARMED"}}`),
		Headers: map[string]string{
			"sid":          "SYNTH_1970329N10072_WARMED",
			"scenario":     "Wind x1.15, RMW x0.85",
			"processed_at": "2024-04-27T06:00:00Z",
		},
	}

	msg := mapOutputToMessage(out)

	assert.Equal(t, out.Key, msg.Key)
	assert.Equal(t, out.Value, msg.Value)
	require.Len(t, msg.Headers, 3)
	// Sorted by key: processed_at, scenario, sid.
	assert.Equal(t, "processed_at", msg.Headers[0].Key)
	assert.Equal(t, "scenario", msg.Headers[1].Key)
	assert.Equal(t, "sid", msg.Headers[2].Key)
	assert.Equal(t, []byte("SYNTH_1970329N10072_WARMED"), msg.Headers[2].Value)
}
