package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawMessage represents an unprocessed track message from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputMessage is the serialized form destined for the sink topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ParseRawTrack deserializes a RawMessage's value into a Track and validates
// the time-alignment invariant. It expects the track JSON produced by the
// upstream catalog collector.
func ParseRawTrack(raw RawMessage) (Track, error) {
	var track Track
	if err := json.Unmarshal(raw.Value, &track); err != nil {
		return Track{}, fmt.Errorf("parse raw track: %w", err)
	}
	if err := track.Validate(); err != nil {
		return Track{}, fmt.Errorf("parse raw track %q: %w", track.Attrs.SID, err)
	}
	return track, nil
}

// SerializeTrack marshals a track into an output message keyed by storm SID.
// The processed_at header is stamped from the package clock so fixture
// generation can freeze it.
func SerializeTrack(track Track) (OutputMessage, error) {
	data, err := json.Marshal(track)
	if err != nil {
		return OutputMessage{}, fmt.Errorf("serialize track %q: %w", track.Attrs.SID, err)
	}
	return OutputMessage{
		Key:   []byte(track.Attrs.SID),
		Value: data,
		Headers: map[string]string{
			"sid":          track.Attrs.SID,
			"scenario":     track.Attrs.Scenario,
			"processed_at": clock.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
