package analog

import (
	"fmt"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

// Encode resamples a track's path onto nPoints evenly spaced arc positions
// and returns the concatenation of the resampled latitudes and longitudes.
// The result always has length 2*nPoints, whether the track is shorter or
// longer than nPoints, so tracks of any length become directly comparable.
func Encode(track domain.Track, nPoints int) ([]float64, error) {
	if nPoints < 1 {
		return nil, &domain.ValidationError{Field: "n_points", Reason: "must be at least 1"}
	}
	if len(track.Lat) == 0 || len(track.Lon) == 0 {
		return nil, &domain.ValidationError{Field: "lat/lon", Reason: "empty coordinate sequence"}
	}
	if len(track.Lat) != len(track.Lon) {
		return nil, &domain.ValidationError{
			Field:  "lat/lon",
			Reason: fmt.Sprintf("length mismatch: %d lat vs %d lon", len(track.Lat), len(track.Lon)),
		}
	}

	out := make([]float64, 0, 2*nPoints)
	out = append(out, resample(track.Lat, nPoints)...)
	out = append(out, resample(track.Lon, nPoints)...)
	return out, nil
}

// resample linearly interpolates values, indexed on a normalized 0..1 arc
// axis, onto n evenly spaced positions on the same axis. A single-point
// input repeats that point; n == 1 samples the start of the path.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	if len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}

	last := float64(len(values) - 1)
	for i := range out {
		var pos float64
		if n > 1 {
			pos = float64(i) / float64(n-1)
		}
		t := pos * last
		j := int(t)
		if j >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := t - float64(j)
		out[i] = values[j] + frac*(values[j+1]-values[j])
	}
	return out
}

// MeanPositionFeatures reduces each track to its mean [lat, lon] pair, the
// coarse spatial feature used for first-pass clustering of the analog pool.
func MeanPositionFeatures(tracks []domain.Track) ([][]float64, error) {
	features := make([][]float64, len(tracks))
	for i, track := range tracks {
		if len(track.Lat) == 0 || len(track.Lon) == 0 {
			return nil, &domain.ValidationError{
				Field:  "lat/lon",
				Reason: fmt.Sprintf("track %d has an empty coordinate sequence", i),
			}
		}
		var sumLat, sumLon float64
		for _, v := range track.Lat {
			sumLat += v
		}
		for _, v := range track.Lon {
			sumLon += v
		}
		features[i] = []float64{
			sumLat / float64(len(track.Lat)),
			sumLon / float64(len(track.Lon)),
		}
	}
	return features, nil
}
