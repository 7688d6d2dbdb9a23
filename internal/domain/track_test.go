package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTrack(n int) Track {
	base := time.Date(1970, time.November, 8, 0, 0, 0, 0, time.UTC)
	t := Track{
		Times:            make([]time.Time, n),
		Lat:              make([]float64, n),
		Lon:              make([]float64, n),
		MaxSustainedWind: make([]float64, n),
		CentralPressure:  make([]float64, n),
		RadiusMaxWind:    make([]float64, n),
		Attrs: TrackAttrs{
			SID:           "1970329N10072",
			Name:          "BHOLA",
			OrigEventFlag: true,
		},
	}
	for i := 0; i < n; i++ {
		t.Times[i] = base.Add(time.Duration(i) * 3 * time.Hour)
		t.Lat[i] = 16.0 + 0.5*float64(i)
		t.Lon[i] = 89.0 + 0.1*float64(i)
		t.MaxSustainedWind[i] = 40 + 5*float64(i)
		t.CentralPressure[i] = 1000 - 0.5*t.MaxSustainedWind[i]
		t.RadiusMaxWind[i] = 60 - float64(i)
	}
	return t
}

func TestTrackValidate(t *testing.T) {
	t.Run("valid track", func(t *testing.T) {
		require.NoError(t, makeTrack(5).Validate())
	})

	t.Run("single point is valid", func(t *testing.T) {
		require.NoError(t, makeTrack(1).Validate())
	})

	t.Run("empty track", func(t *testing.T) {
		err := Track{}.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "times", verr.Field)
	})

	t.Run("mismatched mandatory series", func(t *testing.T) {
		tr := makeTrack(5)
		tr.Lat = tr.Lat[:4]
		err := tr.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "lat", verr.Field)
	})

	t.Run("mismatched optional series", func(t *testing.T) {
		tr := makeTrack(5)
		tr.RadiusMaxWind = tr.RadiusMaxWind[:2]
		err := tr.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "radius_max_wind", verr.Field)
	})

	t.Run("absent optional series", func(t *testing.T) {
		tr := makeTrack(5)
		tr.CentralPressure = nil
		tr.RadiusMaxWind = nil
		require.NoError(t, tr.Validate())
	})

	t.Run("non-increasing timestamps", func(t *testing.T) {
		tr := makeTrack(3)
		tr.Times[2] = tr.Times[1]
		err := tr.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "times", verr.Field)
	})

	t.Run("negative wind", func(t *testing.T) {
		tr := makeTrack(3)
		tr.MaxSustainedWind[1] = -10
		err := tr.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "max_sustained_wind", verr.Field)
	})
}

func TestTrackClone_SharesNoStorage(t *testing.T) {
	orig := makeTrack(4)
	clone := orig.Clone()

	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	clone.Lat[0] = -90
	clone.MaxSustainedWind[0] = 999
	clone.CentralPressure[0] = 0
	clone.Attrs.SID = "mutated"

	assert.Equal(t, 16.0, orig.Lat[0])
	assert.Equal(t, 40.0, orig.MaxSustainedWind[0])
	assert.Equal(t, 980.0, orig.CentralPressure[0])
	assert.Equal(t, "1970329N10072", orig.Attrs.SID)
}

func TestValidationErrorMessage(t *testing.T) {
	err := error(&ValidationError{Field: "lat", Reason: "empty"})
	assert.Equal(t, "invalid lat: empty", err.Error())

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestConfigErrorMessage(t *testing.T) {
	err := error(&ConfigError{Param: "target_cluster", Reason: "no tracks carry label 3"})
	assert.Equal(t, "cannot satisfy target_cluster: no tracks carry label 3", err.Error())
}
