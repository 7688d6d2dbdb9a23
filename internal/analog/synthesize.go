package analog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

// syntheticCategory is the severity override stamped on every synthetic
// track, matching the catalog convention for worst-case scenario variants.
const syntheticCategory = 5

// Synthesize applies deterministic climate modifiers to an analog track and
// returns a new, fully independent synthetic track. The wind field is scaled
// by windBoost, the radius of maximum wind (when present) by rmwShrink, and
// central pressure (when present) is recomputed from the boosted wind via
// the parametric closure pressure = 1000 - 0.5*wind rather than scaled.
//
// The input track is never mutated and repeated calls with identical inputs
// produce bit-identical outputs.
func Synthesize(track domain.Track, windBoost, rmwShrink float64) (domain.Track, error) {
	if windBoost <= 0 {
		return domain.Track{}, &domain.ValidationError{Field: "wind_boost", Reason: "must be positive"}
	}
	if rmwShrink <= 0 {
		return domain.Track{}, &domain.ValidationError{Field: "rmw_shrink", Reason: "must be positive"}
	}

	out := track.Clone()

	for i := range out.MaxSustainedWind {
		out.MaxSustainedWind[i] *= windBoost
	}
	for i := range out.RadiusMaxWind {
		out.RadiusMaxWind[i] *= rmwShrink
	}
	for i := range out.CentralPressure {
		out.CentralPressure[i] = 1000 - 0.5*out.MaxSustainedWind[i]
	}

	sid := track.Attrs.SID
	if sid == "" {
		sid = "N/A"
	}
	out.Attrs.SID = fmt.Sprintf("SYNTH_%s_WARMED", sid)
	out.Attrs.Scenario = fmt.Sprintf("Wind x%s, RMW x%s", formatFactor(windBoost), formatFactor(rmwShrink))
	out.Attrs.OrigEventFlag = false
	out.Attrs.Category = syntheticCategory

	return out, nil
}

// formatFactor renders a scale factor for the scenario label. Integral
// factors keep a trailing decimal so "x1.0" reads as a factor, not a count.
func formatFactor(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
