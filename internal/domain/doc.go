// Package domain models tropical-cyclone track data.
//
// # Data Source
//
// Historical tracks originate from the IBTrACS archive (International Best
// Track Archive for Climate Stewardship). The upstream collector service
// selects tracks by year range and basin, flattens each storm's time series
// into JSON, and publishes one message per storm to the Kafka source topic.
//
// # Track Conventions
//
// Series fields:
//
//	times               strictly increasing UTC timestamps, typically 3- or
//	                    6-hourly best-track fixes.
//	lat, lon            position in WGS-84 degrees; lon may cross basins and
//	                    is kept as published (no wrapping).
//	max_sustained_wind  1-minute sustained wind, knots.
//	central_pressure    minimum central pressure, millibars (optional).
//	environmental_pressure  ambient pressure, millibars (optional).
//	radius_max_wind     radius of maximum wind, kilometres (optional).
//	time_step           fix interval in hours (optional).
//	basin               per-fix basin code, e.g. "NI", "NA" (optional).
//
// Units travel with the track in attrs (*_unit fields) so downstream hazard
// tooling never has to guess them.
//
// # Storm Identifiers
//
// The sid attr is the archive storm identifier (e.g. "1970329N10072" for
// Bhola 1970). Synthetic scenario tracks derive their identity from the
// analog they were built from:
//
//	SYNTH_<original sid>_WARMED
//
// together with orig_event_flag=false and a scenario attr recording the
// applied modifiers ("Wind x1.15, RMW x0.85"). The pressure field of a
// synthetic track is not a measurement: it is recomputed from the perturbed
// wind via the parametric closure
//
//	central_pressure = 1000 - 0.5 * max_sustained_wind   (mb, wind in kn)
//
// # Invariants
//
// All per-point series of a Track share the length of times ([Track.Validate]).
// Tracks are immutable by convention once produced by a pipeline stage;
// [Track.Clone] is the only sanctioned way to derive a modified track, which
// keeps an analog and its synthetic derivatives from aliasing each other.
package domain
