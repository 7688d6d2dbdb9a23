package domain

import "fmt"

// ValidationError reports malformed input data: empty or misaligned
// coordinate sequences, non-positive modifier factors, and the like.
// It is raised synchronously at the point of detection and never
// silently corrected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigError reports a request that cannot be satisfied given the data,
// such as an empty target cluster or a reduced dimensionality exceeding the
// available degrees of freedom. The pipeline surfaces it to the caller
// rather than guessing a fallback.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cannot satisfy %s: %s", e.Param, e.Reason)
}
