// Package analog identifies historical cyclone tracks that are geometrically
// similar to a reference event and synthesizes perturbed scenario variants
// of the chosen analogs.
//
// The pipeline has four pure, synchronous stages:
//
//  1. [Encode] resamples a variable-length track onto a fixed number of arc
//     positions, producing a comparable vector of resampled latitudes
//     followed by resampled longitudes.
//  2. A [Clusterer] (default [DBSCAN]) groups the pool by spatial features,
//     in practice the mean-position pairs from [MeanPositionFeatures], with
//     label [Noise] for tracks not reachable from any dense region.
//  3. A [Refiner] projects the encoded pool into a lower-dimensional space
//     (default [PCA]), takes the centroid of a target cluster, and ranks
//     tracks by cosine similarity to that centroid.
//  4. [Synthesize] applies multiplicative climate modifiers to one analog,
//     recomputing pressure from the boosted wind.
//
// # Ranking scope
//
// Refinement scores every track in the collection against the target
// cluster's centroid, including tracks outside that cluster. An
// out-of-cluster track can therefore surface among the refined analogs when
// its projected shape is closer to the centroid than some cluster members.
// That is intentional: the cluster is a coarse spatial gate for picking the
// centroid, while the refined ranking is about path geometry. Restricting
// the ranking to cluster members is a policy decision for the caller, made
// by filtering the returned matches on their labels.
//
// Every stage returns new values and never mutates its inputs, so callers
// may freely parallelize per-track work as long as results are recombined
// in input order.
package analog
