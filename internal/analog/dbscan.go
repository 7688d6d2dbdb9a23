package analog

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

// Noise is the label assigned to points not reachable from any core point.
const Noise = -1

// Clusterer groups equal-length feature vectors by density reachability.
// Labels are index-aligned with the input; Noise (-1) marks unclustered
// points and non-negative labels identify groups in discovery order. Any
// density-based algorithm honouring that contract can be substituted.
type Clusterer interface {
	Fit(points [][]float64, eps float64, minSamples int) ([]int, error)
}

// DBSCAN is the default Clusterer. Feature vectors of dimension two (the
// mean-position call site) are indexed on a regular grid so neighbourhood
// queries stay cheap as the pool grows; higher dimensions fall back to
// linear scans, which is fine at analog-pool sizes.
type DBSCAN struct {
	logger *slog.Logger
}

// NewDBSCAN creates a DBSCAN clusterer that reports cluster summaries to logger.
func NewDBSCAN(logger *slog.Logger) *DBSCAN {
	return &DBSCAN{logger: logger}
}

// Fit labels every point with its cluster id, or Noise. Permuting the input
// permutes only label numbering, never the grouping itself.
func (d *DBSCAN) Fit(points [][]float64, eps float64, minSamples int) ([]int, error) {
	if eps <= 0 {
		return nil, &domain.ValidationError{Field: "eps", Reason: "must be positive"}
	}
	if minSamples < 1 {
		return nil, &domain.ValidationError{Field: "min_samples", Reason: "must be at least 1"}
	}
	if len(points) == 0 {
		return []int{}, nil
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, &domain.ValidationError{
				Field:  "feature_vectors",
				Reason: fmt.Sprintf("vector %d has length %d, want %d", i, len(p), dim),
			}
		}
	}

	index := newNeighborIndex(points, eps)

	// 0 = unvisited, -1 = noise, >0 = cluster id (shifted down before return).
	n := len(points)
	labels := make([]int, n)
	clusterID := 0

	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			continue
		}

		neighbors := index.regionQuery(i)
		if len(neighbors) < minSamples {
			labels[i] = -1
			continue
		}

		clusterID++
		expandCluster(index, labels, i, neighbors, clusterID, minSamples)
	}

	out := make([]int, n)
	noise := 0
	for i, l := range labels {
		if l == -1 {
			out[i] = Noise
			noise++
			continue
		}
		out[i] = l - 1
	}

	d.logger.Info("clustered feature vectors",
		"points", n,
		"clusters", clusterID,
		"noise", noise,
	)

	return out, nil
}

// expandCluster grows a cluster outward from a core point using a
// queue-based sweep over density-reachable neighbours.
func expandCluster(index neighborIndex, labels []int, seed int, neighbors []int, clusterID, minSamples int) {
	labels[seed] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == -1 {
			labels[idx] = clusterID // noise becomes a border point
		}
		if labels[idx] != 0 {
			continue
		}

		labels[idx] = clusterID
		next := index.regionQuery(idx)
		if len(next) >= minSamples {
			neighbors = append(neighbors, next...)
		}
	}
}

// neighborIndex answers eps-neighbourhood queries over a fixed point set.
// The query result includes the query point itself.
type neighborIndex interface {
	regionQuery(i int) []int
}

func newNeighborIndex(points [][]float64, eps float64) neighborIndex {
	if len(points[0]) == 2 {
		return newGridIndex(points, eps)
	}
	return &bruteIndex{points: points, eps2: eps * eps}
}

// bruteIndex scans every point per query. Used for full encoded vectors,
// where a grid over 2*nPoints dimensions would be useless.
type bruteIndex struct {
	points [][]float64
	eps2   float64
}

func (b *bruteIndex) regionQuery(i int) []int {
	var neighbors []int
	p := b.points[i]
	for j, q := range b.points {
		var dist2 float64
		for k := range p {
			d := q[k] - p[k]
			dist2 += d * d
		}
		if dist2 <= b.eps2 {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// gridIndex buckets 2-D points into cells of side eps so a region query only
// inspects the 3x3 cell neighbourhood around the query point.
type gridIndex struct {
	points   [][]float64
	cellSize float64
	eps2     float64
	grid     map[int64][]int
}

func newGridIndex(points [][]float64, eps float64) *gridIndex {
	g := &gridIndex{
		points:   points,
		cellSize: eps,
		eps2:     eps * eps,
		grid:     make(map[int64][]int, len(points)),
	}
	for i, p := range points {
		id := g.cellID(g.cell(p[0]), g.cell(p[1]))
		g.grid[id] = append(g.grid[id], i)
	}
	return g
}

func (g *gridIndex) cell(v float64) int64 {
	return int64(math.Floor(v / g.cellSize))
}

// cellID maps a signed cell coordinate pair to a single key via zigzag
// encoding and Szudzik's pairing function.
func (g *gridIndex) cellID(cx, cy int64) int64 {
	var a, b int64
	if cx >= 0 {
		a = 2 * cx
	} else {
		a = -2*cx - 1
	}
	if cy >= 0 {
		b = 2 * cy
	} else {
		b = -2*cy - 1
	}
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

func (g *gridIndex) regionQuery(i int) []int {
	p := g.points[i]
	cx, cy := g.cell(p[0]), g.cell(p[1])

	var neighbors []int
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, j := range g.grid[g.cellID(cx+dx, cy+dy)] {
				q := g.points[j]
				ddx := q[0] - p[0]
				ddy := q[1] - p[1]
				if ddx*ddx+ddy*ddy <= g.eps2 {
					neighbors = append(neighbors, j)
				}
			}
		}
	}
	return neighbors
}
