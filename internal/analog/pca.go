package analog

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/cyclone-analog-service/internal/domain"
)

// Reducer projects a collection of equal-length feature vectors into a
// k-dimensional linear subspace chosen to maximize retained variance. The
// projection is fit once on the whole collection and applied to every
// vector, so vectors outside any particular cluster land in the same space.
type Reducer interface {
	FitTransform(vectors [][]float64, k int) ([][]float64, error)
}

// PCA is the default Reducer: principal component analysis over the
// column-centered vectors, projecting onto the top-k components.
type PCA struct{}

func (PCA) FitTransform(vectors [][]float64, k int) ([][]float64, error) {
	n := len(vectors)
	if n == 0 {
		return nil, &domain.ConfigError{Param: "n_components", Reason: "no feature vectors to fit"}
	}
	d := len(vectors[0])
	for i, v := range vectors {
		if len(v) != d {
			return nil, &domain.ValidationError{
				Field:  "feature_vectors",
				Reason: fmt.Sprintf("vector %d has length %d, want %d", i, len(v), d),
			}
		}
	}
	if k < 1 || k > n || k > d {
		return nil, &domain.ConfigError{
			Param:  "n_components",
			Reason: fmt.Sprintf("%d is outside [1, min(%d tracks, %d dims)]", k, n, d),
		}
	}

	data := make([]float64, 0, n*d)
	for _, v := range vectors {
		data = append(data, v...)
	}
	x := mat.NewDense(n, d, data)

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, &domain.ConfigError{Param: "n_components", Reason: "principal component decomposition failed"}
	}
	var components mat.Dense
	pc.VectorsTo(&components)

	// Project the column-centered data onto the leading k components, the
	// same transform a fit_transform over the full collection produces.
	means := make([]float64, d)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, x)
		var sum float64
		for _, v := range col {
			sum += v
		}
		means[j] = sum / float64(n)
	}
	centered := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			centered.Set(i, j, x.At(i, j)-means[j])
		}
	}

	var projected mat.Dense
	projected.Mul(centered, components.Slice(0, d, 0, k))

	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(nil, i, &projected)
	}
	return out, nil
}
