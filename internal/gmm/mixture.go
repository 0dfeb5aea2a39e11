//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package gmm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

//
// GAUSSIAN MIXTURES
//

// CovarianceType - the structural constraint on component covariances; the
// order of AllCovariances is also the tie-break order during model selection
type CovarianceType string

const (
	Spherical CovarianceType = "spherical"
	Diagonal  CovarianceType = "diag"
	Tied      CovarianceType = "tied"
	Full      CovarianceType = "full"
)

var AllCovariances = []CovarianceType{Spherical, Diagonal, Tied, Full}

// ParseCovariance - a config string into a CovarianceType
func ParseCovariance(s string) (CovarianceType, error) {
	switch CovarianceType(s) {
	case Spherical, Diagonal, Tied, Full:
		return CovarianceType(s), nil
	}
	return "", fmt.Errorf("unknown covariance family '%s'", s)
}

// Mixture - a fitted gaussian mixture; only the covariance fields matching
// Covariance are populated
type Mixture struct {
	K          int
	Dim        int
	Covariance CovarianceType
	Weights    []float64 // len K
	Means      *mat.Dense
	SphVar     []float64 // spherical: one variance per component
	DiagVar    *mat.Dense
	TiedCov    *mat.SymDense
	FullCov    []*mat.SymDense
	LogLik     float64 // total log-likelihood on the training data
	BIC        float64
	Converged  bool
	Iterations int
	Seed       int64
}

// FreeParameters - the parameter count k that enters the BIC penalty
func (m *Mixture) FreeParameters() int {
	p := m.K*m.Dim + m.K - 1
	switch m.Covariance {
	case Spherical:
		p += m.K
	case Diagonal:
		p += m.K * m.Dim
	case Tied:
		p += m.Dim * (m.Dim + 1) / 2
	case Full:
		p += m.K * m.Dim * (m.Dim + 1) / 2
	}
	return p
}

// bicFor - BIC = -2·logL + k·log(n); lower is better
func (m *Mixture) bicFor(loglik float64, n int) float64 {
	return -2*loglik + float64(m.FreeParameters())*math.Log(float64(n))
}

// densCache - per-component precomputation for the log densities; building it
// is where a singular covariance announces itself
type densCache struct {
	logdet []float64       // len K (tied: same value repeated)
	chol   []*mat.Cholesky // full: K entries; tied: 1 entry
}

func (m *Mixture) precompute() (*densCache, error) {
	dc := &densCache{logdet: make([]float64, m.K)}

	switch m.Covariance {
	case Spherical:
		for k := 0; k < m.K; k++ {
			if m.SphVar[k] <= 0 {
				return nil, fmt.Errorf("%w: non-positive variance in component %d", ErrFitFailure, k)
			}
			dc.logdet[k] = float64(m.Dim) * math.Log(m.SphVar[k])
		}
	case Diagonal:
		for k := 0; k < m.K; k++ {
			ld := 0.0
			for j := 0; j < m.Dim; j++ {
				v := m.DiagVar.At(k, j)
				if v <= 0 {
					return nil, fmt.Errorf("%w: non-positive variance in component %d", ErrFitFailure, k)
				}
				ld += math.Log(v)
			}
			dc.logdet[k] = ld
		}
	case Tied:
		var ch mat.Cholesky
		if ok := ch.Factorize(m.TiedCov); !ok {
			return nil, fmt.Errorf("%w: tied covariance is not positive definite", ErrFitFailure)
		}
		dc.chol = []*mat.Cholesky{&ch}
		ld := ch.LogDet()
		for k := 0; k < m.K; k++ {
			dc.logdet[k] = ld
		}
	case Full:
		dc.chol = make([]*mat.Cholesky, m.K)
		for k := 0; k < m.K; k++ {
			var ch mat.Cholesky
			if ok := ch.Factorize(m.FullCov[k]); !ok {
				return nil, fmt.Errorf("%w: covariance of component %d is not positive definite", ErrFitFailure, k)
			}
			dc.chol[k] = &ch
			dc.logdet[k] = ch.LogDet()
		}
	}
	return dc, nil
}

// logWeightedDensities - out[k] = log w_k + log N(x | μ_k, Σ_k)
func (m *Mixture) logWeightedDensities(x []float64, dc *densCache, out []float64) {
	const LOG2PI = 1.8378770664093453

	diff := make([]float64, m.Dim)

	for k := 0; k < m.K; k++ {
		var quad float64
		switch m.Covariance {
		case Spherical:
			for j := 0; j < m.Dim; j++ {
				d := x[j] - m.Means.At(k, j)
				quad += d * d
			}
			quad /= m.SphVar[k]
		case Diagonal:
			for j := 0; j < m.Dim; j++ {
				d := x[j] - m.Means.At(k, j)
				quad += d * d / m.DiagVar.At(k, j)
			}
		case Tied, Full:
			for j := 0; j < m.Dim; j++ {
				diff[j] = x[j] - m.Means.At(k, j)
			}
			ch := dc.chol[0]
			if m.Covariance == Full {
				ch = dc.chol[k]
			}
			var solved mat.VecDense
			if err := ch.SolveVecTo(&solved, mat.NewVecDense(m.Dim, diff)); err != nil {
				quad = math.Inf(1)
				break
			}
			for j := 0; j < m.Dim; j++ {
				quad += diff[j] * solved.AtVec(j)
			}
		}
		out[k] = math.Log(m.Weights[k]) - 0.5*(float64(m.Dim)*LOG2PI+dc.logdet[k]+quad)
	}
}

func logsumexp(vv []float64) float64 {
	max := math.Inf(-1)
	for _, v := range vv {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, -1) {
		return max
	}
	var s float64
	for _, v := range vv {
		s += math.Exp(v - max)
	}
	return max + math.Log(s)
}

// PredictProba - soft assignment of every row of X; each output row sums to 1
func (m *Mixture) PredictProba(X *mat.Dense) (*mat.Dense, error) {
	dc, err := m.precompute()
	if err != nil {
		return nil, err
	}

	n, d := X.Dims()
	if d != m.Dim {
		return nil, fmt.Errorf("data has dimension %d but the mixture was fitted on %d", d, m.Dim)
	}

	probas := mat.NewDense(n, m.K, nil)
	lw := make([]float64, m.K)
	for i := 0; i < n; i++ {
		m.logWeightedDensities(X.RawRowView(i), dc, lw)
		lse := logsumexp(lw)
		for k := 0; k < m.K; k++ {
			probas.Set(i, k, math.Exp(lw[k]-lse))
		}
	}
	return probas, nil
}

// Score - total log-likelihood of X under the mixture
func (m *Mixture) Score(X *mat.Dense) (float64, error) {
	dc, err := m.precompute()
	if err != nil {
		return 0, err
	}

	n, _ := X.Dims()
	lw := make([]float64, m.K)
	var ll float64
	for i := 0; i < n; i++ {
		m.logWeightedDensities(X.RawRowView(i), dc, lw)
		ll += logsumexp(lw)
	}
	return ll, nil
}
