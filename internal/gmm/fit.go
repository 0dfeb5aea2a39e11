//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package gmm

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/VikaNa/pvtm-core/internal/vv"
	"gonum.org/v1/gonum/mat"
)

// ErrFitFailure - a single candidate failed to fit; grid search recovers from
// this by skipping the candidate
var ErrFitFailure = errors.New("gmm fit failure")

// CandidateSpec - one point of the model grid
type CandidateSpec struct {
	Components int
	Covariance CovarianceType
	Seed       int64
}

type FitOptions struct {
	MaxIterations int
	Tolerance     float64 // on the change of the mean log-likelihood
	Reg           float64 // added to covariance diagonals
	MinVariance   float64 // floor on fitted variances; 0 disables it
}

func DefaultFitOptions() FitOptions {
	return FitOptions{
		MaxIterations: vv.GMMMAXITERATIONS,
		Tolerance:     vv.GMMCONVERGETOL,
		Reg:           vv.GMMCOVARIANCEREG,
		MinVariance:   vv.GMMMINVARIANCE,
	}
}

// Fit - run EM for one CandidateSpec. The returned error wraps ErrFitFailure
// whenever the data and the spec cannot produce a usable mixture; such errors
// are recoverable for a grid, fatal only if every candidate shares them.
func Fit(X *mat.Dense, spec CandidateSpec, opt FitOptions) (*Mixture, error) {
	const (
		FAIL1 = "%w: %d components requested but only %d documents"
		FAIL2 = "%w: %s covariance with %d documents in %d dimensions would be singular"
		FAIL3 = "%w: log-likelihood became non-finite at iteration %d"
	)

	n, d := X.Dims()
	k := spec.Components

	if k < 1 {
		return nil, fmt.Errorf("component count must be positive; got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf(FAIL1, ErrFitFailure, k, n)
	}
	if (spec.Covariance == Full || spec.Covariance == Tied) && n <= d {
		return nil, fmt.Errorf(FAIL2, ErrFitFailure, spec.Covariance, n, d)
	}

	m := initialize(X, spec, opt)

	resp := mat.NewDense(n, k, nil)
	lw := make([]float64, k)
	prev := math.Inf(-1)

	for it := 1; it <= opt.MaxIterations; it++ {
		// E step
		dc, err := m.precompute()
		if err != nil {
			return nil, err
		}
		var ll float64
		for i := 0; i < n; i++ {
			m.logWeightedDensities(X.RawRowView(i), dc, lw)
			lse := logsumexp(lw)
			ll += lse
			for c := 0; c < k; c++ {
				resp.Set(i, c, math.Exp(lw[c]-lse))
			}
		}
		if math.IsNaN(ll) || math.IsInf(ll, 0) {
			return nil, fmt.Errorf(FAIL3, ErrFitFailure, it)
		}

		m.LogLik = ll
		m.Iterations = it

		avg := ll / float64(n)
		if math.Abs(avg-prev) < opt.Tolerance {
			m.Converged = true
			break
		}
		prev = avg

		// M step
		if err := mstep(X, resp, m, opt); err != nil {
			return nil, fmt.Errorf("%w (iteration %d)", err, it)
		}
	}

	// score with the final parameters so that LogLik and BIC describe the
	// mixture as returned, not the pre-M-step one
	ll, err := m.Score(X)
	if err != nil {
		return nil, err
	}
	m.LogLik = ll
	m.BIC = m.bicFor(ll, n)
	return m, nil
}

// initialize - seeded start: the first mean is a random row, every further
// mean is the row farthest from all chosen ones; covariances start at the
// per-column data variance
func initialize(X *mat.Dense, spec CandidateSpec, opt FitOptions) *Mixture {
	n, d := X.Dims()
	k := spec.Components
	rng := rand.New(rand.NewSource(spec.Seed))

	m := &Mixture{
		K:          k,
		Dim:        d,
		Covariance: spec.Covariance,
		Weights:    make([]float64, k),
		Means:      mat.NewDense(k, d, nil),
		Seed:       spec.Seed,
	}

	distsq := func(a int, b int) float64 {
		ra, rb := X.RawRowView(a), X.RawRowView(b)
		var s float64
		for j := 0; j < d; j++ {
			dev := ra[j] - rb[j]
			s += dev * dev
		}
		return s
	}

	chosen := make([]int, 1, k)
	chosen[0] = rng.Intn(n)
	mind := make([]float64, n) // squared distance to the nearest chosen mean
	for i := 0; i < n; i++ {
		mind[i] = distsq(i, chosen[0])
	}
	for len(chosen) < k {
		next := 0
		for i := 1; i < n; i++ {
			if mind[i] > mind[next] {
				next = i
			}
		}
		chosen = append(chosen, next)
		for i := 0; i < n; i++ {
			if dd := distsq(i, next); dd < mind[i] {
				mind[i] = dd
			}
		}
	}

	for c := 0; c < k; c++ {
		m.Weights[c] = 1 / float64(k)
		m.Means.SetRow(c, X.RawRowView(chosen[c]))
	}

	colvar := make([]float64, d)
	for j := 0; j < d; j++ {
		var mean, ss float64
		for i := 0; i < n; i++ {
			mean += X.At(i, j)
		}
		mean /= float64(n)
		for i := 0; i < n; i++ {
			dev := X.At(i, j) - mean
			ss += dev * dev
		}
		colvar[j] = ss/float64(n) + opt.Reg
	}

	switch spec.Covariance {
	case Spherical:
		avg := 0.0
		for j := 0; j < d; j++ {
			avg += colvar[j]
		}
		avg /= float64(d)
		m.SphVar = make([]float64, k)
		for c := 0; c < k; c++ {
			m.SphVar[c] = avg
		}
	case Diagonal:
		m.DiagVar = mat.NewDense(k, d, nil)
		for c := 0; c < k; c++ {
			m.DiagVar.SetRow(c, colvar)
		}
	case Tied:
		m.TiedCov = mat.NewSymDense(d, nil)
		for j := 0; j < d; j++ {
			m.TiedCov.SetSym(j, j, colvar[j])
		}
	case Full:
		m.FullCov = make([]*mat.SymDense, k)
		for c := 0; c < k; c++ {
			cv := mat.NewSymDense(d, nil)
			for j := 0; j < d; j++ {
				cv.SetSym(j, j, colvar[j])
			}
			m.FullCov[c] = cv
		}
	}

	return m
}

func mstep(X *mat.Dense, resp *mat.Dense, m *Mixture, opt FitOptions) error {
	const (
		COLLAPSE = "%w: component %d received (almost) no responsibility"
		TINY     = 1.0e-10
	)

	reg := opt.Reg

	// a component collapsed onto a single document would otherwise take its
	// variance down to the regularizer and swamp the likelihood
	floor := func(v float64) float64 {
		if opt.MinVariance > 0 && v < opt.MinVariance {
			return opt.MinVariance
		}
		return v
	}

	n, d := X.Dims()
	k := m.K

	nk := make([]float64, k)
	for i := 0; i < n; i++ {
		for c := 0; c < k; c++ {
			nk[c] += resp.At(i, c)
		}
	}
	for c := 0; c < k; c++ {
		if nk[c] < TINY {
			return fmt.Errorf(COLLAPSE, ErrFitFailure, c)
		}
	}

	// weights and means
	for c := 0; c < k; c++ {
		m.Weights[c] = nk[c] / float64(n)
		mu := make([]float64, d)
		for i := 0; i < n; i++ {
			r := resp.At(i, c)
			row := X.RawRowView(i)
			for j := 0; j < d; j++ {
				mu[j] += r * row[j]
			}
		}
		for j := 0; j < d; j++ {
			mu[j] /= nk[c]
		}
		m.Means.SetRow(c, mu)
	}

	// covariances
	switch m.Covariance {
	case Spherical, Diagonal:
		for c := 0; c < k; c++ {
			dv := make([]float64, d)
			for i := 0; i < n; i++ {
				r := resp.At(i, c)
				row := X.RawRowView(i)
				for j := 0; j < d; j++ {
					dev := row[j] - m.Means.At(c, j)
					dv[j] += r * dev * dev
				}
			}
			for j := 0; j < d; j++ {
				dv[j] = floor(dv[j]/nk[c] + reg)
			}
			if m.Covariance == Diagonal {
				m.DiagVar.SetRow(c, dv)
			} else {
				avg := 0.0
				for j := 0; j < d; j++ {
					avg += dv[j]
				}
				m.SphVar[c] = floor(avg / float64(d))
			}
		}
	case Tied:
		acc := mat.NewSymDense(d, nil)
		for c := 0; c < k; c++ {
			accumulateScatter(X, resp, m, c, acc)
		}
		for a := 0; a < d; a++ {
			for b := a; b < d; b++ {
				v := acc.At(a, b) / float64(n)
				if a == b {
					v = floor(v + reg)
				}
				acc.SetSym(a, b, v)
			}
		}
		m.TiedCov = acc
	case Full:
		for c := 0; c < k; c++ {
			acc := mat.NewSymDense(d, nil)
			accumulateScatter(X, resp, m, c, acc)
			for a := 0; a < d; a++ {
				for b := a; b < d; b++ {
					v := acc.At(a, b) / nk[c]
					if a == b {
						v = floor(v + reg)
					}
					acc.SetSym(a, b, v)
				}
			}
			m.FullCov[c] = acc
		}
	}

	return nil
}

// accumulateScatter - add Σ_i r_ic (x_i−μ_c)(x_i−μ_c)ᵀ onto acc
func accumulateScatter(X *mat.Dense, resp *mat.Dense, m *Mixture, c int, acc *mat.SymDense) {
	n, d := X.Dims()
	diff := make([]float64, d)
	for i := 0; i < n; i++ {
		r := resp.At(i, c)
		row := X.RawRowView(i)
		for j := 0; j < d; j++ {
			diff[j] = row[j] - m.Means.At(c, j)
		}
		for a := 0; a < d; a++ {
			for b := a; b < d; b++ {
				acc.SetSym(a, b, acc.At(a, b)+r*diff[a]*diff[b])
			}
		}
	}
}
