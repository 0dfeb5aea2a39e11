//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package gmm

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// twoblobs - n points, the first half jittered around (0,0), the rest around (8,8)
func twoblobs(n int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		cx, cy := 0.0, 0.0
		if i >= n/2 {
			cx, cy = 8.0, 8.0
		}
		X.Set(i, 0, cx+rng.NormFloat64()*0.3)
		X.Set(i, 1, cy+rng.NormFloat64()*0.3)
	}
	return X
}

func hardassign(t *testing.T, m *Mixture, X *mat.Dense) []int {
	t.Helper()
	probas, err := m.PredictProba(X)
	require.NoError(t, err)

	n, k := probas.Dims()
	hard := make([]int, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		best := 0
		for c := 0; c < k; c++ {
			sum += probas.At(i, c)
			if probas.At(i, c) > probas.At(i, best) {
				best = c
			}
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "probability row %d does not sum to 1", i)
		hard[i] = best
	}
	return hard
}

func TestFitSeparatesTwoClusters(t *testing.T) {
	X := twoblobs(40, 1)

	for _, cov := range AllCovariances {
		cov := cov
		t.Run(string(cov), func(t *testing.T) {
			m, err := Fit(X, CandidateSpec{Components: 2, Covariance: cov, Seed: 1}, DefaultFitOptions())
			require.NoError(t, err)

			assert.True(t, m.Converged)
			assert.False(t, math.IsNaN(m.BIC))
			assert.False(t, math.IsInf(m.BIC, 0))

			hard := hardassign(t, m, X)
			for i := 1; i < 20; i++ {
				assert.Equal(t, hard[0], hard[i], "point %d left the first cluster", i)
			}
			for i := 21; i < 40; i++ {
				assert.Equal(t, hard[20], hard[i], "point %d left the second cluster", i)
			}
			assert.NotEqual(t, hard[0], hard[20])
		})
	}
}

func TestFitIsDeterministicPerSeed(t *testing.T) {
	X := twoblobs(30, 7)
	spec := CandidateSpec{Components: 3, Covariance: Diagonal, Seed: 99}

	a, err := Fit(X, spec, DefaultFitOptions())
	require.NoError(t, err)
	b, err := Fit(X, spec, DefaultFitOptions())
	require.NoError(t, err)

	assert.Equal(t, a.BIC, b.BIC)
	assert.Equal(t, a.LogLik, b.LogLik)
	assert.True(t, mat.Equal(a.Means, b.Means))
}

func TestFitRejectsBadSpecs(t *testing.T) {
	X := twoblobs(6, 3)

	t.Run("nonpositive components", func(t *testing.T) {
		_, err := Fit(X, CandidateSpec{Components: 0, Covariance: Spherical}, DefaultFitOptions())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrFitFailure)
	})

	t.Run("more components than documents", func(t *testing.T) {
		_, err := Fit(X, CandidateSpec{Components: 7, Covariance: Spherical}, DefaultFitOptions())
		assert.ErrorIs(t, err, ErrFitFailure)
	})

	t.Run("full covariance needs more documents than dimensions", func(t *testing.T) {
		wide := mat.NewDense(3, 4, []float64{
			1, 2, 3, 4,
			5, 6, 7, 8,
			9, 10, 11, 12,
		})
		_, err := Fit(wide, CandidateSpec{Components: 2, Covariance: Full}, DefaultFitOptions())
		assert.ErrorIs(t, err, ErrFitFailure)

		_, err = Fit(wide, CandidateSpec{Components: 2, Covariance: Tied}, DefaultFitOptions())
		assert.ErrorIs(t, err, ErrFitFailure)
	})
}

func TestFreeParameters(t *testing.T) {
	// means K·d plus weights K−1 plus the covariance parameters of the family
	tt := []struct {
		cov  CovarianceType
		want int
	}{
		{Spherical, 3*4 + 2 + 3},
		{Diagonal, 3*4 + 2 + 3*4},
		{Tied, 3*4 + 2 + 4*5/2},
		{Full, 3*4 + 2 + 3*4*5/2},
	}
	for _, tc := range tt {
		m := &Mixture{K: 3, Dim: 4, Covariance: tc.cov}
		assert.Equal(t, tc.want, m.FreeParameters(), string(tc.cov))
	}
}
