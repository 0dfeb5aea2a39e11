//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package gmm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSnapshotRoundtripKeepsEveryFamily(t *testing.T) {
	X := twoblobs(20, 3)

	for _, cov := range AllCovariances {
		cov := cov
		t.Run(string(cov), func(t *testing.T) {
			m, err := Fit(X, CandidateSpec{Components: 2, Covariance: cov, Seed: 5}, DefaultFitOptions())
			require.NoError(t, err)

			back, err := FromSnapshot(m.ToSnapshot())
			require.NoError(t, err)

			assert.Equal(t, m.K, back.K)
			assert.Equal(t, m.Covariance, back.Covariance)
			assert.Equal(t, m.Weights, back.Weights)
			assert.True(t, mat.Equal(m.Means, back.Means))

			// the restored mixture must score identically
			a, err := m.Score(X)
			require.NoError(t, err)
			b, err := back.Score(X)
			require.NoError(t, err)
			assert.InDelta(t, a, b, 1e-9)
		})
	}
}

func TestFromSnapshotRejectsCorruption(t *testing.T) {
	s := &Snapshot{K: 2, Dim: 2, Covariance: "spherical", Means: [][]float64{{0, 0}}}
	_, err := FromSnapshot(s)
	assert.Error(t, err)

	s = &Snapshot{K: 1, Dim: 2, Covariance: "banana", Means: [][]float64{{0, 0}}}
	_, err = FromSnapshot(s)
	assert.Error(t, err)
}
