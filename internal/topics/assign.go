//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package topics

import (
	"github.com/VikaNa/pvtm-core/internal/emb"
	"github.com/VikaNa/pvtm-core/internal/gen"
	"github.com/VikaNa/pvtm-core/internal/gmm"
	"gonum.org/v1/gonum/mat"
)

//
// TOPIC ASSIGNMENT
//

// Assignment - per document: the soft distribution over topics, the arg-max
// topic and its probability
type Assignment struct {
	Probas   *mat.Dense // n × K; rows sum to 1
	Hard     []int
	HardProb []float64
}

func (a *Assignment) Count() int {
	return len(a.Hard)
}

func (a *Assignment) Topics() int {
	_, k := a.Probas.Dims()
	return k
}

// Centers - empirical topic centers: the mean of the vectors hard-assigned to
// each topic. NB: deliberately not the fitted gaussian means; the recomputed
// means are what the persisted output and the labeling run on.
type Centers struct {
	K      int
	Dim    int
	Mean   [][]float64
	Counts []int
}

// Empty - a topic that no document voted for
func (c *Centers) Empty(k int) bool {
	return c.Counts[k] == 0
}

// Assign - soft and hard topics for every document plus the empirical centers.
// An empty topic keeps a zero-vector center; labeling tolerates that.
func Assign(m *gmm.Mixture, vs *emb.VectorStore) (*Assignment, *Centers, error) {
	X := vs.Matrix()
	probas, err := m.PredictProba(X)
	if err != nil {
		return nil, nil, err
	}

	n := vs.Count()
	asg := &Assignment{
		Probas:   probas,
		Hard:     make([]int, n),
		HardProb: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		best, max := gen.ArgMax(probas.RawRowView(i))
		asg.Hard[i] = best
		asg.HardProb[i] = max
	}

	ctr := &Centers{
		K:      m.K,
		Dim:    vs.Dimension(),
		Mean:   make([][]float64, m.K),
		Counts: make([]int, m.K),
	}
	for k := 0; k < m.K; k++ {
		ctr.Mean[k] = make([]float64, ctr.Dim)
	}

	for i := 0; i < n; i++ {
		k := asg.Hard[i]
		ctr.Counts[k] += 1
		row := vs.Vector(i)
		for j := 0; j < ctr.Dim; j++ {
			ctr.Mean[k][j] += row[j]
		}
	}
	for k := 0; k < m.K; k++ {
		if ctr.Counts[k] == 0 {
			continue
		}
		for j := 0; j < ctr.Dim; j++ {
			ctr.Mean[k][j] /= float64(ctr.Counts[k])
		}
	}

	return asg, ctr, nil
}
