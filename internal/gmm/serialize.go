//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package gmm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//
// SERIALIZATION
//

// Snapshot - the gob-friendly form of a Mixture; gonum matrices do not gob
type Snapshot struct {
	K          int
	Dim        int
	Covariance string
	Weights    []float64
	Means      [][]float64
	SphVar     []float64
	DiagVar    [][]float64
	TiedCov    [][]float64
	FullCov    [][][]float64
	LogLik     float64
	BIC        float64
	Converged  bool
	Iterations int
	Seed       int64
}

func denserows(m *mat.Dense) [][]float64 {
	if m == nil {
		return nil
	}
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		copy(rows[i], m.RawRowView(i))
	}
	return rows
}

func symrows(s *mat.SymDense) [][]float64 {
	if s == nil {
		return nil
	}
	d, _ := s.Dims()
	rows := make([][]float64, d)
	for i := 0; i < d; i++ {
		rows[i] = make([]float64, d)
		for j := 0; j < d; j++ {
			rows[i][j] = s.At(i, j)
		}
	}
	return rows
}

func rowsintosym(rows [][]float64) *mat.SymDense {
	if rows == nil {
		return nil
	}
	d := len(rows)
	s := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			s.SetSym(i, j, rows[i][j])
		}
	}
	return s
}

func (m *Mixture) ToSnapshot() *Snapshot {
	s := &Snapshot{
		K:          m.K,
		Dim:        m.Dim,
		Covariance: string(m.Covariance),
		Weights:    m.Weights,
		Means:      denserows(m.Means),
		SphVar:     m.SphVar,
		DiagVar:    denserows(m.DiagVar),
		TiedCov:    symrows(m.TiedCov),
		LogLik:     m.LogLik,
		BIC:        m.BIC,
		Converged:  m.Converged,
		Iterations: m.Iterations,
		Seed:       m.Seed,
	}
	for _, cv := range m.FullCov {
		s.FullCov = append(s.FullCov, symrows(cv))
	}
	return s
}

func FromSnapshot(s *Snapshot) (*Mixture, error) {
	cov, err := ParseCovariance(s.Covariance)
	if err != nil {
		return nil, fmt.Errorf("corrupt mixture snapshot: %w", err)
	}
	if len(s.Means) != s.K {
		return nil, fmt.Errorf("corrupt mixture snapshot: %d means for %d components", len(s.Means), s.K)
	}

	m := &Mixture{
		K:          s.K,
		Dim:        s.Dim,
		Covariance: cov,
		Weights:    s.Weights,
		Means:      mat.NewDense(s.K, s.Dim, nil),
		SphVar:     s.SphVar,
		TiedCov:    rowsintosym(s.TiedCov),
		LogLik:     s.LogLik,
		BIC:        s.BIC,
		Converged:  s.Converged,
		Iterations: s.Iterations,
		Seed:       s.Seed,
	}
	for i, row := range s.Means {
		m.Means.SetRow(i, row)
	}
	if s.DiagVar != nil {
		m.DiagVar = mat.NewDense(s.K, s.Dim, nil)
		for i, row := range s.DiagVar {
			m.DiagVar.SetRow(i, row)
		}
	}
	for _, rows := range s.FullCov {
		m.FullCov = append(m.FullCov, rowsintosym(rows))
	}
	return m, nil
}
