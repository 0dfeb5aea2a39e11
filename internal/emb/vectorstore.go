//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package emb

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//
// VECTORSTORE
//

// VectorStore - the document-vector matrix: one row per document, index-aligned
// with the corpus; built once and read-only afterwards
type VectorStore struct {
	n    int
	dim  int
	vals []float64 // row-major
}

// NewVectorStore - every row must share one dimensionality
func NewVectorStore(rows [][]float64) (*VectorStore, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no document vectors supplied")
	}
	dim := len(rows[0])
	vals := make([]float64, 0, len(rows)*dim)
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("document %d has dimension %d; expected %d", i, len(r), dim)
		}
		vals = append(vals, r...)
	}
	return &VectorStore{n: len(rows), dim: dim, vals: vals}, nil
}

func (v *VectorStore) Count() int {
	return v.n
}

func (v *VectorStore) Dimension() int {
	return v.dim
}

// Vector - row i; the caller must not modify it
func (v *VectorStore) Vector(i int) []float64 {
	return v.vals[i*v.dim : (i+1)*v.dim]
}

// Matrix - the n×dim matrix; shares the backing array
func (v *VectorStore) Matrix() *mat.Dense {
	return mat.NewDense(v.n, v.dim, v.vals)
}
