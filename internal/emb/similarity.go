//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package emb

import (
	"math"
	"sort"

	"github.com/e-gun/wego/pkg/search"
	"gonum.org/v1/gonum/floats"
)

//
// SIMILARITY LOOKUPS
//

// DocSim - one document ranked by similarity to a query vector
type DocSim struct {
	Index      int
	Similarity float64
}

func cosine(a []float64, b []float64) float64 {
	na := math.Sqrt(floats.Dot(a, a))
	nb := math.Sqrt(floats.Dot(b, b))
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// SimilarWords - the k vocabulary items nearest a query vector by cosine
// similarity; ties broken by vocabulary index. A zero query yields nothing.
func (e *Embedder) SimilarWords(query []float64, k int) search.Neighbors {
	if floats.Dot(query, query) == 0 {
		return search.Neighbors{}
	}

	type scored struct {
		idx int
		sim float64
	}
	ss := make([]scored, len(e.Words))
	for i, w := range e.Words {
		ss[i] = scored{idx: i, sim: cosine(query, e.wordvecs[w])}
	}
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].sim != ss[j].sim {
			return ss[i].sim > ss[j].sim
		}
		return ss[i].idx < ss[j].idx
	})

	if k > len(ss) {
		k = len(ss)
	}
	nn := make(search.Neighbors, k)
	for i := 0; i < k; i++ {
		nn[i] = search.Neighbor{Word: e.Words[ss[i].idx], Rank: uint(i + 1), Similarity: ss[i].sim}
	}
	return nn
}

// SimilarDocuments - the k documents nearest a query vector by cosine
// similarity; ties broken by document index. A zero query yields nothing.
func (e *Embedder) SimilarDocuments(query []float64, k int) []DocSim {
	if floats.Dot(query, query) == 0 {
		return []DocSim{}
	}

	ss := make([]DocSim, e.Docs.Count())
	for i := 0; i < e.Docs.Count(); i++ {
		ss[i] = DocSim{Index: i, Similarity: cosine(query, e.Docs.Vector(i))}
	}
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Similarity != ss[j].Similarity {
			return ss[i].Similarity > ss[j].Similarity
		}
		return ss[i].Index < ss[j].Index
	})

	if k > len(ss) {
		k = len(ss)
	}
	return ss[:k]
}

// NeighborsOf - nearest neighbors of a vocabulary word via wego's Searcher
func (e *Embedder) NeighborsOf(word string, k int) (search.Neighbors, error) {
	searcher, err := search.New(e.Embs...)
	if err != nil {
		return search.Neighbors{}, err
	}
	return searcher.SearchInternal(word, k)
}
