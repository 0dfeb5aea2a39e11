//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package topics

import (
	"fmt"
	"sort"

	"github.com/VikaNa/pvtm-core/internal/emb"
	"github.com/VikaNa/pvtm-core/internal/lnch"
	"github.com/e-gun/nlp"
)

var Msg = lnch.NewMessageMakerWithDefaults()

//
// TOPIC LABELING
//

// Description - one topic's labels; the six slices are rank-aligned and their
// persisted column order is a contract
type Description struct {
	Topic         int
	TopWords      []string
	TopWordCounts []int
	SimWords      []string
	SimWordProbs  []float64
	SimDocsIndx   []int
	SimDocsProbs  []float64
	DocCount      int
}

type LabelOptions struct {
	NumWords    int // top-frequency words per topic
	NumSimWords int // nearest vocabulary items per topic
	NumSimDocs  int // nearest documents per topic
}

// Label - describe every topic three ways: the most frequent non-stopword
// tokens of its documents, the vocabulary nearest its center, and the
// documents nearest its center. An empty topic yields empty fields, never an
// error.
func Label(ctr *Centers, docs []string, asg *Assignment, stopwords []string, e *emb.Embedder, opt LabelOptions) []Description {
	const EMPTYMSG = "topic %d has no documents; emitting placeholder labels"

	out := make([]Description, ctr.K)

	for k := 0; k < ctr.K; k++ {
		d := Description{
			Topic:         k,
			TopWords:      []string{},
			TopWordCounts: []int{},
			SimWords:      []string{},
			SimWordProbs:  []float64{},
			SimDocsIndx:   []int{},
			SimDocsProbs:  []float64{},
			DocCount:      ctr.Counts[k],
		}

		if ctr.Empty(k) {
			Msg.Emit(fmt.Sprintf(EMPTYMSG, k), lnch.MSGWARN)
			out[k] = d
			continue
		}

		var members []string
		for i, h := range asg.Hard {
			if h == k {
				members = append(members, docs[i])
			}
		}

		words, counts := topwords(members, stopwords, opt.NumWords)
		d.TopWords = words
		d.TopWordCounts = counts

		for _, nb := range e.SimilarWords(ctr.Mean[k], opt.NumSimWords) {
			d.SimWords = append(d.SimWords, nb.Word)
			d.SimWordProbs = append(d.SimWordProbs, nb.Similarity)
		}
		for _, ds := range e.SimilarDocuments(ctr.Mean[k], opt.NumSimDocs) {
			d.SimDocsIndx = append(d.SimDocsIndx, ds.Index)
			d.SimDocsProbs = append(d.SimDocsProbs, ds.Similarity)
		}

		out[k] = d
	}

	return out
}

// topwords - count the non-stopword tokens of a document group and return the
// num most frequent; ties go to the token first seen. Never pads: fewer than
// num distinct tokens means a shorter list.
func topwords(docs []string, stopwords []string, num int) ([]string, []int) {
	vectoriser := nlp.NewCountVectoriser(stopwords...)
	tdmat, err := vectoriser.FitTransform(docs...)
	if err != nil {
		Msg.Emit(fmt.Sprintf("word counting failed: %v", err), lnch.MSGWARN)
		return []string{}, []int{}
	}

	// the term-document matrix has one row per vocabulary item; the vocabulary
	// index preserves first-occurrence order, which is the tie-break we want
	vocab := make([]string, len(vectoriser.Vocabulary))
	for w, i := range vectoriser.Vocabulary {
		vocab[i] = w
	}

	terms, ndocs := tdmat.Dims()
	counts := make([]int, terms)
	for t := 0; t < terms; t++ {
		for c := 0; c < ndocs; c++ {
			counts[t] += int(tdmat.At(t, c))
		}
	}

	order := make([]int, terms)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return order[i] < order[j]
	})

	if num > terms {
		num = terms
	}
	ws := make([]string, num)
	cs := make([]int, num)
	for i := 0; i < num; i++ {
		ws[i] = vocab[order[i]]
		cs[i] = counts[order[i]]
	}
	return ws, cs
}
