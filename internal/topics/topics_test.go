//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package topics

import (
	"testing"

	"github.com/VikaNa/pvtm-core/internal/emb"
	"github.com/VikaNa/pvtm-core/internal/gmm"
	"github.com/e-gun/wego/pkg/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// toymixture - a hand-built spherical mixture with one component per row of means
func toymixture(means [][]float64) *gmm.Mixture {
	k := len(means)
	d := len(means[0])
	m := &gmm.Mixture{
		K:          k,
		Dim:        d,
		Covariance: gmm.Spherical,
		Weights:    make([]float64, k),
		Means:      mat.NewDense(k, d, nil),
		SphVar:     make([]float64, k),
	}
	for c := 0; c < k; c++ {
		m.Weights[c] = 1 / float64(k)
		m.Means.SetRow(c, means[c])
		m.SphVar[c] = 0.5
	}
	return m
}

func toyvectors(t *testing.T) *emb.VectorStore {
	t.Helper()
	vs, err := emb.NewVectorStore([][]float64{
		{0, 0},
		{0.1, 0.1},
		{5, 5},
	})
	require.NoError(t, err)
	return vs
}

func TestAssignSoftAndHard(t *testing.T) {
	m := toymixture([][]float64{{0, 0}, {5, 5}})
	vs := toyvectors(t)

	asg, ctr, err := Assign(m, vs)
	require.NoError(t, err)

	for i := 0; i < asg.Count(); i++ {
		sum := 0.0
		for k := 0; k < asg.Topics(); k++ {
			sum += asg.Probas.At(i, k)
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "row %d", i)
		assert.InDelta(t, asg.Probas.At(i, asg.Hard[i]), asg.HardProb[i], 1e-12)
	}

	assert.Equal(t, []int{0, 0, 1}, asg.Hard)
	assert.Equal(t, []int{2, 1}, ctr.Counts)

	// empirical centers, not the gaussian means
	assert.InDelta(t, 0.05, ctr.Mean[0][0], 1e-12)
	assert.InDelta(t, 0.05, ctr.Mean[0][1], 1e-12)
	assert.InDelta(t, 5.0, ctr.Mean[1][0], 1e-12)
}

func TestAssignIsIdempotent(t *testing.T) {
	m := toymixture([][]float64{{0, 0}, {5, 5}})
	vs := toyvectors(t)

	_, a, err := Assign(m, vs)
	require.NoError(t, err)
	_, b, err := Assign(m, vs)
	require.NoError(t, err)

	assert.Equal(t, a.Mean, b.Mean)
	assert.Equal(t, a.Counts, b.Counts)
}

func TestAssignKeepsEmptyTopics(t *testing.T) {
	// nothing lives anywhere near (100, 100)
	m := toymixture([][]float64{{0, 0}, {5, 5}, {100, 100}})
	vs := toyvectors(t)

	_, ctr, err := Assign(m, vs)
	require.NoError(t, err)

	assert.True(t, ctr.Empty(2))
	assert.Equal(t, []float64{0, 0}, ctr.Mean[2])
}

func toyembedder(t *testing.T, corpus []string) *emb.Embedder {
	t.Helper()
	embs := embedding.Embeddings{
		{Word: "cat", Dim: 2, Vector: []float64{0.1, 0}},
		{Word: "dog", Dim: 2, Vector: []float64{0, 0.1}},
		{Word: "car", Dim: 2, Vector: []float64{5, 4}},
		{Word: "road", Dim: 2, Vector: []float64{4, 5}},
	}
	e, err := emb.FromEmbeddings(embs, corpus)
	require.NoError(t, err)
	return e
}

func TestLabelDescribesTopics(t *testing.T) {
	corpus := []string{"cat dog", "dog dog cat", "car car road"}
	m := toymixture([][]float64{{0, 0}, {5, 5}})
	e := toyembedder(t, corpus)

	asg, ctr, err := Assign(m, e.Docs)
	require.NoError(t, err)

	descs := Label(ctr, corpus, asg, []string{"the", "a"}, e, LabelOptions{
		NumWords:    50,
		NumSimWords: 2,
		NumSimDocs:  2,
	})
	require.Len(t, descs, 2)

	// the animal topic: dog appears three times, cat twice
	assert.Equal(t, []string{"dog", "cat"}, descs[0].TopWords)
	assert.Equal(t, []int{3, 2}, descs[0].TopWordCounts)

	// the traffic topic
	assert.Equal(t, []string{"car", "road"}, descs[1].TopWords)
	assert.Equal(t, []int{2, 1}, descs[1].TopWordCounts)
	assert.Equal(t, 1, descs[1].DocCount)

	for _, d := range descs {
		assert.LessOrEqual(t, len(d.SimWords), 2)
		assert.Len(t, d.SimWordProbs, len(d.SimWords))
		assert.LessOrEqual(t, len(d.SimDocsIndx), 2)
		assert.Len(t, d.SimDocsProbs, len(d.SimDocsIndx))
	}
}

func TestLabelExcludesStopwords(t *testing.T) {
	corpus := []string{"the cat the dog", "the dog"}
	m := toymixture([][]float64{{0, 0.1}})
	e := toyembedder(t, corpus)

	asg, ctr, err := Assign(m, e.Docs)
	require.NoError(t, err)

	descs := Label(ctr, corpus, asg, []string{"the"}, e, LabelOptions{NumWords: 50, NumSimWords: 1, NumSimDocs: 1})
	require.Len(t, descs, 1)
	assert.NotContains(t, descs[0].TopWords, "the")
	assert.Contains(t, descs[0].TopWords, "dog")
}

func TestLabelCapsTheListLengths(t *testing.T) {
	corpus := []string{"cat dog", "dog dog cat", "car car road"}
	m := toymixture([][]float64{{0, 0}, {5, 5}})
	e := toyembedder(t, corpus)

	asg, ctr, err := Assign(m, e.Docs)
	require.NoError(t, err)

	descs := Label(ctr, corpus, asg, nil, e, LabelOptions{NumWords: 1, NumSimWords: 1, NumSimDocs: 1})
	for _, d := range descs {
		assert.LessOrEqual(t, len(d.TopWords), 1)
		assert.LessOrEqual(t, len(d.SimWords), 1)
		assert.LessOrEqual(t, len(d.SimDocsIndx), 1)
	}
}

func TestLabelToleratesEmptyTopics(t *testing.T) {
	corpus := []string{"cat dog", "dog dog cat", "car car road"}
	m := toymixture([][]float64{{0, 0}, {5, 5}, {100, 100}})
	e := toyembedder(t, corpus)

	asg, ctr, err := Assign(m, e.Docs)
	require.NoError(t, err)
	require.True(t, ctr.Empty(2))

	descs := Label(ctr, corpus, asg, nil, e, LabelOptions{NumWords: 10, NumSimWords: 2, NumSimDocs: 2})
	require.Len(t, descs, 3)

	assert.Empty(t, descs[2].TopWords)
	assert.Empty(t, descs[2].SimWords)
	assert.Empty(t, descs[2].SimDocsIndx)
	assert.Equal(t, 0, descs[2].DocCount)
}
