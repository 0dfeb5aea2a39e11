//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package store

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/VikaNa/pvtm-core/internal/emb"
	"github.com/VikaNa/pvtm-core/internal/gmm"
	"github.com/VikaNa/pvtm-core/internal/topics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestReadCorpus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.txt")
	require.NoError(t, os.WriteFile(path, []byte("first doc\n\n  \nsecond doc\n"), 0644))

	docs, err := ReadCorpus(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first doc", "second doc"}, docs)
}

func TestReadCorpusMissingFile(t *testing.T) {
	_, err := ReadCorpus(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, ErrMissingArtifact)
}

func TestVectorsTSVRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors.tsv")

	vs, err := emb.NewVectorStore([][]float64{{1.5, -2}, {0, 3.25}})
	require.NoError(t, err)
	require.NoError(t, WriteVectorsTSV(path, vs))

	back, err := ReadVectorsTSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, back.Count())
	assert.Equal(t, 2, back.Dimension())
	assert.Equal(t, vs.Vector(0), back.Vector(0))
	assert.Equal(t, vs.Vector(1), back.Vector(1))
}

func TestVectorsWithCentersAppendsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectors_with_center.tsv")

	vs, err := emb.NewVectorStore([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	means := mat.NewDense(2, 2, []float64{10, 10, 20, 20})

	require.NoError(t, WriteVectorsWithCenters(path, vs, means))

	back, err := ReadVectorsTSV(path)
	require.NoError(t, err)
	assert.Equal(t, 5, back.Count(), "3 documents + 2 centers")
	assert.Equal(t, []float64{20, 20}, back.Vector(4))
}

func TestWriteDocumentsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "documents.csv")

	probas := mat.NewDense(2, 2, []float64{0.9, 0.1, 0.25, 0.75})
	asg := &topics.Assignment{
		Probas:   probas,
		Hard:     []int{0, 1},
		HardProb: []float64{0.9, 0.75},
	}
	require.NoError(t, WriteDocumentsCSV(path, []string{"doc one", "doc two"}, asg))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, recs, 3)
	assert.Equal(t, DocumentsHeader, recs[0])
	assert.Equal(t, "0", recs[1][0])
	assert.Equal(t, "doc one", recs[1][1])
	assert.Equal(t, "1", recs[2][3])

	var probs []float64
	require.NoError(t, json.Unmarshal([]byte(recs[1][2]), &probs))
	assert.Equal(t, []float64{0.9, 0.1}, probs)
}

func TestWriteTopicsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topics.csv")

	descs := []topics.Description{
		{
			Topic:         0,
			TopWords:      []string{"car", "road"},
			TopWordCounts: []int{2, 1},
			SimWords:      []string{"street"},
			SimWordProbs:  []float64{0.9},
			SimDocsIndx:   []int{2},
			SimDocsProbs:  []float64{0.95},
		},
	}
	require.NoError(t, WriteTopicsCSV(path, descs))

	recs, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, TopicsHeader, recs[0])

	var words []string
	require.NoError(t, json.Unmarshal([]byte(recs[1][0]), &words))
	assert.Equal(t, []string{"car", "road"}, words)

	var counts []int
	require.NoError(t, json.Unmarshal([]byte(recs[1][1]), &counts))
	assert.Equal(t, []int{2, 1}, counts)
}

func TestMixtureModelRoundtrip(t *testing.T) {
	dir := t.TempDir()

	m := &gmm.Mixture{
		K:          2,
		Dim:        2,
		Covariance: gmm.Spherical,
		Weights:    []float64{0.5, 0.5},
		Means:      mat.NewDense(2, 2, []float64{0, 0, 5, 5}),
		SphVar:     []float64{0.5, 0.5},
		LogLik:     -12.5,
		BIC:        42.0,
		Converged:  true,
		Iterations: 9,
	}
	require.NoError(t, SaveMixture(dir, m))

	back, err := LoadMixture(dir)
	require.NoError(t, err)
	assert.Equal(t, m.K, back.K)
	assert.Equal(t, m.Covariance, back.Covariance)
	assert.Equal(t, m.BIC, back.BIC)
	assert.True(t, mat.Equal(m.Means, back.Means))
}

func TestLoadMixtureMissing(t *testing.T) {
	_, err := LoadMixture(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingArtifact)
}

func TestLoadEmbedderMissing(t *testing.T) {
	_, err := LoadEmbedder(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingArtifact)
}

func TestCheckDimensions(t *testing.T) {
	vs, err := emb.NewVectorStore([][]float64{{1, 2, 3}})
	require.NoError(t, err)

	assert.NoError(t, CheckDimensions("model", 3, vs))
	assert.ErrorIs(t, CheckDimensions("model", 5, vs), ErrDimensionMismatch)
}

func TestVault(t *testing.T) {
	v, err := OpenVault(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	defer v.Close()

	fp := Fingerprint("input.txt", "w2v", "100")
	assert.False(t, v.Check(fp, "embeddings"))

	payload := []byte("blob")
	require.NoError(t, v.Add(fp, "embeddings", "run1", payload))
	assert.True(t, v.Check(fp, "embeddings"))
	assert.False(t, v.Check(fp, "gmm"), "kinds are independent")

	got, err := v.Fetch(fp, "embeddings")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = v.Fetch(fp, "gmm")
	assert.ErrorIs(t, err, ErrMissingArtifact)

	// same key again replaces the payload
	require.NoError(t, v.Add(fp, "embeddings", "run2", []byte("blob2")))
	got, err = v.Fetch(fp, "embeddings")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob2"), got)
}

func TestFingerprintIsStable(t *testing.T) {
	a := Fingerprint("x", "y")
	b := Fingerprint("x", "y")
	c := Fingerprint("x", "z")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
