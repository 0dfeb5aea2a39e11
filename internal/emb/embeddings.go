//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package emb

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/VikaNa/pvtm-core/internal/lnch"
	"github.com/e-gun/wego/pkg/embedding"
	"github.com/e-gun/wego/pkg/model"
	"github.com/e-gun/wego/pkg/model/glove"
	"github.com/e-gun/wego/pkg/model/lexvec"
	"github.com/e-gun/wego/pkg/model/modelutil/vector"
	"github.com/e-gun/wego/pkg/model/word2vec"
)

var Msg = lnch.NewMessageMakerWithDefaults()

//
// EMBEDDING TRAINING
//

// Options - what the trainer needs to know; everything else stays at the
// defaults below
type Options struct {
	ModelType string // "w2v", "glove", "lexvec"
	Dim       int
	Epochs    int
	Verbose   bool
}

var (
	DefaultW2VVectors = word2vec.Options{
		BatchSize:          1024,
		Dim:                100,
		DocInMemory:        true,
		Goroutines:         20,
		Initlr:             0.025,
		Iter:               10,
		LogBatch:           100000,
		MaxCount:           -1,
		MaxDepth:           150,
		MinCount:           2,
		MinLR:              0.0000025,
		ModelType:          "skipgram", // "cbow" and "skipgram" available; "cbow" results are not so hot
		NegativeSampleSize: 5,
		OptimizerType:      "hs",
		SubsampleThreshold: 0.001,
		ToLower:            false,
		UpdateLRBatch:      100000,
		Verbose:            false,
		Window:             8,
	}
	DefaultGloveVectors = glove.Options{
		// see also: https://nlp.stanford.edu/projects/glove/
		Alpha:              0.55,
		BatchSize:          1024,
		CountType:          "inc", // "inc", "prox" available; but we panic on "prox"
		Dim:                100,
		DocInMemory:        true,
		Goroutines:         20,
		Initlr:             0.025,
		Iter:               10,
		LogBatch:           100000,
		MaxCount:           -1,
		MinCount:           2,
		SolverType:         "adagrad", // "sdg", "adagrad" available
		SubsampleThreshold: 0.001,
		ToLower:            false,
		Verbose:            false,
		Window:             8,
		Xmax:               90,
	}
	DefaultLexVecVectors = lexvec.Options{
		BatchSize:          1024,
		Dim:                100,
		DocInMemory:        true,
		Goroutines:         20,
		Initlr:             0.025,
		Iter:               10,
		LogBatch:           100000,
		MaxCount:           -1,
		MinCount:           2,
		MinLR:              0.025 * 1.0e-4,
		NegativeSampleSize: 5,
		RelationType:       "ppmi", // "ppmi", "pmi", "co", "logco" are available; "co" will fail to model
		Smooth:             0.75,
		SubsampleThreshold: 1.0e-3,
		ToLower:            false,
		UpdateLRBatch:      100000,
		Verbose:            false,
		Window:             8,
	}
)

// Embedder - the trained embedding space plus the per-document vectors derived
// from it; this is everything the clustering and labeling stages consume
type Embedder struct {
	Dim      int
	Words    []string // vocabulary in embedding order
	Embs     embedding.Embeddings
	wordvecs map[string][]float64
	Docs     *VectorStore
}

func (e *Embedder) Vocabulary() []string {
	return e.Words
}

func (e *Embedder) WordVector(w string) ([]float64, bool) {
	v, ok := e.wordvecs[w]
	return v, ok
}

// Train - train word vectors on the cleaned corpus and average them into
// document vectors; a document with no in-vocabulary token gets a zero vector
func Train(cfg Options, corpus []string) (*Embedder, error) {
	const (
		FAIL1 = "model initialization failed: %w"
		FAIL2 = "failed to train vector embeddings: %w"
		FAIL3 = "training produced an empty vocabulary"
		MSG1  = "trained a %s model: %d words, %d dimensions"
	)

	thetext := strings.Join(corpus, "\n")

	// [a] vectorize the text block

	var vmodel model.Model

	switch cfg.ModelType {
	case "glove":
		o := DefaultGloveVectors
		o.Dim = cfg.Dim
		o.Iter = cfg.Epochs
		o.Verbose = cfg.Verbose
		m, err := glove.NewForOptions(o)
		if err != nil {
			return nil, fmt.Errorf(FAIL1, err)
		}
		vmodel = m
	case "lexvec":
		o := DefaultLexVecVectors
		o.Dim = cfg.Dim
		o.Iter = cfg.Epochs
		o.Verbose = cfg.Verbose
		m, err := lexvec.NewForOptions(o)
		if err != nil {
			return nil, fmt.Errorf(FAIL1, err)
		}
		vmodel = m
	default:
		o := DefaultW2VVectors
		o.Dim = cfg.Dim
		o.Iter = cfg.Epochs
		o.Verbose = cfg.Verbose
		m, err := word2vec.NewForOptions(o)
		if err != nil {
			return nil, fmt.Errorf(FAIL1, err)
		}
		vmodel = m
	}

	if err := vmodel.Train(bytes.NewReader([]byte(thetext))); err != nil {
		return nil, fmt.Errorf(FAIL2, err)
	}

	// [b] use buffers; skip the disk: Save() and then Load() the embeddings back

	var buf bytes.Buffer
	w := io.Writer(&buf)
	if err := vmodel.Save(w, vector.Agg); err != nil {
		return nil, fmt.Errorf(FAIL2, err)
	}

	r := io.Reader(&buf)
	embs, err := embedding.Load(r)
	if err != nil {
		return nil, fmt.Errorf(FAIL2, err)
	}

	if len(embs) == 0 {
		return nil, fmt.Errorf(FAIL3)
	}

	e, err := FromEmbeddings(embs, corpus)
	if err != nil {
		return nil, err
	}

	Msg.Emit(fmt.Sprintf(MSG1, cfg.ModelType, len(e.Words), e.Dim), lnch.MSGFYI)
	return e, nil
}

// FromEmbeddings - assemble an Embedder from word embeddings plus the corpus
// the document vectors should cover
func FromEmbeddings(embs embedding.Embeddings, corpus []string) (*Embedder, error) {
	if len(embs) == 0 {
		return nil, fmt.Errorf("no word embeddings supplied")
	}

	dim := embs[0].Dim
	words := make([]string, len(embs))
	wordvecs := make(map[string][]float64, len(embs))
	for i, em := range embs {
		if em.Dim != dim {
			return nil, fmt.Errorf("embedding for '%s' has dimension %d; expected %d", em.Word, em.Dim, dim)
		}
		words[i] = em.Word
		wordvecs[em.Word] = em.Vector
	}

	docvecs := make([][]float64, len(corpus))
	for i, doc := range corpus {
		dv := make([]float64, dim)
		seen := 0
		for _, tok := range strings.Fields(doc) {
			wv, ok := wordvecs[tok]
			if !ok {
				continue
			}
			for j := 0; j < dim; j++ {
				dv[j] += wv[j]
			}
			seen += 1
		}
		if seen > 0 {
			for j := 0; j < dim; j++ {
				dv[j] /= float64(seen)
			}
		}
		docvecs[i] = dv
	}

	vs, err := NewVectorStore(docvecs)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		Dim:      dim,
		Words:    words,
		Embs:     embs,
		wordvecs: wordvecs,
		Docs:     vs,
	}, nil
}

//
// SERIALIZATION
//

// Snapshot - the gob-friendly form of an Embedder
type Snapshot struct {
	Dim     int
	Words   []string
	Vecs    [][]float64
	DocVecs [][]float64
}

func (e *Embedder) ToSnapshot() *Snapshot {
	vecs := make([][]float64, len(e.Words))
	for i, w := range e.Words {
		vecs[i] = e.wordvecs[w]
	}
	dv := make([][]float64, e.Docs.Count())
	for i := 0; i < e.Docs.Count(); i++ {
		dv[i] = e.Docs.Vector(i)
	}
	return &Snapshot{Dim: e.Dim, Words: e.Words, Vecs: vecs, DocVecs: dv}
}

func FromSnapshot(s *Snapshot) (*Embedder, error) {
	if len(s.Words) != len(s.Vecs) {
		return nil, fmt.Errorf("corrupt snapshot: %d words vs %d vectors", len(s.Words), len(s.Vecs))
	}
	embs := make(embedding.Embeddings, len(s.Words))
	wordvecs := make(map[string][]float64, len(s.Words))
	for i, w := range s.Words {
		embs[i] = embedding.Embedding{Word: w, Dim: s.Dim, Vector: s.Vecs[i]}
		wordvecs[w] = s.Vecs[i]
	}
	vs, err := NewVectorStore(s.DocVecs)
	if err != nil {
		return nil, err
	}
	return &Embedder{Dim: s.Dim, Words: s.Words, Embs: embs, wordvecs: wordvecs, Docs: vs}, nil
}
