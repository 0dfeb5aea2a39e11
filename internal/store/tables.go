//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package store

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/VikaNa/pvtm-core/internal/emb"
	"github.com/VikaNa/pvtm-core/internal/topics"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrMissingArtifact - a pretrained model or table was requested but is not on disk
	ErrMissingArtifact = errors.New("missing artifact")
	// ErrDimensionMismatch - a loaded model disagrees with the stored vector matrix
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// TopicsHeader - column order of topics.csv; a persisted contract
var TopicsHeader = []string{"top_words", "top_words_count", "sim_words", "sim_words_prob", "sim_docs_indx", "sim_docs_prob"}

// DocumentsHeader - column order of documents.csv
var DocumentsHeader = []string{"doc_id", "text", "gmm_topics", "gmm_top_topic", "gmm_probas"}

//
// CORPUS
//

// ReadCorpus - one document per line; blank lines are skipped
func ReadCorpus(path string) ([]string, error) {
	const MAXLINE = 10 * 1024 * 1024

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s'", ErrMissingArtifact, path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), MAXLINE)

	var docs []string
	for sc.Scan() {
		t := strings.TrimSpace(sc.Text())
		if t != "" {
			docs = append(docs, t)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading '%s': %w", path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("'%s' contains no documents", path)
	}
	return docs, nil
}

//
// VECTOR MATRICES
//

// WriteVectorsTSV - the raw document-vector matrix: tab-separated, no header
func WriteVectorsTSV(path string, vs *emb.VectorStore) error {
	return writematrixtsv(path, vs.Matrix(), nil)
}

// WriteVectorsWithCenters - the document vectors with the fitted mixture means
// appended as extra rows
func WriteVectorsWithCenters(path string, vs *emb.VectorStore, means *mat.Dense) error {
	return writematrixtsv(path, vs.Matrix(), means)
}

func writematrixtsv(path string, mm ...*mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	for _, m := range mm {
		if m == nil {
			continue
		}
		r, c := m.Dims()
		for i := 0; i < r; i++ {
			rec := make([]string, c)
			for j := 0; j < c; j++ {
				rec[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// ReadVectorsTSV - load a stored vector matrix
func ReadVectorsTSV(path string) (*emb.VectorStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s'", ErrMissingArtifact, path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading '%s': %w", path, err)
	}

	rows := make([][]float64, len(recs))
	for i, rec := range recs {
		rows[i] = make([]float64, len(rec))
		for j, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("'%s' row %d col %d: %w", path, i, j, err)
			}
			rows[i][j] = v
		}
	}
	return emb.NewVectorStore(rows)
}

//
// DOCUMENT AND TOPIC TABLES
//

// WriteDocumentsCSV - one row per document: the serialized probability vector,
// the hard topic, and the hard topic's probability
func WriteDocumentsCSV(path string, docs []string, asg *topics.Assignment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(DocumentsHeader); err != nil {
		return err
	}

	_, k := asg.Probas.Dims()
	for i := 0; i < asg.Count(); i++ {
		probs := make([]float64, k)
		for c := 0; c < k; c++ {
			probs[c] = asg.Probas.At(i, c)
		}
		jp, err := json.Marshal(probs)
		if err != nil {
			return err
		}
		rec := []string{
			strconv.Itoa(i),
			docs[i],
			string(jp),
			strconv.Itoa(asg.Hard[i]),
			strconv.FormatFloat(asg.HardProb[i], 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteTopicsCSV - one row per topic; the six rank-aligned label columns are
// serialized as JSON arrays
func WriteTopicsCSV(path string, descs []topics.Description) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(TopicsHeader); err != nil {
		return err
	}

	cell := func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	}

	for _, d := range descs {
		cols := []any{d.TopWords, d.TopWordCounts, d.SimWords, d.SimWordProbs, d.SimDocsIndx, d.SimDocsProbs}
		rec := make([]string, len(cols))
		for i, c := range cols {
			s, err := cell(c)
			if err != nil {
				return err
			}
			rec[i] = s
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV - a whole csv file; the results server uses this to re-serve tables
func ReadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s'", ErrMissingArtifact, path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	return r.ReadAll()
}
