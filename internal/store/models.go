//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package store

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/VikaNa/pvtm-core/internal/emb"
	"github.com/VikaNa/pvtm-core/internal/gmm"
	"github.com/VikaNa/pvtm-core/internal/vv"
)

//
// MODEL FILES (gob + gzip)
//

// EncodeGobGz - gob-encode and then gzip; models are stored as one blob
func EncodeGobGz(v any) ([]byte, error) {
	var gb bytes.Buffer
	if err := gob.NewEncoder(&gb).Encode(v); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err = zw.Write(gb.Bytes()); err != nil {
		return nil, err
	}
	if err = zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeGobGz(b []byte, v any) error {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer zr.Close()
	return gob.NewDecoder(zr).Decode(v)
}

func savegobgz(path string, v any) error {
	b, err := EncodeGobGz(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, vv.WRITEPERMS)
}

func loadgobgz(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: '%s'", ErrMissingArtifact, path)
	}
	if err := DecodeGobGz(b, v); err != nil {
		return fmt.Errorf("decoding '%s': %w", path, err)
	}
	return nil
}

// SaveEmbedder / LoadEmbedder - the trained embedding space + document vectors

func SaveEmbedder(dir string, e *emb.Embedder) error {
	return savegobgz(filepath.Join(dir, vv.EMBMODELFILE), e.ToSnapshot())
}

func LoadEmbedder(dir string) (*emb.Embedder, error) {
	var s emb.Snapshot
	if err := loadgobgz(filepath.Join(dir, vv.EMBMODELFILE), &s); err != nil {
		return nil, err
	}
	return emb.FromSnapshot(&s)
}

// SaveMixture / LoadMixture - the fitted gaussian mixture

func SaveMixture(dir string, m *gmm.Mixture) error {
	return savegobgz(filepath.Join(dir, vv.GMMMODELFILE), m.ToSnapshot())
}

func LoadMixture(dir string) (*gmm.Mixture, error) {
	var s gmm.Snapshot
	if err := loadgobgz(filepath.Join(dir, vv.GMMMODELFILE), &s); err != nil {
		return nil, err
	}
	return gmm.FromSnapshot(&s)
}

// CheckDimensions - cheap up-front guard: a loaded model whose dimension
// disagrees with the vector matrix must stop the run before any clustering
func CheckDimensions(what string, modeldim int, vs *emb.VectorStore) error {
	if modeldim != vs.Dimension() {
		return fmt.Errorf("%w: %s has dimension %d but the vector matrix has %d",
			ErrDimensionMismatch, what, modeldim, vs.Dimension())
	}
	return nil
}
