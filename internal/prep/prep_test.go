//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package prep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tt := []struct {
		in   string
		want string
	}{
		{"The Cat, ran!", "the cat ran"},
		{"Hello,   World... 42", "hello world"},
		{"   ", ""},
		{"Schon-gesagt", "schon gesagt"},
	}
	for _, tc := range tt {
		assert.Equal(t, tc.want, Clean(tc.in), tc.in)
	}
}

func TestCleanCorpusKeepsAlignment(t *testing.T) {
	out := CleanCorpus([]string{"One!", "", "Two?"})
	assert.Equal(t, []string{"one", "", "two"}, out)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "cat", "sat"}, Tokens("A cat sat."))
	assert.Empty(t, Tokens("123 456"))
}

func TestStopwords(t *testing.T) {
	en := Stopwords("en")
	_, ok := en["the"]
	assert.True(t, ok)

	de := Stopwords("de")
	_, ok = de["und"]
	assert.True(t, ok)

	// unknown hints fall back to english
	fallback := Stopwords("xx")
	_, ok = fallback["the"]
	assert.True(t, ok)

	assert.NotEmpty(t, StopwordSlice("de"))
}

func TestSniffLanguage(t *testing.T) {
	en := []string{"the cat and the dog were in the house", "they could not see it"}
	de := []string{"der hund und die katze sind in dem haus", "sie können es nicht sehen"}

	assert.Equal(t, "en", SniffLanguage(en))
	assert.Equal(t, "de", SniffLanguage(de))
}
