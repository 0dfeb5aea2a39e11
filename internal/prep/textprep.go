//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package prep

import (
	"strings"
	"unicode"
)

//
// TEXT CLEANING
//

// Clean - lowercase a document and swap punctuation and digits for spaces;
// the result is ready for the vectoriser and the embedding trainer
func Clean(text string) string {
	mapper := func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}
	return strings.Join(strings.Fields(strings.Map(mapper, text)), " ")
}

// CleanCorpus - Clean every document; index alignment with the raw corpus is preserved
func CleanCorpus(docs []string) []string {
	cleaned := make([]string, len(docs))
	for i := 0; i < len(docs); i++ {
		cleaned[i] = Clean(docs[i])
	}
	return cleaned
}

// Tokens - the cleaned tokens of one document
func Tokens(text string) []string {
	return strings.Fields(Clean(text))
}
