//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package prep

import (
	"strings"

	"github.com/VikaNa/pvtm-core/internal/gen"
)

//
// STOPWORDS
//

var (
	// English100 - high-frequency english words; tokens are matched lowercase
	English100 = []string{"the", "of", "and", "a", "to", "in", "is", "you", "that", "it", "he", "was", "for", "on",
		"are", "as", "with", "his", "they", "i", "at", "be", "this", "have", "from", "or", "one", "had", "by",
		"word", "but", "not", "what", "all", "were", "we", "when", "your", "can", "said", "there", "use", "an",
		"each", "which", "she", "do", "how", "their", "if", "will", "up", "other", "about", "out", "many", "then",
		"them", "these", "so", "some", "her", "would", "make", "like", "him", "into", "time", "has", "look", "two",
		"more", "write", "go", "see", "no", "way", "could", "my", "than", "been", "who", "its", "now", "did", "get",
		"come", "made", "may", "part", "over", "new", "also", "after", "us", "our", "me", "just", "where", "most",
		"such"}
	EnglishExtra = []string{"s", "t", "d", "ll", "re", "ve", "m", "very", "any", "because", "does", "doing",
		"during", "before", "between", "both", "only", "own", "same", "too", "under", "until", "while", "again",
		"against", "further", "here", "once", "those", "through"}
	EnglishStop = append(English100, EnglishExtra...)

	// German100 - high-frequency german words
	German100 = []string{"der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich", "des", "auf", "für",
		"ist", "im", "dem", "nicht", "ein", "eine", "als", "auch", "es", "an", "werden", "aus", "er", "hat", "dass",
		"sie", "nach", "wird", "bei", "einer", "um", "am", "sind", "noch", "wie", "einem", "über", "einen", "so",
		"zum", "war", "haben", "nur", "oder", "aber", "vor", "zur", "bis", "mehr", "durch", "man", "sein", "wurde",
		"sei", "wir", "was", "ich", "kann", "ihre", "dann", "unter", "wieder", "schon", "diese", "dieser", "seiner",
		"alle", "wenn", "gegen", "vom", "können", "hatte", "ihr", "seine", "muss", "doch", "jetzt", "sehr", "ohne",
		"eines", "zwei", "heute", "damit", "keine", "ihrer", "weil", "ihm", "ihn", "uns", "da", "beim", "allen",
		"waren", "will", "zwischen", "immer", "also"}
	GermanExtra = []string{"etwa", "dabei", "dazu", "denen", "deren", "dessen", "diesem", "diesen", "dieses",
		"einige", "hier", "jedoch", "könnte", "machen", "mich", "müssen", "nie", "seit", "sollte", "viele",
		"während", "würde"}
	GermanStop = append(German100, GermanExtra...)

	englishSet = gen.ToSet(EnglishStop)
	germanSet  = gen.ToSet(GermanStop)
)

// Stopwords - the stopword set for a language hint; unknown hints fall back to english
func Stopwords(language string) map[string]struct{} {
	switch language {
	case "de":
		return germanSet
	default:
		return englishSet
	}
}

// StopwordSlice - the same set as a slice; this is what a CountVectoriser wants
func StopwordSlice(language string) []string {
	return gen.StringMapKeysIntoSlice(Stopwords(language))
}

// SniffLanguage - guess "en" or "de" from sample text: the language whose
// stopword list scores the most token hits wins
func SniffLanguage(sample []string) string {
	hits := func(set map[string]struct{}) int {
		n := 0
		for _, s := range sample {
			for _, w := range strings.Fields(s) {
				if _, ok := set[strings.ToLower(w)]; ok {
					n += 1
				}
			}
		}
		return n
	}

	if hits(germanSet) > hits(englishSet) {
		return "de"
	}
	return "en"
}
