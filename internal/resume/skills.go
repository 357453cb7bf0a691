package resume

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Vocabulary is the fixed keyword list matched against résumé text. Entries
// are lower case. Matching is plain substring containment, so "java" also
// matches "javascript"; bare "go" is left out because it matches almost any
// English text.
var Vocabulary = []string{
	"javascript",
	"typescript",
	"python",
	"java",
	"c++",
	"c#",
	"golang",
	"rust",
	"react",
	"angular",
	"vue",
	"node.js",
	"express",
	"django",
	"flask",
	"spring",
	"html",
	"css",
	"tailwind",
	"sql",
	"mongodb",
	"postgresql",
	"mysql",
	"redis",
	"graphql",
	"docker",
	"kubernetes",
	"aws",
	"azure",
	"gcp",
	"git",
	"linux",
	"machine learning",
	"deep learning",
	"data analysis",
	"figma",
}

// Normalize folds text for matching: NFKC (so full-width and ligature forms
// compare equal to ASCII) followed by lower-casing.
func Normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

// MatchSkills returns the vocabulary entries contained in text, in
// vocabulary order and without duplicates. The result is never nil.
func MatchSkills(text string) []string {
	folded := Normalize(text)
	out := make([]string, 0, 8)
	for _, kw := range Vocabulary {
		if strings.Contains(folded, kw) {
			out = append(out, kw)
		}
	}
	return out
}
