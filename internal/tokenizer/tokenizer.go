// Package tokenizer provides fast, language-agnostic lexical tokenisation.
// The same pattern is applied at index-build time and at query time so that
// token sets always line up for posting-list intersection. POS tagging and
// any heavier analysis happen upstream during corpus ingestion; this path
// only needs lowercase lexical tokens.
package tokenizer

import "regexp"

// tokenPattern matches runs of alphanumeric characters or single
// non-word, non-space symbols.
var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]+|[^\w\s]`)

// punctuation tokens dropped from the output.
var dropTokens = map[string]struct{}{
	",": {}, ".": {}, ";": {}, ":": {}, "!": {}, "?": {},
	"(": {}, ")": {}, "[": {}, "]": {}, "{": {}, "}": {},
	`"`: {}, "'": {},
}

// Tokenize splits text into lowercase tokens, dropping bare punctuation.
// It is deterministic: the same input always yields the same sequence.
func Tokenize(text string) []string {
	matches := tokenPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, drop := dropTokens[m]; drop {
			continue
		}
		tokens = append(tokens, lower(m))
	}
	return tokens
}

// lower is an ASCII-fast lowercase; the token pattern only produces ASCII
// letter/digit runs or single symbols, so full Unicode folding is not needed
// on the hot path.
func lower(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if c := b[i]; 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
