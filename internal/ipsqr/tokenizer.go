package ipsqr

import "strings"

const (
	segmentSeparator = "|"
	tagSeparator     = ":"
)

// Token is one TAG:VALUE segment of a payload.
type Token struct {
	Tag   string
	Value string
}

// Tokenize splits a raw payload into tag/value pairs.
//
// Segments are split on the first ':' only, a segment without ':' has an empty
// value and empty segments come through as an empty tag. When a tag repeats the
// later value wins but the pair keeps the position of the first occurrence.
// Tokenize never fails.
func Tokenize(raw string) []Token {
	segments := strings.Split(raw, segmentSeparator)

	tokens := make([]Token, 0, len(segments))
	seen := make(map[string]int, len(segments))
	for _, segment := range segments {
		tag, value, _ := strings.Cut(segment, tagSeparator)

		if i, ok := seen[tag]; ok {
			tokens[i].Value = value
			continue
		}
		seen[tag] = len(tokens)
		tokens = append(tokens, Token{Tag: tag, Value: value})
	}
	return tokens
}
