package languagetool

import "regexp"

// reToken matches, in order of preference, a run of letters/digits
// (with combining marks), a run of white space, or any other single rune.
var reToken = regexp.MustCompile(`[\p{L}\p{M}\p{N}]+|\s+|.`)

// Tokenize splits a sentence into word, white-space and punctuation tokens.
// Concatenating the tokens yields the input again, which keeps the
// character offsets computed by taggers aligned with the text.
func Tokenize(text string) []string {
	return reToken.FindAllString(text, -1)
}
