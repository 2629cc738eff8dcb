// Package languagetool holds the types shared by the per-language
// dictionary taggers: analyzed tokens, their reading bundles, the Tagger
// contract and the sentence tokenizer feeding it.
package languagetool

import (
	"errors"
	"fmt"
)

// Tagger assigns readings to the tokens of one sentence.
//
// Tag returns one bundle per input token, in input order. It fails only when
// the tagger's resources cannot be loaded.
type Tagger interface {
	Tag(sentenceTokens []string) ([]AnalyzedTokenReadings, error)
	CreateNullToken(token string, startPos int) AnalyzedTokenReadings
}

// ErrResource is matched by every ResourceError.
var ErrResource = errors.New("resource error")

// ResourceError reports a dictionary or other tagger resource that could not
// be located, read or validated.
type ResourceError struct {
	Path string // Resolved path of the resource, if known
	Err  error  // Underlying error
}

func (e *ResourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load resource %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load resource: %v", e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrResource) hold for every ResourceError.
func (e *ResourceError) Is(target error) bool {
	return target == ErrResource
}
