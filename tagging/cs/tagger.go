// Package cs implements the Czech part-of-speech tagger. Readings come from
// a finite-state morphological dictionary that is opened on first use and
// kept for the lifetime of the Tagger.
package cs

import (
	"errors"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Mofl2328/languagetool"
)

// tagSeparator joins atomic tags that share a lemma in one dictionary entry,
// e.g. "NNFS1+NNFS4".
const tagSeparator = "+"

// ErrClosed is returned by a Tagger after Close.
var ErrClosed = errors.New("cs: tagger closed")

// Entry is one lemma with its raw, possibly '+'-joined, tag.
type Entry struct {
	Lemma string
	Tag   string
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithDictionary replaces the dictionary loader. open is still called at
// most once, on first use.
func WithDictionary(open func() (Dictionary, error)) Option {
	return func(t *Tagger) {
		t.open = open
	}
}

// Tagger tags Czech sentences. It is safe for concurrent use.
type Tagger struct {
	resourceDir string
	open        func() (Dictionary, error)

	once sync.Once
	dict Dictionary
	err  error
}

var _ languagetool.Tagger = (*Tagger)(nil)

// New returns a tagger reading its dictionary from resourceDir. An empty
// resourceDir means $LANGUAGETOOL_RESOURCES, or "resource" when unset.
// Nothing is read until the first call that needs the dictionary.
func New(resourceDir string, opts ...Option) *Tagger {
	t := &Tagger{resourceDir: resolveResourceDir(resourceDir)}
	t.open = func() (Dictionary, error) {
		return openResource(t.resourceDir)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ResourceDir returns the resource root the tagger reads from.
func (t *Tagger) ResourceDir() string {
	return t.resourceDir
}

// dictionary opens the dictionary exactly once. A failure sticks: later
// calls get the same error without retrying.
func (t *Tagger) dictionary() (Dictionary, error) {
	t.once.Do(func() {
		t.dict, t.err = t.open()
	})
	return t.dict, t.err
}

// Load opens the dictionary now instead of on the first Tag call.
func (t *Tagger) Load() error {
	_, err := t.dictionary()
	return err
}

// Dictionary returns the opened dictionary, opening it if necessary.
func (t *Tagger) Dictionary() (Dictionary, error) {
	return t.dictionary()
}

// Lookup returns the dictionary entries for the exact form word.
func (t *Tagger) Lookup(word string) ([]Entry, error) {
	dict, err := t.dictionary()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range lookup(dict, word) {
		out = append(out, Entry{Lemma: e.lemma, Tag: e.tag})
	}
	return out, nil
}

// Tag returns the readings of each token. Every token gets the readings of
// its exact form followed by those of its lowercase form; a token with
// neither gets a single untagged reading carrying its character offset.
func (t *Tagger) Tag(sentenceTokens []string) ([]languagetool.AnalyzedTokenReadings, error) {
	dict, err := t.dictionary()
	if err != nil {
		return nil, err
	}

	tokenReadings := make([]languagetool.AnalyzedTokenReadings, 0, len(sentenceTokens))
	pos := 0
	for _, word := range sentenceTokens {
		var l []languagetool.AnalyzedToken
		l = appendReadings(l, word, lookup(dict, word))
		if lower := strings.ToLower(word); lower != word {
			l = appendReadings(l, word, lookup(dict, lower))
		}
		if len(l) == 0 {
			l = append(l, languagetool.NewUntaggedToken(word, pos))
		}
		tokenReadings = append(tokenReadings, languagetool.NewAnalyzedTokenReadings(word, pos, l))
		pos += utf8.RuneCountInString(word)
	}
	return tokenReadings, nil
}

// appendReadings adds one reading per atomic tag of every entry. Empty
// atomic tags are dropped.
func appendReadings(l []languagetool.AnalyzedToken, word string, entries []entry) []languagetool.AnalyzedToken {
	for _, e := range entries {
		for _, tag := range strings.Split(e.tag, tagSeparator) {
			if tag == "" {
				continue
			}
			l = append(l, languagetool.NewAnalyzedToken(word, tag, e.lemma))
		}
	}
	return l
}

// TagText tokenizes text as one sentence and tags it.
func (t *Tagger) TagText(text string) ([]languagetool.AnalyzedTokenReadings, error) {
	return t.Tag(languagetool.Tokenize(text))
}

// CreateNullToken returns a bundle with a single untagged reading. It never
// touches the dictionary.
func (t *Tagger) CreateNullToken(token string, startPos int) languagetool.AnalyzedTokenReadings {
	return languagetool.NewNullReadings(token, startPos)
}

// Close releases the dictionary. The tagger must not be used concurrently
// with or after Close; later calls fail with ErrClosed.
func (t *Tagger) Close() error {
	opened := true
	t.once.Do(func() {
		opened = false
	})
	dict := t.dict
	t.dict, t.err = nil, ErrClosed
	if !opened || dict == nil {
		return nil
	}
	if c, ok := dict.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
