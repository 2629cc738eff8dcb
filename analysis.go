package languagetool

import (
	"strings"
	"unicode"
)

// AnalyzedToken is one reading of a token: a tag with its lemma, or, when
// the dictionary knows nothing about the token, no tag and the token's
// start position instead of a lemma.
type AnalyzedToken struct {
	// Token is the surface form as it appeared in the sentence.
	Token string `json:"token"`
	// POSTag is the atomic part-of-speech tag; empty means untagged.
	POSTag string `json:"tag,omitempty"`
	// Lemma is the base form. Empty for untagged readings.
	Lemma string `json:"lemma,omitempty"`
	// StartPos is the character offset of Token in the sentence.
	// Only meaningful for untagged readings.
	StartPos int `json:"start_pos,omitempty"`
}

// NewAnalyzedToken returns a tagged reading.
func NewAnalyzedToken(token, posTag, lemma string) AnalyzedToken {
	return AnalyzedToken{Token: token, POSTag: posTag, Lemma: lemma}
}

// NewUntaggedToken returns the reading used when no analysis exists.
func NewUntaggedToken(token string, startPos int) AnalyzedToken {
	return AnalyzedToken{Token: token, StartPos: startPos}
}

// HasPOSTag reports whether the reading carries a tag.
func (t AnalyzedToken) HasPOSTag() bool {
	return t.POSTag != ""
}

// AnalyzedTokenReadings holds every reading of a single token, in the order
// they were found. Readings is never empty for values produced by a Tagger.
type AnalyzedTokenReadings struct {
	// Token is the surface form shared by all readings.
	Token string `json:"token"`
	// StartPos is the character offset of Token in the sentence.
	StartPos int `json:"start_pos"`
	// Readings lists the candidate analyses.
	Readings []AnalyzedToken `json:"readings"`
}

// NewAnalyzedTokenReadings bundles readings of the token at startPos.
func NewAnalyzedTokenReadings(token string, startPos int, readings []AnalyzedToken) AnalyzedTokenReadings {
	return AnalyzedTokenReadings{Token: token, StartPos: startPos, Readings: readings}
}

// NewNullReadings returns a bundle holding a single untagged reading.
// It is used for synthetic tokens such as sentence boundaries.
func NewNullReadings(token string, startPos int) AnalyzedTokenReadings {
	return AnalyzedTokenReadings{
		Token:    token,
		StartPos: startPos,
		Readings: []AnalyzedToken{NewUntaggedToken(token, startPos)},
	}
}

// Len returns the number of readings.
func (r AnalyzedTokenReadings) Len() int {
	return len(r.Readings)
}

// IsTagged reports whether at least one reading carries a tag.
func (r AnalyzedTokenReadings) IsTagged() bool {
	for _, t := range r.Readings {
		if t.HasPOSTag() {
			return true
		}
	}
	return false
}

// HasPOSTag reports whether any reading has exactly tag.
func (r AnalyzedTokenReadings) HasPOSTag(tag string) bool {
	for _, t := range r.Readings {
		if t.POSTag == tag {
			return true
		}
	}
	return false
}

// HasLemma reports whether any reading has exactly lemma.
func (r AnalyzedTokenReadings) HasLemma(lemma string) bool {
	for _, t := range r.Readings {
		if t.HasPOSTag() && t.Lemma == lemma {
			return true
		}
	}
	return false
}

// POSTags returns the tags of the tagged readings, in order.
func (r AnalyzedTokenReadings) POSTags() []string {
	var tags []string
	for _, t := range r.Readings {
		if t.HasPOSTag() {
			tags = append(tags, t.POSTag)
		}
	}
	return tags
}

// Lemmas returns the distinct lemmas of the tagged readings in order of
// first appearance.
func (r AnalyzedTokenReadings) Lemmas() []string {
	var lemmas []string
	seen := make(map[string]bool)
	for _, t := range r.Readings {
		if !t.HasPOSTag() || seen[t.Lemma] {
			continue
		}
		seen[t.Lemma] = true
		lemmas = append(lemmas, t.Lemma)
	}
	return lemmas
}

// IsWhitespace reports whether the token consists only of white space.
func (r AnalyzedTokenReadings) IsWhitespace() bool {
	return r.Token != "" && strings.TrimFunc(r.Token, unicode.IsSpace) == ""
}
