// Package lemma maps surface-form tokens to dictionary base forms
package lemma

import (
	"unicode"

	perr "sentiprep/internal/platform/errors"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer returns the base form of a word, or the word itself when unknown
type Lemmatizer interface {
	Lemma(word string) string
}

// Func adapts a function to Lemmatizer
type Func func(string) string

// Lemma implements Lemmatizer
func (f Func) Lemma(w string) string { return f(w) }

// Identity leaves every word unchanged
var Identity Lemmatizer = Func(func(w string) string { return w })

// Dictionary is a lemma lookup that does not distinguish parts of speech
type Dictionary interface {
	Lemma(word string) string
	InDict(word string) bool
}

var newDict = func() (Dictionary, error) { return golem.New(en.New()) } // seam

// English loads the golem English dictionary and lemmatizes as nouns against it
func English() (Lemmatizer, error) {
	d, err := newDict()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "load english lemma dictionary")
	}
	return Noun(d), nil
}

// maxChain bounds how far Guard follows lemma-of-lemma chains
const maxChain = 4

// Guard wraps base so that its output is stable under re-application.
// A lemma is accepted only when it consists of lowercase letters, is not rejected by skip,
// and base maps it to itself; otherwise the word is returned unchanged
func Guard(base Lemmatizer, skip func(string) bool) Lemmatizer {
	return &guarded{base: base, skip: skip}
}

type guarded struct {
	base Lemmatizer
	skip func(string) bool
}

func (g *guarded) Lemma(w string) string {
	l := g.base.Lemma(w)
	if l == w || l == "" {
		return w
	}
	// follow short chains such as a -> b -> b
	for i := 0; i < maxChain; i++ {
		next := g.base.Lemma(l)
		if next == l || next == "" {
			break
		}
		l = next
	}
	if g.base.Lemma(l) != l || !lowerLetters(l) {
		return w
	}
	if g.skip != nil && g.skip(l) {
		return w
	}
	return l
}

func lowerLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) || !unicode.IsLower(r) {
			return false
		}
	}
	return s != ""
}
