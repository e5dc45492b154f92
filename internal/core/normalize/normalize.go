// Package normalize provides the deterministic text normalizer applied to review text
// Pipeline order
// 0 Sanitize drop invalid UTF-8, NUL and control characters
// 1 Strip URLs (http://, https://, www. up to the next whitespace)
// 2 Strip decimal digits
// 3 Lowercase then NFC
// 4 ASCII punctuation to spaces
// 5 Collapse whitespace to single spaces and trim
// 6 Drop stop words
// 7 Replace tokens with their lemma
// The result is stable: Normalize(Normalize(s)) == Normalize(s)
package normalize

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"sentiprep/internal/core/lemma"
	"sentiprep/internal/core/stopwords"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is concurrency safe; the case chain is pooled
type Normalizer struct {
	stop    stopwords.Set
	lemma   lemma.Lemmatizer
	workers int
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithStopwords sets the tokens removed in step 6
func WithStopwords(s stopwords.Set) Option { return func(n *Normalizer) { n.stop = s } }

// WithLemmatizer sets the base lemmatizer used in step 7; it is wrapped by lemma.Guard
func WithLemmatizer(l lemma.Lemmatizer) Option { return func(n *Normalizer) { n.lemma = l } }

// WithWorkers sets how many goroutines Table uses; values below 1 mean 1
func WithWorkers(w int) Option { return func(n *Normalizer) { n.workers = w } }

// New constructs a Normalizer; without options no stop words are removed and tokens are kept as is
func New(opts ...Option) *Normalizer {
	n := &Normalizer{stop: stopwords.Set{}, lemma: lemma.Identity, workers: 1}
	for _, o := range opts {
		o(n)
	}
	if n.stop == nil {
		n.stop = stopwords.Set{}
	}
	if n.lemma == nil {
		n.lemma = lemma.Identity
	}
	if n.workers < 1 {
		n.workers = 1
	}
	n.lemma = lemma.Guard(n.lemma, n.stop.Contains)
	return n
}

// urlRe matches a scheme or www. prefix followed by a run of non-whitespace
// \S in Go is ASCII only, so the class lists the Unicode separators explicitly
var urlRe = regexp.MustCompile(`https?://[^\s\x0B\x{85}\p{Z}]+|www\.[^\s\x0B\x{85}\p{Z}]+`)

// pool of fresh case chains; cases.Caser keeps state between calls
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			cases.Lower(language.Und),
			norm.NFC,
		)
	},
}

// Normalize returns the normalized form of s following the pipeline described above
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// 0 control characters and invalid bytes
	s = Sanitize(s)

	// 1 URLs
	s = urlRe.ReplaceAllLiteralString(s, "")

	// 2 digits
	s = stripDigits(s)

	// 3 lowercase + NFC via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ls, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err == nil {
		s = ls
	} else {
		s = norm.NFC.String(strings.ToLower(s))
	}

	// 4 punctuation
	s = punctToSpace(s)

	// 5 whitespace
	s = collapseSpaces(s)
	if s == "" {
		return ""
	}

	// 6 + 7 stop words then lemmas, token by token
	var b strings.Builder
	b.Grow(len(s))
	for _, tok := range strings.Split(s, " ") {
		if n.stop.Contains(tok) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(n.lemma.Lemma(tok))
	}
	return b.String()
}

// stripDigits deletes every decimal digit rune (Nd), not only ASCII 0-9
func stripDigits(s string) string {
	if strings.IndexFunc(s, unicode.IsDigit) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
}

// isASCIIPunct reports r in !"#$%&'()*+,-./:;<=>?@[\]^_`{|}~
func isASCIIPunct(r rune) bool {
	return r < 0x80 && unicode.IsPrint(r) && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' '
}

// punctToSpace replaces each ASCII punctuation character with one space
func punctToSpace(s string) string {
	if strings.IndexFunc(s, isASCIIPunct) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isASCIIPunct(r) {
			return ' '
		}
		return r
	}, s)
}

// collapseSpaces converts Unicode whitespace runs to a single ASCII space and trims both ends
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
