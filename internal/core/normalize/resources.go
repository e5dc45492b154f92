package normalize

import (
	"sync"

	"sentiprep/internal/core/lemma"
	"sentiprep/internal/core/stopwords"
)

// ResourceOptions selects where the one-time resources come from
type ResourceOptions struct {
	// StopwordsFile replaces the embedded English list when set
	StopwordsFile string
}

// Resources holds what the normalizer needs beyond its own code
type Resources struct {
	Stopwords  stopwords.Set
	Lemmatizer lemma.Lemmatizer
}

var (
	resOnce sync.Once
	res     *Resources
	resErr  error
)

// seams
var (
	loadStopwords = stopwords.Load
	loadLemma     = lemma.English
)

// EnsureResources loads stop words and the lemma dictionary once per process.
// Later calls return the same *Resources or the same error and ignore opts
func EnsureResources(opts ResourceOptions) (*Resources, error) {
	resOnce.Do(func() {
		sw, err := loadStopwords(opts.StopwordsFile)
		if err != nil {
			resErr = err
			return
		}
		lm, err := loadLemma()
		if err != nil {
			resErr = err
			return
		}
		res = &Resources{Stopwords: sw, Lemmatizer: lm}
	})
	return res, resErr
}

// FromResources builds a Normalizer over r plus any extra options
func FromResources(r *Resources, opts ...Option) *Normalizer {
	base := make([]Option, 0, len(opts)+2)
	if r != nil {
		base = append(base, WithStopwords(r.Stopwords), WithLemmatizer(r.Lemmatizer))
	}
	return New(append(base, opts...)...)
}

// resetResources clears the once guard; tests only
func resetResources() {
	resOnce = sync.Once{}
	res, resErr = nil, nil
}
