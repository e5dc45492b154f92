// Package stopwords provides the stop-word sets removed during text normalization.
// The English set is the NLTK list embedded in the binary
package stopwords

import (
	"bufio"
	"bytes"
	_ "embed"
	"io"
	"os"
	"strings"

	perr "sentiprep/internal/platform/errors"
)

//go:embed english.txt
var english []byte

// Set is an exact-match token set
type Set map[string]struct{}

// Contains reports whether w is in the set
func (s Set) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

// Len is the number of words
func (s Set) Len() int { return len(s) }

// Of builds a Set from words
func Of(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// English returns a fresh copy of the embedded English set
func English() Set {
	s, _ := Parse(bytes.NewReader(english))
	return s
}

// Parse reads one word per line; blank lines and lines starting with # are skipped
// words are trimmed but otherwise kept verbatim
func Parse(r io.Reader) (Set, error) {
	s := Set{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		s[w] = struct{}{}
	}
	return s, sc.Err()
}

// Load returns English when path is empty, otherwise the set read from path
func Load(path string) (Set, error) {
	if path == "" {
		return English(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open stop words %s", path), "stopwords_file")
	}
	defer func() { _ = f.Close() }()
	s, err := Parse(f)
	if err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read stop words %s", path), "stopwords_file")
	}
	return s, nil
}
