// Package split partitions a table into seeded, reproducible train and test subsets
package split

import (
	"math"
	"math/rand/v2"

	"sentiprep/internal/core/table"
	perr "sentiprep/internal/platform/errors"
)

// DefaultSeed is used by callers that have no configured seed
const DefaultSeed uint64 = 42

// golden ratio increment; decorrelates the second PCG word from the first
const seedStream = 0x9e3779b97f4a7c15

// Splitter holds the test fraction and the permutation seed
type Splitter struct {
	TestSize float64
	Seed     uint64
}

// TestCount is the number of test rows for n input rows: round(TestSize*n), halves away from zero
func (s Splitter) TestCount(n int) int {
	return int(math.Round(s.TestSize * float64(n)))
}

// Split returns disjoint train and test tables whose union is t
// rows appear in permutation order; the same input, fraction and seed always give the same split
func (s Splitter) Split(t *table.Table) (train, test *table.Table, err error) {
	if !(s.TestSize > 0 && s.TestSize < 1) {
		return nil, nil, perr.WithField(perr.InvalidArgf("test size must be in (0,1), got %v", s.TestSize), "test_size")
	}
	n := t.Len()
	nTest := s.TestCount(n)

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^seedStream))
	perm := rng.Perm(n)

	test, train = t.Like(), t.Like()
	test.Grow(nTest)
	train.Grow(n - nTest)
	for k, i := range perm {
		dst := train
		if k < nTest {
			dst = test
		}
		if err := dst.Append(t.Row(i)); err != nil {
			return nil, nil, err
		}
	}
	return train, test, nil
}
