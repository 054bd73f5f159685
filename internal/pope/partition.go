// internal/pope/partition.go
package pope

import (
	"errors"
	"fmt"
	"math/rand"
)

const (
	// editPoolSize is the positional prefix reserved for deriving the edit.
	editPoolSize = 2000
	// editSampleSize is how many edit-pool records feed the editor.
	editSampleSize = 1000
	// testSampleSize is how many holdout records are evaluated.
	testSampleSize = 500
)

// ErrInsufficientData indicates the benchmark is too small to partition.
var ErrInsufficientData = errors.New("pope: insufficient records to partition")

// Partition holds the two disjoint sampled id sets for a run. EditSample
// ids come only from the first editPoolSize records by file order;
// TestSample ids only from the rest, so evaluation never sees an example
// that shaped the edit.
type Partition struct {
	EditSample []int
	TestSample []int
}

// sampleWithoutReplacement draws k ids uniformly from pool using rng.
// Order of draws is rng-determined, matching a shuffled prefix.
func sampleWithoutReplacement(rng *rand.Rand, pool []int, k int) []int {
	picked := make([]int, 0, k)
	for _, idx := range rng.Perm(len(pool))[:k] {
		picked = append(picked, pool[idx])
	}
	return picked
}

// NewPartition splits records positionally into edit and holdout pools and
// draws both samples from the supplied generator. The generator is passed
// explicitly so a single seed reproduces the run; draw order is fixed
// (edit sample first, then test sample).
func NewPartition(records []Record, rng *rand.Rand) (Partition, error) {
	if len(records) < editPoolSize+testSampleSize {
		return Partition{}, fmt.Errorf("%w: have %d, need at least %d", ErrInsufficientData, len(records), editPoolSize+testSampleSize)
	}

	ids := make([]int, len(records))
	for i, rec := range records {
		ids[i] = rec.QuestionID
	}

	editPool := ids[:editPoolSize]
	holdoutPool := ids[editPoolSize:]

	return Partition{
		EditSample: sampleWithoutReplacement(rng, editPool, editSampleSize),
		TestSample: sampleWithoutReplacement(rng, holdoutPool, testSampleSize),
	}, nil
}
