// Package dist implements data-parallel training of an LDA model.
// Every rank samples its own partition of the corpus against a replica
// of the global model, and at the beginning of each iteration the
// replicas are rebuilt by all-reducing the counts contributed by every
// rank.
package dist

import "fmt"

// DefaultMaxReduceCount is the largest number of elements a single
// all-reduce round carries unless configured otherwise.
const DefaultMaxReduceCount = 1 << 22

// AllReducer is a group of Size() processes.  AllReduceInt64 and
// AllReduceFloat64 block until every member of the group has
// contributed a buffer of the same length, and then overwrite each
// buffer with the element-wise sum of all contributions.
type AllReducer interface {
	Rank() int
	Size() int
	AllReduceInt64(buf []int64) error
	AllReduceFloat64(buf []float64) error
}

// AllReduceChunked all-reduces buf in rounds of at most maxCount
// elements.  All members must call it with buffers of equal length
// and the same maxCount.  A non-positive maxCount means
// DefaultMaxReduceCount.
func AllReduceChunked(r AllReducer, buf []int64, maxCount int) error {
	if maxCount <= 0 {
		maxCount = DefaultMaxReduceCount
	}
	if len(buf) == 0 {
		return nil
	}
	chunks := (len(buf) + maxCount - 1) / maxCount
	for _, c := range NewSharder(chunks).Ranges(len(buf)) {
		if e := r.AllReduceInt64(buf[c[0]:c[1]]); e != nil {
			return fmt.Errorf("all-reduce of elements [%d, %d): %w", c[0], c[1], e)
		}
	}
	return nil
}
