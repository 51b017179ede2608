package dist

import "fmt"

// Sharder defines a sequence of fixed number of buckets, and the
// allocation of a zero-based sequence of integers into these buckets.
type Sharder struct {
	Shards int
}

func NewSharder(shards int) Sharder {
	if shards <= 0 {
		panic(fmt.Sprintf("shards (%d) <= 0", shards))
	}
	return Sharder{shards}
}

// Shard returns the bucket that owns the index-th document.  Documents
// are dealt round-robin, so every bucket sees a similar mix of the
// corpus.
func (s Sharder) Shard(index int) int {
	if index < 0 {
		panic(fmt.Sprintf("index (%d) < 0", index))
	}
	return index % s.Shards
}

// Ranges divides [0, n) into contiguous ranges of similar size, one
// for each bucket.  The first n%Shards ranges are one element longer
// than the rest.  If n < Shards, only n ranges are returned.
func (s Sharder) Ranges(n int) [][2]int {
	if n <= 0 {
		return nil
	}
	b := s.Shards
	if n < b {
		b = n
	}
	bucketSize := n / b
	extendedBuckets := n % b

	r := make([][2]int, 0, b)
	begin := 0
	for j := 0; j < b; j++ {
		size := bucketSize
		if j < extendedBuckets {
			size++
		}
		r = append(r, [2]int{begin, begin + size})
		begin += size
	}
	return r
}
