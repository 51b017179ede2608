package hist

import (
	"fmt"
	"math"
)

// Dense is a plain histogram represented by a count array.  Indexing
// is bounds-checked by the Go runtime, so a Dense taken as a
// sub-slice of a larger buffer cannot reach its neighbours.
type Dense []int64

func NewDense(dim int) Dense {
	return make(Dense, dim, dim)
}

func (d Dense) At(topic int) int64 {
	return d[topic]
}

func (d Dense) Inc(topic, count int) {
	if count < 0 {
		panic(fmt.Sprintf("count (%d) is negative", count))
	}
	d.Add(topic, int64(count))
}

func (d Dense) Dec(topic, count int) {
	if count < 0 {
		panic(fmt.Sprintf("count (%d) is negative", count))
	}
	d.Add(topic, -int64(count))
}

// Add adds a signed delta to d[topic] and returns the new value.  It
// panics if the cell would overflow or become negative.
func (d Dense) Add(topic int, delta int64) int64 {
	if delta > 0 && d[topic] > math.MaxInt64-delta {
		panic(fmt.Sprintf("d[%d] = %d overflow", topic, d[topic]))
	}
	if d[topic]+delta < 0 {
		panic(fmt.Sprintf("d[%d] = %d, adding %d makes it negative",
			topic, d[topic], delta))
	}
	d[topic] += delta
	return d[topic]
}

func (d Dense) Len() int {
	return len(d)
}

// Sum returns the total count over all topics.
func (d Dense) Sum() int64 {
	var s int64
	for _, v := range d {
		s += v
	}
	return s
}

func (d Dense) ForEach(p func(topic int, count int64) error) error {
	for i, v := range d {
		if e := p(i, v); e != nil {
			return e
		}
	}
	return nil
}

func (d Dense) Clone() Dense {
	n := NewDense(d.Len())
	copy(n, d)
	return n
}
