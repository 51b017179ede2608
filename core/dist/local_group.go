package dist

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAborted is returned by the members of a LocalGroup after another
// member gave up.
var ErrAborted = errors.New("group aborted")

// LocalGroup is an AllReducer group whose members are goroutines of
// the current process.  Every all-reduce is a barrier: the last member
// to arrive publishes the sum and wakes the others up.
type LocalGroup struct {
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	round   uint64
	arrived []bool
	count   int
	ints    []int64
	floats  []float64
	err     error
	aborted error

	// Result of the most recently completed round.
	sumInts   []int64
	sumFloats []float64
	sumErr    error
}

func NewLocalGroup(size int) *LocalGroup {
	if size <= 0 {
		panic(fmt.Sprintf("group size (%d) <= 0", size))
	}
	g := &LocalGroup{size: size, arrived: make([]bool, size)}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *LocalGroup) Size() int { return g.size }

// Member returns the AllReducer used by the goroutine of given rank.
func (g *LocalGroup) Member(rank int) AllReducer {
	if rank < 0 || rank >= g.size {
		panic(fmt.Sprintf("rank %d out of range [0, %d)", rank, g.size))
	}
	return &localMember{g, rank}
}

// Abort wakes up all members blocked in an all-reduce and makes all
// following all-reduces fail.
func (g *LocalGroup) Abort(cause error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.aborted == nil {
		g.aborted = fmt.Errorf("%w: %v", ErrAborted, cause)
	}
	g.cond.Broadcast()
}

func (g *LocalGroup) reduce(rank int, ints []int64, floats []float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.aborted != nil {
		return g.aborted
	}

	if g.count == 0 {
		g.ints = make([]int64, len(ints))
		g.floats = make([]float64, len(floats))
		g.err = nil
	}

	switch {
	case g.arrived[rank]:
		g.err = fmt.Errorf("rank %d contributed twice to round %d", rank, g.round)
	case len(ints) != len(g.ints) || len(floats) != len(g.floats):
		g.err = fmt.Errorf("rank %d contributed %d integers and %d reals, others %d and %d",
			rank, len(ints), len(floats), len(g.ints), len(g.floats))
	case g.err == nil:
		for i, v := range ints {
			g.ints[i] += v
		}
		for i, v := range floats {
			g.floats[i] += v
		}
	}
	g.arrived[rank] = true
	g.count++

	round := g.round
	if g.count == g.size {
		g.sumInts, g.sumFloats, g.sumErr = g.ints, g.floats, g.err
		g.count = 0
		for i := range g.arrived {
			g.arrived[i] = false
		}
		g.round++
		g.cond.Broadcast()
	} else {
		for round == g.round && g.aborted == nil {
			g.cond.Wait()
		}
		if round == g.round {
			return g.aborted
		}
	}

	if g.sumErr != nil {
		return g.sumErr
	}
	copy(ints, g.sumInts)
	copy(floats, g.sumFloats)
	return nil
}

type localMember struct {
	group *LocalGroup
	rank  int
}

func (m *localMember) Rank() int { return m.rank }
func (m *localMember) Size() int { return m.group.size }

func (m *localMember) AllReduceInt64(buf []int64) error {
	return m.group.reduce(m.rank, buf, nil)
}

func (m *localMember) AllReduceFloat64(buf []float64) error {
	return m.group.reduce(m.rank, nil, buf)
}

// RunLocal runs fn as size concurrent members of a LocalGroup and
// waits for all of them.  When a member fails, the group is aborted so
// that the others do not wait for it forever.
func RunLocal(size int, fn func(r AllReducer) error) error {
	g := NewLocalGroup(size)
	errs := make([]error, size)

	// Members block on each other, so each one needs its own goroutine.
	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			if e := fn(g.Member(rank)); e != nil {
				errs[rank] = fmt.Errorf("rank %d: %w", rank, e)
				g.Abort(e)
			}
		}(rank)
	}
	wg.Wait()
	return errors.Join(errs...)
}
