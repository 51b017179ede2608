package srv

import (
	"fmt"
)

// RPCGroup is the dist.AllReducer of a worker process.  It forwards
// every reduction to the Reducer served by rank 0.
type RPCGroup struct {
	rank, size int
	hub        *RpcClient
}

// DialGroup connects rank of a group of size ranks to the reducer on
// addr.
func DialGroup(addr string, rank, size, retry int) (*RPCGroup, error) {
	if rank < 0 || rank >= size {
		return nil, fmt.Errorf("rank %d out of range [0, %d)", rank, size)
	}
	hub, e := dial(addr, retry)
	if e != nil {
		return nil, e
	}
	return &RPCGroup{rank: rank, size: size, hub: hub}, nil
}

func (g *RPCGroup) Rank() int { return g.rank }
func (g *RPCGroup) Size() int { return g.size }

func (g *RPCGroup) AllReduceInt64(buf []int64) error {
	var sum []int64
	e := g.hub.Call("Reducer.ReduceInt64", &ReduceInt64Args{g.rank, buf}, &sum)
	if e != nil {
		return fmt.Errorf("%s: %v", g.hub, e)
	}
	if len(sum) != len(buf) {
		return fmt.Errorf("%s returned %d elements, expecting %d", g.hub, len(sum), len(buf))
	}
	copy(buf, sum)
	return nil
}

func (g *RPCGroup) AllReduceFloat64(buf []float64) error {
	var sum []float64
	e := g.hub.Call("Reducer.ReduceFloat64", &ReduceFloat64Args{g.rank, buf}, &sum)
	if e != nil {
		return fmt.Errorf("%s: %v", g.hub, e)
	}
	if len(sum) != len(buf) {
		return fmt.Errorf("%s returned %d elements, expecting %d", g.hub, len(sum), len(buf))
	}
	copy(buf, sum)
	return nil
}

// Abort tells all other ranks to give up.
func (g *RPCGroup) Abort(cause error) error {
	return g.hub.Call("Reducer.Abort", fmt.Sprintf("rank %d: %v", g.rank, cause), new(int))
}

// Leave tells the reducer this rank finished.
func (g *RPCGroup) Leave() error {
	return g.hub.Call("Reducer.Leave", g.rank, new(int))
}

func (g *RPCGroup) Close() error {
	return g.hub.Close()
}
