package srv

import (
	"errors"
	"net"
	"net/http"
	_ "net/http/pprof"
	"net/rpc"
	"sync"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/dist"
)

// Reducer is the RPC service hosted by rank 0.  Every call of
// ReduceInt64 or ReduceFloat64 blocks until all ranks contributed to
// the same round, and returns the element-wise sum.
type Reducer struct {
	group *dist.LocalGroup

	mutex   sync.Mutex
	left    []bool
	nleft   int
	aborted error
	done    chan struct{}
	once    sync.Once
}

type ReduceInt64Args struct {
	Rank int
	Buf  []int64
}

type ReduceFloat64Args struct {
	Rank int
	Buf  []float64
}

func NewReducer(size int) *Reducer {
	return &Reducer{
		group: dist.NewLocalGroup(size),
		left:  make([]bool, size),
		done:  make(chan struct{}),
	}
}

func (r *Reducer) checkRank(rank int) error {
	if rank < 0 || rank >= r.group.Size() {
		return errors.New("rank out of range")
	}
	return nil
}

func (r *Reducer) ReduceInt64(args *ReduceInt64Args, sum *[]int64) error {
	if e := r.checkRank(args.Rank); e != nil {
		return e
	}
	buf := args.Buf
	if e := r.group.Member(args.Rank).AllReduceInt64(buf); e != nil {
		return e
	}
	*sum = buf
	return nil
}

func (r *Reducer) ReduceFloat64(args *ReduceFloat64Args, sum *[]float64) error {
	if e := r.checkRank(args.Rank); e != nil {
		return e
	}
	buf := args.Buf
	if e := r.group.Member(args.Rank).AllReduceFloat64(buf); e != nil {
		return e
	}
	*sum = buf
	return nil
}

// Abort is called by a failing rank.  It fails all blocked and future
// reductions.
func (r *Reducer) Abort(cause string, _ *int) error {
	log.Errorf("Job aborted: %s", cause)
	e := errors.New(cause)
	r.group.Abort(e)

	r.mutex.Lock()
	if r.aborted == nil {
		r.aborted = e
	}
	r.mutex.Unlock()
	r.once.Do(func() { close(r.done) })
	return nil
}

// Leave is called by a rank that finished its work.
func (r *Reducer) Leave(rank int, _ *int) error {
	if e := r.checkRank(rank); e != nil {
		return e
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if !r.left[rank] {
		r.left[rank] = true
		r.nleft++
		if r.nleft == len(r.left) {
			r.once.Do(func() { close(r.done) })
		}
	}
	return nil
}

// Wait blocks until all ranks left or the job was aborted.
func (r *Reducer) Wait(_ int, status *string) error {
	<-r.done
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.aborted != nil {
		return r.aborted
	}
	*status = "done"
	return nil
}

// Done is closed when all ranks left or the job was aborted.
func (r *Reducer) Done() <-chan struct{} { return r.done }

// ServeReducer serves a Reducer of size ranks on l until l is closed.
// Other paths are served by http.DefaultServeMux, which shows expvar
// and pprof pages.
func ServeReducer(l net.Listener, size int) *Reducer {
	r := NewReducer(size)
	s := rpc.NewServer()
	if e := s.Register(r); e != nil {
		log.Fatalf("Register Reducer: %v", e)
	}
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, s)
	mux.Handle("/", http.DefaultServeMux)

	log.Infof("Reducer of %d ranks listening on %s", size, l.Addr())
	go http.Serve(l, mux)
	return r
}
