package utils

import (
	"bytes"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"sync"
	"time"

	log "github.com/golang/glog"
)

type Iteration struct {
	StartTime     time.Time
	Duration      time.Duration
	LogLikelihood float64
	Done          bool
}

// Iterations records the progress of training.  It is safe to read it
// from HTTP handlers while the training goroutine appends to it.
type Iterations struct {
	mu    sync.Mutex
	iters []Iteration
}

// Report renders one line per iteration.
func (is *Iterations) Report() string {
	is.mu.Lock()
	defer is.mu.Unlock()
	var buf bytes.Buffer
	for i, iter := range is.iters {
		fmt.Fprintf(&buf, "%05d: %s\t%s\t%f\n", i,
			iter.StartTime.Format(time.RFC3339), iter.Duration, iter.LogLikelihood)
	}
	return buf.String()
}

func (is *Iterations) Len() int {
	is.mu.Lock()
	defer is.mu.Unlock()
	return len(is.iters)
}

func (is *Iterations) Start() {
	is.mu.Lock()
	defer is.mu.Unlock()
	is.iters = append(is.iters, Iteration{StartTime: time.Now()})
}

// End completes the most recently started iteration.  logl is 0 if it
// was not computed.
func (is *Iterations) End(logl float64) Iteration {
	is.mu.Lock()
	defer is.mu.Unlock()
	i := &is.iters[len(is.iters)-1]
	i.Duration = time.Since(i.StartTime)
	i.LogLikelihood = logl
	i.Done = true
	return *i
}

// LogLikelihoodHandler serves the log-likelihood of every iteration
// that computed one, as lines of `<iteration> <log-likelihood>`.
func (is *Iterations) LogLikelihoodHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		is.mu.Lock()
		defer is.mu.Unlock()
		for i, iter := range is.iters {
			if iter.Done && iter.LogLikelihood != 0 {
				fmt.Fprintf(w, "%d\t%f\n", i, iter.LogLikelihood)
			}
		}
	}
}

// EnableExpvar publishes is as expvar "Iterations" and serves it,
// together with /progress/loglikelihood and pprof, on addr.  It can be
// called at most once per process.
func EnableExpvar(addr string) *Iterations {
	is := new(Iterations)
	expvar.Publish("Iterations", expvar.Func(func() interface{} { return is.Report() }))
	http.Handle("/progress/loglikelihood", is.LogLikelihoodHandler())

	go func() {
		if e := http.ListenAndServe(addr, nil); e != nil {
			log.Fatalf("ListenAndServe on %s failed: %v", addr, e)
		}
	}()
	return is
}
