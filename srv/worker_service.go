package srv

import (
	"expvar"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"time"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/dist"
	"github.com/openbigdatagroup/plda/core/gibbs"
	"github.com/openbigdatagroup/plda/core/utils"
)

// leaveTimeout bounds how long rank 0 waits for others to leave
// before shutting down the reducer.
var leaveTimeout = time.Minute

// RunWorker runs the rank of a training job listening on addr.  Rank
// 0 serves the reducer on addr, and saves checkpoints and the final
// model.
func RunWorker(cfg *Config, addr string) error {
	rank := cfg.WorkerId(addr)
	if rank < 0 {
		return fmt.Errorf("addr %s not in config %s", addr, cfg)
	}
	size := len(cfg.Workers)

	var reducer *Reducer
	if rank == 0 {
		l, e := net.Listen("tcp", addr)
		if e != nil {
			return fmt.Errorf("listen on %s: %v", addr, e)
		}
		defer l.Close()
		reducer = ServeReducer(l, size)
	}

	g, e := DialGroup(cfg.Workers[0], rank, size, cfg.Retry)
	if e != nil {
		return e
	}
	defer g.Close()

	if e := TrainPartition(cfg, g); e != nil {
		if ae := g.Abort(e); ae != nil {
			log.Errorf("Failed to abort the job: %v", ae)
		}
		return e
	}
	if e := g.Leave(); e != nil {
		return fmt.Errorf("leaving: %v", e)
	}

	if reducer != nil {
		select {
		case <-reducer.Done():
			// Let replies to Reducer.Wait reach the launcher.
			time.Sleep(time.Second)
		case <-time.After(leaveTimeout):
			log.Warningf("Not all workers left after %s", leaveTimeout)
		}
	}
	return nil
}

// TrainPartition loads the partition of g.Rank(), trains with the
// other ranks of g, and, on rank 0, saves checkpoints and the averaged
// model.
func TrainPartition(cfg *Config, g dist.AllReducer) error {
	rank := g.Rank()
	rng := rand.New(rand.NewSource(cfg.Seed + int64(rank)))
	w, e := dist.NewWorker(cfg.Options, g, cfg.MaxReduceCount, rng)
	if e != nil {
		return e
	}

	r, e := utils.OpenReader(cfg.TrainingDataFile)
	if e != nil {
		return e
	}
	e = w.LoadPartition(r, cfg.CorpusFormat().Parse)
	r.Close()
	if e != nil {
		return fmt.Errorf("loading %s: %w", cfg.TrainingDataFile, e)
	}

	iters := new(utils.Iterations)
	if rank == 0 {
		publishIterations(iters)
	}
	var checkpointErr error
	e = w.Train(func(iter int, m *gibbs.Model, logl float64) {
		if iter > 0 {
			iters.End(logl)
		}
		iters.Start()
		if rank == 0 && checkpointErr == nil && cfg.CheckpointPeriod > 0 &&
			iter > 0 && iter%cfg.CheckpointPeriod == 0 {
			if checkpointErr = SaveCheckpoint(cfg, iter, m); checkpointErr != nil {
				log.Errorf("Checkpoint of iteration %d: %v", iter, checkpointErr)
			}
		}
	})
	if e != nil {
		return e
	}
	if checkpointErr != nil {
		return checkpointErr
	}
	iters.End(0)

	if rank == 0 {
		if e := utils.SaveModel(w.AccumulativeModel(), cfg.ModelFile); e != nil {
			return e
		}
	}
	return nil
}

// publishIterations makes the progress of rank 0 visible as expvar
// "Iterations" and on /progress/loglikelihood.  Tests run several jobs
// in one process, so only the first one is published.
func publishIterations(is *utils.Iterations) {
	if expvar.Get("Iterations") == nil {
		expvar.Publish("Iterations", expvar.Func(func() interface{} { return is.Report() }))
		http.Handle("/progress/loglikelihood", is.LogLikelihoodHandler())
	}
}
