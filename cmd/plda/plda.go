// plda is a worker of a distributed training job.  Workers are usually
// started by launcher, which passes the job configuration as JSON.
// Worker i listens on the i-th address of the configuration; the
// first worker also serves the reducer the others connect to.
//
// To run a job of two workers on the local computer:
/*
  $GOPATH/bin/plda -addr=localhost:10000 -config="$(cat job.json)" &
  $GOPATH/bin/plda -addr=localhost:10001 -config="$(cat job.json)"
*/
// with Workers in job.json set to ["localhost:10000", "localhost:10001"].
// With -local, one process runs every rank of the configuration as a
// goroutine and no network is used.
package main

import (
	"flag"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/dist"
	"github.com/openbigdatagroup/plda/srv"
)

var (
	addr  = flag.String("addr", "", "The address of this worker")
	local = flag.Bool("local", false, "Run all workers in this process")
)

func main() {
	cfg := new(srv.Config)
	cfg.RegisterAsFlag(nil)
	flag.Parse()
	defer log.Flush()

	if e := cfg.Validate(); e != nil {
		log.Fatalf("Invalid configuration: %v", e)
	}
	if *local {
		e := dist.RunLocal(len(cfg.Workers), func(g dist.AllReducer) error {
			return srv.TrainPartition(cfg, g)
		})
		if e != nil {
			log.Fatalf("Local training failed: %v", e)
		}
		log.Infof("Trained %d workers in process", len(cfg.Workers))
		return
	}

	if e := srv.RunWorker(cfg, *addr); e != nil {
		log.Fatalf("Worker %s failed: %v", *addr, e)
	}
	log.Infof("Worker %s finished", *addr)
}
