// launcher deploys the plda binary, next to launcher in the same
// directory, to every worker host using Prism, starts the workers of
// a training job, and waits for them to finish.
package main

import (
	"flag"
	"os"
	"os/signal"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/srv"
)

var (
	cfgFlag    = flag.String("config_file", "", "The configuration file name")
	deployFlag = flag.Bool("deploy", true, "Publish and deploy binaries before launching")
)

func main() {
	flag.Parse()
	defer log.Flush()

	log.Infof("Loading config file %s", *cfgFlag)
	cfg, e := srv.LoadConfig(*cfgFlag)
	if e != nil {
		log.Fatalf("Failed loading config file %s: %v", *cfgFlag, e)
	}

	if *deployFlag {
		if e := srv.Deploy(cfg); e != nil {
			log.Fatalf("Deploy failed: %v", e)
		}
	}

	if e := srv.LaunchWorkers(cfg); e != nil {
		srv.KillWorkers(cfg.Workers)
		log.Fatalf("Failed start workers: %v", e)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	done := make(chan error, 1)
	go func() { done <- srv.WaitForJob(cfg) }()

	select {
	case e = <-done:
	case <-sig:
		log.Warning("Interrupted. Killing workers ...")
	}
	srv.KillWorkers(cfg.Workers)
	if e != nil {
		log.Fatalf("Job %s failed: %v", cfg.JobName, e)
	}
}
