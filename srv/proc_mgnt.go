package srv

import (
	"fmt"
	"os"
	"path"
	"reflect"
	"strings"

	log "github.com/golang/glog"
	"github.com/wangkuiyi/file"
	"github.com/wangkuiyi/parallel"
	"github.com/wangkuiyi/prism"
)

// WORKER_BINARY is the name of the worker program in DeployDir.
const WORKER_BINARY = "plda"

// Deploy publishes the directory of the running binary, which is
// expected to contain WORKER_BINARY, into JobDir, and deploys it to
// DeployDir of every worker host.
func Deploy(cfg *Config) error {
	buildDir := file.LocalPrefix + path.Dir(os.Args[0])
	pub := path.Join(cfg.JobDir, "plda-"+cfg.JobName+".zip")
	log.Infof("Publish %s to %s", buildDir, pub)
	if e := prism.Publish(buildDir, pub); e != nil {
		return fmt.Errorf("publish %s to %s: %v", buildDir, pub, e)
	}

	hosts := make(map[string]int)
	for _, w := range cfg.Workers {
		hosts[strings.Split(w, ":")[0]]++
	}

	log.Infof("Deploy to %+v", hosts)
	return parallel.RangeMap(hosts, func(k, _ reflect.Value) error {
		h := k.String()
		if len(h) > 0 {
			if e := prism.Deploy(h, pub, cfg.DeployDir); e != nil {
				return fmt.Errorf("deploy %s: %v", h, e)
			}
		}
		return nil
	})
}

// KillWorkers tell Prism to kill processes who are listening on
// addrs.
func KillWorkers(addrs []string) error {
	return parallel.For(0, len(addrs), 1, func(i int) error {
		return prism.Kill(addrs[i])
	})
}

// LaunchWorkers starts a worker process listening on each of
// cfg.Workers, after killing leftovers of a previous run.
func LaunchWorkers(cfg *Config) error {
	log.Info("Try killing workers before launching them ...")
	if e := KillWorkers(cfg.Workers); e != nil {
		log.V(1).Infof("Killing leftover workers: %v", e)
	}

	f, e := cfg.Encode()
	if e != nil {
		return fmt.Errorf("encode config %v: %v", cfg, e)
	}

	return parallel.For(0, len(cfg.Workers), 1, func(i int) error {
		return prism.Launch(cfg.Workers[i], cfg.DeployDir, WORKER_BINARY,
			[]string{"-config=" + f, "-addr=" + cfg.Workers[i]},
			cfg.LogDir, cfg.Retry)
	})
}

// WaitForJob connects to the reducer of rank 0 and blocks until all
// workers finished.  It returns the cause if the job was aborted.
func WaitForJob(cfg *Config) error {
	hub, e := dial(cfg.Workers[0], cfg.Retry)
	if e != nil {
		return e
	}
	defer hub.Close()

	var status string
	if e := hub.Call("Reducer.Wait", 0, &status); e != nil {
		return fmt.Errorf("job %s: %v", cfg.JobName, e)
	}
	log.Infof("Job %s %s", cfg.JobName, status)
	return nil
}
