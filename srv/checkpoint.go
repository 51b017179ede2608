package srv

import (
	"fmt"
	"path"
	"regexp"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/gibbs"
	"github.com/wangkuiyi/file"
)

func checkpointDir(cfg *Config, iteration int) string {
	return path.Join(cfg.JobDir, fmt.Sprintf("%05d", iteration))
}

func mkdirIfMissing(dir string) error {
	if b, e := file.Exists(dir); e == nil && b {
		return nil
	}
	if e := file.MkDir(dir); e != nil {
		return fmt.Errorf("failed create directory %s: %v", dir, e)
	}
	return nil
}

// SaveCheckpoint writes m into the directory of iteration under
// cfg.JobDir, and marks the checkpoint complete after that.
func SaveCheckpoint(cfg *Config, iteration int, m *gibbs.Model) error {
	if e := mkdirIfMissing(cfg.JobDir); e != nil {
		return e
	}
	dir := checkpointDir(cfg, iteration)
	if e := mkdirIfMissing(dir); e != nil {
		return e
	}

	p := path.Join(dir, MODEL_FILE)
	f, e := file.Create(p)
	if e != nil {
		return fmt.Errorf("cannot create file %s: %v", p, e)
	}
	if _, e := m.WriteTo(f); e != nil {
		f.Close()
		return fmt.Errorf("failed writing to %s: %v", p, e)
	}
	if e := f.Close(); e != nil {
		return fmt.Errorf("closing %s: %v", p, e)
	}

	c, e := file.Create(path.Join(dir, COMPLETE_FILE))
	if e != nil {
		return fmt.Errorf("cannot mark %s complete: %v", dir, e)
	}
	log.Infof("Saved checkpoint %s", dir)
	return c.Close()
}

// isCompletedCheckpoint returns false if there is any error.
func isCompletedCheckpoint(cfg *Config, iteration int) (bool, error) {
	return file.Exists(path.Join(checkpointDir(cfg, iteration), COMPLETE_FILE))
}

// FindMostRecentCheckpoint returns the largest iteration with a
// completed checkpoint, or -1 if there is none.
func FindMostRecentCheckpoint(cfg *Config) (int, error) {
	is, e := file.List(cfg.JobDir)
	if e != nil {
		return -1, fmt.Errorf("failed to list %s: %v", cfg.JobDir, e)
	}

	iterationDir := regexp.MustCompile("^[0-9]+$")
	maxIter := -1

	for _, f := range is {
		if f.IsDir && iterationDir.MatchString(f.Name) {
			var iter int
			fmt.Sscanf(f.Name, "%d", &iter)
			if iter > maxIter {
				if b, e := isCompletedCheckpoint(cfg, iter); b && e == nil {
					maxIter = iter
				} else if e != nil {
					return -1, e
				}
			}
		}
	}
	return maxIter, nil
}

// LoadCheckpoint loads the model of a completed checkpoint.
func LoadCheckpoint(cfg *Config, iteration int) (*gibbs.Model, error) {
	if b, e := isCompletedCheckpoint(cfg, iteration); e != nil {
		return nil, e
	} else if !b {
		return nil, fmt.Errorf("checkpoint %d is not complete", iteration)
	}

	p := path.Join(checkpointDir(cfg, iteration), MODEL_FILE)
	f, e := file.Open(p)
	if e != nil {
		return nil, fmt.Errorf("cannot open model file %s: %v", p, e)
	}
	defer f.Close()

	m, e := gibbs.LoadModel(f)
	if e != nil {
		return nil, fmt.Errorf("loading %s: %w", p, e)
	}
	return m, nil
}
