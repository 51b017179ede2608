package srv

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/openbigdatagroup/plda/core/gibbs"
	"github.com/openbigdatagroup/plda/core/utils"
	"github.com/wangkuiyi/file"
)

// Config contains everything a worker of a distributed training job
// needs.  It is passed to workers as a JSON encoded command line flag.
type Config struct {
	// DeployDir and LogDir defines the directory where binaries and
	// log files are stored.
	DeployDir string
	LogDir    string

	// JobName will be used to identify the job in naming log files.
	JobName string

	// TrainingDataFile is read by every worker, each of which keeps
	// its share of documents.  ModelFile is the averaged model
	// written by rank 0.
	TrainingDataFile string
	ModelFile        string

	// Workers lists the addresses of all ranks.  The first worker
	// also serves the reducer all others connect to.
	Workers []string

	// Retry in starting processes and connecting to the reducer.
	Retry int

	// JobDir contains a directory of the reduced model every
	// CheckpointPeriod iterations, or nothing if CheckpointPeriod is 0.
	JobDir           string
	CheckpointPeriod int

	// MaxReduceCount bounds the number of counts in one all-reduce
	// round; 0 means dist.DefaultMaxReduceCount.
	MaxReduceCount int

	// Seed of rank r is Seed+r.
	Seed int64

	// Corpus filters.  With SegmenterDict, the training data is raw
	// text segmented by sego.
	MinWordLength  int
	SkipLatinWords bool
	SegmenterDict  string

	gibbs.Options
}

// The directory structure in JobDir is as:
//
//	JobDir
//	    |-00010
//	    |  |-model
//	    |  \-complete
//	    \-00020
//	       |-model
//	       \-complete
//
// The model file in directory 000xx is the model reduced at the
// beginning of iteration xx, in the text format of gibbs.Model.  The
// complete file is created after the model file was fully written.
const (
	MODEL_FILE    = "model"
	COMPLETE_FILE = "complete"
)

func (c *Config) Validate() error {
	if len(c.JobName) <= 0 {
		return errors.New("JobName must be specified")
	}
	if len(c.TrainingDataFile) <= 0 {
		return errors.New("TrainingDataFile must be specified")
	}
	if len(c.ModelFile) <= 0 {
		return errors.New("ModelFile must be specified")
	}

	if len(c.Workers) <= 0 {
		return errors.New("Workers must not be empty")
	}
	seen := make(map[string]bool)
	for _, w := range c.Workers {
		if len(w) <= 0 {
			return errors.New("Workers must not contain empty addresses")
		}
		if seen[w] {
			return fmt.Errorf("duplicated worker address %s", w)
		}
		seen[w] = true
	}

	if c.CheckpointPeriod < 0 {
		return fmt.Errorf("CheckpointPeriod (%d) < 0", c.CheckpointPeriod)
	}
	if c.CheckpointPeriod > 0 && len(c.JobDir) <= 0 {
		return errors.New("JobDir must be specified for checkpoints")
	}
	if c.MaxReduceCount < 0 {
		return fmt.Errorf("MaxReduceCount (%d) < 0", c.MaxReduceCount)
	}
	if c.MinWordLength < 0 {
		return fmt.Errorf("MinWordLength (%d) < 0", c.MinWordLength)
	}
	return c.Options.ValidateParallelTraining()
}

// Encode returns the JSON-encoded Config, which can be used as the
// value of command line flag to pass information to workers.
func (c *Config) Encode() (string, error) {
	var buf bytes.Buffer
	if e := json.NewEncoder(&buf).Encode(c); e != nil {
		return "", fmt.Errorf("JSON encoding failed: %v", e)
	}
	return buf.String(), nil
}

// String is required by interface flag.Var
func (c *Config) String() string {
	if b, e := json.MarshalIndent(c, " ", "  "); e == nil {
		return string(b)
	}
	return ""
}

// Set is required by interface flag.Var.  It decode a JSON encoded
// Config variable.
func (c *Config) Set(value string) error {
	e := json.NewDecoder(strings.NewReader(value)).Decode(c)
	if e != nil {
		return fmt.Errorf("decoding JSON: %v", e)
	}
	return nil
}

// RegisterAsFlag registers flag -config, which accepts a JSON encoded
// Config object as the value.  This function must be called before
// flag.Parse().
func (c *Config) RegisterAsFlag(fs *flag.FlagSet) {
	if fs == nil {
		fs = flag.CommandLine
	}
	fs.Var(c, "config", "JSON encoded configuration")
}

func LoadConfig(filename string) (*Config, error) {
	f, e := file.Open(filename)
	if e != nil {
		return nil, fmt.Errorf("cannot open config file %s: %v", filename, e)
	}
	defer f.Close()

	cfg := new(Config)
	if e = json.NewDecoder(f).Decode(cfg); e != nil {
		return nil, fmt.Errorf("parse JSON config file: %v", e)
	}

	if e := cfg.Validate(); e != nil {
		return nil, fmt.Errorf("invalid configuration: %w", e)
	}
	return cfg, nil
}

// WorkerId returns the rank of the worker listening on addr, or -1.
func (c *Config) WorkerId(addr string) int {
	for i, w := range c.Workers {
		if w == addr {
			return i
		}
	}
	return -1
}

// CorpusFormat returns the format of TrainingDataFile.  It loads the
// segmenter dictionary if there is one.
func (c *Config) CorpusFormat() *utils.CorpusFormat {
	f := &utils.CorpusFormat{
		MinWordLength:  c.MinWordLength,
		SkipLatinWords: c.SkipLatinWords,
	}
	if len(c.SegmenterDict) > 0 {
		f.Segmenter = utils.NewSegmenter(c.SegmenterDict)
	}
	return f
}
