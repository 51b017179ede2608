package srv

import (
	"net"
	"os"
	"path"
	"sync"
	"testing"

	"github.com/openbigdatagroup/plda/core/dist"
	"github.com/openbigdatagroup/plda/core/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wangkuiyi/file/inmemfs"
)

const testingCorpus = "a 2 b 1\nb 1 c 2\nc 3\n# comment\na 1 c 1\n"

func createTrainingConfig(t *testing.T, workers []string) *Config {
	dir := t.TempDir()
	data := path.Join(dir, "corpus")
	require.NoError(t, os.WriteFile(data, []byte(testingCorpus), 0644))

	c := createTestingConfig()
	c.Workers = workers
	c.TrainingDataFile = data
	c.ModelFile = path.Join(dir, "model.gz")
	c.TotalIterations = 12
	c.BurnInIterations = 2
	c.CheckpointPeriod = 5
	c.ComputeLikelihood = true
	c.Retry = 5
	require.NoError(t, c.Validate())
	return c
}

func checkTrainedModel(t *testing.T, c *Config) {
	a, e := utils.LoadAccumulativeModel(c.ModelFile)
	require.NoError(t, e)
	assert.Equal(t, []string{"a", "b", "c"}, a.Vocabulary().Tokens)
	sum := 0.0
	for _, v := range a.GlobalTopicDist() {
		sum += v
	}
	assert.InDelta(t, 11.0, sum, 1e-9)

	iter, e := FindMostRecentCheckpoint(c)
	require.NoError(t, e)
	assert.Equal(t, 10, iter)
	m, e := LoadCheckpoint(c, iter)
	require.NoError(t, e)
	assert.Equal(t, int64(11), m.GlobalTopicDist().Sum())
}

func TestTrainPartition(t *testing.T) {
	inmemfs.Format()
	c := createTrainingConfig(t, []string{"w0", "w1", "w2"})
	require.NoError(t, dist.RunLocal(len(c.Workers), func(g dist.AllReducer) error {
		return TrainPartition(c, g)
	}))
	checkTrainedModel(t, c)
}

// freeAddrs returns n distinct local addresses nobody listens on.
func freeAddrs(t *testing.T, n int) []string {
	addrs := make([]string, n)
	for i := range addrs {
		l, e := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, e)
		defer l.Close()
		addrs[i] = l.Addr().String()
	}
	return addrs
}

func TestRunWorker(t *testing.T) {
	inmemfs.Format()
	c := createTrainingConfig(t, freeAddrs(t, 2))

	errs := make([]error, len(c.Workers))
	var wg sync.WaitGroup
	for i, addr := range c.Workers {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			errs[i] = RunWorker(c, addr)
		}(i, addr)
	}
	wg.Wait()

	for _, e := range errs {
		require.NoError(t, e)
	}
	checkTrainedModel(t, c)
}

func TestRunWorkerUnknownAddr(t *testing.T) {
	c := createTestingConfig()
	assert.Error(t, RunWorker(c, "nowhere:1"))
}
