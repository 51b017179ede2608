package gibbs

import (
	"math"
	"runtime"

	"github.com/wangkuiyi/parallel"
)

// Evaluator computes the log-likelihood of a corpus by splitting its
// documents into shards, d, d+shards, d+2*shards, ..., evaluated in
// parallel.  It only reads the sampler's model.
type Evaluator struct {
	sampler *Sampler
	shards  int
}

// NewEvaluator uses one shard per CPU if shards is not positive.
func NewEvaluator(s *Sampler, shards int) *Evaluator {
	if shards <= 0 {
		shards = runtime.NumCPU()
	}
	return &Evaluator{sampler: s, shards: shards}
}

// LogLikelihood returns the summed log-likelihood of corpus and its
// number of tokens, which, when divided, get to the perplexity.
func (e *Evaluator) LogLikelihood(corpus []*Document) (float64, int) {
	shards := e.shards
	if shards > len(corpus) {
		shards = len(corpus)
	}
	logls := make([]float64, shards)
	lens := make([]int, shards)
	parallel.For(0, shards, 1, func(i int) error {
		for d := i; d < len(corpus); d += shards {
			logls[i] += e.sampler.LogLikelihood(corpus[d])
			lens[i] += corpus[d].Len()
		}
		return nil
	})

	logl, n := 0.0, 0
	for i := range logls {
		logl += logls[i]
		n += lens[i]
	}
	return logl, n
}

// Perplexity returns exp(-logl/n), or +Inf for an empty corpus.
func Perplexity(logl float64, n int) float64 {
	if n <= 0 {
		return math.Inf(1)
	}
	return math.Exp(-logl / float64(n))
}
