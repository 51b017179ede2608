package utils

import (
	"fmt"
	"math/rand"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/gibbs"
)

// Train runs single-process collapsed Gibbs sampling over corpus, whose
// word ids index vocab.  It returns the final model and the average of
// the models after burn-in.  progress, if not nil, is called after every
// iteration with the log-likelihood computed before it, or 0 if
// opts.ComputeLikelihood is false.
func Train(corpus []*gibbs.Document, vocab *gibbs.Vocabulary, opts gibbs.Options,
	rng *rand.Rand, progress func(iter int, logl float64)) (
	*gibbs.Model, *gibbs.AccumulativeModel, error) {

	if e := opts.ValidateTraining(); e != nil {
		return nil, nil, e
	}
	model, e := gibbs.NewModel(opts.NumTopics, vocab)
	if e != nil {
		return nil, nil, e
	}
	accum, e := gibbs.NewAccumulativeModel(opts.NumTopics, vocab)
	if e != nil {
		return nil, nil, e
	}
	s, e := gibbs.NewSampler(opts.Alpha, opts.Beta, model, accum, rng)
	if e != nil {
		return nil, nil, e
	}
	s.InitModelGivenTopics(corpus)
	if e := model.Validate(); e != nil {
		return nil, nil, fmt.Errorf("initial model: %w", e)
	}

	ev := gibbs.NewEvaluator(s, 0)
	for iter := 0; iter < opts.TotalIterations; iter++ {
		logl := 0.0
		if opts.ComputeLikelihood {
			var n int
			logl, n = ev.LogLikelihood(corpus)
			log.Infof("Iteration %d, log-likelihood %f, perplexity %f",
				iter, logl, gibbs.Perplexity(logl, n))
		} else {
			log.V(1).Infof("Iteration %d", iter)
		}
		s.DoIteration(corpus, true, iter < opts.BurnInIterations)
		if progress != nil {
			progress(iter, logl)
		}
	}

	accum.AverageModel(opts.TotalIterations - opts.BurnInIterations)
	return model, accum, nil
}
