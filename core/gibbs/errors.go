package gibbs

import "errors"

var (
	ErrTooFewTopics     = errors.New("number of topics must be at least 2")
	ErrNonPositivePrior = errors.New("alpha and beta must be positive")
	ErrNilModel         = errors.New("model is nil")
	ErrNilRand          = errors.New("random source is nil")
	ErrBurnIn           = errors.New("burn-in iterations must be >= 0 and less than total iterations")
	ErrNoIterations     = errors.New("total iterations must be positive")
	ErrEmptyDoc         = errors.New("interpret empty document")
)
