package gibbs

import "fmt"

// Options are the numeric settings shared by training and inference.
type Options struct {
	NumTopics         int
	Alpha             float64 // topic prior
	Beta              float64 // word prior
	TotalIterations   int
	BurnInIterations  int
	ComputeLikelihood bool
}

func (o *Options) validatePriors() error {
	if o.Alpha <= 0 || o.Beta <= 0 {
		return fmt.Errorf("alpha = %v, beta = %v: %w", o.Alpha, o.Beta,
			ErrNonPositivePrior)
	}
	return nil
}

func (o *Options) validateBurnIn() error {
	if o.BurnInIterations < 0 || o.TotalIterations <= o.BurnInIterations {
		return fmt.Errorf("burn_in_iterations = %d, total_iterations = %d: %w",
			o.BurnInIterations, o.TotalIterations, ErrBurnIn)
	}
	return nil
}

func (o *Options) ValidateTraining() error {
	if o.NumTopics < 2 {
		return fmt.Errorf("num_topics = %d: %w", o.NumTopics, ErrTooFewTopics)
	}
	if e := o.validatePriors(); e != nil {
		return e
	}
	return o.validateBurnIn()
}

// ValidateParallelTraining differs from ValidateTraining only in
// reporting a non-positive iteration count before looking at burn-in.
func (o *Options) ValidateParallelTraining() error {
	if o.NumTopics < 2 {
		return fmt.Errorf("num_topics = %d: %w", o.NumTopics, ErrTooFewTopics)
	}
	if e := o.validatePriors(); e != nil {
		return e
	}
	if o.TotalIterations <= 0 {
		return fmt.Errorf("total_iterations = %d: %w",
			o.TotalIterations, ErrNoIterations)
	}
	return o.validateBurnIn()
}

// ValidateInference does not look at NumTopics, which comes from the
// model file.
func (o *Options) ValidateInference() error {
	if e := o.validatePriors(); e != nil {
		return e
	}
	return o.validateBurnIn()
}
