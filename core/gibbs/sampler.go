package gibbs

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Sampler implements collapsed Gibbs sampling for LDA with symmetric
// priors alpha (topic) and beta (word).  The full conditional of a
// token of word w in document d is
//
//	p(z=k) ∝ (n_wk + beta) (n_dk + alpha) / (n_k + V beta)
//
// where the counts exclude the token itself when training.
type Sampler struct {
	alpha float64
	beta  float64
	model *Model
	accum *AccumulativeModel
	rng   *rand.Rand
	phi   *ModelAccessor
	dist  []float64
}

// NewSampler returns a sampler updating model.  accum may be nil, in
// which case no post burn-in statistics are collected.
func NewSampler(alpha, beta float64, model *Model, accum *AccumulativeModel,
	rng *rand.Rand) (*Sampler, error) {

	if alpha <= 0 || beta <= 0 {
		return nil, fmt.Errorf("alpha = %v, beta = %v: %w", alpha, beta,
			ErrNonPositivePrior)
	}
	if model == nil {
		return nil, ErrNilModel
	}
	if rng == nil {
		return nil, ErrNilRand
	}
	if accum != nil && accum.NumTopics() != model.NumTopics() {
		return nil, fmt.Errorf("accumulative model has %d topics, model has %d",
			accum.NumTopics(), model.NumTopics())
	}
	return &Sampler{
		alpha: alpha,
		beta:  beta,
		model: model,
		accum: accum,
		rng:   rng,
		dist:  make([]float64, model.NumTopics()),
	}, nil
}

func (s *Sampler) Model() *Model {
	return s.model
}

// UseAccessor lets sampling without training read smoothed word-topic
// factors from a.  a must be built from the sampler's model, and the
// model must not change while a is in use.
func (s *Sampler) UseAccessor(a *ModelAccessor) {
	s.phi = a
}

// InitModelGivenTopics adds the initial topic of every token in corpus
// to the model.  It is called once before the first iteration.
func (s *Sampler) InitModelGivenTopics(corpus []*Document) {
	for _, d := range corpus {
		d.ApplyToModel(s.model)
	}
}

// DoIteration resamples every token of corpus once.  If trainModel is
// set and burnIn is not, the updated model is added to the
// accumulative model, if any.
func (s *Sampler) DoIteration(corpus []*Document, trainModel, burnIn bool) {
	for _, d := range corpus {
		s.SampleNewTopicsForDocument(d, trainModel)
	}
	if trainModel && !burnIn && s.accum != nil {
		s.accum.AccumulateModel(s.model)
	}
}

// SampleNewTopicsForDocument resamples every token of doc.  The model
// is updated only when trainModel is set.
func (s *Sampler) SampleNewTopicsForDocument(doc *Document, trainModel bool) {
	for it := doc.Iterator(); !it.Done(); it.Next() {
		word, topic := it.Word(), it.Topic()
		s.GenerateTopicDistributionForWord(doc, word, topic, trainModel, s.dist)
		newTopic := int32(AccumulativeSample(s.dist, s.rng))
		if trainModel && newTopic != topic {
			s.model.ReassignTopic(word, int(topic), int(newTopic), 1)
		}
		it.SetTopic(newTopic)
	}
}

// GenerateTopicDistributionForWord fills dist with the unnormalized
// full conditional of a token of word currently assigned to
// currentTopic.
func (s *Sampler) GenerateTopicDistributionForWord(doc *Document, word int32,
	currentTopic int32, trainModel bool, dist []float64) {

	if len(dist) != s.model.NumTopics() {
		panic(fmt.Sprintf("len(dist) = %d, expecting %d",
			len(dist), s.model.NumTopics()))
	}
	dt := doc.TopicHist

	if !trainModel && s.phi != nil {
		phi := s.phi.WordTopicDist(word)
		for k := range dist {
			dist[k] = phi[k] * (float64(dt[k]) + s.alpha)
		}
		return
	}

	wt := s.model.WordTopicDist(word)
	gt := s.model.GlobalTopicDist()
	vbeta := float64(s.model.VocabSize()) * s.beta
	for k := range dist {
		adj := 0.0
		if trainModel && int32(k) == currentTopic {
			adj = -1
		}
		dist[k] = (float64(wt[k]) + adj + s.beta) *
			(float64(dt[k]) + adj + s.alpha) /
			(float64(gt[k]) + adj + vbeta)
	}
}

// smoothedWordDist fills phi with P(word|topic).
func (s *Sampler) smoothedWordDist(word int32, phi []float64) {
	if s.phi != nil {
		copy(phi, s.phi.WordTopicDist(word))
		return
	}
	wt := s.model.WordTopicDist(word)
	gt := s.model.GlobalTopicDist()
	vbeta := float64(s.model.VocabSize()) * s.beta
	for k := range phi {
		phi[k] = (float64(wt[k]) + s.beta) / (float64(gt[k]) + vbeta)
	}
}

// LogLikelihood returns log P(doc) = sum over tokens of
// log sum_k P(w|k) P(k|doc).  It modifies neither the model nor doc,
// and is safe to call concurrently.
func (s *Sampler) LogLikelihood(doc *Document) float64 {
	k := s.model.NumTopics()
	theta := make([]float64, k)
	denom := float64(doc.Len()) + s.alpha*float64(k)
	for t := range theta {
		theta[t] = (float64(doc.TopicHist[t]) + s.alpha) / denom
	}

	phi := make([]float64, k)
	logl := 0.0
	for i, w := range doc.Words {
		n := doc.Starts[i+1] - doc.Starts[i]
		if n == 0 {
			continue
		}
		s.smoothedWordDist(w, phi)
		logl += float64(n) * math.Log(floats.Dot(phi, theta))
	}
	return logl
}

// AccumulativeSample draws an index with probability proportional to
// dist, by inverse CDF.  Zero-weight indices are never returned.  A
// distribution without positive finite mass is an invariant
// violation and panics.
func AccumulativeSample(dist []float64, rng *rand.Rand) int {
	sum := 0.0
	for _, w := range dist {
		sum += w
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		panic(fmt.Sprintf("Failed in sampling: distribution %v sums to %v",
			dist, sum))
	}

	draw := rng.Float64() * sum
	cum := 0.0
	for i, w := range dist {
		cum += w
		if w > 0 && cum >= draw {
			return i
		}
	}
	panic(fmt.Sprintf("Failed in sampling: draw %v exceeds cumulative sum %v",
		draw, cum))
}
