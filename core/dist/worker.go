package dist

import (
	"fmt"
	"io"
	"math/rand"
	"sort"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/gibbs"
)

// Progress is called by a Worker after the model has been reduced at
// the beginning of iteration iter.  m then reflects the sampling of
// all iterations before iter.  logl is the corpus log-likelihood
// summed over all ranks, or 0 if it was not computed.
type Progress func(iter int, m *gibbs.Model, logl float64)

// Worker is one rank of a data-parallel training job.  Every rank
// reads the whole corpus to build the same sorted vocabulary, keeps
// the documents the Sharder assigns to it, and samples them against
// its replica of the global model.
type Worker struct {
	opts     gibbs.Options
	reducer  AllReducer
	maxCount int
	sharder  Sharder
	rng      *rand.Rand

	allWords map[string]struct{}
	local    *gibbs.Vocabulary
	corpus   []*gibbs.Document

	model *gibbs.Model
	accum *gibbs.AccumulativeModel
}

func NewWorker(opts gibbs.Options, r AllReducer, maxReduceCount int,
	rng *rand.Rand) (*Worker, error) {

	if e := opts.ValidateParallelTraining(); e != nil {
		return nil, e
	}
	if rng == nil {
		return nil, gibbs.ErrNilRand
	}
	return &Worker{
		opts:     opts,
		reducer:  r,
		maxCount: maxReduceCount,
		sharder:  NewSharder(r.Size()),
		rng:      rng,
		allWords: make(map[string]struct{}),
		local:    gibbs.NewVocabulary(),
	}, nil
}

func (w *Worker) Rank() int { return w.reducer.Rank() }

// AddDocument must be called with every document of the corpus in the
// same order on all ranks; index is the position of the document in
// the corpus.  Documents without words are dropped.
func (w *Worker) AddDocument(index int, counts []gibbs.WordCount) {
	if w.model != nil {
		panic("AddDocument after BuildVocabulary")
	}
	for _, wc := range counts {
		if wc.Count > 0 {
			w.allWords[wc.Word] = struct{}{}
		}
	}
	if w.sharder.Shard(index) != w.Rank() {
		return
	}
	d := gibbs.InitializeDocument(counts, w.local.Add, w.opts.NumTopics, w.rng)
	if d.Len() > 0 {
		w.corpus = append(w.corpus, d)
	}
}

// LoadPartition scans a corpus in the `<word> <count> ...` format,
// adds every document to the worker and builds the vocabulary.  parse
// turns the fields of a line into word counts; nil means
// gibbs.ParseWordCounts.
func (w *Worker) LoadPartition(r io.Reader,
	parse func(fields []string) ([]gibbs.WordCount, error)) error {

	if parse == nil {
		parse = gibbs.ParseWordCounts
	}
	index := 0
	e := gibbs.ScanRecords(r, func(lineno int, fields []string) error {
		counts, e := parse(fields)
		if e != nil {
			return fmt.Errorf("line %d: %w", lineno, e)
		}
		w.AddDocument(index, counts)
		index++
		return nil
	})
	if e != nil {
		return e
	}
	return w.BuildVocabulary()
}

// BuildVocabulary sorts the words seen by AddDocument, renumbers the
// words of local documents accordingly, and allocates the model.
// Since all ranks saw the same corpus, they end up with identical
// vocabularies without any communication.
func (w *Worker) BuildVocabulary() error {
	tokens := make([]string, 0, len(w.allWords))
	for t := range w.allWords {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	vocab, e := gibbs.NewVocabularyFromTokens(tokens)
	if e != nil {
		return e
	}

	remap, e := w.local.Remap(vocab)
	if e != nil {
		return e
	}
	for _, d := range w.corpus {
		if e := d.ResetWordIndex(remap); e != nil {
			return e
		}
	}

	if w.model, e = gibbs.NewModel(w.opts.NumTopics, vocab); e != nil {
		return e
	}
	if w.accum, e = gibbs.NewAccumulativeModel(w.opts.NumTopics, vocab); e != nil {
		return e
	}
	w.allWords, w.local = nil, nil

	n := 0
	for _, d := range w.corpus {
		n += d.Len()
	}
	log.Infof("Rank %d/%d: %d documents, %d word occurrences, vocabulary size %d",
		w.Rank(), w.reducer.Size(), len(w.corpus), n, vocab.Len())
	return nil
}

// Corpus returns the documents owned by this rank.
func (w *Worker) Corpus() []*gibbs.Document { return w.corpus }

// Model returns the replica of the global model.  It equals the
// global model only right after a reduction.
func (w *Worker) Model() *gibbs.Model { return w.model }

// AccumulativeModel returns the averaged post burn-in model after
// Train returns.
func (w *Worker) AccumulativeModel() *gibbs.AccumulativeModel { return w.accum }

// reduceModel rebuilds the replica from local topic assignments and
// sums it over all ranks.
func (w *Worker) reduceModel() error {
	w.model.Clear()
	for _, d := range w.corpus {
		d.ApplyToModel(w.model)
	}
	e := w.model.ReduceCounts(func(counts []int64) error {
		return AllReduceChunked(w.reducer, counts, w.maxCount)
	})
	if e != nil {
		return fmt.Errorf("reducing model: %w", e)
	}
	if e := w.model.Validate(); e != nil {
		return fmt.Errorf("reduced model is inconsistent: %w", e)
	}
	return nil
}

func (w *Worker) logLikelihood(s *gibbs.Sampler) (float64, error) {
	buf := []float64{0}
	for _, d := range w.corpus {
		buf[0] += s.LogLikelihood(d)
	}
	if e := w.reducer.AllReduceFloat64(buf); e != nil {
		return 0, fmt.Errorf("reducing log-likelihood: %w", e)
	}
	return buf[0], nil
}

// Train runs TotalIterations iterations.  Each one starts by reducing
// the model, so all ranks sample against the same counts.  Models
// reduced after burn-in are accumulated, and the accumulation is
// averaged when training ends.  progress may be nil.
func (w *Worker) Train(progress Progress) error {
	if w.model == nil {
		return fmt.Errorf("training before the vocabulary is built")
	}
	s, e := gibbs.NewSampler(w.opts.Alpha, w.opts.Beta, w.model, nil, w.rng)
	if e != nil {
		return e
	}

	for iter := 0; iter < w.opts.TotalIterations; iter++ {
		if e := w.reduceModel(); e != nil {
			return fmt.Errorf("iteration %d: %w", iter, e)
		}
		if iter > w.opts.BurnInIterations {
			w.accum.AccumulateModel(w.model)
		}

		logl := 0.0
		if w.opts.ComputeLikelihood {
			if logl, e = w.logLikelihood(s); e != nil {
				return fmt.Errorf("iteration %d: %w", iter, e)
			}
			if w.Rank() == 0 {
				log.Infof("Iteration %d, log-likelihood %f", iter, logl)
			}
		}
		if progress != nil {
			progress(iter, w.model, logl)
		}

		s.DoIteration(w.corpus, true, true)
	}

	if e := w.reduceModel(); e != nil {
		return fmt.Errorf("final reduction: %w", e)
	}
	w.accum.AccumulateModel(w.model)
	w.accum.AverageModel(w.opts.TotalIterations - w.opts.BurnInIterations)
	return nil
}
