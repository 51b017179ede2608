package gibbs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/openbigdatagroup/plda/core/hist"
)

// AccumulativeModel sums snapshots of a Model over the post burn-in
// iterations and, after AverageModel, holds their mean.  Its layout
// mirrors Model: one row per word followed by the global row.
type AccumulativeModel struct {
	vocab     *Vocabulary
	numTopics int
	dists     *mat.Dense
	zero      []float64
}

// NewAccumulativeModel sizes the accumulator to the current content of
// vocab; it does not grow afterwards.
func NewAccumulativeModel(numTopics int, vocab *Vocabulary) (*AccumulativeModel, error) {
	if numTopics < 2 {
		return nil, fmt.Errorf("numTopics = %d: %w", numTopics, ErrTooFewTopics)
	}
	if vocab == nil {
		vocab = NewVocabulary()
	}
	return &AccumulativeModel{
		vocab:     vocab,
		numTopics: numTopics,
		dists:     mat.NewDense(vocab.Len()+1, numTopics, nil),
		zero:      make([]float64, numTopics),
	}, nil
}

func (a *AccumulativeModel) NumTopics() int {
	return a.numTopics
}

func (a *AccumulativeModel) VocabSize() int {
	r, _ := a.dists.Dims()
	return r - 1
}

func (a *AccumulativeModel) Vocabulary() *Vocabulary {
	return a.vocab
}

// AccumulateModel adds the counts of m.  m must have the same number
// of topics, and its word ids must be a prefix of ours.
func (a *AccumulativeModel) AccumulateModel(m *Model) {
	if m.NumTopics() != a.numTopics {
		panic(fmt.Sprintf("accumulating a %d-topic model into %d topics",
			m.NumTopics(), a.numTopics))
	}
	if m.VocabSize() > a.VocabSize() {
		panic(fmt.Sprintf("accumulating %d words into %d",
			m.VocabSize(), a.VocabSize()))
	}
	add := func(dst []float64, src hist.Dense) {
		for k, c := range src {
			dst[k] += float64(c)
		}
	}
	m.ForEach(func(word int32, dist hist.Dense) error {
		add(a.dists.RawRowView(int(word)), dist)
		return nil
	})
	add(a.dists.RawRowView(a.VocabSize()), m.GlobalTopicDist())
}

// AverageModel divides every cell, the global row included, by n.
// It is meant to be called once, after the last AccumulateModel.
func (a *AccumulativeModel) AverageModel(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("averaging over %d iterations", n))
	}
	a.dists.Scale(1/float64(n), a.dists)
}

// WordTopicDist returns the row of word, or a shared all-zero row if
// word is unknown.  Read-only.
func (a *AccumulativeModel) WordTopicDist(word int32) []float64 {
	if word < 0 || int(word) >= a.VocabSize() {
		return a.zero
	}
	return a.dists.RawRowView(int(word))
}

func (a *AccumulativeModel) GlobalTopicDist() []float64 {
	return a.dists.RawRowView(a.VocabSize())
}

func (a *AccumulativeModel) ForEach(p func(word int32, dist []float64) error) error {
	for w := 0; w < a.VocabSize(); w++ {
		if e := p(int32(w), a.dists.RawRowView(w)); e != nil {
			return e
		}
	}
	return nil
}

// WriteTo writes the model text format with real-valued counts.
func (a *AccumulativeModel) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	a.ForEach(func(word int32, dist []float64) error {
		formatCounts(bw, a.vocab.Token(word), len(dist), func(i int) string {
			return strconv.FormatFloat(dist[i], 'g', -1, 64)
		})
		return nil
	})
	e := bw.Flush()
	return cw.n, e
}

// LoadAccumulativeModel reads the text format written by WriteTo, or by
// Model.WriteTo, and recomputes the global row.
func LoadAccumulativeModel(r io.Reader) (*AccumulativeModel, error) {
	values := make([]float64, 0)
	vocab, numTopics, e := scanMatrix(r, func(lineno int, f string) error {
		v, e := parseReal(lineno, f)
		if e == nil {
			values = append(values, v)
		}
		return e
	})
	if e != nil {
		return nil, e
	}
	a, e := NewAccumulativeModel(numTopics, vocab)
	if e != nil {
		return nil, e
	}
	global := a.GlobalTopicDist()
	for i, v := range values {
		a.dists.Set(i/numTopics, i%numTopics, v)
		global[i%numTopics] += v
	}
	return a, nil
}
