package gibbs

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Interpreter infers the topic distribution of new documents given a
// trained model, which it never modifies.
type Interpreter struct {
	model    *Model
	accessor *ModelAccessor
	opts     Options
}

func NewInterpreter(m *Model, opts Options, cacheMB int) (*Interpreter, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	if e := opts.ValidateInference(); e != nil {
		return nil, e
	}
	opts.NumTopics = m.NumTopics()
	return &Interpreter{
		model:    m,
		accessor: NewModelAccessor(m, opts.Beta, cacheMB),
		opts:     opts,
	}, nil
}

func (intr *Interpreter) NumTopics() int {
	return intr.model.NumTopics()
}

// Interpret samples the topics of the document given by counts for
// TotalIterations iterations and returns the average topic
// distribution over iterations from BurnInIterations on.  Words
// unknown to the model are dropped; if none is left, it returns
// ErrEmptyDoc.  The random source is seeded by the document content,
// so the same document always gets the same result.
func (intr *Interpreter) Interpret(counts []WordCount) ([]float64, error) {
	hasher := fnv.New64()
	for _, wc := range counts {
		fmt.Fprintf(hasher, "%s\t%d\t", wc.Word, wc.Count)
	}
	rng := rand.New(rand.NewSource(int64(hasher.Sum64())))

	doc := InitializeDocument(counts, intr.model.Vocabulary().Id,
		intr.model.NumTopics(), rng)
	if doc.Len() <= 0 {
		return nil, ErrEmptyDoc
	}

	s, e := NewSampler(intr.opts.Alpha, intr.opts.Beta, intr.model, nil, rng)
	if e != nil {
		return nil, e
	}
	s.UseAccessor(intr.accessor)

	dist := make([]float64, intr.model.NumTopics())
	for iter := 0; iter < intr.opts.TotalIterations; iter++ {
		s.SampleNewTopicsForDocument(doc, false)
		if iter >= intr.opts.BurnInIterations {
			for k, c := range doc.TopicHist {
				dist[k] += float64(c)
			}
		}
	}

	// Every accumulated histogram sums to doc.Len().
	samples := intr.opts.TotalIterations - intr.opts.BurnInIterations
	floats.Scale(1/float64(samples*doc.Len()), dist)
	return dist, nil
}
