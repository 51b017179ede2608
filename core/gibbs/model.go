package gibbs

import (
	"errors"
	"fmt"

	"github.com/openbigdatagroup/plda/core/hist"
)

// Model is the word-topic count matrix of LDA.  All counts live in one
// contiguous buffer of (VocabSize()+1)*NumTopics() cells: row w starts
// at w*NumTopics(), and the last row is the global topic histogram,
// which always equals the column sums of the word rows.
type Model struct {
	numTopics int
	vocab     *Vocabulary
	counts    []int64
	zero      hist.Dense
}

// NewModel creates an all-zero model over the current content of
// vocab.  Words added to vocab later are unknown to the model.
func NewModel(numTopics int, vocab *Vocabulary) (*Model, error) {
	if numTopics < 2 {
		return nil, fmt.Errorf("numTopics = %d: %w", numTopics, ErrTooFewTopics)
	}
	if vocab == nil {
		vocab = NewVocabulary()
	}
	return &Model{
		numTopics: numTopics,
		vocab:     vocab,
		counts:    make([]int64, numTopics*(vocab.Len()+1)),
		zero:      hist.NewDense(numTopics),
	}, nil
}

func (m *Model) NumTopics() int {
	return m.numTopics
}

func (m *Model) VocabSize() int {
	return len(m.counts)/m.numTopics - 1
}

func (m *Model) Vocabulary() *Vocabulary {
	return m.vocab
}

func (m *Model) row(r int) hist.Dense {
	b := r * m.numTopics
	return hist.Dense(m.counts[b : b+m.numTopics : b+m.numTopics])
}

func (m *Model) known(word int32) bool {
	return word >= 0 && int(word) < m.VocabSize()
}

// WordTopicDist returns the topic counts of word.  For a word outside
// the model it returns an all-zero row shared by all such calls;
// callers must treat every returned row as read-only.
func (m *Model) WordTopicDist(word int32) hist.Dense {
	if !m.known(word) {
		return m.zero
	}
	return m.row(int(word))
}

// GlobalTopicDist returns the total count of each topic.  Read-only.
func (m *Model) GlobalTopicDist() hist.Dense {
	return m.row(m.VocabSize())
}

func (m *Model) checkCell(word int32, topic int) {
	if !m.known(word) {
		panic(fmt.Sprintf("word %d out of range [0, %d)", word, m.VocabSize()))
	}
	if topic < 0 || topic >= m.numTopics {
		panic(fmt.Sprintf("topic %d out of range [0, %d)", topic, m.numTopics))
	}
}

// IncrementTopic adds delta to the count of (word, topic) and to the
// global count of topic.  A count going negative means the caller's
// bookkeeping is broken, and IncrementTopic panics.
func (m *Model) IncrementTopic(word int32, topic int, delta int64) {
	m.checkCell(word, topic)
	m.row(int(word)).Add(topic, delta)
	m.GlobalTopicDist().Add(topic, delta)
}

// ReassignTopic moves count occurrences of word from oldTopic to
// newTopic.  Both cells are checked before either is touched.
func (m *Model) ReassignTopic(word int32, oldTopic, newTopic int, count int64) {
	m.checkCell(word, oldTopic)
	m.checkCell(word, newTopic)
	if c := m.row(int(word)).At(oldTopic); c < count {
		panic(fmt.Sprintf("word %d topic %d has count %d, cannot move %d",
			word, oldTopic, c, count))
	}
	m.IncrementTopic(word, oldTopic, -count)
	m.IncrementTopic(word, newTopic, count)
}

// ForEach calls p for every word row in id order, and stops at the
// first non-nil error.  Rows must not be modified while iterating.
func (m *Model) ForEach(p func(word int32, dist hist.Dense) error) error {
	for w := 0; w < m.VocabSize(); w++ {
		if e := p(int32(w), m.row(w)); e != nil {
			return e
		}
	}
	return nil
}

// Validate checks that every cell is non-negative and that the global
// row equals the column sums.  It reports all problems, not just the
// first one.
func (m *Model) Validate() error {
	var errs []error
	sums := make([]int64, m.numTopics)
	m.ForEach(func(word int32, dist hist.Dense) error {
		dist.ForEach(func(topic int, count int64) error {
			if count < 0 {
				errs = append(errs, fmt.Errorf("word %d topic %d has negative count %d",
					word, topic, count))
			}
			sums[topic] += count
			return nil
		})
		return nil
	})
	m.GlobalTopicDist().ForEach(func(topic int, count int64) error {
		if count != sums[topic] {
			errs = append(errs, fmt.Errorf("topic %d: global count %d, column sum %d",
				topic, count, sums[topic]))
		}
		return nil
	})
	return errors.Join(errs...)
}

// Clear sets every count to zero.
func (m *Model) Clear() {
	for i := range m.counts {
		m.counts[i] = 0
	}
}

// ReduceCounts passes the whole count buffer, word rows followed by
// the global row, to reduce, which may rewrite it in place.  It is the
// hook of distributed training for summing models across workers.
func (m *Model) ReduceCounts(reduce func(counts []int64) error) error {
	return reduce(m.counts)
}
