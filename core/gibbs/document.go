package gibbs

import (
	"bytes"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/openbigdatagroup/plda/core/hist"
)

// WordCount is one `<word> <count>` pair of an input line.
type WordCount struct {
	Word  string
	Count int
}

// ParseWordCounts parses the fields of a corpus line, alternating
// words and non-negative counts.
func ParseWordCounts(fields []string) ([]WordCount, error) {
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("odd number of fields (%d) in word-count pairs",
			len(fields))
	}
	counts := make([]WordCount, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		c, e := strconv.Atoi(fields[i+1])
		if e != nil || c < 0 {
			return nil, fmt.Errorf("invalid count %q of word %q", fields[i+1], fields[i])
		}
		counts = append(counts, WordCount{fields[i], c})
	}
	return counts, nil
}

// WordTopics lists the topics of every occurrence of one word in a
// document.
type WordTopics struct {
	Word   int32
	Topics []int32
}

// Document keeps the topic assignment of every token.  Tokens of the
// same word are stored contiguously: the topics of Words[i] are
// Topics[Starts[i]:Starts[i+1]].  TopicHist counts the tokens
// currently assigned to each topic.
type Document struct {
	Words     []int32
	Starts    []int32
	Topics    []int32
	TopicHist hist.Dense
}

// NewDocument builds a document from words and their token topics.  A
// topic outside [0, numTopics) is a caller bug and panics.
func NewDocument(wts []WordTopics, numTopics int) *Document {
	d := &Document{
		Words:     make([]int32, 0, len(wts)),
		Starts:    make([]int32, 1, len(wts)+1),
		Topics:    make([]int32, 0),
		TopicHist: hist.NewDense(numTopics),
	}
	for _, wt := range wts {
		d.Words = append(d.Words, wt.Word)
		for _, t := range wt.Topics {
			if t < 0 || int(t) >= numTopics {
				panic(fmt.Sprintf("topic %d out of range [0, %d)", t, numTopics))
			}
			d.Topics = append(d.Topics, t)
			d.TopicHist.Inc(int(t), 1)
		}
		d.Starts = append(d.Starts, int32(len(d.Topics)))
	}
	return d
}

// InitializeDocument assigns every token a topic drawn uniformly from
// [0, numTopics).  index maps a word to its id; words with a negative
// id, and words with a non-positive count, are dropped.  A word
// listed more than once is merged into one entry.
func InitializeDocument(counts []WordCount, index func(string) int32,
	numTopics int, rng *rand.Rand) *Document {

	wts := make([]WordTopics, 0, len(counts))
	pos := make(map[int32]int, len(counts))
	for _, wc := range counts {
		if wc.Count <= 0 {
			continue
		}
		id := index(wc.Word)
		if id < 0 {
			continue
		}
		i, ok := pos[id]
		if !ok {
			i = len(wts)
			pos[id] = i
			wts = append(wts, WordTopics{Word: id})
		}
		for j := 0; j < wc.Count; j++ {
			wts[i].Topics = append(wts[i].Topics, int32(rng.Intn(numTopics)))
		}
	}
	return NewDocument(wts, numTopics)
}

// Len returns the number of tokens.
func (d *Document) Len() int {
	return len(d.Topics)
}

// NumWords returns the number of unique words.
func (d *Document) NumWords() int {
	return len(d.Words)
}

func (d *Document) NumTopics() int {
	return d.TopicHist.Len()
}

// ApplyToModel adds the current topic of every token to m.
func (d *Document) ApplyToModel(m *Model) {
	for it := d.Iterator(); !it.Done(); it.Next() {
		m.IncrementTopic(it.Word(), int(it.Topic()), 1)
	}
}

// ResetWordIndex renumbers word ids by remap, which maps an old id to
// a new one.  Topic assignments are kept.
func (d *Document) ResetWordIndex(remap []int32) error {
	words := make([]int32, len(d.Words))
	for i, w := range d.Words {
		if int(w) >= len(remap) || remap[w] < 0 {
			return fmt.Errorf("word id %d has no mapping", w)
		}
		words[i] = remap[w]
	}
	d.Words = words
	return nil
}

func (d *Document) String() string {
	var buf bytes.Buffer
	for i, w := range d.Words {
		fmt.Fprintf(&buf, "%d: %v\n", w, d.Topics[d.Starts[i]:d.Starts[i+1]])
	}
	fmt.Fprintf(&buf, "topics: %v", d.TopicHist)
	return buf.String()
}

// WordOccurrenceIterator walks every token of a document in order.
// SetTopic updates the document's topic histogram but never a Model;
// keeping the two consistent is the Sampler's job.
type WordOccurrenceIterator struct {
	doc  *Document
	word int // index into doc.Words
	pos  int // index into doc.Topics
}

func (d *Document) Iterator() *WordOccurrenceIterator {
	it := &WordOccurrenceIterator{doc: d}
	it.skipExhaustedWords()
	return it
}

func (it *WordOccurrenceIterator) skipExhaustedWords() {
	for it.word < len(it.doc.Words) && it.pos >= int(it.doc.Starts[it.word+1]) {
		it.word++
	}
}

func (it *WordOccurrenceIterator) Done() bool {
	return it.word >= len(it.doc.Words)
}

func (it *WordOccurrenceIterator) Next() {
	it.pos++
	it.skipExhaustedWords()
}

func (it *WordOccurrenceIterator) Word() int32 {
	return it.doc.Words[it.word]
}

func (it *WordOccurrenceIterator) Topic() int32 {
	return it.doc.Topics[it.pos]
}

func (it *WordOccurrenceIterator) SetTopic(topic int32) {
	if topic < 0 || int(topic) >= it.doc.TopicHist.Len() {
		panic(fmt.Sprintf("topic %d out of range [0, %d)",
			topic, it.doc.TopicHist.Len()))
	}
	old := it.doc.Topics[it.pos]
	if old == topic {
		return
	}
	it.doc.TopicHist.Dec(int(old), 1)
	it.doc.TopicHist.Inc(int(topic), 1)
	it.doc.Topics[it.pos] = topic
}
