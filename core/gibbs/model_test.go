package gibbs

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbigdatagroup/plda/core/hist"
)

func createSmallModel(t *testing.T) *Model {
	v, e := NewVocabularyFromTokens([]string{"a", "b"})
	require.NoError(t, e)
	m, e := NewModel(3, v)
	require.NoError(t, e)
	m.IncrementTopic(0, 0, 5)
	m.IncrementTopic(0, 2, 1)
	m.IncrementTopic(1, 1, 2)
	return m
}

func TestNewModel(t *testing.T) {
	m := CreateTestingModel()
	if m.NumTopics() != testingK {
		t.Errorf("Expecting m.NumTopics %d, got %d", testingK, m.NumTopics())
	}
	if m.VocabSize() != testingV {
		t.Errorf("Expecting m.VocabSize %d, got %d", testingV, m.VocabSize())
	}
	assert.NoError(t, m.Validate())

	_, e := NewModel(1, CreateTestingVocabulary())
	assert.True(t, errors.Is(e, ErrTooFewTopics))
}

func TestModelUnknownWord(t *testing.T) {
	m := createSmallModel(t)
	assert.Equal(t, hist.Dense{0, 0, 0}, m.WordTopicDist(2))
	assert.Equal(t, hist.Dense{0, 0, 0}, m.WordTopicDist(-1))
	assert.Panics(t, func() { m.IncrementTopic(2, 0, 1) })
	assert.Panics(t, func() { m.IncrementTopic(0, 3, 1) })
}

func TestModelInvariantUnderUpdates(t *testing.T) {
	m, e := NewModel(4, CreateTestingVocabulary())
	require.NoError(t, e)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		w := int32(rng.Intn(m.VocabSize()))
		k := rng.Intn(m.NumTopics())
		if m.WordTopicDist(w).At(k) == 0 || rng.Intn(3) == 0 {
			m.IncrementTopic(w, k, int64(1+rng.Intn(3)))
		} else {
			rowSum := m.WordTopicDist(w).Sum()
			globalSum := m.GlobalTopicDist().Sum()
			c := 1 + rng.Int63n(m.WordTopicDist(w).At(k))
			m.ReassignTopic(w, k, (k+1)%m.NumTopics(), c)
			if m.WordTopicDist(w).Sum() != rowSum ||
				m.GlobalTopicDist().Sum() != globalSum {
				t.Fatalf("ReassignTopic changed totals of word %d", w)
			}
		}
		if e := m.Validate(); e != nil {
			t.Fatalf("Step %d: %v", i, e)
		}
	}
}

func TestModelRejectsNegativeCounts(t *testing.T) {
	m := createSmallModel(t)
	assert.Panics(t, func() { m.IncrementTopic(1, 0, -1) })
	assert.Panics(t, func() { m.ReassignTopic(1, 1, 0, 3) })
	assert.Equal(t, hist.Dense{0, 2, 0}, m.WordTopicDist(1),
		"a rejected reassignment changes nothing")
	assert.NoError(t, m.Validate())
}

func TestModelValidateReportsEverything(t *testing.T) {
	m := createSmallModel(t)
	m.counts[0] = -1 // word a, topic 0
	m.counts[4] = 7  // word b, topic 1

	e := m.Validate()
	require.Error(t, e)
	msg := e.Error()
	assert.Contains(t, msg, "word 0 topic 0 has negative count -1")
	assert.Contains(t, msg, "topic 0: global count 5, column sum -1")
	assert.Contains(t, msg, "topic 1: global count 2, column sum 7")
	assert.NotContains(t, msg, "topic 2:")
}

func TestModelForEach(t *testing.T) {
	m := createSmallModel(t)
	var words []string
	m.ForEach(func(word int32, dist hist.Dense) error {
		words = append(words, fmt.Sprintf("%s%v", m.Vocabulary().Token(word), dist))
		return nil
	})
	assert.Equal(t, []string{"a[5 0 1]", "b[0 2 0]"}, words)
	assert.Equal(t, hist.Dense{5, 2, 1}, m.GlobalTopicDist())
}

func TestModelReduceCountsAndClear(t *testing.T) {
	m := createSmallModel(t)
	e := m.ReduceCounts(func(counts []int64) error {
		assert.Len(t, counts, 9)
		for i := range counts {
			counts[i] *= 2
		}
		return nil
	})
	require.NoError(t, e)
	assert.Equal(t, hist.Dense{10, 0, 2}, m.WordTopicDist(0))
	assert.Equal(t, hist.Dense{10, 4, 2}, m.GlobalTopicDist())
	assert.NoError(t, m.Validate())

	m.Clear()
	assert.Equal(t, int64(0), m.GlobalTopicDist().Sum())
	assert.Equal(t, 2, m.VocabSize())
}

func TestModelTextFormat(t *testing.T) {
	m := createSmallModel(t)
	var buf bytes.Buffer
	n, e := m.WriteTo(&buf)
	require.NoError(t, e)
	assert.Equal(t, "a\t5 0 1\nb\t0 2 0\n", buf.String())
	assert.Equal(t, int64(buf.Len()), n)
}

func TestModelRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, size := range []struct{ v, k int }{{1, 2}, {3, 2}, {10, 7}, {50, 20}} {
		tokens := make([]string, size.v)
		for i := range tokens {
			tokens[i] = fmt.Sprintf("w%03d", size.v-i)
		}
		v, e := NewVocabularyFromTokens(tokens)
		require.NoError(t, e)
		m, e := NewModel(size.k, v)
		require.NoError(t, e)
		for i := 0; i < 3*size.v; i++ {
			m.IncrementTopic(int32(rng.Intn(size.v)), rng.Intn(size.k),
				rng.Int63n(1<<40))
		}

		var buf bytes.Buffer
		_, e = m.WriteTo(&buf)
		require.NoError(t, e)
		l, e := LoadModel(&buf)
		require.NoError(t, e)

		assert.Equal(t, m.Vocabulary().Tokens, l.Vocabulary().Tokens)
		assert.Equal(t, m.counts, l.counts)
		assert.NoError(t, l.Validate())
	}
}

func TestLoadModel(t *testing.T) {
	m, e := LoadModel(strings.NewReader("# header\n\na\t1 2\n  \nb\t3 4"))
	require.NoError(t, e)
	assert.Equal(t, 2, m.NumTopics())
	assert.Equal(t, 2, m.VocabSize())
	assert.Equal(t, hist.Dense{4, 6}, m.GlobalTopicDist())
	assert.Equal(t, int32(1), m.Vocabulary().Id("b"))

	m, e = LoadModel(strings.NewReader("a\t1.7 2\nb\t0.2 3.9\n"))
	require.NoError(t, e)
	assert.Equal(t, hist.Dense{1, 2}, m.WordTopicDist(0))
	assert.Equal(t, hist.Dense{0, 3}, m.WordTopicDist(1))
	assert.Equal(t, hist.Dense{1, 5}, m.GlobalTopicDist())
}

func TestLoadModelErrors(t *testing.T) {
	for _, text := range []string{
		"",
		"# nothing\n",
		"a\t1\n",
		"a\t1 2\nb\t1\n",
		"a\t1 -2\n",
		"a\t1 x\n",
		"a\t1 2\na\t3 4\n",
	} {
		if _, e := LoadModel(strings.NewReader(text)); e == nil {
			t.Errorf("Expecting an error loading %q", text)
		}
	}
	_, e := LoadModel(strings.NewReader("a\t1\n"))
	assert.True(t, errors.Is(e, ErrTooFewTopics))
}
