package gibbs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulativeModelAverage(t *testing.T) {
	v, e := NewVocabularyFromTokens([]string{"a", "b"})
	require.NoError(t, e)
	m, e := NewModel(2, v)
	require.NoError(t, e)
	m.IncrementTopic(0, 1, 6)

	a, e := NewAccumulativeModel(2, v)
	require.NoError(t, e)
	for i := 0; i < 5; i++ {
		a.AccumulateModel(m)
	}
	assert.Equal(t, 30.0, a.WordTopicDist(0)[1])
	assert.Equal(t, 30.0, a.GlobalTopicDist()[1])

	a.AverageModel(5)
	assert.Equal(t, []float64{0, 6}, a.WordTopicDist(0))
	assert.Equal(t, []float64{0, 0}, a.WordTopicDist(1))
	assert.Equal(t, []float64{0, 6}, a.GlobalTopicDist())
	assert.Equal(t, []float64{0, 0}, a.WordTopicDist(7))

	assert.Panics(t, func() { a.AverageModel(0) })
}

func TestAccumulativeModelSmallerModel(t *testing.T) {
	v, e := NewVocabularyFromTokens([]string{"a", "b"})
	require.NoError(t, e)
	m, e := NewModel(2, v)
	require.NoError(t, e)
	m.IncrementTopic(1, 0, 3)

	v.Add("c") // known to the accumulator, not to m
	a, e := NewAccumulativeModel(2, v)
	require.NoError(t, e)
	assert.Equal(t, 3, a.VocabSize())

	a.AccumulateModel(m)
	assert.Equal(t, []float64{3, 0}, a.WordTopicDist(1))
	assert.Equal(t, []float64{0, 0}, a.WordTopicDist(2))
	assert.Equal(t, []float64{3, 0}, a.GlobalTopicDist())

	small, e := NewAccumulativeModel(2, nil)
	require.NoError(t, e)
	assert.Panics(t, func() { small.AccumulateModel(m) })

	three, e := NewAccumulativeModel(3, v)
	require.NoError(t, e)
	assert.Panics(t, func() { three.AccumulateModel(m) })
}

func TestAccumulativeModelTextFormat(t *testing.T) {
	v, e := NewVocabularyFromTokens([]string{"a", "b"})
	require.NoError(t, e)
	m, e := NewModel(2, v)
	require.NoError(t, e)
	m.IncrementTopic(0, 1, 6)
	m.IncrementTopic(1, 0, 1)

	a, e := NewAccumulativeModel(2, v)
	require.NoError(t, e)
	a.AccumulateModel(m)
	a.AccumulateModel(m)
	a.AverageModel(4)

	var buf bytes.Buffer
	_, e = a.WriteTo(&buf)
	require.NoError(t, e)
	assert.Equal(t, "a\t0 3\nb\t0.5 0\n", buf.String())

	l, e := LoadAccumulativeModel(strings.NewReader(buf.String()))
	require.NoError(t, e)
	assert.Equal(t, []string{"a", "b"}, l.Vocabulary().Tokens)
	assert.Equal(t, []float64{0.5, 3}, l.GlobalTopicDist())

	// The same text loads as an integer model for inference.
	im, e := LoadModel(strings.NewReader(buf.String()))
	require.NoError(t, e)
	assert.Equal(t, int64(3), im.GlobalTopicDist().Sum())
}

func TestNewAccumulativeModelTooFewTopics(t *testing.T) {
	_, e := NewAccumulativeModel(1, nil)
	assert.ErrorIs(t, e, ErrTooFewTopics)
}
