package gibbs

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator(t *testing.T) {
	m, _, corpus, e := CreateTestingTrainedModel()
	require.NoError(t, e)
	s, e := NewSampler(testingAlpha, testingBeta, m, nil, rand.New(rand.NewSource(1)))
	require.NoError(t, e)

	expected := 0.0
	for _, d := range corpus {
		expected += s.LogLikelihood(d)
	}

	for _, shards := range []int{0, 1, 3, 10} {
		logl, n := NewEvaluator(s, shards).LogLikelihood(corpus)
		assert.InDelta(t, expected, logl, 1e-9, "shards = %d", shards)
		assert.Equal(t, 12, n)
	}

	logl, n := NewEvaluator(s, 2).LogLikelihood(corpus)
	assert.InDelta(t, math.Exp(-logl/12), Perplexity(logl, n), 1e-12)
	assert.True(t, Perplexity(logl, n) >= 1)
	assert.True(t, math.IsInf(Perplexity(0, 0), 1))
}
