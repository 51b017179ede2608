package gibbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelAccessor(t *testing.T) {
	m, _, _, e := CreateTestingTrainedModel()
	require.NoError(t, e)

	all := NewModelAccessor(m, testingBeta, -1)
	none := NewModelAccessor(m, testingBeta, 0)
	for w := 0; w < m.VocabSize(); w++ {
		if all.WordTopicDists[w] == nil {
			t.Errorf("Expecting word %d cached", w)
		}
		if none.WordTopicDists[w] != nil {
			t.Errorf("Expecting word %d not cached", w)
		}
	}

	gt := m.GlobalTopicDist()
	vbeta := float64(m.VocabSize()) * testingBeta
	for w := int32(-1); w <= int32(m.VocabSize()); w++ {
		wt := m.WordTopicDist(w)
		for k := 0; k < m.NumTopics(); k++ {
			expected := (float64(wt[k]) + testingBeta) / (float64(gt[k]) + vbeta)
			assert.InDelta(t, expected, all.WordTopicDist(w)[k], 1e-12)
			assert.InDelta(t, expected, none.WordTopicDist(w)[k], 1e-12)
		}
	}
}

func TestModelAccessorKeepsFrequentWords(t *testing.T) {
	v, e := NewVocabularyFromTokens([]string{"rare", "common"})
	require.NoError(t, e)
	// With 100000 topics a distribution takes 800000 bytes, so one
	// megabyte holds exactly one of them.
	m, e := NewModel(100000, v)
	require.NoError(t, e)
	m.IncrementTopic(0, 0, 1)
	m.IncrementTopic(1, 1, 100)

	a := NewModelAccessor(m, testingBeta, 1)
	assert.Nil(t, a.WordTopicDists[0])
	assert.NotNil(t, a.WordTopicDists[1])
	assert.InDelta(t, a.WordTopicDists[1][5], a.WordTopicDist(0)[5], 1e-15,
		"both words have zero count in topic 5")
}
