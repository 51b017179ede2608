package utils

import (
	"path"
	"testing"

	"github.com/openbigdatagroup/plda/core/gibbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadModel(t *testing.T) {
	dir := t.TempDir()
	m := gibbs.CreateTestingModel()

	for _, name := range []string{"model", "model.gz"} {
		filename := path.Join(dir, name)
		require.NoError(t, SaveModel(m, filename))
		m1, e := LoadModel(filename)
		require.NoError(t, e)
		assert.Equal(t, m.Vocabulary().Tokens, m1.Vocabulary().Tokens)
		for w := int32(0); w < int32(m.VocabSize()); w++ {
			assert.Equal(t, m.WordTopicDist(w), m1.WordTopicDist(w))
		}
		assert.Equal(t, m.GlobalTopicDist(), m1.GlobalTopicDist())
	}
}

func TestSaveAndLoadAccumulativeModel(t *testing.T) {
	dir := t.TempDir()
	m := gibbs.CreateTestingModel()
	a, e := gibbs.NewAccumulativeModel(m.NumTopics(), m.Vocabulary())
	require.NoError(t, e)
	a.AccumulateModel(m)
	a.AccumulateModel(m)
	a.AccumulateModel(m)
	a.AverageModel(2)

	filename := path.Join(dir, "accum.gz")
	require.NoError(t, SaveModel(a, filename))
	a1, e := LoadAccumulativeModel(filename)
	require.NoError(t, e)
	for w := int32(0); w < int32(a.VocabSize()); w++ {
		assert.Equal(t, a.WordTopicDist(w), a1.WordTopicDist(w))
	}

	// Averaged counts can be loaded as an integer model.
	m1, e := LoadModel(filename)
	require.NoError(t, e)
	assert.Equal(t, m.NumTopics(), m1.NumTopics())
}

func TestSaveModelToMissingDir(t *testing.T) {
	assert.Error(t, SaveModel(gibbs.CreateTestingModel(),
		path.Join(t.TempDir(), "no", "such", "model")))
}

func TestTranslation(t *testing.T) {
	dir := t.TempDir()
	v := gibbs.CreateTestingVocabulary()
	filename := createTempFile(t, dir, "trans.gz", "apple The apple\ncat Cat\n")

	tr, e := LoadTranslation(filename)
	require.NoError(t, e)
	v1 := TranslatedVocab(v, tr)
	assert.Equal(t, []string{"The apple", "orange", "Cat", "tiger"}, v1.Tokens)
	assert.Equal(t, "apple", v.Tokens[0])

	dup := createTempFile(t, dir, "dup", "a b\na c\n")
	_, e = LoadTranslation(dup)
	assert.Error(t, e)
}
