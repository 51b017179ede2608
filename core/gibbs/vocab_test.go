package gibbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyTokenAndId(t *testing.T) {
	v := CreateTestingVocabulary()
	if v.Len() != testingV {
		t.Errorf("Expecting v.Len() = %d, got %d", testingV, v.Len())
	}
	for i, token := range []string{"apple", "orange", "cat", "tiger"} {
		if id := v.Id(token); id != int32(i) {
			t.Errorf("Expecting Id(%s) = %d, got %d", token, i, id)
		}
		if s := v.Token(int32(i)); s != token {
			t.Errorf("Expecting Token(%d) = %s, got %s", i, token, s)
		}
	}
	if id := v.Id("unknown"); id >= 0 {
		t.Errorf("Expecting negative Id for unknown token, got %d", id)
	}
	assert.Panics(t, func() { v.Token(testingV) })
	assert.Panics(t, func() { v.Token(-1) })
}

func TestVocabularyAdd(t *testing.T) {
	v := NewVocabulary()
	assert.Equal(t, int32(0), v.Add("b"))
	assert.Equal(t, int32(1), v.Add("a"))
	assert.Equal(t, int32(0), v.Add("b"))
	assert.Equal(t, []string{"b", "a"}, v.Tokens)
}

func TestVocabularyDuplicatedTokens(t *testing.T) {
	_, e := NewVocabularyFromTokens([]string{"a", "b", "a"})
	assert.Error(t, e)
}

func TestVocabularySortAndRemap(t *testing.T) {
	local, e := NewVocabularyFromTokens([]string{"tiger", "apple", "cat"})
	require.NoError(t, e)

	global, e := NewVocabularyFromTokens([]string{"zebra", "tiger", "cat", "apple"})
	require.NoError(t, e)
	global.Sort()
	assert.Equal(t, []string{"apple", "cat", "tiger", "zebra"}, global.Tokens)
	assert.Equal(t, int32(3), global.Id("zebra"))

	r, e := local.Remap(global)
	require.NoError(t, e)
	assert.Equal(t, []int32{2, 0, 1}, r)

	_, e = global.Remap(local)
	assert.Error(t, e, "zebra is not in the local vocabulary")
}
