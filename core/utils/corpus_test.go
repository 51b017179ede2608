package utils

import (
	"math/rand"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/openbigdatagroup/plda/core/gibbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempFile(t *testing.T, dir, name, content string) string {
	filename := path.Join(dir, name)
	w, e := CreateWriter(filename)
	require.NoError(t, e)
	_, e = w.Write([]byte(content))
	require.NoError(t, e)
	require.NoError(t, w.Close())
	return filename
}

func TestScanDocuments(t *testing.T) {
	const corpus = "a 2 b 1\n\n# comment\n  \nb 1 c 2\n"
	var indices []int
	var docs [][]gibbs.WordCount
	e := ScanDocuments(strings.NewReader(corpus), func(i int, c []gibbs.WordCount) error {
		indices = append(indices, i)
		docs = append(docs, c)
		return nil
	})
	require.NoError(t, e)
	assert.Equal(t, []int{0, 1}, indices)
	assert.Equal(t, []gibbs.WordCount{{"b", 1}, {"c", 2}}, docs[1])

	e = ScanDocuments(strings.NewReader("a 1\na\n"),
		func(int, []gibbs.WordCount) error { return nil })
	require.Error(t, e)
	assert.Contains(t, e.Error(), "line 2")
}

func TestCorpusFormatFilters(t *testing.T) {
	f := &CorpusFormat{MinWordLength: 2}
	counts, e := f.Parse(strings.Fields("中国 1 人 2 ab 3 c 4"))
	require.NoError(t, e)
	assert.Equal(t, []gibbs.WordCount{{"中国", 1}, {"ab", 3}}, counts)

	f = &CorpusFormat{SkipLatinWords: true}
	counts, e = f.Parse(strings.Fields("中国 1 iPhone 2 ABC 3 x1 4"))
	require.NoError(t, e)
	assert.Equal(t, []gibbs.WordCount{{"中国", 1}, {"ABC", 3}}, counts)
}

func TestSegment(t *testing.T) {
	dir := t.TempDir()
	dict := path.Join(dir, "dict.txt")
	require.NoError(t, os.WriteFile(dict, []byte("中国 100 ns\n人民 100 n\n"), 0644))

	f := &CorpusFormat{Segmenter: NewSegmenter(dict)}
	counts, e := f.Parse([]string{"中国人民", "中国"})
	require.NoError(t, e)
	assert.Equal(t, []gibbs.WordCount{{"中国", 2}, {"人民", 1}}, counts)
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	const content = "apple 1 unknown 0 orange 1\nnothing 0\ncat 2 apple 1\n"

	for _, name := range []string{"corpus", "corpus.gz"} {
		filename := createTempFile(t, dir, name, content)
		vocab := gibbs.NewVocabulary()
		c, e := LoadCorpus(filename, 2, vocab, rand.New(rand.NewSource(1)))
		require.NoError(t, e, name)
		require.Len(t, c, 2, name)
		assert.Equal(t, []string{"apple", "orange", "cat"}, vocab.Tokens)
		assert.Equal(t, []int32{0, 1}, c[0].Words)
		assert.Equal(t, []int32{2, 0}, c[1].Words)
		assert.Equal(t, 3, c[1].Len())
	}
}

func TestLoadCorpusFailures(t *testing.T) {
	dir := t.TempDir()
	empty := createTempFile(t, dir, "empty", "# nothing\na 0\n")
	_, e := LoadCorpus(empty, 2, gibbs.NewVocabulary(), rand.New(rand.NewSource(1)))
	assert.Error(t, e)

	_, e = LoadCorpus(path.Join(dir, "missing"), 2, gibbs.NewVocabulary(),
		rand.New(rand.NewSource(1)))
	assert.Error(t, e)
}
