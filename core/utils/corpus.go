package utils

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	log "github.com/golang/glog"
	"github.com/huichen/sego"
	"github.com/openbigdatagroup/plda/core/gibbs"
	cmprs "github.com/wangkuiyi/compress_io"
)

// CorpusFormat describes how lines of a corpus file become word
// counts.  The zero value reads the `<word> <count> ...` format and
// keeps every word.
type CorpusFormat struct {
	// Words shorter than MinWordLength runes are dropped.
	MinWordLength int
	// SkipLatinWords drops words containing a lower-case ASCII letter.
	SkipLatinWords bool
	// If Segmenter is not nil, lines are raw text, which is segmented
	// into words and counted.
	Segmenter *sego.Segmenter
}

var latinWord = regexp.MustCompile("[a-z]")

func (f *CorpusFormat) keep(word string) bool {
	if f.MinWordLength > 0 && utf8.RuneCountInString(word) < f.MinWordLength {
		return false
	}
	if f.SkipLatinWords && latinWord.MatchString(word) {
		return false
	}
	return true
}

// Parse converts the fields of a line into word counts, dropping the
// words rejected by the filters.
func (f *CorpusFormat) Parse(fields []string) ([]gibbs.WordCount, error) {
	var counts []gibbs.WordCount
	if f.Segmenter != nil {
		counts = Segment(f.Segmenter, strings.Join(fields, " "))
	} else {
		var e error
		if counts, e = gibbs.ParseWordCounts(fields); e != nil {
			return nil, e
		}
	}

	kept := counts[:0]
	for _, wc := range counts {
		if f.keep(wc.Word) {
			kept = append(kept, wc)
		}
	}
	return kept, nil
}

// ScanDocuments calls fn for every document of r.  index counts
// documents from 0, skipping blank and comment lines.
func (f *CorpusFormat) ScanDocuments(r io.Reader,
	fn func(index int, counts []gibbs.WordCount) error) error {

	index := 0
	return gibbs.ScanRecords(r, func(lineno int, fields []string) error {
		counts, e := f.Parse(fields)
		if e != nil {
			return fmt.Errorf("line %d: %w", lineno, e)
		}
		if e := fn(index, counts); e != nil {
			return e
		}
		index++
		return nil
	})
}

// ScanDocuments scans r in the `<word> <count> ...` format.
func ScanDocuments(r io.Reader, fn func(index int, counts []gibbs.WordCount) error) error {
	return new(CorpusFormat).ScanDocuments(r, fn)
}

// LoadCorpus reads the training corpus from filename, adding new words
// to vocab and assigning random topics.  Documents left without words
// are dropped.  It is an error if no document remains.
func (f *CorpusFormat) LoadCorpus(filename string, numTopics int,
	vocab *gibbs.Vocabulary, rng *rand.Rand) ([]*gibbs.Document, error) {

	log.Infof("Loading corpus %s ...", filename)
	r, e := OpenReader(filename)
	if e != nil {
		return nil, e
	}
	defer r.Close()

	corpus := make([]*gibbs.Document, 0)
	scanned := 0
	e = f.ScanDocuments(r, func(_ int, counts []gibbs.WordCount) error {
		scanned++
		if d := gibbs.InitializeDocument(counts, vocab.Add, numTopics, rng); d.Len() > 0 {
			corpus = append(corpus, d)
		}
		return nil
	})
	if e != nil {
		return nil, fmt.Errorf("loading corpus %s: %w", filename, e)
	}
	if len(corpus) == 0 {
		return nil, fmt.Errorf("corpus %s contains no valid document", filename)
	}
	log.Infof("Done loading corpus: %d out of %d, vocabulary size %d.",
		len(corpus), scanned, vocab.Len())
	return corpus, nil
}

// LoadCorpus is LoadCorpus of the default CorpusFormat.
func LoadCorpus(filename string, numTopics int, vocab *gibbs.Vocabulary,
	rng *rand.Rand) ([]*gibbs.Document, error) {
	return new(CorpusFormat).LoadCorpus(filename, numTopics, vocab, rng)
}

// NewSegmenter loads a sego dictionary.  sego exits the process if the
// dictionary cannot be read.
func NewSegmenter(dictionary string) *sego.Segmenter {
	log.Infof("Loading segmenter %s ...", dictionary)
	sgt := new(sego.Segmenter)
	sgt.LoadDictionary(dictionary)
	log.Infof("Done")
	return sgt
}

// Segment splits text into words and counts them in order of first
// appearance.  Whitespace segments are dropped.
func Segment(sgt *sego.Segmenter, text string) []gibbs.WordCount {
	pos := make(map[string]int)
	var counts []gibbs.WordCount
	for _, seg := range sgt.Segment([]byte(text)) {
		w := strings.TrimSpace(seg.Token().Text())
		if len(w) == 0 {
			continue
		}
		if i, ok := pos[w]; ok {
			counts[i].Count++
		} else {
			pos[w] = len(counts)
			counts = append(counts, gibbs.WordCount{Word: w, Count: 1})
		}
	}
	return counts
}

// OpenReader opens filename for reading, decompressing it if its
// extension is .gz.
func OpenReader(filename string) (io.ReadCloser, error) {
	f, e := os.Open(filename)
	r := cmprs.NewReader(f, e, path.Ext(filename))
	if r == nil {
		return nil, fmt.Errorf("cannot open %s: %v", filename, e)
	}
	return r, nil
}

// CreateWriter creates filename, compressing the content if its
// extension is .gz.
func CreateWriter(filename string) (io.WriteCloser, error) {
	f, e := os.Create(filename)
	w := cmprs.NewWriter(f, e, path.Ext(filename))
	if w == nil {
		return nil, fmt.Errorf("cannot create %s: %v", filename, e)
	}
	return w, nil
}
