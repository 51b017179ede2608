package gibbs

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/openbigdatagroup/plda/core/hist"
)

// ScanRecords calls fn with the whitespace-separated fields of every
// line of r, skipping blank lines and lines starting with '#'.
// lineno counts from 1 and includes skipped lines.
func ScanRecords(r io.Reader, fn func(lineno int, fields []string) error) error {
	br := bufio.NewReader(r)
	for lineno := 1; ; lineno++ {
		line, e := br.ReadString('\n')
		if len(line) > 0 {
			if t := strings.TrimSpace(line); len(t) > 0 && t[0] != '#' {
				if e := fn(lineno, strings.Fields(t)); e != nil {
					return e
				}
			}
		}
		if e == io.EOF {
			return nil
		} else if e != nil {
			return fmt.Errorf("line %d: %v", lineno, e)
		}
	}
}

// scanMatrix reads the model text format.  It calls value for every
// count in file order and returns the vocabulary, in line order, and
// the number of topics.
func scanMatrix(r io.Reader, value func(lineno int, field string) error) (
	*Vocabulary, int, error) {

	vocab := NewVocabulary()
	numTopics := 0
	e := ScanRecords(r, func(lineno int, fs []string) error {
		if numTopics == 0 {
			numTopics = len(fs) - 1
			if numTopics < 2 {
				return fmt.Errorf("line %d: %d topics: %w", lineno, numTopics,
					ErrTooFewTopics)
			}
		}
		if len(fs)-1 != numTopics {
			return fmt.Errorf("line %d: expecting %d counts, got %d",
				lineno, numTopics, len(fs)-1)
		}
		if vocab.Id(fs[0]) >= 0 {
			return fmt.Errorf("line %d: duplicated word %q", lineno, fs[0])
		}
		vocab.Add(fs[0])
		for _, f := range fs[1:] {
			if e := value(lineno, f); e != nil {
				return e
			}
		}
		return nil
	})
	if e != nil {
		return nil, 0, e
	}
	if numTopics == 0 {
		return nil, 0, fmt.Errorf("empty model: %w", ErrTooFewTopics)
	}
	return vocab, numTopics, nil
}

func parseReal(lineno int, f string) (float64, error) {
	v, e := strconv.ParseFloat(f, 64)
	if e != nil {
		return 0, fmt.Errorf("line %d: %v", lineno, e)
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("line %d: invalid count %s", lineno, f)
	}
	return v, nil
}

// LoadModel reconstructs a model from its text format.  The
// vocabulary follows line order and the global row is recomputed.
// Real-valued counts, as written for an AccumulativeModel, are
// truncated toward zero.
func LoadModel(r io.Reader) (*Model, error) {
	counts := make([]int64, 0)
	vocab, numTopics, e := scanMatrix(r, func(lineno int, f string) error {
		c, e := strconv.ParseInt(f, 10, 64)
		if e != nil {
			v, e := parseReal(lineno, f)
			if e != nil {
				return e
			}
			if v >= math.MaxInt64 {
				return fmt.Errorf("line %d: count %s overflows", lineno, f)
			}
			c = int64(v)
		}
		if c < 0 {
			return fmt.Errorf("line %d: invalid count %s", lineno, f)
		}
		counts = append(counts, c)
		return nil
	})
	if e != nil {
		return nil, e
	}
	m, e := NewModel(numTopics, vocab)
	if e != nil {
		return nil, e
	}
	for i, c := range counts {
		m.IncrementTopic(int32(i/numTopics), i%numTopics, c)
	}
	return m, nil
}

func formatCounts(w *bufio.Writer, word string, n int, at func(i int) string) {
	w.WriteString(word)
	w.WriteByte('\t')
	for i := 0; i < n; i++ {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(at(i))
	}
	w.WriteByte('\n')
}

// WriteTo writes one line per word: the word, a tab, and its counts
// separated by spaces.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	m.ForEach(func(word int32, dist hist.Dense) error {
		formatCounts(bw, m.vocab.Token(word), dist.Len(), func(i int) string {
			return strconv.FormatInt(dist[i], 10)
		})
		return nil
	})
	e := bw.Flush()
	return cw.n, e
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, e := c.w.Write(p)
	c.n += int64(n)
	return n, e
}
