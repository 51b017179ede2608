package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/gibbs"
)

func LoadModel(filename string) (*gibbs.Model, error) {
	log.Infof("Loading model %s ...", filename)
	r, e := OpenReader(filename)
	if e != nil {
		return nil, e
	}
	defer r.Close()

	m, e := gibbs.LoadModel(r)
	if e != nil {
		return nil, fmt.Errorf("loading model %s: %w", filename, e)
	}
	log.Infof("Done. %d topics %d words.", m.NumTopics(), m.VocabSize())
	return m, nil
}

func LoadAccumulativeModel(filename string) (*gibbs.AccumulativeModel, error) {
	log.Infof("Loading accumulative model %s ...", filename)
	r, e := OpenReader(filename)
	if e != nil {
		return nil, e
	}
	defer r.Close()

	m, e := gibbs.LoadAccumulativeModel(r)
	if e != nil {
		return nil, fmt.Errorf("loading model %s: %w", filename, e)
	}
	log.Infof("Done. %d topics %d words.", m.NumTopics(), m.VocabSize())
	return m, nil
}

// SaveModel writes m to filename, gzipped if it ends with .gz.
func SaveModel(m io.WriterTo, filename string) (e error) {
	w, e := CreateWriter(filename)
	if e != nil {
		return e
	}
	defer func() {
		if ce := w.Close(); e == nil && ce != nil {
			e = fmt.Errorf("closing %s: %v", filename, ce)
		}
		if e == nil {
			log.Infof("Saved model to %s.", filename)
		}
	}()

	if _, e := m.WriteTo(w); e != nil {
		return fmt.Errorf("writing model to %s: %v", filename, e)
	}
	return nil
}

// Trans maps words to their display names.
type Trans map[string]string

// TranslatedVocab returns a copy of v with tokens replaced by their
// translations.  Words without translation are kept.
func TranslatedVocab(v *gibbs.Vocabulary, tr Trans) *gibbs.Vocabulary {
	tokens := make([]string, len(v.Tokens))
	missing := 0
	for i, s := range v.Tokens {
		if t, exist := tr[s]; exist {
			tokens[i] = t
		} else {
			tokens[i] = s
			missing++
		}
	}
	if missing > 0 {
		log.Warningf("%d out of %d words have no translation", missing, len(tokens))
	}
	// Translations may collide, so skip the duplicate check of
	// NewVocabularyFromTokens.
	return &gibbs.Vocabulary{Tokens: tokens}
}

// LoadTranslation reads lines of `<word> <display name ...>`.
func LoadTranslation(filename string) (Trans, error) {
	log.Infof("Loading translation %s ...", filename)
	r, e := OpenReader(filename)
	if e != nil {
		return nil, e
	}
	defer r.Close()

	trans := make(Trans)
	s := bufio.NewScanner(r)
	for lineno := 1; s.Scan(); lineno++ {
		fs := strings.Fields(s.Text())
		if len(fs) == 0 {
			continue
		}
		if len(fs) < 2 {
			return nil, fmt.Errorf("%s:%d has less than 2 fields", filename, lineno)
		}
		if _, exist := trans[fs[0]]; exist {
			return nil, fmt.Errorf("%s:%d duplicated word %s", filename, lineno, fs[0])
		}
		trans[fs[0]] = strings.Join(fs[1:], " ")
	}
	if e := s.Err(); e != nil {
		return nil, fmt.Errorf("reading %s: %v", filename, e)
	}
	log.Infof("Done loading translation, %d entries.", len(trans))
	return trans, nil
}
