package utils

import (
	"bytes"
	"fmt"
	"runtime"
	"sort"

	log "github.com/golang/glog"
	"github.com/openbigdatagroup/plda/core/gibbs"
	"github.com/wangkuiyi/parallel"
)

// TopicWeights views a trained model, with integer or averaged counts,
// as a matrix of word-topic weights.
type TopicWeights struct {
	Vocab     *gibbs.Vocabulary
	NumTopics int
	Word      func(word int32) []float64
	Global    []float64
}

func WeightsOfModel(m *gibbs.Model) TopicWeights {
	toFloat := func(h []int64) []float64 {
		r := make([]float64, len(h))
		for i, c := range h {
			r[i] = float64(c)
		}
		return r
	}
	return TopicWeights{
		Vocab:     m.Vocabulary(),
		NumTopics: m.NumTopics(),
		Word:      func(word int32) []float64 { return toFloat(m.WordTopicDist(word)) },
		Global:    toFloat(m.GlobalTopicDist()),
	}
}

func WeightsOfAccumulativeModel(a *gibbs.AccumulativeModel) TopicWeights {
	return TopicWeights{
		Vocab:     a.Vocabulary(),
		NumTopics: a.NumTopics(),
		Word:      a.WordTopicDist,
		Global:    a.GlobalTopicDist(),
	}
}

type TopicDesc struct {
	Id     int
	Nt     float64
	Tokens []TokenDesc
}

type TokenDesc struct {
	Word   string
	Weight float64
}

// String renders the description as a line of the view_model output.
func (d *TopicDesc) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Topic %05d Nt %g:", d.Id, d.Nt)
	for _, t := range d.Tokens {
		fmt.Fprintf(&buf, " %s (%g)", t.Word, t.Weight)
	}
	return buf.String()
}

// DescribeTopics lists, for every topic, the words with positive
// weight in decreasing order of weight, at most maxWordsPerTopic of
// them unless it is not positive.
func DescribeTopics(m TopicWeights, maxWordsPerTopic int) []*TopicDesc {
	log.Infof("Generating topic descriptions ... ")
	v := int32(m.Vocab.Len())
	rows := make([][]float64, v)
	for w := int32(0); w < v; w++ {
		rows[w] = m.Word(w)
	}

	descs := make([]*TopicDesc, m.NumTopics)
	parallel.ForN(0, m.NumTopics, 1, 2*runtime.NumCPU(), func(topic int) {
		tokens := make([]TokenDesc, 0)
		ids := make([]int32, 0)
		for w := int32(0); w < v; w++ {
			if rows[w][topic] > 0 {
				ids = append(ids, w)
			}
		}
		sort.SliceStable(ids, func(i, j int) bool {
			return rows[ids[i]][topic] > rows[ids[j]][topic]
		})
		if maxWordsPerTopic > 0 && len(ids) > maxWordsPerTopic {
			ids = ids[:maxWordsPerTopic]
		}
		for _, w := range ids {
			tokens = append(tokens, TokenDesc{m.Vocab.Token(w), rows[w][topic]})
		}
		descs[topic] = &TopicDesc{Id: topic, Nt: m.Global[topic], Tokens: tokens}
	})

	log.Infof("Done generating topic descriptions.")
	return descs
}
