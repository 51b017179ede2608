package gibbs

import (
	"container/heap"
	"unsafe"
)

// ModelAccessor serves the smoothed word-topic factors
//
//	phi[w][k] = (n_wk + beta) / (n_k + V beta)
//
// of a model that no longer changes.  Factors of the most frequent
// words are precomputed within a memory budget; the rest are computed
// on demand.  A ModelAccessor is safe for concurrent reads.
type ModelAccessor struct {
	model          *Model
	beta           float64
	WordTopicDists [][]float64
	norm           []float64 // 1 / (n_k + V beta)
}

// NewModelAccessor caches as many words as fit in cacheSizeMB, or all
// words if cacheSizeMB is negative.
func NewModelAccessor(model *Model, beta float64, cacheSizeMB int) *ModelAccessor {
	a := &ModelAccessor{
		model:          model,
		beta:           beta,
		WordTopicDists: make([][]float64, model.VocabSize()),
		norm:           make([]float64, model.NumTopics()),
	}
	vbeta := float64(model.VocabSize()) * beta
	for k, n := range model.GlobalTopicDist() {
		a.norm[k] = 1 / (float64(n) + vbeta)
	}

	// The maximum number C of topic distributions that can be cached.
	cached := model.VocabSize()
	if cacheSizeMB >= 0 {
		var f64 float64
		cached = (cacheSizeMB*1024*1024 -
			model.VocabSize()*int(unsafe.Sizeof(a.WordTopicDists[0]))) /
			(model.NumTopics() * int(unsafe.Sizeof(f64)))
	}

	if cached > 0 {
		// Count the word frequencies and select the largest C words.
		h := newMinHeap(model.VocabSize())
		heap.Init(h)
		for word := 0; word < model.VocabSize(); word++ {
			freq := model.WordTopicDist(int32(word)).Sum()
			if len(*h) < cached {
				heap.Push(h, wordFreq{word, freq})
			} else if freq > (*h)[0].freq {
				heap.Pop(h)
				heap.Push(h, wordFreq{word, freq})
			}
		}

		for h.Len() > 0 {
			wf := heap.Pop(h).(wordFreq)
			a.WordTopicDists[wf.word] = a.compute(int32(wf.word))
		}
	}
	return a
}

func (a *ModelAccessor) compute(word int32) []float64 {
	dist := make([]float64, len(a.norm))
	wt := a.model.WordTopicDist(word)
	for k := range dist {
		dist[k] = (float64(wt[k]) + a.beta) * a.norm[k]
	}
	return dist
}

// WordTopicDist returns phi[word].  Unknown words get the smoothing
// term only.  Read-only.
func (a *ModelAccessor) WordTopicDist(word int32) []float64 {
	if word >= 0 && int(word) < len(a.WordTopicDists) {
		if dist := a.WordTopicDists[word]; dist != nil {
			return dist
		}
	}
	return a.compute(word)
}

type minHeap []wordFreq
type wordFreq struct {
	word int
	freq int64
}

func newMinHeap(size int) *minHeap {
	h := new(minHeap)
	*h = make(minHeap, 0, size)
	return h
}

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].freq < h[j].freq }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(wordFreq)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
