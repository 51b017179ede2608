package gibbs

import (
	"math/rand"
)

const (
	testingV = 4

	testingAlpha = 0.1
	testingBeta  = 0.01
	testingK     = 2

	testingTotalIterations = 110
	testingBurnIn          = 10
)

// CreateTestingVocabulary creates a vocabulary with testingV tokens:
// apple, orange, cat and tiger, in this id order.
func CreateTestingVocabulary() *Vocabulary {
	v, e := NewVocabularyFromTokens([]string{"apple", "orange", "cat", "tiger"})
	if e != nil {
		panic("CreateTestingVocabulary: " + e.Error())
	}
	return v
}

// CreateTestingDocument creates a document of apple and orange; the
// unknown word is dropped.
func CreateTestingDocument(v *Vocabulary) *Document {
	rng := rand.New(rand.NewSource(1))
	return InitializeDocument([]WordCount{{"apple", 1}, {"unknown", 1},
		{"orange", 1}}, v.Id, testingK, rng)
}

// CreateTestingModel creates a model holding the topics of
// CreateTestingDocument.
func CreateTestingModel() *Model {
	v := CreateTestingVocabulary()
	m, e := NewModel(testingK, v)
	if e != nil {
		panic("CreateTestingModel: " + e.Error())
	}
	CreateTestingDocument(v).ApplyToModel(m)
	return m
}

// CreateTestingCorpus creates four documents, two about fruits and
// two about cats.
func CreateTestingCorpus(v *Vocabulary, rng *rand.Rand) []*Document {
	return []*Document{
		InitializeDocument([]WordCount{{"apple", 2}, {"orange", 1}}, v.Id, testingK, rng),
		InitializeDocument([]WordCount{{"orange", 2}, {"apple", 1}}, v.Id, testingK, rng),
		InitializeDocument([]WordCount{{"cat", 2}, {"tiger", 1}}, v.Id, testingK, rng),
		InitializeDocument([]WordCount{{"tiger", 2}, {"cat", 1}}, v.Id, testingK, rng),
	}
}

// CreateTestingTrainedModel trains a model on CreateTestingCorpus for
// testingTotalIterations, accumulating after testingBurnIn.
func CreateTestingTrainedModel() (*Model, *AccumulativeModel, []*Document, error) {
	v := CreateTestingVocabulary()
	rng := rand.New(rand.NewSource(-1))
	corpus := CreateTestingCorpus(v, rng)

	m, e := NewModel(testingK, v)
	if e != nil {
		return nil, nil, nil, e
	}
	a, e := NewAccumulativeModel(testingK, v)
	if e != nil {
		return nil, nil, nil, e
	}
	s, e := NewSampler(testingAlpha, testingBeta, m, a, rng)
	if e != nil {
		return nil, nil, nil, e
	}
	s.InitModelGivenTopics(corpus)
	for iter := 0; iter < testingTotalIterations; iter++ {
		s.DoIteration(corpus, true, iter < testingBurnIn)
	}
	a.AverageModel(testingTotalIterations - testingBurnIn)
	return m, a, corpus, nil
}
