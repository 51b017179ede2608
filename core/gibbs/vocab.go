package gibbs

import (
	"fmt"
	"sort"
)

// Vocabulary maintains the bi-directional mapping between strings and
// ids.  Ids are in the range of [0, N), where N is the vocabulary
// size, and a token's id is its position in Tokens.  A training run
// assigns ids in order of first appearance; distributed workers Sort
// the vocabulary so that every worker agrees on the same ids.
type Vocabulary struct {
	Tokens []string
	ids    map[string]int
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		Tokens: make([]string, 0),
		ids:    make(map[string]int),
	}
}

// NewVocabularyFromTokens returns a vocabulary whose ids follow the
// order of tokens.  Duplicated tokens are an error.
func NewVocabularyFromTokens(tokens []string) (*Vocabulary, error) {
	v := NewVocabulary()
	for _, t := range tokens {
		if v.Id(t) >= 0 {
			return nil, fmt.Errorf("duplicated token %q", t)
		}
		v.Add(t)
	}
	return v, nil
}

func (v *Vocabulary) buildIdMap() {
	v.ids = make(map[string]int, len(v.Tokens))
	for i := range v.Tokens {
		v.ids[v.Tokens[i]] = i
	}
}

func (v *Vocabulary) Len() int {
	return len(v.Tokens)
}

// Add returns the id of token, appending token to the vocabulary if
// it is not there yet.
func (v *Vocabulary) Add(token string) int32 {
	if id := v.Id(token); id >= 0 {
		return id
	}
	v.Tokens = append(v.Tokens, token)
	v.ids[token] = len(v.Tokens) - 1
	return int32(len(v.Tokens) - 1)
}

func (v *Vocabulary) Token(id int32) string {
	if int(id) < 0 || int(id) >= len(v.Tokens) {
		panic(fmt.Sprintf("id=%d out of range [0, %d)", id, len(v.Tokens)))
	}
	return v.Tokens[id]
}

// Id returns the index of token.  If token is not in the vocabulary,
// it returns a negative value.
func (v *Vocabulary) Id(token string) int32 {
	if v.ids == nil {
		v.buildIdMap()
	}
	if id, ok := v.ids[token]; ok {
		return int32(id)
	}
	return int32(-1)
}

// Sort reorders tokens lexically and reassigns ids accordingly.
func (v *Vocabulary) Sort() {
	sort.Strings(v.Tokens)
	v.buildIdMap()
}

// Remap returns a table r with r[id] being the id in vocabulary to of
// the token whose id is id in v.  Every token of v must be in to.
func (v *Vocabulary) Remap(to *Vocabulary) ([]int32, error) {
	r := make([]int32, len(v.Tokens))
	for i, t := range v.Tokens {
		if r[i] = to.Id(t); r[i] < 0 {
			return nil, fmt.Errorf("token %q not in target vocabulary", t)
		}
	}
	return r, nil
}
