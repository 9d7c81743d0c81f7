package textsource

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Decoration controls optional capitalization and trailing punctuation.
type Decoration struct {
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generator produces randomized word prompts.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a Generator seeded with the current time.
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator returns a deterministic Generator.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Words picks count words uniformly with replacement and joins them with
// single spaces.
func (g *Generator) Words(words []string, count int, d Decoration) string {
	if len(words) == 0 || count <= 0 {
		return ""
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		word = applyCaps(g.rnd, word, d.CapsPct)
		word = applyPunct(g.rnd, word, d.PunctPct, d.PunctSet)
		out = append(out, word)
	}
	return strings.Join(out, " ")
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
