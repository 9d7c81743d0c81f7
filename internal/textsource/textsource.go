// Package textsource supplies practice prompts from stored words and quotes.
package textsource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/verte-zerg/typeforge/internal/model"
	"github.com/verte-zerg/typeforge/internal/store"
)

// Word count bounds for word prompts.
const (
	DefaultWordCount = 45
	MinWordCount     = 10
	MaxWordCount     = 120
)

// DefaultLang is the word table language used when none is given.
const DefaultLang = "en"

// Store reads prompt content.
type Store interface {
	Words(ctx context.Context, lang string) ([]string, error)
	RandomQuote(ctx context.Context) (model.Quote, error)
}

// Options tune a prompt request.
type Options struct {
	WordCount  int
	Lang       string
	Decoration Decoration
	// Words replaces the stored vocabulary for Lang when non-empty.
	Words []string
}

// Prompt is the text a session is typed against.
type Prompt struct {
	Source model.TextSource `json:"source"`
	Text   string           `json:"text"`
	Author string           `json:"author,omitempty"`
}

// Provider builds prompts.
type Provider struct {
	store Store

	mu  sync.Mutex
	gen *Generator
}

// NewProvider returns a Provider reading from st. A nil store serves the
// fallback texts only.
func NewProvider(st Store) *Provider {
	return &Provider{store: st, gen: NewGenerator()}
}

// WithGenerator replaces the random source.
func (p *Provider) WithGenerator(g *Generator) *Provider {
	p.gen = g
	return p
}

// ValidWordCount reports whether n is within the accepted range.
func ValidWordCount(n int) bool {
	return n >= MinWordCount && n <= MaxWordCount
}

// Prompt returns a prompt of the requested source. Empty tables fall back to
// built-in text.
func (p *Provider) Prompt(ctx context.Context, source model.TextSource, opts Options) (Prompt, error) {
	switch source {
	case model.TextSourceQuote:
		q, err := p.quote(ctx)
		if err != nil {
			return Prompt{}, err
		}
		return Prompt{Source: model.TextSourceQuote, Text: q.Content, Author: q.Author}, nil
	case model.TextSourceWords, "":
		text, err := p.words(ctx, opts)
		if err != nil {
			return Prompt{}, err
		}
		return Prompt{Source: model.TextSourceWords, Text: text}, nil
	default:
		return Prompt{}, fmt.Errorf("unknown text source %q", source)
	}
}

func (p *Provider) words(ctx context.Context, opts Options) (string, error) {
	count := opts.WordCount
	if count == 0 {
		count = DefaultWordCount
	}
	if !ValidWordCount(count) {
		return "", fmt.Errorf("word count %d out of range %d-%d", count, MinWordCount, MaxWordCount)
	}
	lang := opts.Lang
	if lang == "" {
		lang = DefaultLang
	}
	words := opts.Words
	if len(words) == 0 && p.store != nil {
		var err error
		words, err = p.store.Words(ctx, lang)
		if err != nil {
			return "", fmt.Errorf("load words: %w", err)
		}
	}
	if len(words) == 0 {
		return FallbackWords, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen.Words(words, count, opts.Decoration), nil
}

func (p *Provider) quote(ctx context.Context) (model.Quote, error) {
	if p.store == nil {
		return FallbackQuote, nil
	}
	q, err := p.store.RandomQuote(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return FallbackQuote, nil
	}
	if err != nil {
		return model.Quote{}, fmt.Errorf("load quote: %w", err)
	}
	return q, nil
}
