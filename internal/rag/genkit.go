package rag

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"google.golang.org/genai"
)

// GenkitGenerator implements Generator on top of a genkit model.
type GenkitGenerator struct {
	g           *genkit.Genkit
	modelName   string
	temperature float32
	maxTokens   int
}

// NewGenkitGenerator creates a generator bound to the named model.
func NewGenkitGenerator(g *genkit.Genkit, modelName string, temperature float32, maxTokens int) *GenkitGenerator {
	return &GenkitGenerator{
		g:           g,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Generate produces the full answer in one call.
func (gg *GenkitGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, gg.g, gg.options(system, prompt)...)
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}
	return resp.Text(), nil
}

// GenerateStream produces the answer incrementally, invoking cb per chunk.
// The returned string is the complete text.
func (gg *GenkitGenerator) GenerateStream(ctx context.Context, system, prompt string, cb StreamCallback) (string, error) {
	opts := gg.options(system, prompt)
	opts = append(opts, ai.WithStreaming(func(_ context.Context, chunk *ai.ModelResponseChunk) error {
		return cb(chunk.Text())
	}))

	resp, err := genkit.Generate(ctx, gg.g, opts...)
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}
	return resp.Text(), nil
}

func (gg *GenkitGenerator) options(system, prompt string) []ai.GenerateOption {
	temperature := gg.temperature
	return []ai.GenerateOption{
		ai.WithModelName(gg.modelName),
		ai.WithSystem(system),
		ai.WithPrompt(prompt),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature:     &temperature,
			MaxOutputTokens: int32(gg.maxTokens),
		}),
	}
}
