// Package extract turns rendered job-board content into company and job
// records by prompting an LLM and coercing its loosely typed JSON.
package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jobboard-cli/internal/resilience"
	"github.com/sells-group/jobboard-cli/pkg/anthropic"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Generator produces a text completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnthropicGenerator implements Generator with the Messages API.
type AnthropicGenerator struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	retry       resilience.RetryConfig
}

// NewAnthropicGenerator creates a generator. Empty responses are retried
// along with transport errors.
func NewAnthropicGenerator(client anthropic.Client, model string, maxTokens int64, retry resilience.RetryConfig) *AnthropicGenerator {
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("anthropic", "generate")
	}
	return &AnthropicGenerator{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: 0.1,
		retry:       retry,
	}
}

// Generate implements Generator.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) (string, error) {
		temp := g.temperature
		resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       g.model,
			MaxTokens:   g.maxTokens,
			System:      systemPrompt,
			Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
			Temperature: &temp,
		})
		if err != nil {
			return "", err
		}
		resp.Usage.LogCost(g.model, "extract")

		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return "", ErrEmptyResponse
		}
		return text, nil
	})
	if err != nil {
		return "", eris.Wrap(err, "extract: generate")
	}
	return text, nil
}

const systemPrompt = "You extract structured data from job board pages. Answer with JSON only."
