package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"

	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
)

// ErrNotConfigured is returned by New when no API key is set.
var ErrNotConfigured = errors.New("LLM_API_KEY not configured")

const lookupTemplate = `Provide the nutritional information for one typical serving of this food.
Food: {{.food_name}}

Return ONLY a JSON object with grams as numbers, using null for anything you cannot estimate:
{
  "protein": float,
  "fat": float,
  "total_carbs": float,
  "fiber": float,
  "sugar": float
}`

// Client asks a chat model to estimate macros for a food name.
type Client struct {
	model    llms.Model
	template prompts.PromptTemplate
}

// New connects to an OpenAI-compatible endpoint.
func New(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	opts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating llm: %w", err)
	}
	return NewWithModel(m), nil
}

// NewWithModel wraps an existing model, e.g. a test double.
func NewWithModel(m llms.Model) *Client {
	return &Client{
		model:    m,
		template: prompts.NewPromptTemplate(lookupTemplate, []string{"food_name"}),
	}
}

// LookupMacros returns the model's estimate. Fields the model leaves null,
// or answers with a negative number, come back absent.
func (c *Client) LookupMacros(ctx context.Context, foodName string) (models.PartialMacros, error) {
	prompt, err := c.template.Format(map[string]any{"food_name": foodName})
	if err != nil {
		return models.PartialMacros{}, fmt.Errorf("formatting prompt: %w", err)
	}

	logger.Info("Using LLM to estimate macros", "food", foodName)
	resp, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(0.2),
		llms.WithMaxTokens(300),
	)
	if err != nil {
		return models.PartialMacros{}, fmt.Errorf("calling llm: %w", err)
	}

	macros, err := ParseMacros(resp)
	if err != nil {
		return models.PartialMacros{}, err
	}
	return macros, nil
}

// ParseMacros decodes a model answer, tolerating markdown code fences.
func ParseMacros(resp string) (models.PartialMacros, error) {
	clean := stripCodeFence(resp)

	var data models.PartialMacros
	if err := json.Unmarshal([]byte(clean), &data); err != nil {
		return models.PartialMacros{}, fmt.Errorf("unmarshalling llm response: %w", err)
	}
	for _, v := range []**float64{&data.Protein, &data.Fat, &data.TotalCarbs, &data.Fiber, &data.Sugar} {
		if *v != nil && models.CheckGrams("", **v) != nil {
			logger.Warn("Discarding invalid llm macro value", "value", **v)
			*v = nil
		}
	}
	return data, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	// Some models wrap the object in prose; keep the outermost braces.
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}
