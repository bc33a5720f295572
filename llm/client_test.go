package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type stubModel struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				s.prompts = append(s.prompts, text.Text)
			}
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s.reply}}}, nil
}

func (s *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s, prompt, options...)
}

func TestLookupMacrosParsesFencedJSON(t *testing.T) {
	t.Parallel()

	model := &stubModel{reply: "```json\n{\"protein\": 6.3, \"fat\": 4.8, \"total_carbs\": 0.6, \"fiber\": 0, \"sugar\": null}\n```"}
	c := NewWithModel(model)

	got, err := c.LookupMacros(context.Background(), "boiled egg")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Protein == nil || *got.Protein != 6.3 || got.Fiber == nil || *got.Fiber != 0 {
		t.Fatalf("unexpected macros: %+v", got)
	}
	if got.Sugar != nil {
		t.Fatalf("null sugar must stay absent, got %v", *got.Sugar)
	}
	if len(model.prompts) != 1 || !strings.Contains(model.prompts[0], "Food: boiled egg") {
		t.Fatalf("unexpected prompt: %v", model.prompts)
	}
}

func TestLookupMacrosPropagatesModelErrors(t *testing.T) {
	t.Parallel()

	c := NewWithModel(&stubModel{err: errors.New("rate limited")})
	if _, err := c.LookupMacros(context.Background(), "rice"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseMacros(t *testing.T) {
	t.Parallel()

	got, err := ParseMacros("Sure! Here you go: {\"protein\": -3, \"fat\": 2} Enjoy.")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Protein != nil {
		t.Fatalf("negative protein must be discarded")
	}
	if got.Fat == nil || *got.Fat != 2 || got.TotalCarbs != nil {
		t.Fatalf("unexpected macros: %+v", got)
	}

	if _, err := ParseMacros("no idea"); err == nil {
		t.Fatalf("expected error for non-JSON answer")
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New("", "", ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
