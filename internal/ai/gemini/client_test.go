package gemini

import (
	"context"
	"testing"

	"google.golang.org/genai"
)

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "   ", ""); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestGenerateContentUninitialized(t *testing.T) {
	var g *Generator
	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for nil generator")
	}
	if g.Model() != "" {
		t.Fatalf("expected empty model for nil generator")
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			nil,
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "  first "}, nil, {Text: ""}}}},
			{Content: &genai.Content{Parts: []*genai.Part{{Text: "second"}}}},
		},
	}

	text, err := responseText(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "first\nsecond" {
		t.Fatalf("unexpected text: %q", text)
	}

	if _, err := responseText(&genai.GenerateContentResponse{}); err == nil {
		t.Fatalf("expected error for empty response")
	}
	if _, err := responseText(nil); err == nil {
		t.Fatalf("expected error for nil response")
	}
}
