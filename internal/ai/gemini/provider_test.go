package gemini

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

type stubClient struct {
	embeddings map[string][]float32
	embedErr   error

	response    string
	generateErr error
	prompts     []string
}

func (s *stubClient) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return s.response, nil
}

func (s *stubClient) EmbedText(_ context.Context, text string) ([]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	vector, ok := s.embeddings[text]
	if !ok {
		return nil, errors.New("unexpected text")
	}
	return vector, nil
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		a, b   []float32
		expect float64
	}{
		{
			name:   "identical vectors",
			a:      []float32{1, 2, 3},
			b:      []float32{1, 2, 3},
			expect: 1,
		},
		{
			name:   "orthogonal vectors",
			a:      []float32{1, 0},
			b:      []float32{0, 1},
			expect: 0,
		},
		{
			name:   "opposite vectors clamp to zero",
			a:      []float32{1, 0},
			b:      []float32{-1, 0},
			expect: 0,
		},
		{
			name:   "zero magnitude",
			a:      []float32{0, 0},
			b:      []float32{1, 1},
			expect: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &stubClient{embeddings: map[string][]float32{
				"first":  tt.a,
				"second": tt.b,
			}}
			provider := NewProvider(client, nil, 0)

			got, err := provider.Similarity(context.Background(), "first", "second")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expect) > 1e-9 {
				t.Fatalf("expected %.4f, got %.4f", tt.expect, got)
			}
		})
	}
}

func TestSimilarityRequiresBothTexts(t *testing.T) {
	t.Parallel()

	provider := NewProvider(&stubClient{}, nil, 0)
	if _, err := provider.Similarity(context.Background(), "", "something"); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestSimilarityEmbedFailure(t *testing.T) {
	t.Parallel()

	client := &stubClient{embedErr: errors.New("quota exceeded")}
	provider := NewProvider(client, nil, 0)

	if _, err := provider.Similarity(context.Background(), "a", "b"); err == nil {
		t.Fatal("expected error from failed embedding")
	}
}

func TestClassifyParsesFencedJSON(t *testing.T) {
	t.Parallel()

	client := &stubClient{response: "```json\n{\"frontend development\": 0.9, \"backend development\": \"0.4\", \"devops\": 0.1}\n```"}
	provider := NewProvider(client, nil, 0)

	labels := []string{"frontend development", "backend development", "devops"}
	got, err := provider.Classify(context.Background(), "react and typescript work", labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(got.Labels))
	}
	if got.Labels[0] != "frontend development" || got.Scores[0] != 0.9 {
		t.Fatalf("expected frontend development first, got %q (%.2f)", got.Labels[0], got.Scores[0])
	}
	if got.Labels[1] != "backend development" || got.Scores[1] != 0.4 {
		t.Fatalf("expected string score coerced, got %q (%.2f)", got.Labels[1], got.Scores[1])
	}
	if got.Labels[2] != "devops" {
		t.Fatalf("expected devops last, got %q", got.Labels[2])
	}
}

func TestClassifyDropsUnknownLabelsAndClamps(t *testing.T) {
	t.Parallel()

	client := &stubClient{response: `{"frontend development": 1.7, "made up label": 0.9, "devops": -0.3}`}
	provider := NewProvider(client, nil, 0)

	got, err := provider.Classify(context.Background(), "text", []string{"frontend development", "devops"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Labels) != 2 {
		t.Fatalf("expected invented label dropped, got %v", got.Labels)
	}
	if got.Scores[0] != 1 {
		t.Fatalf("expected score clamped to 1, got %.2f", got.Scores[0])
	}
	if got.Scores[1] != 0 {
		t.Fatalf("expected score clamped to 0, got %.2f", got.Scores[1])
	}
}

func TestClassifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
	}{
		{name: "not json", response: "I cannot help with that"},
		{name: "no known labels", response: `{"something else": 0.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &stubClient{response: tt.response}
			provider := NewProvider(client, nil, 0)

			if _, err := provider.Classify(context.Background(), "text", []string{"devops"}); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestClassifyPromptIncludesTextAndLabels(t *testing.T) {
	t.Parallel()

	client := &stubClient{response: `{"devops": 0.5}`}
	provider := NewProvider(client, nil, 0)

	if _, err := provider.Classify(context.Background(), "kubernetes operator work", []string{"devops", "cloud computing"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.prompts) != 1 {
		t.Fatalf("expected a single generation call, got %d", len(client.prompts))
	}
	prompt := client.prompts[0]
	if !strings.Contains(prompt, "kubernetes operator work") {
		t.Fatal("prompt missing classified text")
	}
	if !strings.Contains(prompt, "devops, cloud computing") {
		t.Fatal("prompt missing label list")
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "plain json", input: `{"a": 1}`, expect: `{"a": 1}`},
		{name: "fenced json", input: "```json\n{\"a\": 1}\n```", expect: `{"a": 1}`},
		{name: "fenced without language", input: "```\n{\"a\": 1}\n```", expect: `{"a": 1}`},
		{name: "surrounding whitespace", input: "  {\"a\": 1}  ", expect: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractJSON(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
