package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/talentmatch/talentmatch/internal/ai"
	"github.com/talentmatch/talentmatch/internal/utils"
)

type apiClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Provider implements ai.Provider on top of the Gemini API. Similarity is
// computed from embedding vectors, classification from a structured
// generation prompt.
type Provider struct {
	client    apiClient
	logger    *zap.Logger
	maxLogLen int
}

//go:embed classify_prompt.md
var classifyPromptTemplate string

const defaultMaxLogLength = 200

func NewProvider(client apiClient, log *zap.Logger, maxLogLength int) *Provider {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Provider{
		client:    client,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Similarity embeds both texts and returns their cosine similarity clamped
// to [0, 1].
func (p *Provider) Similarity(ctx context.Context, a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, errors.New("both texts are required for similarity")
	}

	va, err := p.client.EmbedText(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("embed first text: %w", err)
	}

	vb, err := p.client.EmbedText(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("embed second text: %w", err)
	}

	sim := cosineSimilarity(va, vb)
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}

	p.logger.Debug("gemini similarity computed",
		zap.Int("vector_size", len(va)),
		zap.Float64("similarity", sim),
	)

	return sim, nil
}

// Classify asks the model to score the text against the labels and returns
// the scores sorted in descending order. Labels the model invents are
// dropped.
func (p *Provider) Classify(ctx context.Context, text string, labels []string) (*ai.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text is required for classification")
	}
	if len(labels) == 0 {
		return nil, errors.New("at least one label is required")
	}

	prompt := buildClassifyPrompt(text, labels)

	p.logger.Debug("gemini classify request",
		zap.Int("labels", len(labels)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, p.maxLogLen)),
	)

	raw, err := p.client.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("gemini classify response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, p.maxLogLen)),
	)

	return parseClassification(raw, labels)
}

func buildClassifyPrompt(text string, labels []string) string {
	template := classifyPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Text:\n{{TEXT}}\n\nLabels: {{LABELS}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{TEXT}}", text)
	prompt = strings.ReplaceAll(prompt, "{{LABELS}}", strings.Join(labels, ", "))
	return prompt
}

func parseClassification(raw string, labels []string) (*ai.Classification, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	known := make(map[string]bool, len(labels))
	for _, label := range labels {
		known[strings.ToLower(strings.TrimSpace(label))] = true
	}

	type scored struct {
		label string
		score float64
	}

	entries := make([]scored, 0, len(data))
	for label, value := range data {
		normalized := strings.ToLower(strings.TrimSpace(label))
		if !known[normalized] {
			continue
		}
		score := coerceFloat(value)
		if math.IsNaN(score) {
			continue
		}
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		entries = append(entries, scored{label: normalized, score: score})
	}

	if len(entries) == 0 {
		return nil, errors.New("gemini response contains no known labels")
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	result := &ai.Classification{
		Labels: make([]string, len(entries)),
		Scores: make([]float64, len(entries)),
	}
	for i, entry := range entries {
		result.Labels[i] = entry.label
		result.Scores[i] = entry.score
	}

	return result, nil
}

func cosineSimilarity(a, b []float32) float64 {
	size := len(a)
	if len(b) < size {
		size = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < size; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
