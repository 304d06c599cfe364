package ai

import "context"

// Classification is a ranked labeling of a text across caller-supplied
// candidate labels. Labels are ordered by descending score and Scores is
// aligned with Labels, each in [0, 1].
type Classification struct {
	Labels []string
	Scores []float64
}

// Top returns up to n leading label/score pairs.
func (c *Classification) Top(n int) ([]string, []float64) {
	if c == nil || n <= 0 {
		return nil, nil
	}
	if n > len(c.Labels) {
		n = len(c.Labels)
	}
	return c.Labels[:n], c.Scores[:n]
}

// Provider supplies semantic matching estimates from an external model. Any
// returned error means "provider unavailable"; callers are expected to take
// their deterministic fallback path rather than propagate it.
type Provider interface {
	// Similarity estimates the semantic similarity of two text blocks in
	// [0, 1].
	Similarity(ctx context.Context, a, b string) (float64, error)

	// Classify ranks the candidate labels against the text.
	Classify(ctx context.Context, text string, labels []string) (*Classification, error)
}
