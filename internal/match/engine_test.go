package match

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/talentmatch/internal/ai"
	"github.com/talentmatch/talentmatch/internal/recruiting"
)

// stubProvider is a deterministic ai.Provider for engine tests. Call counts
// are tracked to observe caching behavior.
type stubProvider struct {
	mu sync.Mutex

	similarity    float64
	similarityErr error
	classifyErr   error
	labels        []string
	scores        []float64

	similarityCalls int
	classifyCalls   int
}

func (p *stubProvider) Similarity(context.Context, string, string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.similarityCalls++
	if p.similarityErr != nil {
		return 0, p.similarityErr
	}
	return p.similarity, nil
}

func (p *stubProvider) Classify(context.Context, string, []string) (*ai.Classification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.classifyCalls++
	if p.classifyErr != nil {
		return nil, p.classifyErr
	}
	return &ai.Classification{Labels: p.labels, Scores: p.scores}, nil
}

func testCandidate() *recruiting.CandidateProfile {
	return &recruiting.CandidateProfile{
		ID:         "c1",
		Skills:     []string{"React", "Node.js", "TypeScript"},
		Experience: "6 years",
		Available:  true,
	}
}

func testJob() *recruiting.JobPosting {
	return &recruiting.JobPosting{
		ID:              "j1",
		Title:           "Frontend Engineer",
		Description:     "Build web applications",
		RequiredSkills:  []string{"React", "Node.js", "MongoDB", "TypeScript"},
		ExperienceLevel: "5+ years",
	}
}

func scenarioProvider() *stubProvider {
	return &stubProvider{
		similarity: 0.8,
		labels:     []string{"frontend development", "full stack development", "backend development"},
		scores:     []float64{0.9, 0.8, 0.7},
	}
}

func TestEvaluateHybridScenario(t *testing.T) {
	t.Parallel()

	engine := NewEngine(scenarioProvider(), NewMemoryCache(), nil)

	result, err := engine.Evaluate(context.Background(), testCandidate(), testJob())
	require.NoError(t, err)

	assert.Equal(t, "j1", result.JobID)
	assert.Equal(t, "c1", result.CandidateID)
	assert.Equal(t, recruiting.MethodHybrid, result.Method)
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.ComputedAt.IsZero())

	require.NotNil(t, result.Breakdown)
	assert.Equal(t, 75, result.Breakdown.KeywordScore)
	assert.Equal(t, []string{"react", "node.js", "typescript"}, result.MatchedSkills)
	assert.Equal(t, []string{"mongodb"}, result.MissingSkills)

	assert.Equal(t, 80, result.Breakdown.Similarity)
	assert.Equal(t, 82, result.Breakdown.ExperienceMatch)
	assert.Equal(t, 80, result.Breakdown.SkillsAlignment)
	assert.Equal(t, 81, result.Breakdown.AIScore)
	assert.Equal(t, 99, result.Breakdown.AIConfidence)
	assert.Equal(t, 0.3, result.Breakdown.KeywordWeight)
	assert.Equal(t, 0.7, result.Breakdown.AIWeight)

	assert.Equal(t, 79, result.Percentage)
	assert.GreaterOrEqual(t, result.Percentage, 75)
	assert.LessOrEqual(t, result.Percentage, 90)

	assert.Equal(t, 85, result.Confidence)

	require.NotNil(t, result.Insights)
	assert.NotEmpty(t, result.Insights.Strengths)
	assert.NotEmpty(t, result.Insights.Recommendations)
	assert.NotEmpty(t, result.InterviewQuestions)
	assert.LessOrEqual(t, len(result.InterviewQuestions), 5)
	assert.Len(t, result.Breakdown.TopCategories, 3)
	assert.Equal(t, "frontend development", result.Breakdown.TopCategories[0].Category)
}

func TestEvaluateProviderFailureFallsBack(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		similarityErr: errors.New("timeout"),
		classifyErr:   errors.New("timeout"),
	}
	engine := NewEngine(provider, NewMemoryCache(), nil)

	result, err := engine.Evaluate(context.Background(), testCandidate(), testJob())
	require.NoError(t, err)

	assert.Equal(t, recruiting.MethodFallback, result.Method)
	// keyword 75 at weight 0.7 with a zero semantic score
	assert.Equal(t, 53, result.Percentage)
	assert.Equal(t, 35, result.Confidence)
	assert.Contains(t, result.Reasoning, fallbackReasoning)
	assert.Nil(t, result.Insights)
	assert.Empty(t, result.InterviewQuestions)

	require.NotNil(t, result.Breakdown)
	assert.Equal(t, 0, result.Breakdown.AIScore)
	assert.Equal(t, 0, result.Breakdown.AIConfidence)
	assert.Equal(t, 0.7, result.Breakdown.KeywordWeight)
}

func TestEvaluateKeywordOnlyWithoutProvider(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil, nil, nil)

	result, err := engine.Evaluate(context.Background(), testCandidate(), testJob())
	require.NoError(t, err)

	assert.Equal(t, recruiting.MethodKeyword, result.Method)
	assert.Equal(t, 75, result.Percentage)
	assert.Equal(t, 0, result.Confidence)
	assert.NotEmpty(t, result.Reasoning)
	assert.Nil(t, result.Insights)
	assert.Nil(t, result.Breakdown)
}

func TestEvaluateCachesSemanticAnalysis(t *testing.T) {
	t.Parallel()

	provider := scenarioProvider()
	engine := NewEngine(provider, NewMemoryCache(), nil)
	ctx := context.Background()

	first, err := engine.Evaluate(ctx, testCandidate(), testJob())
	require.NoError(t, err)

	second, err := engine.Evaluate(ctx, testCandidate(), testJob())
	require.NoError(t, err)

	assert.Equal(t, first.Percentage, second.Percentage)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, 1, provider.similarityCalls)
	assert.Equal(t, 1, provider.classifyCalls)
}

func TestEvaluateCacheMissesOnEditedTexts(t *testing.T) {
	t.Parallel()

	provider := scenarioProvider()
	engine := NewEngine(provider, NewMemoryCache(), nil)
	ctx := context.Background()

	_, err := engine.Evaluate(ctx, testCandidate(), testJob())
	require.NoError(t, err)

	edited := testCandidate()
	edited.Skills = append(edited.Skills, "GraphQL")
	_, err = engine.Evaluate(ctx, edited, testJob())
	require.NoError(t, err)

	assert.Equal(t, 2, provider.similarityCalls)
}

func TestEvaluateFallbackResultsAreNotCached(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{similarityErr: errors.New("down")}
	cache := NewMemoryCache()
	engine := NewEngine(provider, cache, nil)

	_, err := engine.Evaluate(context.Background(), testCandidate(), testJob())
	require.NoError(t, err)

	assert.Equal(t, 0, cache.Len())
}

func TestEvaluateNeverPanicsOnEmptyFields(t *testing.T) {
	t.Parallel()

	candidates := []*recruiting.CandidateProfile{
		{},
		{ID: "c", Skills: []string{}},
		{ID: "c", Skills: []string{""}, Experience: ""},
	}
	jobs := []*recruiting.JobPosting{
		{},
		{ID: "j", RequiredSkills: []string{}},
		{ID: "j", RequiredSkills: []string{""}, Description: "", ExperienceLevel: ""},
	}

	engine := NewEngine(scenarioProvider(), NewMemoryCache(), nil)

	for _, candidate := range candidates {
		for _, job := range jobs {
			result, err := engine.Evaluate(context.Background(), candidate, job)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.GreaterOrEqual(t, result.Percentage, 0)
			assert.LessOrEqual(t, result.Percentage, 100)
		}
	}
}

func TestEvaluateRejectsNilInputs(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil, nil, nil)

	_, err := engine.Evaluate(context.Background(), nil, testJob())
	assert.Error(t, err)

	_, err = engine.Evaluate(context.Background(), testCandidate(), nil)
	assert.Error(t, err)
}

func TestEvaluateHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(nil, nil, nil)
	_, err := engine.Evaluate(ctx, testCandidate(), testJob())
	assert.ErrorIs(t, err, context.Canceled)
}
