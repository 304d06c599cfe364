package match

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentmatch/talentmatch/internal/ai"
	"github.com/talentmatch/talentmatch/internal/recruiting"
	"github.com/talentmatch/talentmatch/internal/textproc"
)

// roleCategories is the fixed label set used for the skills-alignment
// classification.
var roleCategories = []string{
	"frontend development",
	"backend development",
	"full stack development",
	"data science",
	"machine learning",
	"devops",
	"mobile development",
	"cloud computing",
	"database management",
	"project management",
}

const fallbackReasoning = "AI analysis unavailable - using keyword matching only"

// Engine evaluates (candidate, job) pairs. With a provider it blends the
// keyword score with semantic signals; without one it produces keyword-only
// results. Provider failures degrade to the fallback branch instead of
// failing the evaluation.
type Engine struct {
	provider ai.Provider
	cache    AnalysisCache
	logger   *zap.Logger
}

func NewEngine(provider ai.Provider, cache AnalysisCache, logger *zap.Logger) *Engine {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// Evaluate scores one candidate against one job and returns a fresh
// MatchResult. It fails only on invalid arguments or context cancellation;
// degenerate inputs and provider failures always yield a result.
func (e *Engine) Evaluate(ctx context.Context, candidate *recruiting.CandidateProfile, job *recruiting.JobPosting) (*recruiting.MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, errors.New("candidate is required")
	}
	if job == nil {
		return nil, errors.New("job is required")
	}

	keyword := e.keywordStage(candidate, job)

	if e.provider == nil {
		return e.keywordResult(candidate, job, keyword), nil
	}

	cvSummary := candidateSummary(candidate)
	jobSummary := jobPostingSummary(job)

	key := AnalysisKey(candidate.ID, job.ID, cvSummary, jobSummary)
	analysis, cached := e.cache.Get(ctx, key)
	if !cached {
		var err error
		analysis, err = e.analyze(ctx, candidate, job, cvSummary, jobSummary)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Warn("semantic analysis failed, falling back to keyword matching",
				zap.String("job_id", job.ID),
				zap.String("candidate_id", candidate.ID),
				zap.Error(err),
			)
			analysis = &SemanticAnalysis{
				Method:    recruiting.MethodFallback,
				Reasoning: []string{fallbackReasoning},
			}
		} else {
			e.cache.Set(ctx, key, analysis)
		}
	}

	return e.blend(candidate, job, keyword, analysis), nil
}

func (e *Engine) keywordStage(candidate *recruiting.CandidateProfile, job *recruiting.JobPosting) SkillMatch {
	candidateText := strings.Join(append(append([]string{}, candidate.Skills...), candidate.Experience), " ")
	jobText := strings.Join(append(append([]string{}, job.RequiredSkills...), job.Description), " ")

	candidateTokens := textproc.KnownSkillTokens(candidateText)
	jobTokens := textproc.KnownSkillTokens(jobText)

	return MatchSkills(candidateTokens, jobTokens, true)
}

func (e *Engine) keywordResult(candidate *recruiting.CandidateProfile, job *recruiting.JobPosting, keyword SkillMatch) *recruiting.MatchResult {
	overlap := textproc.OverlapScore(jobPostingSummary(job), candidateSummary(candidate))

	return &recruiting.MatchResult{
		ID:            uuid.NewString(),
		JobID:         job.ID,
		CandidateID:   candidate.ID,
		Percentage:    keyword.Score,
		MatchedSkills: keyword.Matched,
		MissingSkills: keyword.Missing,
		Method:        recruiting.MethodKeyword,
		Reasoning: []string{
			fmt.Sprintf("Keyword skills match: %d/100", keyword.Score),
			fmt.Sprintf("CV covers %d%% of the job description vocabulary", overlap),
		},
		ComputedAt: time.Now().UTC(),
	}
}

// analyze runs the three semantic signals. Any similarity or classification
// error aborts the analysis; the caller turns that into the fallback branch.
func (e *Engine) analyze(ctx context.Context, candidate *recruiting.CandidateProfile, job *recruiting.JobPosting, cvSummary, jobSummary string) (*SemanticAnalysis, error) {
	similarity, err := e.provider.Similarity(ctx, cvSummary, jobSummary)
	if err != nil {
		return nil, fmt.Errorf("similarity: %w", err)
	}
	similarityScore := int(math.Round(similarity * 100))

	experienceMatch := MatchExperience(ctx, candidate.Experience, job.ExperienceLevel, e.provider)

	classification, err := e.provider.Classify(ctx, cvSummary+"\n"+jobSummary, roleCategories)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	topLabels, topScores := classification.Top(3)
	categories := make([]recruiting.SkillCategory, 0, len(topLabels))
	var alignmentSum float64
	for i, label := range topLabels {
		confidence := int(math.Round(topScores[i] * 100))
		categories = append(categories, recruiting.SkillCategory{Category: label, Confidence: confidence})
		alignmentSum += topScores[i] * 100
	}

	alignment := 0
	if len(topLabels) > 0 {
		alignment = int(math.Round(alignmentSum / float64(len(topLabels))))
	}

	overall := int(math.Round(0.4*float64(similarityScore) + 0.3*float64(experienceMatch) + 0.3*float64(alignment)))
	confidence := clampInt(int(math.Round(100-stddev(similarityScore, experienceMatch, alignment))), 30, 100)

	reasoning := []string{
		fmt.Sprintf("Semantic similarity between CV and job description: %d/100", similarityScore),
		fmt.Sprintf("Experience match: %d/100", experienceMatch),
		fmt.Sprintf("Skills alignment across top role categories: %d/100", alignment),
	}

	return &SemanticAnalysis{
		OverallScore:    overall,
		Similarity:      similarityScore,
		ExperienceMatch: experienceMatch,
		SkillsAlignment: alignment,
		TopCategories:   categories,
		Confidence:      confidence,
		Method:          recruiting.MethodHybrid,
		Reasoning:       reasoning,
	}, nil
}

func (e *Engine) blend(candidate *recruiting.CandidateProfile, job *recruiting.JobPosting, keyword SkillMatch, analysis *SemanticAnalysis) *recruiting.MatchResult {
	keywordWeight := 0.7
	if analysis.Confidence > 50 {
		keywordWeight = 0.3
	}
	aiWeight := 1 - keywordWeight

	final := int(math.Round(float64(keyword.Score)*keywordWeight + float64(analysis.OverallScore)*aiWeight))
	final = clampInt(final, 0, 100)

	blendedConfidence := int(math.Round((float64(analysis.Confidence) + 70) / 2))

	result := &recruiting.MatchResult{
		ID:            uuid.NewString(),
		JobID:         job.ID,
		CandidateID:   candidate.ID,
		Percentage:    final,
		MatchedSkills: keyword.Matched,
		MissingSkills: keyword.Missing,
		Method:        analysis.Method,
		Confidence:    blendedConfidence,
		Reasoning:     analysis.Reasoning,
		Breakdown: &recruiting.Breakdown{
			KeywordScore:    keyword.Score,
			AIScore:         analysis.OverallScore,
			AIConfidence:    analysis.Confidence,
			Similarity:      analysis.Similarity,
			ExperienceMatch: analysis.ExperienceMatch,
			SkillsAlignment: analysis.SkillsAlignment,
			KeywordWeight:   keywordWeight,
			AIWeight:        aiWeight,
			TopCategories:   analysis.TopCategories,
		},
		ComputedAt: time.Now().UTC(),
	}

	if analysis.Method == recruiting.MethodHybrid {
		insights := buildInsights(keyword, analysis, final)
		result.Insights = &insights
		result.InterviewQuestions = buildInterviewQuestions(job.RequiredSkills, final)
	}

	return result
}

func candidateSummary(candidate *recruiting.CandidateProfile) string {
	return fmt.Sprintf("Experience: %s. Skills: %s", candidate.Experience, strings.Join(candidate.Skills, ", "))
}

func jobPostingSummary(job *recruiting.JobPosting) string {
	return fmt.Sprintf("Job: %s. Requirements: %s. Required skills: %s. Experience level: %s",
		job.Title, job.Description, strings.Join(job.RequiredSkills, ", "), job.ExperienceLevel)
}

// stddev is the population standard deviation of the three signals.
func stddev(values ...int) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		diff := float64(v) - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
