package recruiting

import "time"

// Scoring method tags carried on a MatchResult.
const (
	// MethodKeyword marks a result computed without a semantic stage.
	MethodKeyword = "keyword"
	// MethodHybrid marks a result blending keyword and semantic signals.
	MethodHybrid = "hybrid"
	// MethodFallback marks a result where the semantic stage was attempted
	// but the provider was unavailable.
	MethodFallback = "fallback"
)

// MatchResult is the outcome of evaluating one (job, candidate) pair. Results
// are constructed fresh per evaluation and never mutated in place; the
// identity key is (JobID, CandidateID).
type MatchResult struct {
	ID          string `json:"id,omitempty"`
	JobID       string `json:"job_id"`
	CandidateID string `json:"candidate_id"`

	Percentage    int      `json:"percentage"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty"`

	Method     string   `json:"method"`
	Confidence int      `json:"confidence,omitempty"`
	Reasoning  []string `json:"reasoning,omitempty"`

	Insights           *Insights  `json:"insights,omitempty"`
	InterviewQuestions []string   `json:"interview_questions,omitempty"`
	Breakdown          *Breakdown `json:"breakdown,omitempty"`

	// TestEnabled is set by the application when a skills test is attached
	// to the match. It survives re-evaluation (see Registry.Merge).
	TestEnabled bool `json:"test_enabled,omitempty"`

	ComputedAt time.Time `json:"computed_at,omitempty"`
}

// Insights are the structured takeaways derived from a hybrid evaluation.
type Insights struct {
	Strengths       []string `json:"strengths,omitempty"`
	Gaps            []string `json:"gaps,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Breakdown exposes the individual signals and weights behind the final
// percentage.
type Breakdown struct {
	KeywordScore    int     `json:"keyword_score"`
	AIScore         int     `json:"ai_score"`
	AIConfidence    int     `json:"ai_confidence"`
	Similarity      int     `json:"similarity"`
	ExperienceMatch int     `json:"experience_match"`
	SkillsAlignment int     `json:"skills_alignment"`
	KeywordWeight   float64 `json:"keyword_weight"`
	AIWeight        float64 `json:"ai_weight"`

	TopCategories []SkillCategory `json:"top_categories,omitempty"`
}

// SkillCategory is one predicted role category with its confidence in
// percent.
type SkillCategory struct {
	Category   string `json:"category"`
	Confidence int    `json:"confidence"`
}
