package match

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/talentmatch/talentmatch/internal/ai"
)

// ExperienceLevel is the qualitative seniority ordinal used when no year
// count can be extracted from a text.
type ExperienceLevel int

const (
	LevelEntry ExperienceLevel = iota + 1
	LevelMid
	LevelSenior
	LevelExpert
)

var levelLabels = []string{"entry level", "mid level", "senior level", "expert level"}

var yearsPattern = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*(?:years?|yrs?)`)

// EstimateYears extracts the first year count from a free-text experience
// description. The second return value reports whether a count was found.
func EstimateYears(text string) (int, bool) {
	groups := yearsPattern.FindStringSubmatch(text)
	if groups == nil {
		return 0, false
	}

	years, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, false
	}

	return years, true
}

// MatchExperience scores the candidate's experience against the requirement
// on a 0-100 scale. Numeric year counts are preferred; when either side
// lacks one, both texts are classified into seniority levels and the level
// ordinals are compared instead. The provider, when present, refines the
// candidate-side level classification; its failures are ignored. The
// function never fails on empty or unparseable text.
func MatchExperience(ctx context.Context, candidateText, requirementText string, provider ai.Provider) int {
	candidateYears, candidateOK := EstimateYears(candidateText)
	requiredYears, requiredOK := EstimateYears(requirementText)

	if candidateOK && requiredOK {
		if candidateYears >= requiredYears {
			return minInt(100, 80+2*(candidateYears-requiredYears))
		}
		shortfall := int(math.Round(float64(candidateYears) / float64(requiredYears) * 100))
		return clampInt(shortfall, 20, 80)
	}

	requiredLevel := classifyLevel(requirementText)
	candidateLevel := classifyCandidateLevel(ctx, candidateText, provider)

	delta := int(candidateLevel) - int(requiredLevel)
	if delta >= 0 {
		return minInt(100, 80+10*delta)
	}

	ratio := int(math.Round(float64(candidateLevel) / float64(requiredLevel) * 100))
	return maxInt(30, ratio)
}

// classifyLevel maps seniority cue words to a level. Cues are checked from
// most to least specific; texts with no cue default to mid.
func classifyLevel(text string) ExperienceLevel {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "senior", "lead", "principal"):
		return LevelSenior
	case containsAny(lower, "junior", "entry", "graduate"):
		return LevelEntry
	case containsAny(lower, "mid", "intermediate"):
		return LevelMid
	default:
		return LevelMid
	}
}

func classifyCandidateLevel(ctx context.Context, text string, provider ai.Provider) ExperienceLevel {
	if provider == nil || strings.TrimSpace(text) == "" {
		return classifyLevel(text)
	}

	classification, err := provider.Classify(ctx, text, levelLabels)
	if err != nil || len(classification.Labels) == 0 {
		return classifyLevel(text)
	}

	for i, label := range levelLabels {
		if label == classification.Labels[0] {
			return ExperienceLevel(i + 1)
		}
	}

	return classifyLevel(text)
}

func containsAny(text string, cues ...string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
