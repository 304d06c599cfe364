package match

import (
	"fmt"
	"strings"

	"github.com/talentmatch/talentmatch/internal/recruiting"
)

// buildInsights derives the human-readable takeaways for a hybrid result.
// Strengths and gaps follow fixed signal thresholds; recommendations follow
// the final score band.
func buildInsights(keyword SkillMatch, analysis *SemanticAnalysis, finalScore int) recruiting.Insights {
	insights := recruiting.Insights{}

	if len(keyword.Matched) > 0 {
		insights.Strengths = append(insights.Strengths,
			fmt.Sprintf("Strong skills match: %s", strings.Join(topN(keyword.Matched, 3), ", ")))
	}
	if analysis.ExperienceMatch > 70 {
		insights.Strengths = append(insights.Strengths, "Experience level fits the role well")
	}
	if len(analysis.TopCategories) > 0 {
		best := analysis.TopCategories[0]
		insights.Strengths = append(insights.Strengths,
			fmt.Sprintf("Profile aligns with %s (%d%% confidence)", best.Category, best.Confidence))
	}

	if len(keyword.Missing) > 0 {
		insights.Gaps = append(insights.Gaps,
			fmt.Sprintf("Missing required skills: %s", strings.Join(topN(keyword.Missing, 3), ", ")))
	}
	if analysis.ExperienceMatch < 50 {
		insights.Gaps = append(insights.Gaps, "Experience falls short of the stated requirement")
	}
	if analysis.Similarity < 40 {
		insights.Gaps = append(insights.Gaps, "CV content overlaps little with the job description")
	}

	switch {
	case finalScore > 80:
		insights.Recommendations = []string{
			"Strong match - proceed to technical interview",
			"Assess culture fit and team match",
		}
	case finalScore >= 60:
		insights.Recommendations = []string{
			"Good candidate - worth an interview",
			"Probe the missing skills during screening",
		}
	case finalScore >= 40:
		insights.Recommendations = []string{
			"Possible fit with upskilling",
			"Consider a junior or mentored placement",
		}
	default:
		insights.Recommendations = []string{
			"Poor fit for this role",
			"Consider the candidate for other open positions",
		}
	}

	return insights
}

// buildInterviewQuestions suggests up to five questions tailored to the
// required skills and the final score band.
func buildInterviewQuestions(requiredSkills []string, finalScore int) []string {
	questions := make([]string, 0, 5)

	if len(requiredSkills) > 0 {
		questions = append(questions,
			fmt.Sprintf("Describe a recent project where you used %s. What was your role?", requiredSkills[0]))
	}

	if finalScore > 70 {
		questions = append(questions,
			"Walk me through the most complex technical problem you solved in the last year.",
			"How do you approach mentoring or reviewing the work of less experienced colleagues?",
		)
	} else {
		questions = append(questions,
			"Tell me about a time you had to pick up an unfamiliar technology quickly.",
			"How do you keep your technical skills current?",
		)
	}

	for _, skill := range requiredSkills {
		if strings.EqualFold(strings.TrimSpace(skill), "react") {
			questions = append(questions,
				"How do you decide between local component state and a shared state solution in React?")
			break
		}
	}

	if len(questions) > 5 {
		questions = questions[:5]
	}

	return questions
}

func topN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
