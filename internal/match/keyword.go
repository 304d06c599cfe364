package match

import (
	"math"
	"strings"
)

// SkillMatch is the outcome of comparing a candidate skill list against a
// job's required skills.
type SkillMatch struct {
	Score   int
	Matched []string
	Missing []string
}

// MatchSkills scores how many required skills the candidate list satisfies.
// In strict mode a requirement is satisfied by a case-insensitive equal
// candidate skill; in lenient mode containment in either direction also
// counts. The score is the percentage of satisfied requirements. An empty
// requirement list scores 0.
func MatchSkills(candidate, required []string, lenient bool) SkillMatch {
	candidateNorm := normalizeSkills(candidate)
	requiredNorm := normalizeSkills(required)

	if len(requiredNorm) == 0 {
		return SkillMatch{Score: 0, Matched: []string{}, Missing: []string{}}
	}

	matched := make([]string, 0, len(requiredNorm))
	missing := make([]string, 0)
	for _, req := range requiredNorm {
		if satisfied(req, candidateNorm, lenient) {
			matched = append(matched, req)
		} else {
			missing = append(missing, req)
		}
	}

	score := int(math.Round(float64(len(matched)) / float64(len(requiredNorm)) * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return SkillMatch{Score: score, Matched: matched, Missing: missing}
}

func satisfied(required string, candidate []string, lenient bool) bool {
	for _, skill := range candidate {
		if skill == required {
			return true
		}
		if lenient && (strings.Contains(skill, required) || strings.Contains(required, skill)) {
			return true
		}
	}
	return false
}

func normalizeSkills(skills []string) []string {
	result := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		result = append(result, skill)
	}
	return result
}
