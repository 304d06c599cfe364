// Package textproc provides the deterministic text processing used by the
// matching engine: normalization, significant-term extraction and the fixed
// skill vocabulary scan. All functions are pure and never fail on empty input.
package textproc

import (
	"math"
	"regexp"
	"strings"
)

// stopWords is a closed list of common English function words excluded from
// significant-term extraction.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "with": {}, "by": {}, "about": {},
	"of": {}, "from": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"it": {}, "its": {}, "we": {}, "they": {}, "he": {}, "she": {},
	"you": {}, "your": {}, "our": {}, "their": {}, "has": {}, "have": {},
	"had": {}, "been": {}, "be": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "can": {}, "may": {}, "might": {}, "must": {}, "shall": {},
}

// skillVocabulary is the fixed list of recognized technology and skill tokens
// scanned by KnownSkillTokens. Entries are lowercase.
var skillVocabulary = []string{
	"javascript", "python", "java", "react", "node.js", "angular", "vue",
	"typescript", "html", "css", "sql", "mongodb", "postgresql", "mysql",
	"aws", "azure", "docker", "kubernetes", "git", "linux", "windows",
	"machine learning", "ai", "data science", "analytics", "tensorflow",
	"pytorch", "pandas", "numpy", "r", "scala", "spark", "hadoop",
	"devops", "ci/cd", "jenkins", "terraform", "ansible", "prometheus",
	"elasticsearch", "redis", "graphql", "rest api", "microservices",
	"agile", "scrum", "project management", "leadership", "communication",
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonWord    = regexp.MustCompile(`\W+`)
	separators = regexp.MustCompile(`[\s,.\-/]+`)
)

// Normalize lowercases the text and collapses runs of whitespace into single
// spaces.
func Normalize(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(strings.ToLower(text), " "))
}

// SignificantTerms tokenizes the text on non-word boundaries and returns the
// unique terms longer than two characters that are not stop words. The order
// of the returned terms follows their first occurrence.
func SignificantTerms(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}

	seen := make(map[string]struct{})
	terms := make([]string, 0)
	for _, word := range nonWord.Split(norm, -1) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		terms = append(terms, word)
	}

	return terms
}

// KnownSkillTokens scans the fixed skill vocabulary against the normalized
// text and returns every entry present in it. Containment counts in either
// direction, so "react" matches "react.js" and vice versa. Entries shorter
// than three characters ("r", "ai") match whole words only, otherwise they
// would be substrings of almost any text.
func KnownSkillTokens(text string) []string {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}

	words := separators.Split(norm, -1)

	var tokens []string
	for _, skill := range skillVocabulary {
		if matchesSkill(norm, words, skill) {
			tokens = append(tokens, skill)
		}
	}

	return tokens
}

func matchesSkill(norm string, words []string, skill string) bool {
	if len(skill) < 3 {
		for _, word := range words {
			if word == skill {
				return true
			}
		}
		return false
	}

	if strings.Contains(norm, skill) {
		return true
	}

	for _, word := range words {
		if strings.Contains(word, skill) {
			return true
		}
		if len(word) >= 3 && strings.Contains(skill, word) {
			return true
		}
	}

	return false
}

// OverlapScore returns the percentage of the reference text's significant
// terms contained in the candidate text, rounded to the nearest integer. The
// metric is recall over the reference vocabulary and is deliberately not
// symmetric: callers pass the job text as reference and the CV text as
// candidate. Empty reference terms yield 0.
func OverlapScore(reference, candidate string) int {
	terms := SignificantTerms(reference)
	if len(terms) == 0 {
		return 0
	}

	candText := Normalize(candidate)
	matched := 0
	for _, term := range terms {
		if strings.Contains(candText, term) {
			matched++
		}
	}

	return int(math.Round(float64(matched) / float64(len(terms)) * 100))
}
