package match

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/talentmatch/talentmatch/internal/recruiting"
)

// SemanticAnalysis is the provider-derived portion of a match evaluation.
// Scores are on a 0-100 scale.
type SemanticAnalysis struct {
	OverallScore    int                        `json:"overall_score"`
	Similarity      int                        `json:"similarity"`
	ExperienceMatch int                        `json:"experience_match"`
	SkillsAlignment int                        `json:"skills_alignment"`
	TopCategories   []recruiting.SkillCategory `json:"top_categories,omitempty"`
	Confidence      int                        `json:"confidence"`
	Method          string                     `json:"method"`
	Reasoning       []string                   `json:"reasoning,omitempty"`
}

// AnalysisCache memoizes semantic analyses across evaluations of the same
// pair. Implementations must be safe for concurrent use; lookup failures
// are reported as misses, never as errors.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*SemanticAnalysis, bool)
	Set(ctx context.Context, key string, analysis *SemanticAnalysis)
}

// AnalysisKey builds the cache key for a pair evaluation. The summary texts
// are folded into the key as a digest so edits to a CV or job posting miss
// the stale entry instead of returning it.
func AnalysisKey(candidateID, jobID, cvSummary, jobSummary string) string {
	digest := sha256.Sum256([]byte(cvSummary + "\x00" + jobSummary))
	return fmt.Sprintf("%s:%s:%s", candidateID, jobID, hex.EncodeToString(digest[:])[:16])
}

// MemoryCache is a process-lifetime in-memory AnalysisCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]SemanticAnalysis
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]SemanticAnalysis)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*SemanticAnalysis, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	clone := entry
	return &clone, true
}

func (c *MemoryCache) Set(_ context.Context, key string, analysis *SemanticAnalysis) {
	if analysis == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *analysis
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
