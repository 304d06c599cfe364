package match

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisKey(t *testing.T) {
	t.Parallel()

	base := AnalysisKey("c1", "j1", "cv text", "job text")
	assert.Contains(t, base, "c1:j1:")

	same := AnalysisKey("c1", "j1", "cv text", "job text")
	assert.Equal(t, base, same)

	editedCV := AnalysisKey("c1", "j1", "cv text changed", "job text")
	assert.NotEqual(t, base, editedCV)

	editedJob := AnalysisKey("c1", "j1", "cv text", "job text changed")
	assert.NotEqual(t, base, editedJob)

	otherPair := AnalysisKey("c2", "j1", "cv text", "job text")
	assert.NotEqual(t, base, otherPair)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)

	analysis := &SemanticAnalysis{OverallScore: 81, Confidence: 99, Method: "hybrid"}
	cache.Set(ctx, "key", analysis)

	got, ok := cache.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, 81, got.OverallScore)
	assert.Equal(t, 99, got.Confidence)

	// stored entries are insulated from caller mutation
	got.OverallScore = 1
	again, ok := cache.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, 81, again.OverallScore)
}

func TestMemoryCacheIgnoresNil(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	cache.Set(context.Background(), "key", nil)
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Set(ctx, "shared", &SemanticAnalysis{OverallScore: 50})
			cache.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	got, ok := cache.Get(ctx, "shared")
	require.True(t, ok)
	assert.Equal(t, 50, got.OverallScore)
}
