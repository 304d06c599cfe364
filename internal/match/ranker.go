package match

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentmatch/talentmatch/internal/recruiting"
)

const defaultConcurrency = 4

// RankOptions control how a candidate pool is scored against a job.
type RankOptions struct {
	// AvailableOnly drops candidates not marked available before scoring.
	AvailableOnly bool
	// MinScore drops results below the threshold after scoring. Zero keeps
	// everything.
	MinScore int
	// Concurrency bounds the number of pair evaluations in flight.
	Concurrency int
}

// Step describes the outcome of one pool filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Ranker scores a candidate pool against a job and orders the results.
type Ranker struct {
	engine *Engine
	logger *zap.Logger
}

func NewRanker(engine *Engine, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{engine: engine, logger: logger}
}

// ComputeForJob evaluates every candidate in the pool against the job and
// returns the results sorted by descending percentage, ties preserving pool
// order. Evaluations run concurrently up to the configured limit. On
// cancellation the results computed so far are returned together with the
// context error; they are complete per pair and safe to merge.
func (r *Ranker) ComputeForJob(ctx context.Context, job *recruiting.JobPosting, pool *recruiting.Candidates, opts RankOptions) ([]*recruiting.MatchResult, error) {
	if job == nil {
		return nil, errors.New("job is required")
	}
	if pool == nil {
		return nil, errors.New("candidate pool is required")
	}

	runLogger := r.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("job_id", job.ID),
	)

	candidates, step := filterAvailable(pool.Items, opts.AvailableOnly)
	runLogger.Info("filter step",
		zap.String("name", "available_candidates"),
		zap.Int("initial", step.Initial),
		zap.Int("dropped", step.Dropped),
		zap.Int("left", step.Left),
	)

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([]*recruiting.MatchResult, len(candidates))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, candidate := range candidates {
		group.Go(func() error {
			result, err := r.engine.Evaluate(groupCtx, candidate, job)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	waitErr := group.Wait()

	computed := make([]*recruiting.MatchResult, 0, len(results))
	for _, result := range results {
		if result != nil {
			computed = append(computed, result)
		}
	}

	sort.SliceStable(computed, func(i, j int) bool {
		return computed[i].Percentage > computed[j].Percentage
	})

	computed, step = filterMinScore(computed, opts.MinScore)
	runLogger.Info("filter step",
		zap.String("name", "min_score"),
		zap.Int("initial", step.Initial),
		zap.Int("dropped", step.Dropped),
		zap.Int("left", step.Left),
	)

	runLogger.Info("matching completed",
		zap.Int("results", len(computed)),
	)

	return computed, waitErr
}

func filterAvailable(pool []*recruiting.CandidateProfile, availableOnly bool) ([]*recruiting.CandidateProfile, Step) {
	initial := len(pool)
	if !availableOnly {
		return pool, Step{Initial: initial, Dropped: 0, Left: initial}
	}

	kept := make([]*recruiting.CandidateProfile, 0, initial)
	for _, candidate := range pool {
		if candidate != nil && candidate.Available {
			kept = append(kept, candidate)
		}
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}

func filterMinScore(results []*recruiting.MatchResult, minScore int) ([]*recruiting.MatchResult, Step) {
	initial := len(results)
	if minScore <= 0 {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}
	}

	kept := make([]*recruiting.MatchResult, 0, initial)
	for _, result := range results {
		if result.Percentage >= minScore {
			kept = append(kept, result)
		}
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}
}
