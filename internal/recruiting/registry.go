package recruiting

import (
	"encoding/json"
	"fmt"
	"os"
)

// Registry is the keyed collection of computed match results. Entries are
// identified by (JobID, CandidateID); merging fresh results replaces the
// computed fields of existing entries while preserving application-set flags,
// and never touches entries for other pairs.
type Registry struct {
	Items []*MatchResult
}

// RegistryFromFile loads a registry dump. A missing or empty file yields an
// empty registry rather than an error so first runs need no setup.
func RegistryFromFile(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Registry{}, nil
	}

	var registry Registry
	if err := json.NewDecoder(file).Decode(&registry); err != nil {
		return nil, fmt.Errorf("decoding registry from %q: %w", path, err)
	}
	return &registry, nil
}

func (r *Registry) Len() int {
	return len(r.Items)
}

func (r *Registry) Find(jobID, candidateID string) *MatchResult {
	for _, result := range r.Items {
		if result.JobID == jobID && result.CandidateID == candidateID {
			return result
		}
	}
	return nil
}

// ForJob returns the stored entries for one job, in registry order.
func (r *Registry) ForJob(jobID string) []*MatchResult {
	var results []*MatchResult
	for _, result := range r.Items {
		if result.JobID == jobID {
			results = append(results, result)
		}
	}
	return results
}

// Merge upserts the fresh results into the registry. Existing entries with
// the same (JobID, CandidateID) key get their computed fields replaced while
// TestEnabled is carried over; unknown keys are inserted. Returns the number
// of updated entries.
func (r *Registry) Merge(fresh []*MatchResult) int {
	updated := 0
	for _, result := range fresh {
		if result == nil {
			continue
		}

		clone := *result
		if existing := r.Find(result.JobID, result.CandidateID); existing != nil {
			clone.TestEnabled = existing.TestEnabled
			*existing = clone
			updated++
			continue
		}
		r.Items = append(r.Items, &clone)
	}
	return updated
}

// EnableTest flags the entry for the given pair, returning false when no such
// entry exists.
func (r *Registry) EnableTest(jobID, candidateID string) bool {
	entry := r.Find(jobID, candidateID)
	if entry == nil {
		return false
	}
	entry.TestEnabled = true
	return true
}

// ReportByJob groups a compact summary of entries by job id, in the shape
// used by the interactive report action.
func (r *Registry) ReportByJob() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, result := range r.Items {
		report[result.JobID] = append(report[result.JobID], map[string]string{
			"candidate_id": result.CandidateID,
			"percentage":   fmt.Sprintf("%d", result.Percentage),
			"method":       result.Method,
			"confidence":   fmt.Sprintf("%d", result.Confidence),
		})
	}
	return report
}

func (r *Registry) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Registry) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}
