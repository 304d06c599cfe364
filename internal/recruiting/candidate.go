package recruiting

import "fmt"

type Candidates struct {
	Items []*CandidateProfile
}

// CandidateProfile is an uploaded CV as supplied by the application boundary.
// Experience is free text; Available is an application-level flag and does not
// influence scoring.
type CandidateProfile struct {
	ID         string   `json:"id,omitempty"`
	OwnerID    string   `json:"owner_id,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Experience string   `json:"experience,omitempty"`
	Available  bool     `json:"available,omitempty"`
}

// CandidatesFromFile loads candidate profiles from a JSON file, decoded with
// the same lenient typing as JobsFromFile.
func CandidatesFromFile(path string) (*Candidates, error) {
	var raw []map[string]any
	if err := decodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("reading candidates from %q: %w", path, err)
	}

	var items []*CandidateProfile
	if err := decodeItems(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding candidates from %q: %w", path, err)
	}

	return &Candidates{Items: items}, nil
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) FindByID(id string) *CandidateProfile {
	for _, candidate := range c.Items {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}
