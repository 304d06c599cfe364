package recruiting

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

type Jobs struct {
	Items []*JobPosting
}

// JobPosting is an open position as supplied by the application boundary.
// RequiredSkills is kept as typed by the author, duplicates and casing
// included.
type JobPosting struct {
	ID              string   `json:"id,omitempty"`
	Title           string   `json:"title,omitempty"`
	Description     string   `json:"description,omitempty"`
	RequiredSkills  []string `json:"required_skills,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
}

// JobsFromFile loads job postings from a JSON file. The payload is decoded
// leniently so numeric ids and similar loosely-typed fields are accepted.
func JobsFromFile(path string) (*Jobs, error) {
	var raw []map[string]any
	if err := decodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("reading jobs from %q: %w", path, err)
	}

	var items []*JobPosting
	if err := decodeItems(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding jobs from %q: %w", path, err)
	}

	return &Jobs{Items: items}, nil
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *JobPosting {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (j *Jobs) IDs() []string {
	ids := make([]string, 0, len(j.Items))
	for _, job := range j.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

func (j *Jobs) Titles() map[string]string {
	titles := make(map[string]string, len(j.Items))
	for _, job := range j.Items {
		titles[job.ID] = job.Title
	}
	return titles
}

func decodeFile(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(target)
}

func decodeItems(raw, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}
