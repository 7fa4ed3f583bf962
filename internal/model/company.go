package model

import "strings"

// Company is a startup listed on the job board.
type Company struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	ProfileURL  string   `json:"yc_profile_url,omitempty"`
	JobCount    int      `json:"job_count"`
	JobsURL     string   `json:"jobs_url,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Location    string   `json:"location,omitempty"`
	TeamSize    string   `json:"team_size,omitempty"`
	Batch       string   `json:"batch,omitempty"`
	LogoURL     string   `json:"logo_url,omitempty"`
	FoundedYear *int     `json:"founded_year,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Key is the primary dedup identity: the lower-cased trimmed name.
func (c Company) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Name))
}

// ProfileKey is the secondary dedup identity. Empty when the company has no
// profile URL.
func (c Company) ProfileKey() string {
	return strings.ToLower(strings.TrimSpace(c.ProfileURL))
}

// Clone returns a deep copy so callers can derive new records without
// sharing slices or pointers with the original.
func (c Company) Clone() Company {
	out := c
	if c.FoundedYear != nil {
		y := *c.FoundedYear
		out.FoundedYear = &y
	}
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	return out
}

// MinFoundedYear and MaxFoundedYear bound a plausible founding year.
const (
	MinFoundedYear = 1800
	MaxFoundedYear = 2030
)

// ValidFoundedYear reports whether y is a plausible founding year.
func ValidFoundedYear(y int) bool {
	return y >= MinFoundedYear && y <= MaxFoundedYear
}
