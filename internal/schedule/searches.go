// Package schedule runs saved searches on cron schedules.
package schedule

import (
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/site"
)

// SavedSearch is a named search fired on a cron schedule. Either URL or
// Params describes what to search; URL wins when both are set.
type SavedSearch struct {
	Name         string             `yaml:"name"`
	Schedule     string             `yaml:"schedule"`
	URL          string             `yaml:"url,omitempty"`
	Params       model.SearchParams `yaml:"-"`
	IncludeJobs  bool               `yaml:"include_jobs"`
	MaxCompanies int                `yaml:"max_companies,omitempty"`
	Format       string             `yaml:"format,omitempty"`
}

type searchFile struct {
	Searches []rawSearch `yaml:"searches"`
}

type rawSearch struct {
	SavedSearch `yaml:",inline"`
	Params      yaml.Node `yaml:"params"`
}

// parser accepts standard five-field specs and descriptors like @every 6h.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// LoadFile reads saved searches from a YAML file.
func LoadFile(path string) ([]SavedSearch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: read %s", path)
	}
	searches, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "schedule: %s", path)
	}
	return searches, nil
}

// Parse decodes and validates saved searches. Unset search filters take
// the board defaults.
func Parse(data []byte) ([]SavedSearch, error) {
	var f searchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "schedule: parse yaml")
	}

	seen := make(map[string]bool, len(f.Searches))
	out := make([]SavedSearch, 0, len(f.Searches))
	for i, raw := range f.Searches {
		s := raw.SavedSearch
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, eris.Errorf("schedule: search %d has no name", i)
		}
		if seen[s.Name] {
			return nil, eris.Errorf("schedule: duplicate search name %q", s.Name)
		}
		seen[s.Name] = true

		s.Params = model.DefaultSearchParams()
		if !raw.Params.IsZero() {
			if err := raw.Params.Decode(&s.Params); err != nil {
				return nil, eris.Wrapf(err, "schedule: %s: params", s.Name)
			}
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Validate checks the schedule, URL and filters.
func (s SavedSearch) Validate() error {
	if _, err := parser.Parse(s.Schedule); err != nil {
		return eris.Wrapf(err, "schedule: %s: invalid schedule %q", s.Name, s.Schedule)
	}
	if s.URL != "" {
		if !site.IsSiteURL(s.URL) {
			return eris.Errorf("schedule: %s: url %q is not a job board url", s.Name, s.URL)
		}
		return nil
	}
	if err := s.Params.Validate(); err != nil {
		return eris.Wrapf(err, "schedule: %s", s.Name)
	}
	return nil
}

// RunInput describes the search as a run ledger entry.
func (s SavedSearch) RunInput() model.RunInput {
	in := model.RunInput{IncludeJobs: s.IncludeJobs, MaxCompanies: s.MaxCompanies}
	if s.URL != "" {
		in.URL = s.URL
		return in
	}
	p := s.Params
	in.Params = &p
	return in
}
