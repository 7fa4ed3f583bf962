package model

import (
	"strings"
	"time"
)

// Job is a single open position at a Company.
type Job struct {
	Title             string     `json:"title"`
	CompanyName       string     `json:"company_name"`
	Description       string     `json:"description,omitempty"`
	Location          string     `json:"location,omitempty"`
	RemoteOK          bool       `json:"remote_ok"`
	LocationType      string     `json:"location_type,omitempty"`
	SalaryMin         *int       `json:"salary_min,omitempty"`
	SalaryMax         *int       `json:"salary_max,omitempty"`
	SalaryCurrency    string     `json:"salary_currency,omitempty"`
	EquityMin         *float64   `json:"equity_min,omitempty"`
	EquityMax         *float64   `json:"equity_max,omitempty"`
	JobType           string     `json:"job_type,omitempty"`
	ExperienceLevel   string     `json:"experience_level,omitempty"`
	Department        string     `json:"department,omitempty"`
	SkillsRequired    []string   `json:"skills_required,omitempty"`
	EducationRequired string     `json:"education_required,omitempty"`
	YearsExperience   *int       `json:"years_experience,omitempty"`
	ApplicationURL    string     `json:"application_url,omitempty"`
	ApplicationEmail  string     `json:"application_email,omitempty"`
	PostedDate        *time.Time `json:"posted_date,omitempty"`

	// Denormalized from the owning company.
	CompanyURL         string `json:"company_url,omitempty"`
	CompanyDescription string `json:"company_description,omitempty"`
	CompanyIndustry    string `json:"company_industry,omitempty"`
	CompanySize        string `json:"company_size,omitempty"`

	VisaSponsorship bool `json:"visa_sponsorship"`
}

// Key is the dedup identity: lower-cased trimmed company name and title.
func (j Job) Key() string {
	return strings.ToLower(strings.TrimSpace(j.CompanyName)) + ":" + strings.ToLower(strings.TrimSpace(j.Title))
}

// Clone returns a deep copy of j.
func (j Job) Clone() Job {
	out := j
	out.SalaryMin = cloneInt(j.SalaryMin)
	out.SalaryMax = cloneInt(j.SalaryMax)
	out.YearsExperience = cloneInt(j.YearsExperience)
	out.EquityMin = cloneFloat(j.EquityMin)
	out.EquityMax = cloneFloat(j.EquityMax)
	if j.PostedDate != nil {
		d := *j.PostedDate
		out.PostedDate = &d
	}
	if j.SkillsRequired != nil {
		out.SkillsRequired = append([]string(nil), j.SkillsRequired...)
	}
	return out
}

// WithCompany returns a copy of j with the company's URL, description,
// industry and team size filled in where j has none.
func (j Job) WithCompany(c Company) Job {
	out := j.Clone()
	if out.CompanyURL == "" {
		out.CompanyURL = c.URL
	}
	if out.CompanyDescription == "" {
		out.CompanyDescription = c.Description
	}
	if out.CompanyIndustry == "" {
		out.CompanyIndustry = c.Industry
	}
	if out.CompanySize == "" {
		out.CompanySize = c.TeamSize
	}
	return out
}

// ValidEquity reports whether v is a percentage in [0, 100].
func ValidEquity(v float64) bool {
	return v >= 0 && v <= 100
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
