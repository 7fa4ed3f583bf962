package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	listingContentLimit    = 15000
	structuredContentLimit = 10000
)

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	return s[:cut]
}

func companyPrompt(content string, maxCompanies int) string {
	limit := ""
	if maxCompanies > 0 {
		limit = fmt.Sprintf(" Extract up to %d companies.", maxCompanies)
	}
	return fmt.Sprintf(`Extract company information from this Y Combinator job board content.%s

For each company, extract:
- name: Company name
- description: Company description/tagline
- url: Company website URL (if available)
- yc_profile_url: Y Combinator profile URL (if available)
- job_count: Number of open jobs (parse from "X jobs" text)
- jobs_url: "See all jobs" link URL (if available)
- industry: Company industry/category
- location: Company location
- team_size: Team size (if mentioned)
- batch: Y Combinator batch (e.g., S21, W22)
- logo_url: Company logo URL (if available)
- founded_year: Year founded (if mentioned)
- tags: Array of relevant tags/categories

Content:
%s

Return a JSON object with this structure:
{
  "companies": [
    {
      "name": "Company Name",
      "description": "What the company does",
      "url": "https://company.com",
      "yc_profile_url": "https://www.workatastartup.com/companies/company-name",
      "job_count": 5,
      "jobs_url": "https://www.workatastartup.com/companies/company-name/jobs",
      "industry": "Technology",
      "location": "San Francisco, CA",
      "team_size": "11-50",
      "batch": "S21",
      "logo_url": "https://logo.url",
      "founded_year": 2021,
      "tags": ["AI", "SaaS"]
    }
  ]
}

Return ONLY the JSON object. Do not include explanations or additional text.`, limit, truncate(content, listingContentLimit))
}

func jobPrompt(content, companyName string) string {
	return fmt.Sprintf(`Extract job information from this job listings page for %[1]s.

For each job, extract:
- title: Job title
- company_name: Company name (use "%[1]s")
- description: Job description
- location: Job location
- remote_ok: Whether remote work is allowed (boolean)
- location_type: "Remote", "On-site", or "Hybrid"
- salary_min/salary_max: Salary range (numbers only)
- salary_currency: Currency (USD, EUR, etc.)
- equity_min/equity_max: Equity range (percentages)
- job_type: "Full-time", "Part-time", "Contract", "Internship"
- experience_level: "Junior", "Senior", "Lead", etc.
- department: "Engineering", "Product", "Marketing", etc.
- skills_required: Array of required skills
- education_required: Education requirement (if mentioned)
- years_experience: Minimum years of experience (number)
- application_url: Application URL
- application_email: Application email (if listed)
- posted_date: Posting date as YYYY-MM-DD (if shown)
- visa_sponsorship: Whether visa sponsorship is available (boolean)

Content:
%[2]s

Return a JSON object with this structure:
{
  "jobs": [
    {
      "title": "Software Engineer",
      "company_name": "%[1]s",
      "description": "Job description text",
      "location": "San Francisco, CA",
      "remote_ok": true,
      "location_type": "Hybrid",
      "salary_min": 120000,
      "salary_max": 180000,
      "salary_currency": "USD",
      "equity_min": 0.1,
      "equity_max": 0.5,
      "job_type": "Full-time",
      "experience_level": "Mid-level",
      "department": "Engineering",
      "skills_required": ["Python", "React"],
      "application_url": "https://apply.url",
      "visa_sponsorship": false
    }
  ]
}

Return ONLY the JSON object. Do not include explanations or additional text.`, companyName, truncate(content, listingContentLimit))
}

// Schema names the fields a structured extraction should return.
type Schema struct {
	Name   string
	Fields []Field
}

// Field is one schema entry.
type Field struct {
	Name        string `json:"-"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"-"`
}

// JSON renders the schema as a JSON Schema object.
func (s Schema) JSON() string {
	props := make(map[string]Field, len(s.Fields))
	var required []string
	for _, f := range s.Fields {
		props[f.Name] = f
		if f.Required {
			required = append(required, f.Name)
		}
	}
	doc := map[string]any{
		"title":      s.Name,
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	data, _ := json.MarshalIndent(doc, "", "  ")
	return string(data)
}

// CompanySchema describes a company profile.
var CompanySchema = Schema{
	Name: "Company",
	Fields: []Field{
		{Name: "name", Type: "string", Description: "Company name", Required: true},
		{Name: "description", Type: "string", Description: "What the company does"},
		{Name: "url", Type: "string", Description: "Company website URL"},
		{Name: "yc_profile_url", Type: "string", Description: "Job board profile URL"},
		{Name: "job_count", Type: "integer", Description: "Number of open jobs"},
		{Name: "jobs_url", Type: "string", Description: "URL listing all jobs"},
		{Name: "industry", Type: "string"},
		{Name: "location", Type: "string"},
		{Name: "team_size", Type: "string"},
		{Name: "batch", Type: "string", Description: "Y Combinator batch, e.g. S21"},
		{Name: "logo_url", Type: "string"},
		{Name: "founded_year", Type: "integer"},
		{Name: "tags", Type: "array"},
	},
}

// JobSchema describes a single job posting.
var JobSchema = Schema{
	Name: "Job",
	Fields: []Field{
		{Name: "title", Type: "string", Required: true},
		{Name: "company_name", Type: "string", Required: true},
		{Name: "description", Type: "string"},
		{Name: "location", Type: "string"},
		{Name: "remote_ok", Type: "boolean"},
		{Name: "location_type", Type: "string", Description: "Remote, On-site or Hybrid"},
		{Name: "salary_min", Type: "integer"},
		{Name: "salary_max", Type: "integer"},
		{Name: "salary_currency", Type: "string"},
		{Name: "equity_min", Type: "number", Description: "Percent"},
		{Name: "equity_max", Type: "number", Description: "Percent"},
		{Name: "job_type", Type: "string"},
		{Name: "experience_level", Type: "string"},
		{Name: "department", Type: "string"},
		{Name: "skills_required", Type: "array"},
		{Name: "education_required", Type: "string"},
		{Name: "years_experience", Type: "integer"},
		{Name: "application_url", Type: "string"},
		{Name: "application_email", Type: "string"},
		{Name: "posted_date", Type: "string", Description: "YYYY-MM-DD"},
		{Name: "visa_sponsorship", Type: "boolean"},
	},
}

func structuredPrompt(content string, schema Schema, hint string) string {
	var b strings.Builder
	b.WriteString("Extract structured data from the following content using this JSON schema:\n\n")
	b.WriteString("JSON Schema:\n")
	b.WriteString(schema.JSON())
	b.WriteString("\n\n")
	if hint != "" {
		b.WriteString(hint)
		b.WriteString("\n\n")
	}
	b.WriteString("Content to extract from:\n")
	b.WriteString(truncate(content, structuredContentLimit))
	b.WriteString("\n\nReturn ONLY a valid JSON object that matches the schema. Do not include any explanation or additional text.")
	return b.String()
}
