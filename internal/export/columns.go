package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// CompanyColumns is the column order of company CSV and XLSX exports.
var CompanyColumns = []string{
	"name", "description", "url", "yc_profile_url", "job_count",
	"jobs_url", "industry", "location", "team_size", "batch",
	"logo_url", "founded_year", "tags",
}

// JobColumns is the column order of job CSV and XLSX exports.
var JobColumns = []string{
	"title", "company_name", "description", "location", "remote_ok",
	"location_type", "salary_min", "salary_max", "salary_currency",
	"equity_min", "equity_max", "job_type", "experience_level",
	"department", "skills_required", "education_required",
	"years_experience", "application_url", "application_email",
	"posted_date", "company_url", "company_description",
	"company_industry", "company_size", "visa_sponsorship",
}

// listSep joins list fields in flat exports.
const listSep = "|"

// CompanyRow flattens c in CompanyColumns order.
func CompanyRow(c model.Company) []string {
	return []string{
		c.Name,
		c.Description,
		c.URL,
		c.ProfileURL,
		strconv.Itoa(c.JobCount),
		c.JobsURL,
		c.Industry,
		c.Location,
		c.TeamSize,
		c.Batch,
		c.LogoURL,
		intCell(c.FoundedYear),
		strings.Join(c.Tags, listSep),
	}
}

// JobRow flattens j in JobColumns order.
func JobRow(j model.Job) []string {
	return []string{
		j.Title,
		j.CompanyName,
		j.Description,
		j.Location,
		boolCell(j.RemoteOK),
		j.LocationType,
		intCell(j.SalaryMin),
		intCell(j.SalaryMax),
		j.SalaryCurrency,
		floatCell(j.EquityMin),
		floatCell(j.EquityMax),
		j.JobType,
		j.ExperienceLevel,
		j.Department,
		strings.Join(j.SkillsRequired, listSep),
		j.EducationRequired,
		intCell(j.YearsExperience),
		j.ApplicationURL,
		j.ApplicationEmail,
		dateCell(j.PostedDate),
		j.CompanyURL,
		j.CompanyDescription,
		j.CompanyIndustry,
		j.CompanySize,
		boolCell(j.VisaSponsorship),
	}
}

func intCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func floatCell(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func boolCell(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02T15:04:05")
}
