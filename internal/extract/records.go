package extract

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// companyFromMap coerces one raw company object. Only a missing name is an
// error; every other field degrades to absent.
func companyFromMap(m map[string]any) (model.Company, error) {
	c := model.Company{Name: toText(m["name"])}
	if c.Name == "" {
		return model.Company{}, eris.New("extract: company name is required")
	}

	c.Description = toText(m["description"])
	c.Industry = toText(m["industry"])
	c.Location = toText(m["location"])
	c.TeamSize = toText(m["team_size"])
	c.Batch = toText(m["batch"])

	for key, dst := range map[string]*string{
		"url":            &c.URL,
		"yc_profile_url": &c.ProfileURL,
		"jobs_url":       &c.JobsURL,
		"logo_url":       &c.LogoURL,
	} {
		if u := toText(m[key]); isHTTPURL(u) {
			*dst = u
		}
	}

	if v, ok := m["job_count"]; ok {
		c.JobCount = toJobCount(v)
	}
	if y, ok := toInt(m["founded_year"]); ok && model.ValidFoundedYear(y) {
		c.FoundedYear = intPtr(y)
	}
	c.Tags = toList(m["tags"])
	return c, nil
}

// jobFromMap coerces one raw job object. companyName fills in a missing
// company.
func jobFromMap(m map[string]any, companyName string) (model.Job, error) {
	j := model.Job{Title: toText(m["title"])}
	if j.Title == "" {
		return model.Job{}, eris.New("extract: job title is required")
	}
	j.CompanyName = toText(m["company_name"])
	if j.CompanyName == "" {
		j.CompanyName = companyName
	}

	for key, dst := range map[string]*string{
		"description":         &j.Description,
		"location":            &j.Location,
		"location_type":       &j.LocationType,
		"salary_currency":     &j.SalaryCurrency,
		"job_type":            &j.JobType,
		"experience_level":    &j.ExperienceLevel,
		"department":          &j.Department,
		"education_required":  &j.EducationRequired,
		"application_url":     &j.ApplicationURL,
		"application_email":   &j.ApplicationEmail,
		"company_url":         &j.CompanyURL,
		"company_description": &j.CompanyDescription,
		"company_industry":    &j.CompanyIndustry,
		"company_size":        &j.CompanySize,
	} {
		*dst = toText(m[key])
	}

	j.RemoteOK = toBool(m["remote_ok"])
	j.VisaSponsorship = toBool(m["visa_sponsorship"])

	for key, dst := range map[string]**int{
		"salary_min":       &j.SalaryMin,
		"salary_max":       &j.SalaryMax,
		"years_experience": &j.YearsExperience,
	} {
		if n, ok := toInt(m[key]); ok && n >= 0 {
			*dst = intPtr(n)
		}
	}
	for key, dst := range map[string]**float64{
		"equity_min": &j.EquityMin,
		"equity_max": &j.EquityMax,
	} {
		if f, ok := toFloat(m[key]); ok && model.ValidEquity(f) {
			*dst = floatPtr(f)
		}
	}

	j.SkillsRequired = toList(m["skills_required"])
	if d, ok := toDate(m["posted_date"]); ok {
		j.PostedDate = &d
	}
	return j, nil
}
