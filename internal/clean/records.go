package clean

import (
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// CleanCompanies normalizes every company and drops those without a name or
// already seen by name or profile URL. The first occurrence wins. Input is
// not modified.
func CleanCompanies(companies []model.Company) []model.Company {
	out := make([]model.Company, 0, len(companies))
	seenNames := make(map[string]bool)
	seenProfiles := make(map[string]bool)

	for _, c := range companies {
		cleaned, ok := Company(c)
		if !ok {
			zap.L().Debug("clean: dropping company without name")
			continue
		}
		key := cleaned.Key()
		if seenNames[key] {
			zap.L().Debug("clean: duplicate company", zap.String("name", cleaned.Name))
			continue
		}
		profile := cleaned.ProfileKey()
		if profile != "" && seenProfiles[profile] {
			zap.L().Debug("clean: duplicate company profile", zap.String("profile_url", cleaned.ProfileURL))
			continue
		}
		seenNames[key] = true
		if profile != "" {
			seenProfiles[profile] = true
		}
		out = append(out, cleaned)
	}

	zap.L().Info("clean: companies cleaned", zap.Int("in", len(companies)), zap.Int("out", len(out)))
	return out
}

// CleanJobs normalizes every job and drops those missing a title or company
// and duplicates by company and title.
func CleanJobs(jobs []model.Job) []model.Job {
	out := make([]model.Job, 0, len(jobs))
	seen := make(map[string]bool)

	for _, j := range jobs {
		cleaned, ok := Job(j)
		if !ok {
			zap.L().Debug("clean: dropping job without title or company", zap.String("title", j.Title))
			continue
		}
		key := cleaned.Key()
		if seen[key] {
			zap.L().Debug("clean: duplicate job",
				zap.String("title", cleaned.Title),
				zap.String("company", cleaned.CompanyName),
			)
			continue
		}
		seen[key] = true
		out = append(out, cleaned)
	}

	zap.L().Info("clean: jobs cleaned", zap.Int("in", len(jobs)), zap.Int("out", len(out)))
	return out
}

// Company returns a normalized copy of c. ok is false when the name does not
// survive cleaning.
func Company(c model.Company) (model.Company, bool) {
	out := c.Clone()
	out.Name = Text(c.Name)
	if out.Name == "" {
		return model.Company{}, false
	}
	out.Description = Text(c.Description)
	out.Industry = Text(c.Industry)
	out.Location = Text(c.Location)
	out.TeamSize = Text(c.TeamSize)
	out.Batch = Text(c.Batch)

	out.URL = URL(c.URL)
	out.ProfileURL = URL(c.ProfileURL)
	out.JobsURL = URL(c.JobsURL)
	out.LogoURL = URL(c.LogoURL)

	out.JobCount = max(c.JobCount, 0)
	if out.FoundedYear != nil && !model.ValidFoundedYear(*out.FoundedYear) {
		out.FoundedYear = nil
	}
	out.Tags = Tags(c.Tags)
	return out, true
}

// Job returns a normalized copy of j. ok is false when title or company do
// not survive cleaning.
func Job(j model.Job) (model.Job, bool) {
	out := j.Clone()
	out.Title = Text(j.Title)
	out.CompanyName = Text(j.CompanyName)
	if out.Title == "" || out.CompanyName == "" {
		return model.Job{}, false
	}

	out.Description = Text(j.Description)
	out.Location = Text(j.Location)
	out.LocationType = Text(j.LocationType)
	out.SalaryCurrency = Text(j.SalaryCurrency)
	out.JobType = Text(j.JobType)
	out.ExperienceLevel = Text(j.ExperienceLevel)
	out.Department = Text(j.Department)
	out.EducationRequired = Text(j.EducationRequired)
	out.CompanyDescription = Text(j.CompanyDescription)
	out.CompanyIndustry = Text(j.CompanyIndustry)
	out.CompanySize = Text(j.CompanySize)

	out.ApplicationURL = URL(j.ApplicationURL)
	out.CompanyURL = URL(j.CompanyURL)
	out.ApplicationEmail = Email(j.ApplicationEmail)

	out.SalaryMin = nonNegative(out.SalaryMin)
	out.SalaryMax = nonNegative(out.SalaryMax)
	out.YearsExperience = nonNegative(out.YearsExperience)
	out.EquityMin = validEquity(out.EquityMin)
	out.EquityMax = validEquity(out.EquityMax)

	out.SkillsRequired = Skills(j.SkillsRequired)
	return out, true
}

func nonNegative(p *int) *int {
	if p == nil || *p < 0 {
		return nil
	}
	return p
}

func validEquity(p *float64) *float64 {
	if p == nil || !model.ValidEquity(*p) {
		return nil
	}
	return p
}
