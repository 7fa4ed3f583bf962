package pipeline

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/extract"
	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/scrape"
	"github.com/sells-group/jobboard-cli/pkg/firecrawl"
)

// collectJobs visits the jobs page of every company with open roles. One
// company's failure is logged and contributes no jobs.
func (p *Pipeline) collectJobs(ctx context.Context, companies []model.Company) []model.Job {
	var all []model.Job
	for i, c := range companies {
		log := zap.L().With(zap.String("company", c.Name), zap.Int("index", i+1), zap.Int("total", len(companies)))
		if c.JobCount <= 0 {
			log.Debug("pipeline: no open roles, skipping")
			continue
		}
		jobsURL := JobsURL(c)
		if jobsURL == "" {
			log.Debug("pipeline: no jobs url, skipping")
			continue
		}

		jobs, err := p.companyJobs(ctx, c, jobsURL)
		if err != nil {
			log.Warn("pipeline: company jobs failed", zap.String("url", jobsURL), zap.Error(err))
		} else {
			log.Info("pipeline: company jobs extracted", zap.Int("count", len(jobs)))
			all = append(all, jobs...)
		}

		if err := p.sleep(ctx, p.companyPause); err != nil {
			log.Warn("pipeline: stopping job collection", zap.Error(err))
			break
		}
	}
	return all
}

// maxPostingPages caps the posting pages visited when a jobs page lists
// postings the extractor could not read.
const maxPostingPages = 10

// companyJobs fetches one jobs page and attaches company details to each job.
func (p *Pipeline) companyJobs(ctx context.Context, c model.Company, jobsURL string) ([]model.Job, error) {
	page, err := p.fetcher.Fetch(ctx, scrape.FetchRequest{
		URL:     jobsURL,
		Actions: []firecrawl.Action{firecrawl.Wait(p.jobsWait)},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: fetch jobs for %s", c.Name)
	}
	if page.Empty() {
		return nil, nil
	}

	jobs := p.jobs.Extract(ctx, page.Markdown, c.Name)
	links := postingLinks(page.HTML)
	if len(jobs) == 0 && len(links) > 0 {
		return p.postingJobs(ctx, c, links), nil
	}

	// Postings appear in the same order in the HTML and the markdown, so
	// links can fill missing application URLs when the counts agree.
	if len(links) != len(jobs) {
		links = nil
	}

	out := make([]model.Job, 0, len(jobs))
	for i, j := range jobs {
		if j.ApplicationURL == "" && links != nil {
			j.ApplicationURL = links[i]
		}
		// A page with a single posting carries that posting's band.
		source := j.Description
		if len(jobs) == 1 {
			source = page.Markdown
		}
		out = append(out, withCompensation(j, source).WithCompany(c))
	}
	return out, nil
}

// postingJobs reads postings one page at a time.
func (p *Pipeline) postingJobs(ctx context.Context, c model.Company, links []string) []model.Job {
	log := zap.L().With(zap.String("company", c.Name))
	if len(links) > maxPostingPages {
		log.Info("pipeline: capping posting pages", zap.Int("found", len(links)), zap.Int("max", maxPostingPages))
		links = links[:maxPostingPages]
	}

	var out []model.Job
	for _, link := range links {
		page, err := p.fetcher.Fetch(ctx, scrape.FetchRequest{
			URL:     link,
			Actions: []firecrawl.Action{firecrawl.Wait(p.jobsWait)},
		})
		switch {
		case err != nil:
			log.Warn("pipeline: posting fetch failed", zap.String("url", link), zap.Error(err))
		case page.Empty():
			log.Debug("pipeline: empty posting page", zap.String("url", link))
		default:
			if j := p.jobs.ExtractFromPage(ctx, page.Markdown, c.Name, link); j != nil {
				out = append(out, withCompensation(*j, page.Markdown).WithCompany(c))
			}
		}
		if err := p.sleep(ctx, p.companyPause); err != nil {
			break
		}
	}
	return out
}

// withCompensation fills salary and equity fields the model left empty from
// bands found in text.
func withCompensation(j model.Job, text string) model.Job {
	if text == "" {
		return j
	}
	if r, ok := extract.ExtractSalaryRange(text); ok {
		matches := j.SalaryMin == nil || *j.SalaryMin == r.Min
		matches = matches && (j.SalaryMax == nil || *j.SalaryMax == r.Max)
		if matches {
			j.SalaryMin, j.SalaryMax = &r.Min, &r.Max
			if j.SalaryCurrency == "" {
				j.SalaryCurrency = r.Currency
			}
		}
	}
	if j.EquityMin == nil && j.EquityMax == nil {
		if lo, hi, ok := extract.ExtractEquityRange(text); ok {
			j.EquityMin, j.EquityMax = &lo, &hi
		}
	}
	return j
}

// postingLinks returns the /jobs/<id> links on a jobs page.
func postingLinks(html string) []string {
	if html == "" {
		return nil
	}
	var out []string
	for _, link := range extract.ExtractJobLinks(html) {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && parts[0] == "jobs" && parts[1] != "" {
			out = append(out, link)
		}
	}
	return out
}
