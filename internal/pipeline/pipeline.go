// Package pipeline orchestrates a scrape: scroll the listing, extract and
// clean companies, then optionally visit each company's jobs page.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/clean"
	"github.com/sells-group/jobboard-cli/internal/export"
	"github.com/sells-group/jobboard-cli/internal/extract"
	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/scrape"
	"github.com/sells-group/jobboard-cli/internal/site"
	"github.com/sells-group/jobboard-cli/internal/store"
	"github.com/sells-group/jobboard-cli/pkg/firecrawl"
)

// Default pacing.
const (
	DefaultCompanyPause = 500 * time.Millisecond
	DefaultJobsWait     = 2 * time.Second
)

// Lister renders a full infinite-scroll listing.
type Lister interface {
	Scroll(ctx context.Context, url string, cookies map[string]string) (*scrape.ScrollResult, error)
}

// Options control a single search.
type Options struct {
	IncludeJobs  bool
	MaxCompanies int
	// Export writes the results in Format after the run. Empty Format
	// means json.
	Export   bool
	Format   export.Format
	Filename string
	// RunID attaches the search to an existing queued run instead of
	// creating one.
	RunID string
}

// Result is the outcome of a pipeline entry point.
type Result struct {
	RunID      string          `json:"run_id,omitempty"`
	Companies  []model.Company `json:"companies"`
	Jobs       []model.Job     `json:"jobs"`
	Scrolls    int             `json:"scrolls"`
	StopReason string          `json:"stop_reason,omitempty"`
	Files      []string        `json:"files,omitempty"`
}

func emptyResult() *Result {
	return &Result{Companies: []model.Company{}, Jobs: []model.Job{}}
}

// Pipeline wires the scrape, extract, clean and export stages.
type Pipeline struct {
	auth      *scrape.Auth
	fetcher   scrape.Fetcher
	lister    Lister
	companies *extract.CompanyExtractor
	jobs      *extract.JobExtractor

	store    store.Store
	exporter *export.Exporter

	companyPause time.Duration
	jobsWait     time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore records every run in st.
func WithStore(st store.Store) Option {
	return func(p *Pipeline) { p.store = st }
}

// WithExporter enables Options.Export.
func WithExporter(e *export.Exporter) Option {
	return func(p *Pipeline) { p.exporter = e }
}

// WithCompanyPause sets the pause after each company's jobs fetch.
func WithCompanyPause(d time.Duration) Option {
	return func(p *Pipeline) { p.companyPause = d }
}

// WithJobsWait sets how long the browser waits before capturing a jobs or
// profile page.
func WithJobsWait(d time.Duration) Option {
	return func(p *Pipeline) { p.jobsWait = d }
}

// New creates a Pipeline.
func New(auth *scrape.Auth, fetcher scrape.Fetcher, lister Lister, gen extract.Generator, opts ...Option) *Pipeline {
	if auth == nil {
		auth = scrape.NewAuth("", "", nil)
	}
	p := &Pipeline{
		auth:         auth,
		fetcher:      fetcher,
		lister:       lister,
		companies:    extract.NewCompanyExtractor(gen),
		jobs:         extract.NewJobExtractor(gen),
		companyPause: DefaultCompanyPause,
		jobsWait:     DefaultJobsWait,
		sleep:        sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Search scrapes the listing for params. Retrieval and extraction failures
// are logged and yield empty results; only export failures are returned.
func (p *Pipeline) Search(ctx context.Context, params model.SearchParams, opts Options) (*Result, error) {
	input := model.RunInput{Params: &params, IncludeJobs: opts.IncludeJobs, MaxCompanies: opts.MaxCompanies}
	t := p.begin(ctx, model.RunKindSearch, input, opts.RunID)

	res := p.search(ctx, params, opts, t)
	return t.finish(ctx, p, res, opts)
}

// FromURL scrapes a listing URL copied from the board. Foreign hosts and
// unparseable filters yield an empty result.
func (p *Pipeline) FromURL(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	input := model.RunInput{URL: rawURL, IncludeJobs: opts.IncludeJobs, MaxCompanies: opts.MaxCompanies}
	t := p.begin(ctx, model.RunKindURL, input, opts.RunID)
	log := zap.L().With(zap.String("url", rawURL))

	if !site.IsSiteURL(rawURL) {
		log.Error("pipeline: not a job board url")
		return t.finish(ctx, p, emptyResult(), opts)
	}
	params, err := site.ParseSearchURL(rawURL)
	if err != nil {
		log.Error("pipeline: unparseable search url", zap.Error(err))
		return t.finish(ctx, p, emptyResult(), opts)
	}

	res := p.search(ctx, params, opts, t)
	return t.finish(ctx, p, res, opts)
}

// Company scrapes a single company profile and its jobs page.
func (p *Pipeline) Company(ctx context.Context, slug string, opts Options) (*Result, error) {
	input := model.RunInput{Slug: slug, IncludeJobs: true}
	t := p.begin(ctx, model.RunKindCompany, input, opts.RunID)

	res := p.company(ctx, slug, t)
	return t.finish(ctx, p, res, opts)
}

func (p *Pipeline) search(ctx context.Context, params model.SearchParams, opts Options, t *tracker) *Result {
	res := emptyResult()
	listURL := site.BuildSearchURL(params)
	log := zap.L().With(zap.String("url", listURL))
	log.Info("pipeline: starting search",
		zap.String("role", string(params.Role)),
		zap.Bool("include_jobs", opts.IncludeJobs),
		zap.Int("max_companies", opts.MaxCompanies),
	)

	t.status(ctx, model.RunStatusScrolling)
	scroll, err := p.lister.Scroll(ctx, listURL, p.auth.Cookies())
	if err != nil {
		log.Error("pipeline: listing fetch failed", zap.Error(err))
		return res
	}
	res.Scrolls = scroll.Scrolls
	res.StopReason = scroll.StopReason
	if scroll.Page.Empty() {
		log.Warn("pipeline: listing returned no content")
		return res
	}

	t.status(ctx, model.RunStatusExtracting)
	res.Companies = orEmpty(clean.CleanCompanies(p.companies.Extract(ctx, scroll.Page.Markdown, opts.MaxCompanies)))
	log.Info("pipeline: companies extracted", zap.Int("count", len(res.Companies)))

	if opts.IncludeJobs && len(res.Companies) > 0 {
		t.status(ctx, model.RunStatusJobs)
		res.Jobs = orEmpty(clean.CleanJobs(p.collectJobs(ctx, res.Companies)))
		log.Info("pipeline: jobs extracted", zap.Int("count", len(res.Jobs)))
	}
	return res
}

func (p *Pipeline) company(ctx context.Context, slug string, t *tracker) *Result {
	res := emptyResult()
	profileURL := site.CompanyURL(slug)
	log := zap.L().With(zap.String("slug", slug), zap.String("url", profileURL))
	log.Info("pipeline: fetching company")

	t.status(ctx, model.RunStatusScrolling)
	page, err := p.fetcher.Fetch(ctx, scrape.FetchRequest{
		URL:     profileURL,
		Actions: []firecrawl.Action{firecrawl.Wait(p.jobsWait)},
	})
	if err != nil {
		log.Error("pipeline: company fetch failed", zap.Error(err))
		return res
	}
	if page.Empty() {
		log.Warn("pipeline: company page returned no content")
		return res
	}

	t.status(ctx, model.RunStatusExtracting)
	raw := p.companies.ExtractFromPage(ctx, page.Markdown, profileURL)
	if raw == nil {
		return res
	}
	c, ok := clean.Company(*raw)
	if !ok {
		log.Warn("pipeline: company failed cleaning")
		return res
	}
	res.Companies = []model.Company{c}

	jobsURL := JobsURL(c)
	if jobsURL == "" {
		jobsURL = extract.FindSeeAllJobsLink(page.HTML)
	}
	if jobsURL == "" {
		jobsURL = site.CompanyJobsURL(slug)
	}

	t.status(ctx, model.RunStatusJobs)
	jobs, err := p.companyJobs(ctx, c, jobsURL)
	if err != nil {
		log.Warn("pipeline: company jobs failed", zap.Error(err))
		return res
	}
	res.Jobs = orEmpty(clean.CleanJobs(jobs))
	return res
}

// JobsURL returns where a company's jobs are listed: its JobsURL, else the
// jobs page derived from its profile slug, else "".
func JobsURL(c model.Company) string {
	if c.JobsURL != "" {
		return c.JobsURL
	}
	if slug := site.ExtractSlug(c.ProfileURL); slug != "" {
		return site.CompanyJobsURL(slug)
	}
	return ""
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
