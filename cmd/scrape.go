package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/pipeline"
	"github.com/sells-group/jobboard-cli/internal/scrape"
	"github.com/sells-group/jobboard-cli/internal/site"
)

// -- search --

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Scrape companies (and optionally jobs) matching search filters",
	Example: `  jobboard-cli search --role engineering --job-type fulltime --jobs
  jobboard-cli search --role design --has-salary yes --max-companies 20 --format csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		params, err := searchParamsFromFlags(cmd)
		if err != nil {
			return err
		}
		opts, err := scrapeOptions(cmd)
		if err != nil {
			return err
		}

		zap.L().Info("search", zap.String("url", site.BuildSearchURL(params)))
		return runScrape(cmd.Context(), func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Result, error) {
			return p.Search(ctx, params, opts)
		})
	},
}

// -- scrape-url --

var scrapeURLCmd = &cobra.Command{
	Use:   "scrape-url <url>",
	Short: "Scrape a job board listing URL copied from the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !site.IsSiteURL(args[0]) {
			return eris.Errorf("scrape-url: %s is not a workatastartup.com URL", args[0])
		}
		opts, err := scrapeOptions(cmd)
		if err != nil {
			return err
		}
		return runScrape(cmd.Context(), func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Result, error) {
			return p.FromURL(ctx, args[0], opts)
		})
	},
}

// -- company --

var companyCmd = &cobra.Command{
	Use:   "company <slug-or-url>",
	Short: "Scrape one company profile and its jobs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := args[0]
		if s := site.ExtractSlug(slug); s != "" {
			slug = s
		}
		opts, err := scrapeOptions(cmd)
		if err != nil {
			return err
		}
		return runScrape(cmd.Context(), func(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Result, error) {
			return p.Company(ctx, slug, opts)
		})
	},
}

// runScrape builds the pipeline, runs fn and prints the summary.
func runScrape(parent context.Context, fn func(context.Context, *pipeline.Pipeline) (*pipeline.Result, error)) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := initPipeline(ctx, "scrape")
	if err != nil {
		return err
	}
	defer env.Close()

	if !env.Auth.IsAuthenticated() {
		_, _ = fmt.Fprintln(os.Stderr, scrape.Instructions())
		_, _ = fmt.Fprintln(os.Stderr)
	}

	res, err := fn(ctx, env.Pipeline)
	if err != nil {
		return err
	}
	printResult(os.Stdout, res)
	return nil
}

// scrapeOptions reads the flags shared by every scrape command.
func scrapeOptions(cmd *cobra.Command) (pipeline.Options, error) {
	flags := cmd.Flags()
	jobs, _ := flags.GetBool("jobs")
	maxCompanies, _ := flags.GetInt("max-companies")
	formatFlag, _ := flags.GetString("format")
	output, _ := flags.GetString("output")
	noExport, _ := flags.GetBool("no-export")

	format, err := exportFormat(formatFlag)
	if err != nil {
		return pipeline.Options{}, err
	}
	if maxCompanies <= 0 {
		maxCompanies = cfg.Extract.MaxCompanies
	}
	return pipeline.Options{
		IncludeJobs:  jobs,
		MaxCompanies: maxCompanies,
		Export:       !noExport,
		Format:       format,
		Filename:     output,
	}, nil
}

// searchParamsFromFlags reads the filter flags. Flag defaults mirror the
// board's own defaults.
func searchParamsFromFlags(cmd *cobra.Command) (model.SearchParams, error) {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	p := model.SearchParams{
		Demographic:       model.YesNoAny(get("demographic")),
		HasEquity:         model.YesNoAny(get("has-equity")),
		HasSalary:         model.YesNoAny(get("has-salary")),
		Industry:          get("industry"),
		InterviewProcess:  get("interview-process"),
		JobType:           model.JobType(get("job-type")),
		Layout:            model.Layout(get("layout")),
		Role:              model.Role(get("role")),
		SortBy:            model.SortBy(get("sort-by")),
		Tab:               get("tab"),
		USVisaNotRequired: model.YesNoAny(get("us-visa-not-required")),
		Location:          get("location"),
		CompanySize:       get("company-size"),
	}.WithDefaults()

	if err := p.Validate(); err != nil {
		return model.SearchParams{}, eris.Wrap(err, "search")
	}
	return p, nil
}

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("jobs", false, "also scrape each company's jobs page")
	cmd.Flags().Int("max-companies", 0, "cap on companies extracted from the listing (0 = config/unlimited)")
	cmd.Flags().String("format", "", "export format: json, csv or xlsx (default from config)")
	cmd.Flags().String("output", "", "base file name for exports (default timestamped)")
	cmd.Flags().Bool("no-export", false, "skip writing export files")
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("role", "any", "role filter (engineering, design, product, ...)")
	cmd.Flags().String("job-type", "fulltime", "job type: fulltime, parttime, internship, contract, any")
	cmd.Flags().String("has-salary", "any", "salary listed: yes, no, any")
	cmd.Flags().String("has-equity", "any", "equity listed: yes, no, any")
	cmd.Flags().String("demographic", "any", "demographic filter: yes, no, any")
	cmd.Flags().String("us-visa-not-required", "any", "US visa not required: yes, no, any")
	cmd.Flags().String("sort-by", "created_desc", "sort order: created_desc, created_asc, company_name, industry")
	cmd.Flags().String("layout", "list-compact", "listing layout: list-compact, list-detailed, grid")
	cmd.Flags().String("industry", "any", "industry filter")
	cmd.Flags().String("interview-process", "any", "interview process filter")
	cmd.Flags().String("tab", "any", "listing tab")
	cmd.Flags().String("location", "", "free-text location filter")
	cmd.Flags().String("company-size", "", "company size filter (e.g. 11-50)")
}

func init() {
	addScrapeFlags(searchCmd)
	addSearchFlags(searchCmd)
	addScrapeFlags(scrapeURLCmd)
	addScrapeFlags(companyCmd)

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(scrapeURLCmd)
	rootCmd.AddCommand(companyCmd)
}
