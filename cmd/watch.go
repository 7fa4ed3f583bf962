package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/export"
	"github.com/sells-group/jobboard-cli/internal/pipeline"
	"github.com/sells-group/jobboard-cli/internal/schedule"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run saved searches on their cron schedules",
	Long:  "Loads named searches from a YAML file and runs each on its cron schedule, exporting results to the output directory.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			file = cfg.Schedule.File
		}
		searches, err := schedule.LoadFile(file)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx, "scrape")
		if err != nil {
			return err
		}
		defer env.Close()

		defaultFormat, err := exportFormat("")
		if err != nil {
			return err
		}

		sched := schedule.New(savedSearchRunner(env.Pipeline, defaultFormat))
		for _, s := range searches {
			if err := sched.Add(s); err != nil {
				return err
			}
			next, _ := sched.Next(s.Name)
			zap.L().Info("watch: scheduled search",
				zap.String("name", s.Name),
				zap.String("schedule", s.Schedule),
				zap.Time("next", next),
			)
		}

		if runNow, _ := cmd.Flags().GetBool("run-now"); runNow {
			for _, s := range searches {
				if err := sched.RunNow(ctx, s); err != nil {
					zap.L().Error("watch: initial run failed", zap.String("name", s.Name), zap.Error(err))
				}
			}
		}

		sched.Start(ctx)
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
		defer cancel()
		return sched.Stop(stopCtx)
	},
}

// savedSearchRunner runs a saved search through p and always exports,
// naming files after the search.
func savedSearchRunner(p scraper, defaultFormat export.Format) schedule.RunnerFunc {
	return func(ctx context.Context, s schedule.SavedSearch) error {
		format := defaultFormat
		if s.Format != "" {
			f, err := export.ParseFormat(s.Format)
			if err != nil {
				return err
			}
			format = f
		}
		opts := pipeline.Options{
			IncludeJobs:  s.IncludeJobs,
			MaxCompanies: s.MaxCompanies,
			Export:       true,
			Format:       format,
			Filename:     s.Name + "_" + time.Now().Format("20060102_150405"),
		}

		var (
			res *pipeline.Result
			err error
		)
		if s.URL != "" {
			res, err = p.FromURL(ctx, s.URL, opts)
		} else {
			res, err = p.Search(ctx, s.Params, opts)
		}
		if err != nil {
			return err
		}
		zap.L().Info("watch: search exported",
			zap.String("name", s.Name),
			zap.Int("companies", len(res.Companies)),
			zap.Int("jobs", len(res.Jobs)),
			zap.Strings("files", res.Files),
		)
		return nil
	}
}

func init() {
	watchCmd.Flags().String("file", "", "saved searches YAML file (default from config schedule.file)")
	watchCmd.Flags().Bool("run-now", false, "run every search once before waiting for its schedule")
	rootCmd.AddCommand(watchCmd)
}
