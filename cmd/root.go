package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/config"
)

var (
	cfg *config.Config

	// sessionCookie overrides auth.session_cookie for one invocation.
	sessionCookie string
)

var rootCmd = &cobra.Command{
	Use:   "jobboard-cli",
	Short: "Scrape companies and jobs from the YC job board",
	Long:  "Scrolls workatastartup.com listings through Firecrawl, extracts companies and jobs with Claude, cleans and deduplicates them, and exports JSON, CSV or XLSX.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionCookie, "session-cookie", "", "job board session cookie value (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
