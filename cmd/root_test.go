//go:build !integration

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"search", "scrape-url", "company", "serve", "runs", "cache", "watch"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "jobboard-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommand_SessionCookieFlag(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("session-cookie")
	require.NotNil(t, f)
	assert.Equal(t, "", f.DefValue)
}

func TestScrapeCommands_SharedFlags(t *testing.T) {
	for _, flagName := range []string{"jobs", "max-companies", "format", "output", "no-export"} {
		assert.NotNil(t, searchCmd.Flags().Lookup(flagName), "search should have --%s", flagName)
		assert.NotNil(t, scrapeURLCmd.Flags().Lookup(flagName), "scrape-url should have --%s", flagName)
		assert.NotNil(t, companyCmd.Flags().Lookup(flagName), "company should have --%s", flagName)
	}
}

func TestSearchCommand_FilterDefaults(t *testing.T) {
	defaults := map[string]string{
		"role":                 "any",
		"job-type":             "fulltime",
		"has-salary":           "any",
		"sort-by":              "created_desc",
		"layout":               "list-compact",
		"us-visa-not-required": "any",
		"location":             "",
	}
	for name, want := range defaults {
		flag := searchCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "search should have --%s", name)
		assert.Equal(t, want, flag.DefValue, name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])

	flag := runsListCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "50", flag.DefValue)
}

func TestCacheCommand_HasPrune(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"cache", "prune"})
	require.NoError(t, err)
	assert.Equal(t, "prune", cmd.Name())
}

func TestWatchCommand_Flags(t *testing.T) {
	assert.NotNil(t, watchCmd.Flags().Lookup("file"))
	flag := watchCmd.Flags().Lookup("run-now")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
