//go:build !integration

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobboard-cli/internal/config"
	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/pipeline"
	"github.com/sells-group/jobboard-cli/internal/store"
)

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) Search(ctx context.Context, params model.SearchParams, opts pipeline.Options) (*pipeline.Result, error) {
	args := m.Called(ctx, params, opts)
	res, _ := args.Get(0).(*pipeline.Result)
	return res, args.Error(1)
}

func (m *mockScraper) FromURL(ctx context.Context, rawURL string, opts pipeline.Options) (*pipeline.Result, error) {
	args := m.Called(ctx, rawURL, opts)
	res, _ := args.Get(0).(*pipeline.Result)
	return res, args.Error(1)
}

func (m *mockScraper) Company(ctx context.Context, slug string, opts pipeline.Options) (*pipeline.Result, error) {
	args := m.Called(ctx, slug, opts)
	res, _ := args.Get(0).(*pipeline.Result)
	return res, args.Error(1)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "runs.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// withConfig installs c as the command config for the test.
func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}
