package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobboard-cli/internal/config"
	"github.com/sells-group/jobboard-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func searchInput() model.RunInput {
	p := model.DefaultSearchParams()
	p.Role = model.RoleEngineering
	return model.RunInput{Params: &p, IncludeJobs: true, MaxCompanies: 25}
}

// --- Runs ---

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunKindSearch, searchInput())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, model.RunKindSearch, got.Kind)
	assert.Equal(t, model.RunStatusQueued, got.Status)
	require.NotNil(t, got.Input.Params)
	assert.Equal(t, model.RoleEngineering, got.Input.Params.Role)
	assert.True(t, got.Input.IncludeJobs)
	assert.Equal(t, 25, got.Input.MaxCompanies)
	assert.Nil(t, got.Result)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_RunLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunKindCompany, model.RunInput{Slug: "acme"})
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusScrolling))
	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusScrolling, got.Status)

	require.NoError(t, st.CompleteRun(ctx, run.ID, &model.RunResult{
		Companies: 3, Jobs: 7, Scrolls: 4, StopReason: "semantic_stall",
		Files: []string{"out/a.json"}, DurationMs: 1200,
	}))
	got, err = st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 7, got.Result.Jobs)
	assert.Equal(t, []string{"out/a.json"}, got.Result.Files)
	assert.Equal(t, "semantic_stall", got.Result.StopReason)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunKindURL, model.RunInput{URL: "https://www.workatastartup.com/companies"})
	require.NoError(t, err)
	require.NoError(t, st.FailRun(ctx, run.ID, &model.RunResult{Error: "boom"}))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "boom", got.Result.Error)
}

func TestSQLite_UpdateMissingRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, st.UpdateRunStatus(ctx, "nope", model.RunStatusJobs), ErrNotFound)
	assert.ErrorIs(t, st.CompleteRun(ctx, "nope", &model.RunResult{}), ErrNotFound)
}

func TestSQLite_ListRuns(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := st.CreateRun(ctx, model.RunKindSearch, searchInput())
		require.NoError(t, err)
		ids = append(ids, run.ID)
		time.Sleep(5 * time.Millisecond)
	}
	company, err := st.CreateRun(ctx, model.RunKindCompany, model.RunInput{Slug: "acme"})
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, ids[0], &model.RunResult{Companies: 1}))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, company.ID, all[0].ID, "newest first")

	searches, err := st.ListRuns(ctx, RunFilter{Kind: model.RunKindSearch})
	require.NoError(t, err)
	assert.Len(t, searches, 3)

	done, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, ids[0], done[0].ID)

	page, err := st.ListRuns(ctx, RunFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

// --- Results ---

func TestSQLite_SaveAndGetResults(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunKindSearch, searchInput())
	require.NoError(t, err)

	records := model.RunRecords{
		Companies: []model.Company{{Name: "Acme", JobCount: 1}, {Name: "Beta"}},
		Jobs:      []model.Job{{Title: "Engineer", CompanyName: "Acme", RemoteOK: true}},
	}
	require.NoError(t, st.SaveResults(ctx, run.ID, records))

	got, err := st.GetResults(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, records.Companies, got.Companies)
	assert.Equal(t, records.Jobs, got.Jobs)

	// Saving again replaces earlier rows.
	require.NoError(t, st.SaveResults(ctx, run.ID, model.RunRecords{Companies: []model.Company{{Name: "Gamma"}}}))
	got, err = st.GetResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got.Companies, 1)
	assert.Equal(t, "Gamma", got.Companies[0].Name)
	assert.Empty(t, got.Jobs)
}

func TestSQLite_GetResults_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetResults(context.Background(), "none")
	require.NoError(t, err)
	assert.NotNil(t, got.Companies)
	assert.Empty(t, got.Companies)
	assert.Empty(t, got.Jobs)
}

// --- Page cache ---

func TestSQLite_PageCache_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedPage(ctx, "k1", "https://example.com", []byte("page content"), time.Hour))

	data, err := st.GetCachedPage(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "page content", string(data))
}

func TestSQLite_PageCache_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	data, err := st.GetCachedPage(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_PageCache_Expired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedPage(ctx, "old", "https://example.com", []byte("old data"), -time.Hour))

	data, err := st.GetCachedPage(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_PageCache_Overwrite(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedPage(ctx, "k", "https://example.com", []byte("original"), time.Hour))
	require.NoError(t, st.SetCachedPage(ctx, "k", "https://example.com", []byte("updated"), time.Hour))

	data, err := st.GetCachedPage(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))
}

func TestSQLite_DeleteExpiredPages(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedPage(ctx, "fresh", "u", []byte("a"), time.Hour))
	require.NoError(t, st.SetCachedPage(ctx, "stale1", "u", []byte("b"), -time.Hour))
	require.NoError(t, st.SetCachedPage(ctx, "stale2", "u", []byte("c"), -time.Minute))

	n, err := st.DeleteExpiredPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := st.GetCachedPage(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "open.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck

	run, err := st.CreateRun(ctx, model.RunKindSearch, searchInput())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	_, err = Open(ctx, config.StoreConfig{Driver: "mongo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
