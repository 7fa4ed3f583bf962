//go:build !integration

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobboard-cli/internal/export"
	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/pipeline"
	"github.com/sells-group/jobboard-cli/internal/store"
)

func newTestAPI(t *testing.T) (*apiServer, *mockScraper, store.Store, http.Handler) {
	t.Helper()
	st := newTestStore(t)
	sc := &mockScraper{}
	api := newAPIServer(context.Background(), st, sc, export.FormatCSV)
	t.Cleanup(func() { api.drain(time.Second) })
	return api, sc, st, api.routes([]string{"*"})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAPI_Health(t *testing.T) {
	_, _, _, h := newTestAPI(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestAPI_SearchQueuesRun(t *testing.T) {
	api, sc, st, h := newTestAPI(t)

	want := model.DefaultSearchParams()
	want.Role = model.RoleDesign
	want.HasSalary = model.Yes

	sc.On("Search", mock.Anything, want, mock.MatchedBy(func(o pipeline.Options) bool {
		return o.RunID != "" && o.IncludeJobs && o.MaxCompanies == 5 && o.Export && o.Format == export.FormatCSV
	})).Return(&pipeline.Result{}, nil).Once()

	rec := do(t, h, http.MethodPost, "/v1/search",
		`{"params":{"role":"design","has_salary":"yes"},"include_jobs":true,"max_companies":5}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	body := decode[map[string]string](t, rec)
	assert.Equal(t, "accepted", body["status"])
	require.NotEmpty(t, body["run_id"])

	api.drain(time.Second)
	sc.AssertExpectations(t)

	run, err := st.GetRun(context.Background(), body["run_id"])
	require.NoError(t, err)
	assert.Equal(t, model.RunKindSearch, run.Kind)
	require.NotNil(t, run.Input.Params)
	assert.Equal(t, model.RoleDesign, run.Input.Params.Role)
	assert.True(t, run.Input.IncludeJobs)
}

func TestAPI_SearchValidation(t *testing.T) {
	_, sc, _, h := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"params":`},
		{"bad role", `{"params":{"role":"wizard"}}`},
		{"bad format", `{"format":"parquet"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
	sc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestAPI_ScrapeURL(t *testing.T) {
	api, sc, _, h := newTestAPI(t)

	url := "https://www.workatastartup.com/companies?role=engineering"
	sc.On("FromURL", mock.Anything, url, mock.MatchedBy(func(o pipeline.Options) bool {
		return o.Format == export.FormatJSON && o.Filename == "eng"
	})).Return(&pipeline.Result{}, nil).Once()

	rec := do(t, h, http.MethodPost, "/v1/scrape-url", `{"url":"`+url+`","format":"json","filename":"eng"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	api.drain(time.Second)
	sc.AssertExpectations(t)
}

func TestAPI_ScrapeURLRejects(t *testing.T) {
	_, _, _, h := newTestAPI(t)

	rec := do(t, h, http.MethodPost, "/v1/scrape-url", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "url is required", decode[map[string]string](t, rec)["error"])

	rec = do(t, h, http.MethodPost, "/v1/scrape-url", `{"url":"https://example.com/companies"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_Company(t *testing.T) {
	api, sc, st, h := newTestAPI(t)

	sc.On("Company", mock.Anything, "openai", mock.Anything).
		Return(nil, errors.New("export failed")).Once()

	rec := do(t, h, http.MethodPost, "/v1/companies/openai", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	id := decode[map[string]string](t, rec)["run_id"]

	api.drain(time.Second)
	sc.AssertExpectations(t)

	run, err := st.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.RunKindCompany, run.Kind)
	assert.Equal(t, "openai", run.Input.Slug)
}

func TestAPI_ListRuns(t *testing.T) {
	_, _, st, h := newTestAPI(t)
	ctx := context.Background()

	_, err := st.CreateRun(ctx, model.RunKindSearch, model.RunInput{})
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, model.RunKindCompany, model.RunInput{Slug: "stripe"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/v1/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Run](t, rec), 2)

	rec = do(t, h, http.MethodGet, "/v1/runs?kind=company", "")
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decode[[]model.Run](t, rec)
	require.Len(t, runs, 1)
	assert.Equal(t, "stripe", runs[0].Input.Slug)

	rec = do(t, h, http.MethodGet, "/v1/runs?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ListRunsEmpty(t *testing.T) {
	_, _, _, h := newTestAPI(t)

	rec := do(t, h, http.MethodGet, "/v1/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestAPI_GetRun(t *testing.T) {
	_, _, st, h := newTestAPI(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.RunKindSearch, model.RunInput{})
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/v1/runs/"+run.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	queued := decode[map[string]any](t, rec)
	assert.Equal(t, "queued", queued["status"])
	assert.NotContains(t, queued, "companies")

	require.NoError(t, st.SaveResults(ctx, run.ID, model.RunRecords{
		Companies: []model.Company{{Name: "Acme", JobCount: 1}},
		Jobs:      []model.Job{{Title: "Engineer", CompanyName: "Acme"}},
	}))
	require.NoError(t, st.CompleteRun(ctx, run.ID, &model.RunResult{Companies: 1, Jobs: 1}))

	rec = do(t, h, http.MethodGet, "/v1/runs/"+run.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		ID        string          `json:"id"`
		Status    string          `json:"status"`
		Companies []model.Company `json:"companies"`
		Jobs      []model.Job     `json:"jobs"`
	}](t, rec)
	assert.Equal(t, run.ID, detail.ID)
	assert.Equal(t, "complete", detail.Status)
	require.Len(t, detail.Companies, 1)
	assert.Equal(t, "Acme", detail.Companies[0].Name)
	require.Len(t, detail.Jobs, 1)
}

func TestAPI_GetRunNotFound(t *testing.T) {
	_, _, _, h := newTestAPI(t)

	rec := do(t, h, http.MethodGet, "/v1/runs/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CORS(t *testing.T) {
	_, _, _, h := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/runs", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPI_DrainCancelsSlowRuns(t *testing.T) {
	api, sc, _, h := newTestAPI(t)

	sc.On("Company", mock.Anything, "slow", mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.Canceled).Once()

	rec := do(t, h, http.MethodPost, "/v1/companies/slow", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	start := time.Now()
	api.drain(50 * time.Millisecond)
	assert.Less(t, time.Since(start), 5*time.Second)
	sc.AssertExpectations(t)
}
