package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/export"
	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/pipeline"
	"github.com/sells-group/jobboard-cli/internal/site"
	"github.com/sells-group/jobboard-cli/internal/store"
)

// scraper is the slice of *pipeline.Pipeline the API drives.
type scraper interface {
	Search(ctx context.Context, params model.SearchParams, opts pipeline.Options) (*pipeline.Result, error)
	FromURL(ctx context.Context, rawURL string, opts pipeline.Options) (*pipeline.Result, error)
	Company(ctx context.Context, slug string, opts pipeline.Options) (*pipeline.Result, error)
}

// apiServer queues scrape runs and serves the run ledger. Runs execute in
// the background on runCtx, which outlives individual requests.
type apiServer struct {
	store   store.Store
	scraper scraper
	format  export.Format

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newAPIServer(ctx context.Context, st store.Store, sc scraper, format export.Format) *apiServer {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &apiServer{store: st, scraper: sc, format: format, runCtx: runCtx, cancel: cancel}
}

// runOptions is the request body shared by the scrape endpoints.
type runOptions struct {
	IncludeJobs  bool   `json:"include_jobs"`
	MaxCompanies int    `json:"max_companies"`
	Format       string `json:"format"`
	Filename     string `json:"filename"`
	NoExport     bool   `json:"no_export"`
}

type searchRequest struct {
	Params model.SearchParams `json:"params"`
	runOptions
}

type scrapeURLRequest struct {
	URL string `json:"url"`
	runOptions
}

// runDetail is a run plus its stored records.
type runDetail struct {
	*model.Run
	Companies []model.Company `json:"companies,omitempty"`
	Jobs      []model.Job     `json:"jobs,omitempty"`
}

func (s *apiServer) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/scrape-url", s.handleScrapeURL)
		r.Post("/companies/{slug}", s.handleCompany)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

func (s *apiServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{Params: model.DefaultSearchParams()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	params := req.Params.WithDefaults()
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, ok := s.options(w, req.runOptions)
	if !ok {
		return
	}

	input := model.RunInput{Params: &params, IncludeJobs: opts.IncludeJobs, MaxCompanies: opts.MaxCompanies}
	s.enqueue(w, r, model.RunKindSearch, input, func(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
		return s.scraper.Search(ctx, params, opts)
	}, opts)
}

func (s *apiServer) handleScrapeURL(w http.ResponseWriter, r *http.Request) {
	var req scrapeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if !site.IsSiteURL(req.URL) {
		writeError(w, http.StatusBadRequest, "url must point at workatastartup.com")
		return
	}
	opts, ok := s.options(w, req.runOptions)
	if !ok {
		return
	}

	input := model.RunInput{URL: req.URL, IncludeJobs: opts.IncludeJobs, MaxCompanies: opts.MaxCompanies}
	s.enqueue(w, r, model.RunKindURL, input, func(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
		return s.scraper.FromURL(ctx, req.URL, opts)
	}, opts)
}

func (s *apiServer) handleCompany(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req runOptions
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	opts, ok := s.options(w, req)
	if !ok {
		return
	}

	input := model.RunInput{Slug: slug, IncludeJobs: true}
	s.enqueue(w, r, model.RunKindCompany, input, func(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
		return s.scraper.Company(ctx, slug, opts)
	}, opts)
}

func (s *apiServer) options(w http.ResponseWriter, req runOptions) (pipeline.Options, bool) {
	format := s.format
	if req.Format != "" {
		f, err := export.ParseFormat(req.Format)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return pipeline.Options{}, false
		}
		format = f
	}
	return pipeline.Options{
		IncludeJobs:  req.IncludeJobs,
		MaxCompanies: req.MaxCompanies,
		Export:       !req.NoExport,
		Format:       format,
		Filename:     req.Filename,
	}, true
}

// enqueue records a queued run, answers 202 with its ID and runs fn in the
// background against that run.
func (s *apiServer) enqueue(w http.ResponseWriter, r *http.Request, kind model.RunKind, input model.RunInput,
	fn func(context.Context, pipeline.Options) (*pipeline.Result, error), opts pipeline.Options) {
	run, err := s.store.CreateRun(r.Context(), kind, input)
	if err != nil {
		zap.L().Error("api: create run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not queue run")
		return
	}
	opts.RunID = run.ID

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res, err := fn(s.runCtx, opts)
		if err != nil {
			zap.L().Error("api: run failed", zap.String("run_id", run.ID), zap.Error(err))
			return
		}
		zap.L().Info("api: run complete",
			zap.String("run_id", run.ID),
			zap.Int("companies", len(res.Companies)),
			zap.Int("jobs", len(res.Jobs)),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"run_id": run.ID,
	})
}

func (s *apiServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Status: model.RunStatus(q.Get("status")),
		Kind:   model.RunKind(q.Get("kind")),
	}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, key+" must be a non-negative integer")
				return
			}
			*dst = n
		}
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *apiServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		zap.L().Error("api: get run failed", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load run")
		return
	}

	detail := runDetail{Run: run}
	if run.Status == model.RunStatusComplete || run.Status == model.RunStatusFailed {
		records, err := s.store.GetResults(r.Context(), id)
		if err != nil {
			zap.L().Warn("api: get results failed", zap.String("run_id", id), zap.Error(err))
		} else {
			detail.Companies = records.Companies
			detail.Jobs = records.Jobs
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

// drain waits up to timeout for background runs, then cancels the rest.
func (s *apiServer) drain(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		zap.L().Warn("api: cancelling in-flight runs", zap.Duration("waited", timeout))
		s.cancel()
		<-done
	}
	s.cancel()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
