package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/cache"
	"github.com/sells-group/jobboard-cli/internal/export"
	"github.com/sells-group/jobboard-cli/internal/extract"
	"github.com/sells-group/jobboard-cli/internal/pipeline"
	"github.com/sells-group/jobboard-cli/internal/resilience"
	"github.com/sells-group/jobboard-cli/internal/scrape"
	"github.com/sells-group/jobboard-cli/internal/store"
	anthropicpkg "github.com/sells-group/jobboard-cli/pkg/anthropic"
	"github.com/sells-group/jobboard-cli/pkg/firecrawl"
)

// pipelineEnv holds the initialized clients, store and pipeline needed by
// the scrape, serve and watch commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Exporter *export.Exporter
	Auth     *scrape.Auth
	redis    *redis.Client
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.redis != nil {
		_ = pe.redis.Close()
	}
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured store and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	return st, nil
}

// newAuth builds the session from config. A non-empty override replaces the
// configured cookie.
func newAuth(override string) *scrape.Auth {
	auth := scrape.NewAuth(cfg.Auth.SessionCookie, cfg.Auth.CookieName, nil)
	if override != "" {
		auth.SetSessionCookie(override)
	}
	if !auth.IsAuthenticated() {
		zap.L().Warn("no session cookie configured, results may be limited to public listings")
	}
	return auth
}

// initPageCache picks the page cache backend. A zero TTL disables caching
// and returns a nil cache.
func initPageCache(ctx context.Context, st store.Store) (cache.PageCache, *redis.Client, error) {
	if cfg.Cache.TTL() <= 0 {
		return nil, nil, nil
	}
	switch cfg.Cache.Driver {
	case "redis":
		client, err := cache.DialRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisCache(client, cfg.Cache.KeyPrefix), client, nil
	case "", "store":
		return cache.NewStoreCache(st), nil, nil
	default:
		return nil, nil, eris.Errorf("init cache: unknown driver %q", cfg.Cache.Driver)
	}
}

// initPipeline validates credentials, opens the store and page cache, and
// builds the Pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	pageCache, redisClient, err := initPageCache(ctx, st)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	exporter, err := export.New(cfg.Export.OutputDir)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = st.Close()
		return nil, err
	}

	firecrawlClient := firecrawl.NewClient(cfg.Firecrawl.Key,
		firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL),
		// Leave headroom over the render timeout for the round trip.
		firecrawl.WithTimeout(cfg.Firecrawl.Timeout()+30*time.Second),
		firecrawl.WithRateLimit(cfg.Firecrawl.RateLimit),
	)
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	auth := newAuth(sessionCookie)

	var fetcher scrape.Fetcher = scrape.NewFirecrawlFetcher(firecrawlClient, auth,
		scrape.WithRetry(resilience.FromSettings(cfg.Scrape.MaxRetries, cfg.Scrape.DelaySecs)),
		scrape.WithRenderTimeout(cfg.Firecrawl.Timeout()),
	)
	var scrollOpts []scrape.ScrollOption
	if pageCache != nil {
		fetcher = scrape.NewCachingFetcher(fetcher, pageCache, cfg.Cache.TTL())
		scrollOpts = append(scrollOpts, scrape.WithScrollCache(pageCache, cfg.Cache.TTL()))
		zap.L().Info("page cache enabled",
			zap.String("driver", cfg.Cache.Driver),
			zap.Duration("ttl", cfg.Cache.TTL()),
		)
	}
	lister := scrape.NewScrollController(fetcher, scrape.ScrollConfigFrom(cfg.Scroll), scrollOpts...)

	gen := extract.NewAnthropicGenerator(anthropicClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens,
		resilience.FromSettings(cfg.Extract.MaxRetries, cfg.Extract.DelaySecs))

	p := pipeline.New(auth, fetcher, lister, gen,
		pipeline.WithStore(st),
		pipeline.WithExporter(exporter),
		pipeline.WithCompanyPause(time.Duration(cfg.Scrape.CompanyPauseMs)*time.Millisecond),
		pipeline.WithJobsWait(time.Duration(cfg.Scrape.JobsWaitMs)*time.Millisecond),
	)

	return &pipelineEnv{
		Store:    st,
		Pipeline: p,
		Exporter: exporter,
		Auth:     auth,
		redis:    redisClient,
	}, nil
}

// exportFormat resolves a --format flag value, falling back to config.
func exportFormat(flag string) (export.Format, error) {
	if flag == "" {
		flag = cfg.Export.Format
	}
	return export.ParseFormat(flag)
}
