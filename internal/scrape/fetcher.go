// Package scrape renders job-board pages through Firecrawl and drives the
// infinite-scroll loop that grows a listing until it stops producing new
// entries.
package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/cache"
	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/resilience"
	"github.com/sells-group/jobboard-cli/pkg/firecrawl"
)

// FetchRequest describes one render.
type FetchRequest struct {
	URL string
	// Cookies override the Auth cookies when non-nil.
	Cookies map[string]string
	// Actions run in the browser before capture.
	Actions []firecrawl.Action
}

// Fetcher renders a URL into a normalized page.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*model.Page, error)
}

// FirecrawlFetcher implements Fetcher with the Firecrawl scrape endpoint,
// retrying failed and unsuccessful responses.
type FirecrawlFetcher struct {
	client  firecrawl.Client
	auth    *Auth
	retry   resilience.RetryConfig
	timeout time.Duration
}

// FetcherOption configures a FirecrawlFetcher.
type FetcherOption func(*FirecrawlFetcher)

// WithRetry sets the retry policy.
func WithRetry(cfg resilience.RetryConfig) FetcherOption {
	return func(f *FirecrawlFetcher) { f.retry = cfg }
}

// WithRenderTimeout sets the timeout sent to Firecrawl.
func WithRenderTimeout(d time.Duration) FetcherOption {
	return func(f *FirecrawlFetcher) { f.timeout = d }
}

// NewFirecrawlFetcher creates a fetcher. A nil auth sends no cookies.
func NewFirecrawlFetcher(client firecrawl.Client, auth *Auth, opts ...FetcherOption) *FirecrawlFetcher {
	if auth == nil {
		auth = NewAuth("", "", nil)
	}
	f := &FirecrawlFetcher{
		client:  client,
		auth:    auth,
		retry:   resilience.DefaultRetryConfig(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.retry.OnRetry == nil {
		f.retry.OnRetry = resilience.RetryLogger("firecrawl", "scrape")
	}
	return f
}

// Fetch implements Fetcher.
func (f *FirecrawlFetcher) Fetch(ctx context.Context, req FetchRequest) (*model.Page, error) {
	cookies := req.Cookies
	if cookies == nil {
		cookies = f.auth.Cookies()
	}
	headers := f.auth.Headers()
	if c := CookieHeader(cookies); c != "" {
		headers["Cookie"] = c
	}

	sreq := firecrawl.ScrapeRequest{
		URL:     req.URL,
		Formats: []string{"markdown", "html"},
		Headers: headers,
		Actions: req.Actions,
		Timeout: int(f.timeout / time.Millisecond),
	}

	page, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*model.Page, error) {
		resp, err := f.client.Scrape(ctx, sreq)
		if err != nil {
			return nil, err
		}
		page, err := NormalizeResponse(resp)
		if err != nil {
			return nil, err
		}
		if bt := DetectBlock(page); bt.Retryable() {
			return nil, eris.Wrapf(ErrBlocked, "scrape: %s", bt)
		}
		return page, nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", req.URL)
	}
	if DetectBlock(page) == BlockLoginWall {
		zap.L().Warn("scrape: page shows a login wall, the session cookie may be missing or expired",
			zap.String("url", req.URL),
			zap.Bool("authenticated", f.auth.IsAuthenticated()),
		)
	}

	zap.L().Debug("scrape: fetched page",
		zap.String("url", req.URL),
		zap.Int("actions", len(req.Actions)),
		zap.Int("markdown_len", len(page.Markdown)),
	)
	return page, nil
}

// NormalizeResponse maps either Firecrawl response shape onto model.Page. A
// response reporting success=false yields an error wrapping
// resilience.ErrUnsuccessful.
func NormalizeResponse(resp *firecrawl.ScrapeResponse) (*model.Page, error) {
	if resp == nil {
		return nil, eris.Wrap(resilience.ErrUnsuccessful, "scrape: empty response")
	}
	if !resp.Success {
		msg := strings.TrimSpace(resp.Error)
		if msg == "" {
			msg = "unknown error"
		}
		return nil, eris.Wrapf(resilience.ErrUnsuccessful, "scrape: firecrawl: %s", msg)
	}

	page := &model.Page{Success: true}
	markdown, html, meta := resp.Markdown, resp.HTML, resp.Metadata
	if resp.Data != nil {
		markdown, html, meta = resp.Data.Markdown, resp.Data.HTML, resp.Data.Metadata
	}
	page.Markdown = markdown
	page.HTML = html
	if meta != nil {
		page.Metadata = model.PageMetadata{
			Title:       meta.Title,
			Description: meta.Description,
			SourceURL:   meta.SourceURL,
		}
	}
	return page, nil
}

// CachingFetcher serves single-capture renders from a PageCache. Requests
// that scroll are always passed through since each capture differs.
type CachingFetcher struct {
	next  Fetcher
	cache cache.PageCache
	ttl   time.Duration
}

// NewCachingFetcher wraps next. A nil cache or non-positive ttl returns next
// unchanged.
func NewCachingFetcher(next Fetcher, c cache.PageCache, ttl time.Duration) Fetcher {
	if c == nil || ttl <= 0 {
		return next
	}
	return &CachingFetcher{next: next, cache: c, ttl: ttl}
}

// Fetch implements Fetcher.
func (f *CachingFetcher) Fetch(ctx context.Context, req FetchRequest) (*model.Page, error) {
	if scrolls(req.Actions) {
		return f.next.Fetch(ctx, req)
	}

	key := cache.Key(req.URL, "page")
	if page, err := f.cache.Get(ctx, key); err != nil {
		zap.L().Warn("scrape: cache read failed", zap.String("url", req.URL), zap.Error(err))
	} else if page != nil {
		zap.L().Debug("scrape: cache hit", zap.String("url", req.URL))
		return page, nil
	}

	page, err := f.next.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if !page.Empty() {
		if page.Metadata.SourceURL == "" {
			page.Metadata.SourceURL = req.URL
		}
		if err := f.cache.Set(ctx, key, page, f.ttl); err != nil {
			zap.L().Warn("scrape: cache write failed", zap.String("url", req.URL), zap.Error(err))
		}
	}
	return page, nil
}

func scrolls(actions []firecrawl.Action) bool {
	for _, a := range actions {
		if a.Type == firecrawl.ActionScroll {
			return true
		}
	}
	return false
}
