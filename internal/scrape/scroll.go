package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/cache"
	"github.com/sells-group/jobboard-cli/internal/config"
	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/pkg/firecrawl"
)

// Stop reasons reported in ScrollResult.
const (
	StopEmpty         = "empty"
	StopSemanticStall = "semantic_stall"
	StopLengthStall   = "length_stall"
	StopMaxScrolls    = "max_scrolls"
	StopFetchError    = "fetch_error"
	StopCached        = "cached"
)

// indicators are the words whose presence in newly loaded content signals
// that more listings arrived.
var indicators = []string{
	"job", "position", "role", "hiring", "engineer", "developer",
	"manager", "designer", "analyst", "specialist", "coordinator",
	"company", "startup", "founded", "team size", "batch", "industry",
}

// ScrollConfig tunes the stop heuristic.
type ScrollConfig struct {
	MaxScrolls           int
	Pause                time.Duration
	InitialWait          time.Duration
	ContentCheckInterval int
	MinNewContent        int
	InterScrollDelay     time.Duration
}

// DefaultScrollConfig returns the tuned production defaults.
func DefaultScrollConfig() ScrollConfig {
	return ScrollConfig{
		MaxScrolls:           15,
		Pause:                3 * time.Second,
		InitialWait:          3 * time.Second,
		ContentCheckInterval: 3,
		MinNewContent:        100,
		InterScrollDelay:     500 * time.Millisecond,
	}
}

// ScrollConfigFrom converts config settings, keeping defaults for zero values.
func ScrollConfigFrom(c config.ScrollConfig) ScrollConfig {
	out := DefaultScrollConfig()
	if c.MaxScrolls > 0 {
		out.MaxScrolls = c.MaxScrolls
	}
	if c.PauseSecs > 0 {
		out.Pause = secs(c.PauseSecs)
	}
	if c.InitialWaitSecs > 0 {
		out.InitialWait = secs(c.InitialWaitSecs)
	}
	if c.ContentCheckInterval > 0 {
		out.ContentCheckInterval = c.ContentCheckInterval
	}
	if c.MinNewContent > 0 {
		out.MinNewContent = c.MinNewContent
	}
	if c.InterScrollMs > 0 {
		out.InterScrollDelay = time.Duration(c.InterScrollMs) * time.Millisecond
	}
	return out
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ScrollResult is the outcome of a scroll session.
type ScrollResult struct {
	Page       *model.Page
	Scrolls    int
	StopReason string
}

// ScrollController grows an infinite-scroll listing one scroll at a time and
// stops when new captures stop adding listings.
type ScrollController struct {
	fetcher  Fetcher
	cfg      ScrollConfig
	cache    cache.PageCache
	cacheTTL time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// ScrollOption configures a ScrollController.
type ScrollOption func(*ScrollController)

// WithScrollCache caches the final page of each session for ttl.
func WithScrollCache(c cache.PageCache, ttl time.Duration) ScrollOption {
	return func(s *ScrollController) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// NewScrollController creates a controller.
func NewScrollController(f Fetcher, cfg ScrollConfig, opts ...ScrollOption) *ScrollController {
	if cfg.ContentCheckInterval <= 0 {
		cfg.ContentCheckInterval = 1
	}
	s := &ScrollController{fetcher: f, cfg: cfg, sleep: sleepCtx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scroll renders url, then keeps scrolling until the listing stalls or
// MaxScrolls is reached. It returns the last page captured. Only a failure
// of the initial fetch is returned as an error; later failures end the
// session with the last good page.
func (s *ScrollController) Scroll(ctx context.Context, url string, cookies map[string]string) (*ScrollResult, error) {
	log := zap.L().With(zap.String("url", url))

	key := cache.Key(url, fmt.Sprintf("scroll:%d", s.cfg.MaxScrolls))
	if s.cache != nil && s.cacheTTL > 0 {
		if page, err := s.cache.Get(ctx, key); err != nil {
			log.Warn("scrape: scroll cache read failed", zap.Error(err))
		} else if page != nil {
			log.Info("scrape: serving listing from cache")
			return &ScrollResult{Page: page, StopReason: StopCached}, nil
		}
	}

	log.Info("scrape: starting infinite scroll", zap.Int("max_scrolls", s.cfg.MaxScrolls))

	page, err := s.fetcher.Fetch(ctx, FetchRequest{
		URL:     url,
		Cookies: cookies,
		Actions: []firecrawl.Action{firecrawl.Wait(s.cfg.InitialWait)},
	})
	if err != nil {
		return nil, err
	}
	if page.Empty() {
		log.Warn("scrape: no initial content")
		return &ScrollResult{Page: page, StopReason: StopEmpty}, nil
	}
	log.Info("scrape: initial content", zap.Int("length", len(page.Markdown)))
	if n, ok := EstimateTotalResults(page.Markdown); ok {
		log.Info("scrape: estimated total results", zap.Int("estimate", n))
	}

	res := s.loop(ctx, url, cookies, page, log)

	if s.cache != nil && s.cacheTTL > 0 && !res.Page.Empty() {
		if err := s.cache.Set(ctx, key, res.Page, s.cacheTTL); err != nil {
			log.Warn("scrape: scroll cache write failed", zap.Error(err))
		}
	}
	log.Info("scrape: infinite scroll complete",
		zap.Int("scrolls", res.Scrolls),
		zap.String("stop_reason", res.StopReason),
		zap.Int("length", len(res.Page.Markdown)),
	)
	return res, nil
}

func (s *ScrollController) loop(ctx context.Context, url string, cookies map[string]string, initial *model.Page, log *zap.Logger) *ScrollResult {
	actions := []firecrawl.Action{
		firecrawl.Wait(s.cfg.Pause),
		firecrawl.ScrollDown(),
		firecrawl.Wait(s.cfg.Pause),
		firecrawl.Wait(s.cfg.Pause),
	}

	current := initial
	lastContent := initial.Markdown
	lastLength := len(lastContent)
	noChange := 0.0

	for scroll := 1; scroll <= s.cfg.MaxScrolls; scroll++ {
		log.Debug("scrape: scrolling", zap.Int("scroll", scroll))

		page, err := s.fetcher.Fetch(ctx, FetchRequest{URL: url, Cookies: cookies, Actions: actions})
		if err != nil {
			log.Error("scrape: scroll fetch failed, keeping last page", zap.Int("scroll", scroll), zap.Error(err))
			return &ScrollResult{Page: current, Scrolls: scroll - 1, StopReason: StopFetchError}
		}
		current = page

		length := len(page.Markdown)
		delta := length - lastLength

		if scroll%s.cfg.ContentCheckInterval == 0 {
			if HasSignificantNewContent(lastContent, page.Markdown, s.cfg.MinNewContent) {
				log.Debug("scrape: new content detected", zap.Int("scroll", scroll))
				noChange = 0
				lastContent = page.Markdown
				lastLength = length
			} else {
				noChange++
				if noChange >= 2 {
					return &ScrollResult{Page: current, Scrolls: scroll, StopReason: StopSemanticStall}
				}
			}
		} else {
			switch {
			case delta > s.cfg.MinNewContent:
				noChange = 0
			case delta < 10:
				noChange += 0.5
			}
		}

		if delta < 10 && scroll > 5 {
			noChange++
			if noChange >= 3 {
				return &ScrollResult{Page: current, Scrolls: scroll, StopReason: StopLengthStall}
			}
		}

		if scroll < s.cfg.MaxScrolls {
			if err := s.sleep(ctx, s.cfg.InterScrollDelay); err != nil {
				return &ScrollResult{Page: current, Scrolls: scroll, StopReason: StopFetchError}
			}
		}
	}
	return &ScrollResult{Page: current, Scrolls: s.cfg.MaxScrolls, StopReason: StopMaxScrolls}
}

// HasSignificantNewContent reports whether next extends prev by at least
// minNew characters containing three or more listing indicators.
func HasSignificantNewContent(prev, next string, minNew int) bool {
	if len(next) <= len(prev) {
		return false
	}
	added := next[len(prev):]
	if len(added) < minNew {
		return false
	}
	return CountIndicators(added) >= 3
}

// CountIndicators sums case-insensitive occurrences of the listing indicator
// words in s.
func CountIndicators(s string) int {
	lower := strings.ToLower(s)
	n := 0
	for _, w := range indicators {
		n += strings.Count(lower, w)
	}
	return n
}

var (
	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s+companies?`),
		regexp.MustCompile(`(?i)(\d+)\s+results?`),
		regexp.MustCompile(`(?i)showing\s+(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s+total`),
	}
	entryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)class="[^"]*company[^"]*"`),
		regexp.MustCompile(`(?i)data-company-id`),
		regexp.MustCompile(`(?i)href="[^"]*companies/[^"]*"`),
	}
)

// EstimateTotalResults guesses how many listings a search has from its first
// capture: an explicit count such as "312 companies" wins, otherwise three
// times the number of entry markers, capped at 1000.
func EstimateTotalResults(content string) (int, bool) {
	for _, re := range totalPatterns {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}

	matches := 0
	for _, re := range entryPatterns {
		matches += len(re.FindAllStringIndex(content, -1))
	}
	if matches == 0 {
		return 0, false
	}
	return min(matches*3, 1000), true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
