package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobboard-cli/internal/config"
	"github.com/sells-group/jobboard-cli/pkg/firecrawl"
)

func fastScroll() ScrollConfig {
	cfg := DefaultScrollConfig()
	cfg.InterScrollDelay = 0
	return cfg
}

// listing returns markdown with n company entries, each carrying enough
// indicator words to count as new listings.
func listing(n int) string {
	var b strings.Builder
	b.WriteString("# Companies\n")
	for i := range n {
		b.WriteString("## Startup ")
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString("\nHiring a senior engineer and a product designer. Batch W24, industry fintech, team size 12.\n")
	}
	return b.String()
}

func TestDefaultScrollConfig(t *testing.T) {
	cfg := DefaultScrollConfig()
	assert.Equal(t, 15, cfg.MaxScrolls)
	assert.Equal(t, 3*time.Second, cfg.Pause)
	assert.Equal(t, 3*time.Second, cfg.InitialWait)
	assert.Equal(t, 3, cfg.ContentCheckInterval)
	assert.Equal(t, 100, cfg.MinNewContent)
	assert.Equal(t, 500*time.Millisecond, cfg.InterScrollDelay)
}

func TestScrollConfigFrom(t *testing.T) {
	cfg := ScrollConfigFrom(config.ScrollConfig{MaxScrolls: 4, PauseSecs: 1.5, InterScrollMs: 50})
	assert.Equal(t, 4, cfg.MaxScrolls)
	assert.Equal(t, 1500*time.Millisecond, cfg.Pause)
	assert.Equal(t, 50*time.Millisecond, cfg.InterScrollDelay)
	assert.Equal(t, 3, cfg.ContentCheckInterval)
	assert.Equal(t, 3*time.Second, cfg.InitialWait)
}

func TestScroll_IdenticalContentStopsEarly(t *testing.T) {
	f := &scriptedFetcher{pages: []string{listing(10)}}
	cfg := fastScroll()
	sc := NewScrollController(f, cfg)

	res, err := sc.Scroll(context.Background(), "https://x.test", nil)
	require.NoError(t, err)
	assert.Equal(t, StopSemanticStall, res.StopReason)
	assert.LessOrEqual(t, res.Scrolls, cfg.ContentCheckInterval+2)
	assert.Equal(t, listing(10), res.Page.Markdown)
	// initial fetch + one fetch per scroll
	assert.Equal(t, res.Scrolls+1, f.calls())
}

func TestScroll_GrowingContentRunsToMax(t *testing.T) {
	pages := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		pages = append(pages, listing(i*5))
	}
	f := &scriptedFetcher{pages: pages}
	cfg := fastScroll()
	cfg.MaxScrolls = 8
	sc := NewScrollController(f, cfg)

	res, err := sc.Scroll(context.Background(), "https://x.test", nil)
	require.NoError(t, err)
	assert.Equal(t, StopMaxScrolls, res.StopReason)
	assert.Equal(t, 8, res.Scrolls)
	assert.Equal(t, listing(45), res.Page.Markdown)
	assert.Equal(t, 9, f.calls())
}

func TestScroll_GrowthWithoutIndicatorsStalls(t *testing.T) {
	// Each capture adds the same 60 characters of filler: too little to reset
	// the counter and no listing vocabulary for the semantic check.
	base := listing(3)
	f := &scriptedFetcher{pages: []string{base, base + strings.Repeat("lorem ipsum ", 5)}}
	sc := NewScrollController(f, fastScroll())

	res, err := sc.Scroll(context.Background(), "https://x.test", nil)
	require.NoError(t, err)
	assert.Equal(t, StopSemanticStall, res.StopReason)
	assert.Equal(t, 6, res.Scrolls)
}

func TestScroll_LengthStallAfterGrowth(t *testing.T) {
	// Grows through scroll 6, then stays flat. The semantic checks at 3 and 6
	// pass, so the stop must come from the length rule.
	pages := []string{listing(5)}
	for i := 1; i <= 6; i++ {
		pages = append(pages, listing(5+i*5))
	}
	f := &scriptedFetcher{pages: pages}
	sc := NewScrollController(f, fastScroll())

	res, err := sc.Scroll(context.Background(), "https://x.test", nil)
	require.NoError(t, err)
	assert.Equal(t, StopLengthStall, res.StopReason)
	assert.Equal(t, 8, res.Scrolls)
	assert.Equal(t, listing(35), res.Page.Markdown)
}

func TestScroll_EmptyInitialPage(t *testing.T) {
	f := &scriptedFetcher{pages: []string{""}}
	sc := NewScrollController(f, fastScroll())

	res, err := sc.Scroll(context.Background(), "https://x.test", nil)
	require.NoError(t, err)
	assert.Equal(t, StopEmpty, res.StopReason)
	assert.Equal(t, 0, res.Scrolls)
	assert.Equal(t, 1, f.calls())
}

func TestScroll_InitialErrorReturned(t *testing.T) {
	f := &scriptedFetcher{pages: []string{"x"}, errAt: map[int]error{0: errors.New("render failed")}}
	sc := NewScrollController(f, fastScroll())

	_, err := sc.Scroll(context.Background(), "https://x.test", nil)
	assert.EqualError(t, err, "render failed")
}

func TestScroll_MidLoopErrorKeepsLastPage(t *testing.T) {
	f := &scriptedFetcher{
		pages: []string{listing(5), listing(10), listing(15)},
		errAt: map[int]error{3: errors.New("render failed")},
	}
	sc := NewScrollController(f, fastScroll())

	res, err := sc.Scroll(context.Background(), "https://x.test", nil)
	require.NoError(t, err)
	assert.Equal(t, StopFetchError, res.StopReason)
	assert.Equal(t, 2, res.Scrolls)
	assert.Equal(t, listing(15), res.Page.Markdown)
}

func TestScroll_ActionsAndCookies(t *testing.T) {
	f := &scriptedFetcher{pages: []string{listing(2)}}
	sc := NewScrollController(f, fastScroll())
	cookies := map[string]string{"_yc_session": "s"}

	_, err := sc.Scroll(context.Background(), "https://x.test", cookies)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(f.requests), 2)
	initial := f.requests[0]
	assert.Equal(t, []firecrawl.Action{firecrawl.Wait(3 * time.Second)}, initial.Actions)
	assert.Equal(t, cookies, initial.Cookies)

	scroll := f.requests[1]
	assert.Equal(t, []firecrawl.Action{
		firecrawl.Wait(3 * time.Second),
		firecrawl.ScrollDown(),
		firecrawl.Wait(3 * time.Second),
		firecrawl.Wait(3 * time.Second),
	}, scroll.Actions)
}

func TestScroll_Cache(t *testing.T) {
	f := &scriptedFetcher{pages: []string{listing(4)}}
	c := newMemCache()
	sc := NewScrollController(f, fastScroll(), WithScrollCache(c, time.Hour))
	ctx := context.Background()

	first, err := sc.Scroll(ctx, "https://x.test", nil)
	require.NoError(t, err)
	calls := f.calls()

	second, err := sc.Scroll(ctx, "https://x.test", nil)
	require.NoError(t, err)
	assert.Equal(t, StopCached, second.StopReason)
	assert.Equal(t, first.Page.Markdown, second.Page.Markdown)
	assert.Equal(t, calls, f.calls())
	assert.Equal(t, 1, c.sets)
}

func TestHasSignificantNewContent(t *testing.T) {
	prev := "header "
	rich := prev + strings.Repeat("hiring engineer at startup ", 5)
	assert.True(t, HasSignificantNewContent(prev, rich, 100))
	assert.False(t, HasSignificantNewContent(prev, prev, 100), "no growth")
	assert.False(t, HasSignificantNewContent(rich, prev, 100), "shrunk")
	assert.False(t, HasSignificantNewContent(prev, prev+"hiring engineer startup", 100), "below threshold")
	assert.False(t, HasSignificantNewContent(prev, prev+strings.Repeat("z", 200), 100), "no indicators")
}

func TestCountIndicators(t *testing.T) {
	assert.Equal(t, 0, CountIndicators("nothing here"))
	assert.Equal(t, 3, CountIndicators("Company, STARTUP, team size"))
	// "engineering" contains "engineer"
	assert.Equal(t, 1, CountIndicators("engineering"))
}

func TestEstimateTotalResults(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   int
		wantOK bool
	}{
		{"companies count", "We found 312 companies hiring", 312, true},
		{"results", "42 results", 42, true},
		{"showing", "Showing 25 of many", 25, true},
		{"total", "1200 total", 1200, true},
		{"markers", `<a href="/companies/a"></a><a href="/companies/b"></a>`, 6, true},
		{"capped", strings.Repeat(`data-company-id `, 500), 1000, true},
		{"nothing", "no listings", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := EstimateTotalResults(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
