package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/pkg/firecrawl"
)

type mockFirecrawl struct {
	mock.Mock
}

func (m *mockFirecrawl) Scrape(ctx context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*firecrawl.ScrapeResponse), args.Error(1)
}

// scriptedFetcher returns pages (or errors) in order and repeats the last
// entry once the script runs out.
type scriptedFetcher struct {
	mu       sync.Mutex
	pages    []string
	errAt    map[int]error
	requests []FetchRequest
}

func (f *scriptedFetcher) Fetch(_ context.Context, req FetchRequest) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if err, ok := f.errAt[i]; ok {
		return nil, err
	}
	md := f.pages[min(i, len(f.pages)-1)]
	return &model.Page{Success: true, Markdown: md}, nil
}

func (f *scriptedFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type memCache struct {
	mu    sync.Mutex
	pages map[string]*model.Page
	sets  int
}

func newMemCache() *memCache {
	return &memCache{pages: map[string]*model.Page{}}
}

func (c *memCache) Get(_ context.Context, key string) (*model.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pages[key], nil
}

func (c *memCache) Set(_ context.Context, key string, page *model.Page, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = page
	c.sets++
	return nil
}
