package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/scrape"
)

// routeFetcher serves markdown by URL. Unknown URLs return an empty page;
// URLs in errs fail.
type routeFetcher struct {
	mu       sync.Mutex
	pages    map[string]*model.Page
	errs     map[string]error
	requests []scrape.FetchRequest
}

func newRouteFetcher() *routeFetcher {
	return &routeFetcher{pages: map[string]*model.Page{}, errs: map[string]error{}}
}

func (f *routeFetcher) serve(url, markdown string) {
	f.pages[url] = &model.Page{Success: true, Markdown: markdown}
}

func (f *routeFetcher) Fetch(_ context.Context, req scrape.FetchRequest) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err, ok := f.errs[req.URL]; ok {
		return nil, err
	}
	if p, ok := f.pages[req.URL]; ok {
		return p, nil
	}
	return &model.Page{Success: true}, nil
}

func (f *routeFetcher) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.URL
	}
	return out
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func promptContaining(s string) any {
	return mock.MatchedBy(func(prompt string) bool { return strings.Contains(prompt, s) })
}

// staticLister returns a fixed scroll result.
type staticLister struct {
	result *scrape.ScrollResult
	err    error
	urls   []string
}

func (l *staticLister) Scroll(_ context.Context, url string, _ map[string]string) (*scrape.ScrollResult, error) {
	l.urls = append(l.urls, url)
	return l.result, l.err
}
