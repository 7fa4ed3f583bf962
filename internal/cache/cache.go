// Package cache stores rendered pages so repeated runs against the same
// listing or company page can skip the render service.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jobboard-cli/internal/model"
	"github.com/sells-group/jobboard-cli/internal/site"
)

// PageCache stores rendered pages by key. Get returns nil, nil on a miss.
type PageCache interface {
	Get(ctx context.Context, key string) (*model.Page, error)
	Set(ctx context.Context, key string, page *model.Page, ttl time.Duration) error
}

// Key derives a cache key from a URL and a variant describing how the page
// was rendered (for example the scroll depth). URLs differing only in
// parameter order or fragment share a key.
func Key(rawURL, variant string) string {
	h := sha256.Sum256([]byte(site.NormalizeURL(rawURL) + "\x00" + variant))
	return hex.EncodeToString(h[:])
}

func encodePage(page *model.Page) ([]byte, error) {
	data, err := json.Marshal(page)
	if err != nil {
		return nil, eris.Wrap(err, "cache: encode page")
	}
	return data, nil
}

func decodePage(data []byte) (*model.Page, error) {
	var page model.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, eris.Wrap(err, "cache: decode page")
	}
	return &page, nil
}
