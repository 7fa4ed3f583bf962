package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jobboard-cli/internal/model"
)

func testPage() *model.Page {
	return &model.Page{
		Success:  true,
		Markdown: "# Acme\nHiring engineers",
		HTML:     "<h1>Acme</h1>",
		Metadata: model.PageMetadata{Title: "Acme", SourceURL: "https://www.workatastartup.com/companies/acme"},
	}
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() }) //nolint:errcheck
	return NewRedisCache(client, ""), mr
}

func TestKey(t *testing.T) {
	a := Key("https://x.test/a", "scroll:15")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key("https://x.test/a", "scroll:15"))
	assert.NotEqual(t, a, Key("https://x.test/a", "scroll:3"))
	assert.NotEqual(t, a, Key("https://x.test/b", "scroll:15"))
}

func TestKey_NormalizesURL(t *testing.T) {
	assert.Equal(t,
		Key("https://www.workatastartup.com/companies?role=any&jobType=fulltime", "page"),
		Key("https://www.workatastartup.com/companies?jobType=fulltime&role=any#top", "page"))
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()
	key := Key("https://x.test", "")

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, key, testPage(), time.Hour))
	assert.True(t, mr.Exists(DefaultKeyPrefix+key))

	got, err = c.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, testPage(), got)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", testPage(), time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_ZeroTTLSkipsWrite(t *testing.T) {
	c, mr := newRedisCache(t)
	require.NoError(t, c.Set(context.Background(), "k", testPage(), 0))
	assert.False(t, mr.Exists(DefaultKeyPrefix+"k"))
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	c, mr := newRedisCache(t)
	require.NoError(t, mr.Set(DefaultKeyPrefix+"k", "not json"))

	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache: decode page")
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := DialRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close() //nolint:errcheck

	_, err = DialRedis(context.Background(), "")
	assert.Error(t, err)

	_, err = DialRedis(context.Background(), "http://nope")
	assert.Error(t, err)
}

type memStore struct {
	rows map[string][]byte
	urls map[string]string
	err  error
}

func (m *memStore) GetCachedPage(_ context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows[key], nil
}

func (m *memStore) SetCachedPage(_ context.Context, key, url string, data []byte, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.rows[key] = data
	m.urls[key] = url
	return nil
}

func TestStoreCache(t *testing.T) {
	ms := &memStore{rows: map[string][]byte{}, urls: map[string]string{}}
	c := NewStoreCache(ms)
	ctx := context.Background()

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "k", testPage(), time.Hour))
	assert.Equal(t, "https://www.workatastartup.com/companies/acme", ms.urls["k"])

	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, testPage(), got)

	require.NoError(t, c.Set(ctx, "other", testPage(), 0))
	assert.NotContains(t, ms.rows, "other")
}

func TestStoreCache_Error(t *testing.T) {
	c := NewStoreCache(&memStore{err: errors.New("db down")})
	_, err := c.Get(context.Background(), "k")
	assert.EqualError(t, err, "db down")
}
