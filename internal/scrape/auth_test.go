package scrape

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgentRotator_RoundRobin(t *testing.T) {
	r := NewUserAgentRotator("a", "b", "c")
	got := []string{r.Next(), r.Next(), r.Next(), r.Next()}
	assert.Equal(t, []string{"a", "b", "c", "a"}, got)
}

func TestUserAgentRotator_Defaults(t *testing.T) {
	r := NewUserAgentRotator()
	seen := map[string]bool{}
	for range len(defaultUserAgents) {
		seen[r.Next()] = true
	}
	assert.Len(t, seen, len(defaultUserAgents))
}

func TestUserAgentRotator_Concurrent(t *testing.T) {
	r := NewUserAgentRotator("a", "b")
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotEmpty(t, r.Next())
		}()
	}
	wg.Wait()
}

func TestAuth_Cookies(t *testing.T) {
	a := NewAuth("secret", "", nil)
	assert.True(t, a.IsAuthenticated())
	assert.Equal(t, map[string]string{"_yc_session": "secret"}, a.Cookies())

	anon := NewAuth("", "waas_session", nil)
	assert.False(t, anon.IsAuthenticated())
	assert.Empty(t, anon.Cookies())

	anon.SetSessionCookie("  fresh  ")
	assert.Equal(t, map[string]string{"waas_session": "fresh"}, anon.Cookies())
}

func TestAuth_HeadersRotate(t *testing.T) {
	a := NewAuth("", "", NewUserAgentRotator("ua-1", "ua-2"))
	h1 := a.Headers()
	h2 := a.Headers()
	assert.Equal(t, "ua-1", h1["User-Agent"])
	assert.Equal(t, "ua-2", h2["User-Agent"])
	assert.Equal(t, "en-US,en;q=0.5", h1["Accept-Language"])
}

func TestCookieHeader(t *testing.T) {
	assert.Equal(t, "", CookieHeader(nil))
	assert.Equal(t, "a=1; b=2", CookieHeader(map[string]string{"b": "2", "a": "1"}))
}

func TestInstructions(t *testing.T) {
	assert.Contains(t, Instructions(), "YC_SESSION_COOKIE")
}
