package scrape

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultCookieName is the session cookie the job board sets after login.
const DefaultCookieName = "_yc_session"

var defaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// UserAgentRotator hands out user agents round-robin. Safe for concurrent use.
type UserAgentRotator struct {
	mu     sync.Mutex
	agents []string
	next   int
}

// NewUserAgentRotator returns a rotator over agents, or over a built-in list
// of desktop browsers when none are given.
func NewUserAgentRotator(agents ...string) *UserAgentRotator {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	return &UserAgentRotator{agents: append([]string(nil), agents...)}
}

// Next returns the current agent and advances the index.
func (r *UserAgentRotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ua := r.agents[r.next]
	r.next = (r.next + 1) % len(r.agents)
	return ua
}

// Auth supplies the session cookie and browser-like headers sent with every
// render request.
type Auth struct {
	mu         sync.RWMutex
	session    string
	cookieName string
	agents     *UserAgentRotator
}

// NewAuth creates an Auth. An empty cookieName falls back to
// DefaultCookieName; a nil rotator gets the built-in list.
func NewAuth(session, cookieName string, agents *UserAgentRotator) *Auth {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if agents == nil {
		agents = NewUserAgentRotator()
	}
	return &Auth{session: session, cookieName: cookieName, agents: agents}
}

// Cookies returns the cookies to send, empty when no session is configured.
func (a *Auth) Cookies() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == "" {
		zap.L().Warn("scrape: no session cookie, access may be limited to public content")
		return map[string]string{}
	}
	return map[string]string{a.cookieName: a.session}
}

// Headers returns browser-like request headers with the next user agent.
func (a *Auth) Headers() map[string]string {
	return map[string]string{
		"User-Agent":                a.agents.Next(),
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Cache-Control":             "max-age=0",
	}
}

// SetSessionCookie replaces the session value.
func (a *Auth) SetSessionCookie(v string) {
	a.mu.Lock()
	a.session = strings.TrimSpace(v)
	a.mu.Unlock()
	zap.L().Info("scrape: session cookie updated")
}

// IsAuthenticated reports whether a session cookie is set.
func (a *Auth) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session != ""
}

// CookieHeader renders cookies as a Cookie header value with names sorted.
func CookieHeader(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	names := make([]string, 0, len(cookies))
	for k := range cookies {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+"="+cookies[k])
	}
	return strings.Join(parts, "; ")
}

// Instructions explains how to obtain a session cookie.
func Instructions() string {
	return `To get your job board session cookie:

  1. Open https://www.workatastartup.com/ and log in.
  2. Open the browser developer tools (F12).
  3. Go to Application (Chrome) or Storage (Firefox) and select Cookies.
  4. Pick the workatastartup.com domain and find "_yc_session".
  5. Copy the cookie value.
  6. Set YC_SESSION_COOKIE=<value> in .env or export it.

The cookie expires periodically; repeat these steps when results drop to
public listings only.`
}
