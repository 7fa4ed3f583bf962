package scrape

import (
	"errors"
	"strings"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockLoginWall  BlockType = "login_wall"
)

// ErrBlocked is returned for renders that captured an anti-bot challenge
// instead of the page.
var ErrBlocked = errors.New("render blocked by challenge page")

// maxBlockPageLen bounds the markdown length of a page that can be a block
// page. Listings and profiles are always longer.
const maxBlockPageLen = 4000

var (
	cloudflareMarkers = []string{"checking your browser", "cf-browser-verification", "just a moment...", "attention required! | cloudflare"}
	captchaMarkers    = []string{"captcha", "verify you are human", "are you a robot"}
	loginWallMarkers  = []string{"log in to view", "sign in to continue", "log in to continue", "create an account to see", "login required"}
)

// DetectBlock checks a rendered page for an anti-bot challenge or the login
// wall shown when the session cookie is missing or expired. Only Cloudflare
// markers are matched in the HTML; captcha and login text must be visible
// in the markdown or title, since ordinary pages embed captcha scripts.
func DetectBlock(page *model.Page) BlockType {
	if page == nil || len(page.Markdown) > maxBlockPageLen {
		return BlockNone
	}

	visible := strings.ToLower(page.Markdown + "\n" + page.Metadata.Title)
	html := ""
	if len(page.HTML) <= maxBlockPageLen*4 {
		html = strings.ToLower(page.HTML)
	}

	switch {
	case containsAny(visible, cloudflareMarkers) || containsAny(html, cloudflareMarkers),
		strings.Contains(visible, "cloudflare") && strings.Contains(visible, "challenge"):
		return BlockCloudflare
	case containsAny(visible, captchaMarkers):
		return BlockCaptcha
	case containsAny(visible, loginWallMarkers):
		return BlockLoginWall
	}
	return BlockNone
}

// Retryable reports whether another render may get past the block.
func (b BlockType) Retryable() bool {
	return b == BlockCloudflare || b == BlockCaptcha
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
