package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const siteRoot = "https://www.workatastartup.com"

var seeAllRe = regexp.MustCompile(`(?i)(see all \d+ jobs?|view all jobs|^\s*\d+ jobs?\b)`)

// ExtractJobLinks returns the distinct job links in html, resolved against
// the site root, in document order.
func ExtractJobLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		zap.L().Warn("extract: parse html for job links", zap.Error(err))
		return nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(strings.ToLower(href), "jobs") {
			return
		}
		abs := resolve(href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})
	zap.L().Debug("extract: job links", zap.Int("count", len(links)))
	return links
}

// FindSeeAllJobsLink returns the target of a "See all N jobs" style link, or
// "" when the page has none.
func FindSeeAllJobsLink(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		zap.L().Warn("extract: parse html for jobs link", zap.Error(err))
		return ""
	}

	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !seeAllRe.MatchString(strings.TrimSpace(s.Text())) {
			return true
		}
		href, _ := s.Attr("href")
		link = resolve(href)
		return link == ""
	})
	return link
}

func resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}
	base, _ := url.Parse(siteRoot)
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
