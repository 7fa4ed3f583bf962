// Package clean normalizes extracted records and removes duplicates.
package clean

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxTags   = 10
	maxSkills = 20
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	placeholder = regexp.MustCompile(`(?i)^(n/?a|null|none|not specified|tbd|-)$`)
	emailRe     = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
)

var knownSkills = map[string]string{
	"javascript": "JavaScript",
	"typescript": "TypeScript",
	"python":     "Python",
	"java":       "Java",
	"c++":        "C++",
	"c#":         "C#",
	"react":      "React",
	"vue":        "Vue.js",
	"angular":    "Angular",
	"node":       "Node.js",
	"nodejs":     "Node.js",
	"aws":        "AWS",
	"gcp":        "Google Cloud",
	"azure":      "Azure",
	"docker":     "Docker",
	"kubernetes": "Kubernetes",
	"sql":        "SQL",
	"postgresql": "PostgreSQL",
	"mysql":      "MySQL",
	"mongodb":    "MongoDB",
	"redis":      "Redis",
	"git":        "Git",
	"github":     "GitHub",
	"gitlab":     "GitLab",
}

// Text trims s, collapses runs of whitespace and maps placeholder values
// such as "N/A" or "TBD" to "".
func Text(s string) string {
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), " ")
	if placeholder.MatchString(s) {
		return ""
	}
	return s
}

// URL returns s as an absolute http(s) URL, or "" when it cannot be one.
// Protocol-relative and bare www. URLs are upgraded to https.
func URL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		switch {
		case strings.HasPrefix(s, "//"):
			s = "https:" + s
		case strings.HasPrefix(s, "www."):
			s = "https://" + s
		default:
			return ""
		}
	}
	if len(s) < 10 || strings.Contains(s, " ") {
		return ""
	}
	return s
}

// Email lower-cases s and returns it when it looks like an address.
func Email(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !emailRe.MatchString(s) {
		return ""
	}
	return s
}

// Tags title-cases tags, drops one-character entries and case-insensitive
// duplicates, and keeps at most ten.
func Tags(tags []string) []string {
	var out []string
	seen := make(map[string]bool)
	caser := cases.Title(language.English)
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if len(t) < 2 {
			continue
		}
		t = caser.String(t)
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == maxTags {
			break
		}
	}
	return out
}

// NormalizeSkill applies the canonical spelling of well-known technologies.
func NormalizeSkill(s string) string {
	if canon, ok := knownSkills[strings.ToLower(s)]; ok {
		return canon
	}
	return s
}

// Skills normalizes skill names, drops one-character entries and
// duplicates, and keeps at most twenty.
func Skills(skills []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if len(s) < 2 {
			continue
		}
		s = NormalizeSkill(s)
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if len(out) == maxSkills {
			break
		}
	}
	return out
}
