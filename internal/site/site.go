// Package site encodes the job board's URL conventions: search query
// strings, company profile and jobs pages, and slug extraction.
package site

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// BaseURL is the listing root of the job board.
const BaseURL = "https://www.workatastartup.com/companies"

var hosts = map[string]bool{
	"www.workatastartup.com": true,
	"workatastartup.com":     true,
}

// queryOrder is the order the board writes listing parameters in. The
// optional location and companySize come last.
var queryOrder = []string{
	model.ParamDemographic,
	model.ParamHasEquity,
	model.ParamHasSalary,
	model.ParamIndustry,
	model.ParamInterviewProcess,
	model.ParamJobType,
	model.ParamLayout,
	model.ParamRole,
	model.ParamSortBy,
	model.ParamTab,
	model.ParamUSVisaNotRequired,
	model.ParamLocation,
	model.ParamCompanySize,
}

// BuildSearchURL returns the listing URL for p with parameters in the
// board's own order.
func BuildSearchURL(p model.SearchParams) string {
	v := p.Values()
	var b strings.Builder
	for _, key := range queryOrder {
		vals, ok := v[key]
		if !ok || len(vals) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(vals[0]))
	}
	return BaseURL + "?" + b.String()
}

// ParseSearchURL recovers SearchParams from a listing URL. Parameters not
// present in the URL take their defaults.
func ParseSearchURL(raw string) (model.SearchParams, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return model.SearchParams{}, eris.Wrapf(err, "site: parse url %q", raw)
	}
	p, err := model.SearchParamsFromValues(u.Query())
	if err != nil {
		return model.SearchParams{}, eris.Wrapf(err, "site: search url %q", raw)
	}
	return p, nil
}

// CompanyURL returns the profile page of the company with the given slug.
func CompanyURL(slug string) string {
	return BaseURL + "/" + url.PathEscape(slug)
}

// CompanyJobsURL returns the jobs page of the company with the given slug.
func CompanyJobsURL(slug string) string {
	return CompanyURL(slug) + "/jobs"
}

// ExtractSlug returns the company slug from a /companies/<slug>[/...] URL,
// or "" when the path does not match.
func ExtractSlug(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) >= 2 && parts[0] == "companies" {
		return parts[1]
	}
	return ""
}

// IsSiteURL reports whether raw points at the job board.
func IsSiteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return hosts[strings.ToLower(u.Host)]
}

// NormalizeURL drops the fragment and sorts query parameters so equivalent
// URLs compare equal. Unparseable input is returned unchanged.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	out := u.Scheme + "://" + u.Host + u.Path
	if q := u.Query().Encode(); q != "" {
		out += "?" + q
	}
	return out
}
