package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// JobExtractor pulls job records out of a company's jobs page.
type JobExtractor struct {
	gen Generator
}

// NewJobExtractor creates a JobExtractor.
func NewJobExtractor(gen Generator) *JobExtractor {
	return &JobExtractor{gen: gen}
}

// Extract returns the jobs found in content. companyName is used for jobs
// the model does not attribute.
func (e *JobExtractor) Extract(ctx context.Context, content, companyName string) []model.Job {
	log := zap.L().With(zap.String("company", companyName))
	log.Info("extract: extracting jobs", zap.Int("content_len", len(content)))

	text, err := e.gen.Generate(ctx, jobPrompt(content, companyName))
	if err != nil {
		log.Error("extract: job generation failed", zap.Error(err))
		return nil
	}
	items, ok, err := parseItems(text, "jobs")
	if err != nil {
		log.Error("extract: job response unparseable", zap.Error(err))
		return nil
	}
	if !ok {
		log.Warn("extract: expected a list of jobs")
		return nil
	}

	jobs := make([]model.Job, 0, len(items))
	for _, item := range items {
		j, err := jobFromMap(item, companyName)
		if err != nil {
			log.Warn("extract: dropping job", zap.Error(err), zap.Any("item", item))
			continue
		}
		jobs = append(jobs, j)
	}
	log.Info("extract: extracted jobs", zap.Int("count", len(jobs)))
	return jobs
}

// ExtractFromPage reads a single job posting. Company name and application
// URL fall back to the given values.
func (e *JobExtractor) ExtractFromPage(ctx context.Context, content, companyName, jobURL string) *model.Job {
	log := zap.L().With(zap.String("company", companyName), zap.String("url", jobURL))

	obj, err := ExtractStructured(ctx, e.gen, content, JobSchema,
		fmt.Sprintf("Extract detailed job information from this job posting page. Company: %s, Job URL: %s", companyName, jobURL))
	if err != nil {
		log.Error("extract: job page extraction failed", zap.Error(err))
		return nil
	}
	j, err := jobFromMap(obj, companyName)
	if err != nil {
		log.Warn("extract: job page yielded no job", zap.Error(err))
		return nil
	}
	if j.ApplicationURL == "" {
		j.ApplicationURL = jobURL
	}
	return &j
}

// ExtractStructured prompts for a single object matching schema.
func ExtractStructured(ctx context.Context, gen Generator, content string, schema Schema, hint string) (map[string]any, error) {
	zap.L().Debug("extract: structured extraction", zap.String("schema", schema.Name))
	text, err := gen.Generate(ctx, structuredPrompt(content, schema, hint))
	if err != nil {
		return nil, err
	}
	return parseObject(text)
}

var (
	moneyAmount     = `(\d+(?:,\d{3})*(?:\.\d+)?)\s*([kK])?`
	salaryRe        = regexp.MustCompile(`([$€£])\s*` + moneyAmount + `\s*[-–]\s*([$€£])?\s*` + moneyAmount)
	salaryCodeRe    = regexp.MustCompile(moneyAmount + `\s*[-–]\s*` + moneyAmount + `\s*(USD|EUR|GBP)\b`)
	currencySymbols = map[string]string{"$": "USD", "€": "EUR", "£": "GBP"}
	equityRes       = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%?\s*-\s*(\d+(?:\.\d+)?)\s*%?\s*equity`),
		regexp.MustCompile(`(?i)equity[:\s]*(\d+(?:\.\d+)?)\s*%?\s*-\s*(\d+(?:\.\d+)?)\s*%?`),
	}
)

// SalaryRange is a parsed compensation band.
type SalaryRange struct {
	Min      int
	Max      int
	Currency string
}

// ExtractSalaryRange finds a salary band such as "$120K - $180K" or
// "90,000 - 110,000 EUR". It gives up when the content holds more than one
// distinct band, since the postings it comes from are then ambiguous.
func ExtractSalaryRange(content string) (SalaryRange, bool) {
	var found []SalaryRange
	for _, m := range salaryRe.FindAllStringSubmatch(content, -1) {
		lo, ok1 := parseMoney(m[2], m[3])
		hi, ok2 := parseMoney(m[5], m[6])
		if ok1 && ok2 {
			found = append(found, SalaryRange{Min: lo, Max: hi, Currency: currencySymbols[m[1]]})
		}
	}
	for _, m := range salaryCodeRe.FindAllStringSubmatch(content, -1) {
		lo, ok1 := parseMoney(m[1], m[2])
		hi, ok2 := parseMoney(m[3], m[4])
		if ok1 && ok2 {
			found = append(found, SalaryRange{Min: lo, Max: hi, Currency: strings.ToUpper(m[5])})
		}
	}
	if len(found) == 0 {
		return SalaryRange{}, false
	}
	for _, r := range found[1:] {
		if r != found[0] {
			return SalaryRange{}, false
		}
	}
	return found[0], true
}

func parseMoney(num, suffix string) (int, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if suffix != "" {
		f *= 1000
	}
	return int(f), true
}

// ExtractEquityRange finds the first equity band such as "0.5% - 1.0% equity".
func ExtractEquityRange(content string) (lo, hi float64, ok bool) {
	for _, re := range equityRes {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		a, err1 := strconv.ParseFloat(m[1], 64)
		b, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return a, b, true
		}
	}
	return 0, 0, false
}
