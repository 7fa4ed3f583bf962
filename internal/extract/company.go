package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/jobboard-cli/internal/model"
)

// CompanyExtractor pulls company records out of listing and profile pages.
type CompanyExtractor struct {
	gen Generator
}

// NewCompanyExtractor creates a CompanyExtractor.
func NewCompanyExtractor(gen Generator) *CompanyExtractor {
	return &CompanyExtractor{gen: gen}
}

// Extract returns the companies found in listing content. Failures are
// logged and yield an empty result; a malformed item is dropped on its own.
func (e *CompanyExtractor) Extract(ctx context.Context, content string, maxCompanies int) []model.Company {
	log := zap.L().With(zap.Int("max_companies", maxCompanies))
	log.Info("extract: extracting companies", zap.Int("content_len", len(content)))

	text, err := e.gen.Generate(ctx, companyPrompt(content, maxCompanies))
	if err != nil {
		log.Error("extract: company generation failed", zap.Error(err))
		return nil
	}
	items, ok, err := parseItems(text, "companies")
	if err != nil {
		log.Error("extract: company response unparseable", zap.Error(err))
		return nil
	}
	if !ok {
		log.Warn("extract: expected a list of companies")
		return nil
	}

	companies := make([]model.Company, 0, len(items))
	for _, item := range items {
		c, err := companyFromMap(item)
		if err != nil {
			log.Warn("extract: dropping company", zap.Error(err), zap.Any("item", item))
			continue
		}
		companies = append(companies, c)
		if maxCompanies > 0 && len(companies) == maxCompanies {
			break
		}
	}
	log.Info("extract: extracted companies", zap.Int("count", len(companies)))
	return companies
}

// ExtractFromPage reads a single company profile page. The profile URL is
// filled in when the model omits it. It returns nil when nothing usable was
// found.
func (e *CompanyExtractor) ExtractFromPage(ctx context.Context, content, profileURL string) *model.Company {
	log := zap.L().With(zap.String("url", profileURL))

	obj, err := ExtractStructured(ctx, e.gen, content, CompanySchema,
		fmt.Sprintf("Extract detailed company information from this company profile page. The company URL is: %s", profileURL))
	if err != nil {
		log.Error("extract: company page extraction failed", zap.Error(err))
		return nil
	}
	c, err := companyFromMap(obj)
	if err != nil {
		log.Warn("extract: company page yielded no company", zap.Error(err))
		return nil
	}
	if c.ProfileURL == "" {
		c.ProfileURL = profileURL
	}
	log.Info("extract: extracted company profile", zap.String("company", c.Name))
	return &c
}
