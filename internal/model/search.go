package model

import (
	"net/url"
	"slices"

	"github.com/rotisserie/eris"
)

// JobType filters listings by employment type.
type JobType string

const (
	JobTypeFullTime   JobType = "fulltime"
	JobTypePartTime   JobType = "parttime"
	JobTypeInternship JobType = "internship"
	JobTypeContract   JobType = "contract"
	JobTypeAny        JobType = "any"
)

// Role filters listings by job function.
type Role string

const (
	RoleEngineering Role = "engineering"
	RoleDesign      Role = "design"
	RoleProduct     Role = "product"
	RoleSales       Role = "sales"
	RoleMarketing   Role = "marketing"
	RoleOperations  Role = "operations"
	RoleFinance     Role = "finance"
	RoleLegal       Role = "legal"
	RoleScience     Role = "science"
	RoleAny         Role = "any"
)

// SortBy orders search results.
type SortBy string

const (
	SortCreatedDesc SortBy = "created_desc"
	SortCreatedAsc  SortBy = "created_asc"
	SortCompanyName SortBy = "company_name"
	SortIndustry    SortBy = "industry"
)

// Layout selects the listing presentation.
type Layout string

const (
	LayoutListCompact  Layout = "list-compact"
	LayoutListDetailed Layout = "list-detailed"
	LayoutGrid         Layout = "grid"
)

// YesNoAny is a tri-state filter flag.
type YesNoAny string

const (
	Yes YesNoAny = "yes"
	No  YesNoAny = "no"
	Any YesNoAny = "any"
)

var (
	jobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeContract, JobTypeAny}
	roles    = []Role{
		RoleEngineering, RoleDesign, RoleProduct, RoleSales, RoleMarketing,
		RoleOperations, RoleFinance, RoleLegal, RoleScience, RoleAny,
	}
	sortOrders = []SortBy{SortCreatedDesc, SortCreatedAsc, SortCompanyName, SortIndustry}
	layouts    = []Layout{LayoutListCompact, LayoutListDetailed, LayoutGrid}
	triStates  = []YesNoAny{Yes, No, Any}
)

// JobTypes returns every accepted JobType.
func JobTypes() []JobType { return slices.Clone(jobTypes) }

// Roles returns every accepted Role.
func Roles() []Role { return slices.Clone(roles) }

// SortOrders returns every accepted SortBy.
func SortOrders() []SortBy { return slices.Clone(sortOrders) }

// Layouts returns every accepted Layout.
func Layouts() []Layout { return slices.Clone(layouts) }

// TriStates returns every accepted YesNoAny.
func TriStates() []YesNoAny { return slices.Clone(triStates) }

// ParseJobType validates s against the JobType enumeration.
func ParseJobType(s string) (JobType, error) { return parseEnum(s, jobTypes, "jobType") }

// ParseRole validates s against the Role enumeration.
func ParseRole(s string) (Role, error) { return parseEnum(s, roles, "role") }

// ParseSortBy validates s against the SortBy enumeration.
func ParseSortBy(s string) (SortBy, error) { return parseEnum(s, sortOrders, "sortBy") }

// ParseLayout validates s against the Layout enumeration.
func ParseLayout(s string) (Layout, error) { return parseEnum(s, layouts, "layout") }

// ParseYesNoAny validates s against the tri-state enumeration.
func ParseYesNoAny(s string) (YesNoAny, error) { return parseEnum(s, triStates, "flag") }

func parseEnum[T ~string](s string, allowed []T, name string) (T, error) {
	v := T(s)
	if slices.Contains(allowed, v) {
		return v, nil
	}
	var zero T
	return zero, eris.Errorf("model: invalid %s %q", name, s)
}

// Query-string parameter names used by the job board.
const (
	ParamDemographic       = "demographic"
	ParamHasEquity         = "hasEquity"
	ParamHasSalary         = "hasSalary"
	ParamIndustry          = "industry"
	ParamInterviewProcess  = "interviewProcess"
	ParamJobType           = "jobType"
	ParamLayout            = "layout"
	ParamRole              = "role"
	ParamSortBy            = "sortBy"
	ParamTab               = "tab"
	ParamUSVisaNotRequired = "usVisaNotRequired"
	ParamLocation          = "location"
	ParamCompanySize       = "companySize"
)

// SearchParams is the filter set of a job-board search. It round-trips
// losslessly through Values and SearchParamsFromValues.
type SearchParams struct {
	Demographic       YesNoAny `json:"demographic" yaml:"demographic"`
	HasEquity         YesNoAny `json:"has_equity" yaml:"has_equity"`
	HasSalary         YesNoAny `json:"has_salary" yaml:"has_salary"`
	Industry          string   `json:"industry" yaml:"industry"`
	InterviewProcess  string   `json:"interview_process" yaml:"interview_process"`
	JobType           JobType  `json:"job_type" yaml:"job_type"`
	Layout            Layout   `json:"layout" yaml:"layout"`
	Role              Role     `json:"role" yaml:"role"`
	SortBy            SortBy   `json:"sort_by" yaml:"sort_by"`
	Tab               string   `json:"tab" yaml:"tab"`
	USVisaNotRequired YesNoAny `json:"us_visa_not_required" yaml:"us_visa_not_required"`
	Location          string   `json:"location,omitempty" yaml:"location,omitempty"`
	CompanySize       string   `json:"company_size,omitempty" yaml:"company_size,omitempty"`
}

// DefaultSearchParams returns the board's default filters: full-time jobs in
// any role, newest first.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Demographic:       Any,
		HasEquity:         Any,
		HasSalary:         Any,
		Industry:          "any",
		InterviewProcess:  "any",
		JobType:           JobTypeFullTime,
		Layout:            LayoutListCompact,
		Role:              RoleAny,
		SortBy:            SortCreatedDesc,
		Tab:               "any",
		USVisaNotRequired: Any,
	}
}

// WithDefaults fills zero-valued enum fields from DefaultSearchParams.
// Free-text fields are left untouched.
func (p SearchParams) WithDefaults() SearchParams {
	d := DefaultSearchParams()
	if p.Demographic == "" {
		p.Demographic = d.Demographic
	}
	if p.HasEquity == "" {
		p.HasEquity = d.HasEquity
	}
	if p.HasSalary == "" {
		p.HasSalary = d.HasSalary
	}
	if p.JobType == "" {
		p.JobType = d.JobType
	}
	if p.Layout == "" {
		p.Layout = d.Layout
	}
	if p.Role == "" {
		p.Role = d.Role
	}
	if p.SortBy == "" {
		p.SortBy = d.SortBy
	}
	if p.USVisaNotRequired == "" {
		p.USVisaNotRequired = d.USVisaNotRequired
	}
	return p
}

// Validate checks every enumerated field against its accepted values.
func (p SearchParams) Validate() error {
	checks := []struct {
		name string
		fn   func() error
	}{
		{ParamDemographic, func() error { _, err := ParseYesNoAny(string(p.Demographic)); return err }},
		{ParamHasEquity, func() error { _, err := ParseYesNoAny(string(p.HasEquity)); return err }},
		{ParamHasSalary, func() error { _, err := ParseYesNoAny(string(p.HasSalary)); return err }},
		{ParamJobType, func() error { _, err := ParseJobType(string(p.JobType)); return err }},
		{ParamLayout, func() error { _, err := ParseLayout(string(p.Layout)); return err }},
		{ParamRole, func() error { _, err := ParseRole(string(p.Role)); return err }},
		{ParamSortBy, func() error { _, err := ParseSortBy(string(p.SortBy)); return err }},
		{ParamUSVisaNotRequired, func() error { _, err := ParseYesNoAny(string(p.USVisaNotRequired)); return err }},
	}
	for _, c := range checks {
		if err := c.fn(); err != nil {
			return eris.Wrapf(err, "search params: %s", c.name)
		}
	}
	return nil
}

// Values encodes p into the board's query parameters. Location and
// CompanySize are omitted when empty.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	v.Set(ParamDemographic, string(p.Demographic))
	v.Set(ParamHasEquity, string(p.HasEquity))
	v.Set(ParamHasSalary, string(p.HasSalary))
	v.Set(ParamIndustry, p.Industry)
	v.Set(ParamInterviewProcess, p.InterviewProcess)
	v.Set(ParamJobType, string(p.JobType))
	v.Set(ParamLayout, string(p.Layout))
	v.Set(ParamRole, string(p.Role))
	v.Set(ParamSortBy, string(p.SortBy))
	v.Set(ParamTab, p.Tab)
	v.Set(ParamUSVisaNotRequired, string(p.USVisaNotRequired))
	if p.Location != "" {
		v.Set(ParamLocation, p.Location)
	}
	if p.CompanySize != "" {
		v.Set(ParamCompanySize, p.CompanySize)
	}
	return v
}

// SearchParamsFromValues decodes query parameters. Missing parameters take
// their default; present enum parameters must be valid.
func SearchParamsFromValues(v url.Values) (SearchParams, error) {
	p := DefaultSearchParams()
	var err error

	tri := func(key string, dst *YesNoAny) {
		if err != nil || !v.Has(key) {
			return
		}
		*dst, err = ParseYesNoAny(v.Get(key))
		if err != nil {
			err = eris.Wrapf(err, "search params: %s", key)
		}
	}
	text := func(key string, dst *string) {
		if v.Has(key) {
			*dst = v.Get(key)
		}
	}

	tri(ParamDemographic, &p.Demographic)
	tri(ParamHasEquity, &p.HasEquity)
	tri(ParamHasSalary, &p.HasSalary)
	tri(ParamUSVisaNotRequired, &p.USVisaNotRequired)
	if err != nil {
		return SearchParams{}, err
	}

	if v.Has(ParamJobType) {
		if p.JobType, err = ParseJobType(v.Get(ParamJobType)); err != nil {
			return SearchParams{}, eris.Wrap(err, "search params: jobType")
		}
	}
	if v.Has(ParamLayout) {
		if p.Layout, err = ParseLayout(v.Get(ParamLayout)); err != nil {
			return SearchParams{}, eris.Wrap(err, "search params: layout")
		}
	}
	if v.Has(ParamRole) {
		if p.Role, err = ParseRole(v.Get(ParamRole)); err != nil {
			return SearchParams{}, eris.Wrap(err, "search params: role")
		}
	}
	if v.Has(ParamSortBy) {
		if p.SortBy, err = ParseSortBy(v.Get(ParamSortBy)); err != nil {
			return SearchParams{}, eris.Wrap(err, "search params: sortBy")
		}
	}

	text(ParamIndustry, &p.Industry)
	text(ParamInterviewProcess, &p.InterviewProcess)
	text(ParamTab, &p.Tab)
	text(ParamLocation, &p.Location)
	text(ParamCompanySize, &p.CompanySize)

	return p, nil
}
