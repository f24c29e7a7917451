package job

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultJobsPerPage = 20
	MaxJobsPerPage     = 100

	defaultOrdering = "-posted_date"
)

// orderableColumns whitelists caller-selectable ordering fields.
var orderableColumns = map[string]string{
	"posted_date":  "posted_date",
	"salary_range": "salary_range",
	"experience":   "experience",
	"views":        "views",
	"applicants":   "applicants",
}

type Filters struct {
	JobTypes         map[string]struct{}
	EmploymentTypes  map[string]struct{}
	ExperienceLevels map[string]struct{}
	Experience       *int
	ExperienceGte    *int
	ExperienceLte    *int
	ExperienceIn     []int
	Company          string
	Location         string
	Status           string
	Skills           []string
	Search           string
	Ordering         string
	Page             int
	PageSize         int
}

// ParseFiltersFromQuery maps HTTP query parameters onto Filters. Bad
// values are dropped rather than rejected, matching list-endpoint
// semantics where an unparsable filter simply does not narrow results.
func ParseFiltersFromQuery(query url.Values) Filters {
	f := Filters{
		JobTypes:         make(map[string]struct{}),
		EmploymentTypes:  make(map[string]struct{}),
		ExperienceLevels: make(map[string]struct{}),
		Ordering:         defaultOrdering,
		Page:             1,
		PageSize:         DefaultJobsPerPage,
	}

	// job_type / employment_type / experience_level take a CSV of values
	for _, raw := range strings.Split(query.Get("job_type"), ",") {
		if _, ok := ValidJobTypes[raw]; ok {
			f.JobTypes[raw] = struct{}{}
		}
	}
	for _, raw := range strings.Split(query.Get("employment_type"), ",") {
		if _, ok := ValidEmploymentTypes[raw]; ok {
			f.EmploymentTypes[raw] = struct{}{}
		}
	}
	for _, raw := range strings.Split(query.Get("experience_level"), ",") {
		if _, ok := ValidExperienceLevels[raw]; ok {
			f.ExperienceLevels[raw] = struct{}{}
		}
	}

	if v := query.Get("experience"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Experience = &n
		}
	}
	if v := query.Get("experience__gte"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.ExperienceGte = &n
		}
	}
	if v := query.Get("experience__lte"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.ExperienceLte = &n
		}
	}
	for _, raw := range strings.Split(query.Get("experience__in"), ",") {
		if n, err := strconv.Atoi(raw); err == nil {
			f.ExperienceIn = append(f.ExperienceIn, n)
		}
	}

	f.Company = strings.TrimSpace(query.Get("company"))
	f.Location = strings.TrimSpace(query.Get("location"))
	f.Status = strings.TrimSpace(query.Get("status"))
	f.Search = strings.TrimSpace(query.Get("search"))

	// repeated skills params are ANDed together
	for _, skill := range query["skills"] {
		skill = strings.TrimSpace(skill)
		if skill != "" {
			f.Skills = append(f.Skills, skill)
		}
	}

	if ordering := query.Get("ordering"); ordering != "" {
		col := strings.TrimPrefix(ordering, "-")
		if _, ok := orderableColumns[col]; ok {
			f.Ordering = ordering
		}
	}

	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if size, err := strconv.Atoi(query.Get("page_size")); err == nil && size > 0 {
		if size > MaxJobsPerPage {
			size = MaxJobsPerPage
		}
		f.PageSize = size
	}

	return f
}

// OrderBy translates the ordering filter into a SQL ORDER BY clause.
// Only whitelisted columns ever reach this point.
func (f Filters) OrderBy() string {
	col := f.Ordering
	dir := "ASC"
	if strings.HasPrefix(col, "-") {
		col = strings.TrimPrefix(col, "-")
		dir = "DESC"
	}
	sqlCol, ok := orderableColumns[col]
	if !ok {
		return "posted_date DESC"
	}
	return sqlCol + " " + dir
}
