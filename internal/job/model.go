package job

import (
	"math"
	"strings"
	"time"

	"github.com/lib/pq"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const NewJobWindowDays = 7

var ValidEmploymentTypes = map[string]struct{}{
	"full_time":  {},
	"part_time":  {},
	"internship": {},
	"contract":   {},
}

var ValidJobTypes = map[string]struct{}{
	"onsite": {},
	"remote": {},
	"hybrid": {},
}

var ValidExperienceLevels = map[string]struct{}{
	"fresher": {},
	"junior":  {},
	"mid":     {},
	"senior":  {},
	"lead":    {},
}

type JobPost struct {
	ID              int            `json:"id"`
	EmployerID      string         `json:"employer_id,omitempty"`
	Title           string         `json:"title"`
	Slug            string         `json:"slug"`
	Description     string         `json:"description"`
	Company         string         `json:"company"`
	Location        string         `json:"location"`
	EmploymentType  string         `json:"employment_type"`
	JobType         string         `json:"job_type"`
	ExperienceLevel string         `json:"experience_level"`
	Experience      int            `json:"experience"`
	SalaryRange     string         `json:"salary_range"`
	Skills          pq.StringArray `json:"skills"`
	Requirements    pq.StringArray `json:"requirements"`
	Benefits        pq.StringArray `json:"benefits"`
	Status          string         `json:"status"`
	IsActive        bool           `json:"is_active"`
	Views           int            `json:"views"`
	Applicants      int            `json:"applicants"`
	PostedDate      time.Time      `json:"posted_date"`
	ExpiryDate      *time.Time     `json:"expiry_date,omitempty"`

	// derived at read time, never stored
	DaysAgo        int     `json:"days_ago"`
	IsNew          bool    `json:"is_new"`
	IsExpired      bool    `json:"is_expired"`
	ConversionRate float64 `json:"conversion_rate"`
	DaysRemaining  *int    `json:"days_remaining,omitempty"`
	IsExpiringSoon bool    `json:"is_expiring_soon"`
	PostedTimeAgo  string  `json:"posted_time_ago,omitempty"`
}

type JobRq struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	EmploymentType  string     `json:"employment_type"`
	JobType         string     `json:"job_type"`
	ExperienceLevel string     `json:"experience_level"`
	Experience      int        `json:"experience"`
	SalaryRange     string     `json:"salary_range"`
	Skills          []string   `json:"skills"`
	Requirements    []string   `json:"requirements"`
	Benefits        []string   `json:"benefits"`
	Status          string     `json:"status"`
	ExpiryDate      *time.Time `json:"expiry_date"`
}

type JobRqUpdate struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	EmploymentType  string     `json:"employment_type"`
	JobType         string     `json:"job_type"`
	ExperienceLevel string     `json:"experience_level"`
	Experience      int        `json:"experience"`
	SalaryRange     string     `json:"salary_range"`
	Skills          []string   `json:"skills"`
	Requirements    []string   `json:"requirements"`
	Benefits        []string   `json:"benefits"`
	Status          string     `json:"status"`
	ExpiryDate      *time.Time `json:"expiry_date"`
}

// Derive fills the read-time fields from the stored columns.
func (j *JobPost) Derive(now time.Time) {
	j.DaysAgo = int(now.Sub(j.PostedDate).Hours() / 24)
	j.IsNew = now.Sub(j.PostedDate) <= NewJobWindowDays*24*time.Hour
	j.ConversionRate = ConversionRate(j.Applicants, j.Views)
	if j.ExpiryDate != nil {
		j.IsExpired = now.After(*j.ExpiryDate)
		remaining := int(j.ExpiryDate.Sub(now).Hours() / 24)
		if remaining < 0 {
			remaining = 0
		}
		j.DaysRemaining = &remaining
		j.IsExpiringSoon = remaining <= NewJobWindowDays
	}
}

// ConversionRate returns applicants over views as a percentage rounded
// to 2 decimals, 0 when there are no views.
func ConversionRate(applicants, views int) float64 {
	if views <= 0 {
		return 0
	}
	return math.Round(float64(applicants)/float64(views)*100*100) / 100
}

type Suggestions struct {
	Titles    []string `json:"titles"`
	Companies []string `json:"companies"`
	Locations []string `json:"locations"`
	Skills    []string `json:"skills"`
}

// MatchSkills scans skill lists for a case-insensitive substring match,
// deduplicating across jobs, up to max entries.
func MatchSkills(skillLists [][]string, query string, max int) []string {
	matched := make([]string, 0, max)
	seen := make(map[string]struct{})
	q := strings.ToLower(query)
	for _, skills := range skillLists {
		for _, skill := range skills {
			if _, ok := seen[skill]; ok {
				continue
			}
			if strings.Contains(strings.ToLower(skill), q) {
				seen[skill] = struct{}{}
				matched = append(matched, skill)
				if len(matched) >= max {
					return matched
				}
			}
		}
	}
	return matched
}
