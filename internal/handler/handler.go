package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jobstack/job-board/internal/job"
	"github.com/jobstack/job-board/internal/savedjob"
	"github.com/jobstack/job-board/internal/user"
)

type jobStore interface {
	SaveJob(jobRq *job.JobRq, employerID string) (*job.JobPost, error)
	JobPostByID(jobID int) (*job.JobPost, error)
	UpdateJob(jobRq *job.JobRqUpdate, jobID int) error
	DeleteJobCascade(jobID int) error
	JobsByQuery(f job.Filters) ([]*job.JobPost, int, error)
	EmployerJobsByQuery(company string, page, perPage int) ([]*job.JobPost, int, error)
	FeaturedJobs(max int) ([]*job.JobPost, error)
	RecentJobs(max int) ([]*job.JobPost, error)
	UrgentJobs(max int) ([]*job.JobPost, error)
	IncrementViews(jobID int) (int, error)
	IncrementApplicants(jobID int) (int, error)
	DeactivateJob(jobID int) error
	ActivateJob(jobID int) error
	JobStats() (*job.Stats, error)
	JobAnalytics() (map[string]job.PeriodAnalytics, error)
	TitleCompanyLocationSuggestions(query string, max int) (titles, companies, locations []string, err error)
	ActiveSkillLists() ([][]string, error)
}

type userStore interface {
	SaveUser(u *user.User) error
	UserByID(userID string) (*user.User, error)
	UserByEmail(email string) (*user.User, error)
	EmailExists(email string) (bool, error)
	UsernameExists(username string) (bool, error)
	UpdatePassword(userID, passwordHash string) error
	UpdateUserDetails(u *user.User) error
	UpdateJobseekerProfile(p *user.JobseekerProfile) error
	UpdateEmployerProfile(p *user.EmployerProfile) error
}

type savedJobStore interface {
	SaveJobForUser(userID string, jobID int) error
	RemoveSavedJob(userID string, jobID int) (bool, error)
	SavedJobsByUser(userID string) ([]*savedjob.SavedJob, error)
}

type refreshStore interface {
	SaveRefreshToken(userID string, ttl time.Duration) (string, error)
	ValidateRefreshToken(raw string) (string, error)
	RevokeRefreshToken(raw string) error
	RevokeAllForUser(userID string) error
	RotateRefreshToken(raw string, ttl time.Duration) (userID, newToken string, err error)
}

// fieldErrors is the 400 response body keyed by the offending field.
type fieldErrors map[string]string

func (fe fieldErrors) response() map[string]fieldErrors {
	return map[string]fieldErrors{"errors": fe}
}

type paginatedResponse struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// paginate builds the list envelope with absolute next/previous links
// derived from the request URL.
func paginate(r *http.Request, results interface{}, count, page, pageSize int) paginatedResponse {
	resp := paginatedResponse{Count: count, Results: results}
	lastPage := (count + pageSize - 1) / pageSize
	if page < lastPage {
		next := pageURL(r, page+1)
		resp.Next = &next
	}
	if page > 1 && page <= lastPage {
		prev := pageURL(r, page-1)
		resp.Previous = &prev
	}
	return resp
}

func pageURL(r *http.Request, page int) string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, u.RequestURI())
}
