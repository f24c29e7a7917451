package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jobstack/job-board/internal/job"
	"github.com/jobstack/job-board/internal/middleware"
	"github.com/jobstack/job-board/internal/server"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxSkillsPerJob    = 20
	featuredJobsMax    = 10
	recentJobsMax      = 20
	urgentJobsMax      = 10
	suggestionsMax     = 10
	suggestionsMinimum = 2
)

var descriptionPolicy = bluemonday.UGCPolicy()

// dropStatsCache discards the cached aggregates after a job mutation so
// the next stats/analytics read recomputes. A miss on delete is fine.
func dropStatsCache(svr server.Server) {
	svr.CacheDelete(server.CacheKeyJobStats)
	svr.CacheDelete(server.CacheKeyJobAnalytics)
}

// ListJobsHandler serves the public paginated job listing.
func ListJobsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := job.ParseFiltersFromQuery(r.URL.Query())
		jobs, count, err := jobRepo.JobsByQuery(f)
		if err != nil {
			svr.Log(err, "unable to retrieve jobs by query")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, paginate(r, jobs, count, f.Page, f.PageSize))
	}
}

// CreateJobHandler creates a job post for an authenticated user.
func CreateJobHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			claims, err := middleware.GetUserFromJWT(r, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
				return
			}
			jobRq := &job.JobRq{}
			if err := json.NewDecoder(r.Body).Decode(jobRq); err != nil {
				svr.JSON(w, http.StatusBadRequest, fieldErrors{"body": "unable to parse request body"}.response())
				return
			}
			if errs := validateJobRq(jobRq, time.Now().UTC()); len(errs) > 0 {
				svr.JSON(w, http.StatusBadRequest, errs.response())
				return
			}
			jobRq.Description = descriptionPolicy.Sanitize(jobRq.Description)
			jobPost, err := jobRepo.SaveJob(jobRq, claims.UserID)
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to save job request: %#v", jobRq))
				svr.JSON(w, http.StatusBadRequest, nil)
				return
			}
			dropStatsCache(svr)
			svr.JSON(w, http.StatusCreated, jobPost)
		})
}

func GetJobHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := jobIDFromRequest(r)
		if !ok {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		jobPost, err := jobRepo.JobPostByID(jobID)
		if err == sql.ErrNoRows {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, fmt.Sprintf("unable to retrieve job %d", jobID))
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, jobPost)
	}
}

// UpdateJobHandler handles PUT and PATCH. The stored job pre-fills the
// request struct so omitted PATCH fields keep their current values.
func UpdateJobHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			jobID, ok := jobIDFromRequest(r)
			if !ok {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			existing, err := jobRepo.JobPostByID(jobID)
			if err == sql.ErrNoRows {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve job %d", jobID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			body, err := io.ReadAll(r.Body)
			if err != nil {
				svr.JSON(w, http.StatusBadRequest, fieldErrors{"body": "unable to parse request body"}.response())
				return
			}
			var supplied map[string]json.RawMessage
			if err := json.Unmarshal(body, &supplied); err != nil {
				svr.JSON(w, http.StatusBadRequest, fieldErrors{"body": "unable to parse request body"}.response())
				return
			}
			jobRq := jobRqUpdateFromPost(existing)
			if err := json.Unmarshal(body, jobRq); err != nil {
				svr.JSON(w, http.StatusBadRequest, fieldErrors{"body": "unable to parse request body"}.response())
				return
			}
			if jobRq.Slug != existing.Slug {
				svr.JSON(w, http.StatusBadRequest, fieldErrors{"slug": "Slug cannot be modified directly"}.response())
				return
			}
			// the stored expiry pre-fills the struct, so only a caller-supplied
			// value is held to the future-date rule
			_, expirySupplied := supplied["expiry_date"]
			if errs := validateJobRqUpdate(jobRq, time.Now().UTC(), expirySupplied); len(errs) > 0 {
				svr.JSON(w, http.StatusBadRequest, errs.response())
				return
			}
			jobRq.Description = descriptionPolicy.Sanitize(jobRq.Description)
			if err := jobRepo.UpdateJob(jobRq, jobID); err != nil {
				svr.Log(err, fmt.Sprintf("unable to update job %d", jobID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			updated, err := jobRepo.JobPostByID(jobID)
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve job %d after update", jobID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			dropStatsCache(svr)
			svr.JSON(w, http.StatusOK, updated)
		})
}

// DeleteJobHandler removes a job and its bookmarks. Admin only.
func DeleteJobHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return middleware.AdminAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			jobID, ok := jobIDFromRequest(r)
			if !ok {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			if _, err := jobRepo.JobPostByID(jobID); err == sql.ErrNoRows {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			} else if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve job %d", jobID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			if err := jobRepo.DeleteJobCascade(jobID); err != nil {
				svr.Log(err, fmt.Sprintf("unable to delete job %d", jobID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			dropStatsCache(svr)
			svr.JSON(w, http.StatusNoContent, nil)
		})
}

func IncrementJobViewsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := jobIDFromRequest(r)
		if !ok {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		views, err := jobRepo.IncrementViews(jobID)
		if err == sql.ErrNoRows {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, fmt.Sprintf("unable to increment views for job %d", jobID))
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, map[string]int{"views": views})
	}
}

func IncrementJobApplicantsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok := jobIDFromRequest(r)
		if !ok {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		applicants, err := jobRepo.IncrementApplicants(jobID)
		if err == sql.ErrNoRows {
			svr.JSON(w, http.StatusNotFound, nil)
			return
		}
		if err != nil {
			svr.Log(err, fmt.Sprintf("unable to increment applicants for job %d", jobID))
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, map[string]int{"applicants": applicants})
	}
}

func FeaturedJobsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := jobRepo.FeaturedJobs(featuredJobsMax)
		if err != nil {
			svr.Log(err, "unable to retrieve featured jobs")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, jobs)
	}
}

func RecentJobsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := jobRepo.RecentJobs(recentJobsMax)
		if err != nil {
			svr.Log(err, "unable to retrieve recent jobs")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, jobs)
	}
}

func UrgentJobsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := jobRepo.UrgentJobs(urgentJobsMax)
		if err != nil {
			svr.Log(err, "unable to retrieve urgent jobs")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, jobs)
	}
}

// EmployerJobsHandler lists jobs for the employer dashboard, including
// inactive and expired posts.
func EmployerJobsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			company := strings.TrimSpace(r.URL.Query().Get("company"))
			page := 1
			if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
				page = p
			}
			perPage := svr.GetConfig().JobsPerPage
			if size, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && size > 0 {
				if size > svr.GetConfig().MaxJobsPerPage {
					size = svr.GetConfig().MaxJobsPerPage
				}
				perPage = size
			}
			jobs, count, err := jobRepo.EmployerJobsByQuery(company, page, perPage)
			if err != nil {
				svr.Log(err, "unable to retrieve employer jobs")
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			svr.JSON(w, http.StatusOK, paginate(r, jobs, count, page, perPage))
		})
}

func DeactivateJobHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			jobID, ok := jobIDFromRequest(r)
			if !ok {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			if _, err := jobRepo.JobPostByID(jobID); err == sql.ErrNoRows {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			} else if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve job %d", jobID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			if err := jobRepo.DeactivateJob(jobID); err != nil {
				svr.Log(err, fmt.Sprintf("unable to deactivate job %d", jobID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			dropStatsCache(svr)
			svr.JSON(w, http.StatusOK, map[string]string{"status": "Job deactivated successfully"})
		})
}

// ActivateJobHandler re-activates a job. Jobs past their expiry date
// cannot be re-activated.
func ActivateJobHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			jobID, ok := jobIDFromRequest(r)
			if !ok {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			jobPost, err := jobRepo.JobPostByID(jobID)
			if err == sql.ErrNoRows {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve job %d", jobID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			if jobPost.ExpiryDate != nil && jobPost.ExpiryDate.Before(time.Now().UTC()) {
				svr.JSON(w, http.StatusBadRequest, map[string]string{"detail": "Cannot activate expired job"})
				return
			}
			if err := jobRepo.ActivateJob(jobID); err != nil {
				svr.Log(err, fmt.Sprintf("unable to activate job %d", jobID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			dropStatsCache(svr)
			svr.JSON(w, http.StatusOK, map[string]string{"status": "Job activated successfully"})
		})
}

// JobStatsHandler serves the global dashboard aggregates. Responses are
// cached for the configured stats TTL.
func JobStatsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := svr.CacheGet(server.CacheKeyJobStats); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
		stats, err := jobRepo.JobStats()
		if err != nil {
			svr.Log(err, "unable to compute job stats")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		buf, err := json.Marshal(stats)
		if err != nil {
			svr.Log(err, "unable to marshal job stats")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		if err := svr.CacheSet(server.CacheKeyJobStats, buf); err != nil {
			svr.Log(err, "unable to cache job stats")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(buf)
	}
}

// JobAnalyticsHandler serves rolling-window analytics to authenticated
// callers.
func JobAnalyticsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !middleware.IsSignedOn(r, svr.GetJWTSigningKey()) {
			svr.JSON(w, http.StatusForbidden, map[string]string{"detail": "Authentication required"})
			return
		}
		if cached, ok := svr.CacheGet(server.CacheKeyJobAnalytics); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
		analytics, err := jobRepo.JobAnalytics()
		if err != nil {
			svr.Log(err, "unable to compute job analytics")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		buf, err := json.Marshal(analytics)
		if err != nil {
			svr.Log(err, "unable to marshal job analytics")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		if err := svr.CacheSet(server.CacheKeyJobAnalytics, buf); err != nil {
			svr.Log(err, "unable to cache job analytics")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(buf)
	}
}

// SearchSuggestionsHandler returns autocomplete candidates for job
// titles, companies, locations and skills. Queries shorter than two
// characters answer with an empty suggestions list.
func SearchSuggestionsHandler(svr server.Server, jobRepo jobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if len(query) < suggestionsMinimum {
			svr.JSON(w, http.StatusOK, map[string][]string{"suggestions": {}})
			return
		}
		suggestions := &job.Suggestions{
			Titles:    []string{},
			Companies: []string{},
			Locations: []string{},
			Skills:    []string{},
		}
		titles, companies, locations, err := jobRepo.TitleCompanyLocationSuggestions(query, suggestionsMax)
		if err != nil {
			svr.Log(err, "unable to retrieve search suggestions")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		skillLists, err := jobRepo.ActiveSkillLists()
		if err != nil {
			svr.Log(err, "unable to retrieve skill lists")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		suggestions.Titles = titles
		suggestions.Companies = companies
		suggestions.Locations = locations
		suggestions.Skills = job.MatchSkills(skillLists, query, suggestionsMax)
		svr.JSON(w, http.StatusOK, suggestions)
	}
}

func jobIDFromRequest(r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	jobID, err := strconv.Atoi(vars["id"])
	if err != nil || jobID <= 0 {
		return 0, false
	}
	return jobID, true
}

func validateJobRq(jobRq *job.JobRq, now time.Time) fieldErrors {
	errs := fieldErrors{}
	if strings.TrimSpace(jobRq.Title) == "" {
		errs["title"] = "This field is required"
	}
	if strings.TrimSpace(jobRq.Company) == "" {
		errs["company"] = "This field is required"
	}
	if strings.TrimSpace(jobRq.Location) == "" {
		errs["location"] = "This field is required"
	}
	if strings.TrimSpace(jobRq.Description) == "" {
		errs["description"] = "This field is required"
	}
	validateJobEnums(errs, jobRq.EmploymentType, jobRq.JobType, jobRq.ExperienceLevel, jobRq.Status)
	if len(jobRq.Skills) > maxSkillsPerJob {
		errs["skills"] = "Maximum 20 Skills Allowed"
	}
	if jobRq.ExpiryDate != nil && !jobRq.ExpiryDate.After(now) {
		errs["expiry_date"] = "Expiry date must be in the future"
	}
	return errs
}

func validateJobRqUpdate(jobRq *job.JobRqUpdate, now time.Time, expirySupplied bool) fieldErrors {
	errs := fieldErrors{}
	if strings.TrimSpace(jobRq.Title) == "" {
		errs["title"] = "This field is required"
	}
	validateJobEnums(errs, jobRq.EmploymentType, jobRq.JobType, jobRq.ExperienceLevel, jobRq.Status)
	if len(jobRq.Skills) > maxSkillsPerJob {
		errs["skills"] = "Maximum 20 Skills Allowed"
	}
	if expirySupplied && jobRq.ExpiryDate != nil && !jobRq.ExpiryDate.After(now) {
		errs["expiry_date"] = "Expiry date must be in the future"
	}
	return errs
}

func validateJobEnums(errs fieldErrors, employmentType, jobType, experienceLevel, status string) {
	if employmentType != "" {
		if _, ok := job.ValidEmploymentTypes[employmentType]; !ok {
			errs["employment_type"] = "Invalid employment type"
		}
	}
	if jobType == "" {
		errs["job_type"] = "This field is required"
	} else if _, ok := job.ValidJobTypes[jobType]; !ok {
		errs["job_type"] = "Invalid job type"
	}
	if experienceLevel == "" {
		errs["experience_level"] = "This field is required"
	} else if _, ok := job.ValidExperienceLevels[experienceLevel]; !ok {
		errs["experience_level"] = "Invalid experience level"
	}
	if status != "" && status != job.StatusDraft && status != job.StatusPublished {
		errs["status"] = "Invalid status"
	}
}

func jobRqUpdateFromPost(jobPost *job.JobPost) *job.JobRqUpdate {
	return &job.JobRqUpdate{
		Title:           jobPost.Title,
		Slug:            jobPost.Slug,
		Description:     jobPost.Description,
		Company:         jobPost.Company,
		Location:        jobPost.Location,
		EmploymentType:  jobPost.EmploymentType,
		JobType:         jobPost.JobType,
		ExperienceLevel: jobPost.ExperienceLevel,
		Experience:      jobPost.Experience,
		SalaryRange:     jobPost.SalaryRange,
		Skills:          []string(jobPost.Skills),
		Requirements:    []string(jobPost.Requirements),
		Benefits:        []string(jobPost.Benefits),
		Status:          jobPost.Status,
		ExpiryDate:      jobPost.ExpiryDate,
	}
}
