package job

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
)

const jobCols = `id, employer_id, title, slug, description, company, location, employment_type, job_type, experience_level, experience, salary_range, skills, requirements, benefits, status, is_active, views, applicants, posted_date, expiry_date`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// SaveJob inserts a new job post. The slug is derived once from title
// and company and is never recomputed afterwards; on a collision a
// timestamp suffix is appended.
func (r *Repository) SaveJob(jobRq *JobRq, employerID string) (*JobPost, error) {
	now := time.Now().UTC()
	slugTitle := slug.Make(fmt.Sprintf("%s %s", jobRq.Title, jobRq.Company))
	status := jobRq.Status
	if status == "" {
		status = StatusDraft
	}
	var employer sql.NullString
	if employerID != "" {
		employer = sql.NullString{String: employerID, Valid: true}
	}
	sqlStatement := `
		INSERT INTO job (employer_id, title, slug, description, company, location, employment_type, job_type, experience_level, experience, salary_range, skills, requirements, benefits, status, is_active, views, applicants, posted_date, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, TRUE, 0, 0, $16, $17) RETURNING id`
	var lastInsertID int
	err := r.db.QueryRow(
		sqlStatement,
		employer,
		jobRq.Title,
		slugTitle,
		jobRq.Description,
		jobRq.Company,
		jobRq.Location,
		jobRq.EmploymentType,
		jobRq.JobType,
		jobRq.ExperienceLevel,
		jobRq.Experience,
		jobRq.SalaryRange,
		pq.Array(jobRq.Skills),
		pq.Array(jobRq.Requirements),
		pq.Array(jobRq.Benefits),
		status,
		now,
		jobRq.ExpiryDate,
	).Scan(&lastInsertID)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		slugTitle = slug.Make(fmt.Sprintf("%s %s %d", jobRq.Title, jobRq.Company, now.Unix()))
		err = r.db.QueryRow(
			sqlStatement,
			employer,
			jobRq.Title,
			slugTitle,
			jobRq.Description,
			jobRq.Company,
			jobRq.Location,
			jobRq.EmploymentType,
			jobRq.JobType,
			jobRq.ExperienceLevel,
			jobRq.Experience,
			jobRq.SalaryRange,
			pq.Array(jobRq.Skills),
			pq.Array(jobRq.Requirements),
			pq.Array(jobRq.Benefits),
			status,
			now,
			jobRq.ExpiryDate,
		).Scan(&lastInsertID)
	}
	if err != nil {
		return nil, err
	}
	return r.JobPostByID(lastInsertID)
}

func (r *Repository) JobPostByID(jobID int) (*JobPost, error) {
	row := r.db.QueryRow(`SELECT `+jobCols+` FROM job WHERE id = $1`, jobID)
	return scanJobPost(row)
}

// UpdateJob mutates the editable columns only. Slug, counters and
// posted_date are immutable through this path.
func (r *Repository) UpdateJob(jobRq *JobRqUpdate, jobID int) error {
	_, err := r.db.Exec(
		`UPDATE job SET title = $1, description = $2, company = $3, location = $4, employment_type = $5, job_type = $6, experience_level = $7, experience = $8, salary_range = $9, skills = $10, requirements = $11, benefits = $12, status = $13, expiry_date = $14 WHERE id = $15`,
		jobRq.Title,
		jobRq.Description,
		jobRq.Company,
		jobRq.Location,
		jobRq.EmploymentType,
		jobRq.JobType,
		jobRq.ExperienceLevel,
		jobRq.Experience,
		jobRq.SalaryRange,
		pq.Array(jobRq.Skills),
		pq.Array(jobRq.Requirements),
		pq.Array(jobRq.Benefits),
		jobRq.Status,
		jobRq.ExpiryDate,
		jobID,
	)
	return err
}

func (r *Repository) DeleteJobCascade(jobID int) error {
	if _, err := r.db.Exec(
		`DELETE FROM saved_job WHERE job_id = $1`,
		jobID,
	); err != nil {
		return err
	}
	if _, err := r.db.Exec(
		`DELETE FROM job WHERE id = $1`,
		jobID,
	); err != nil {
		return err
	}
	return nil
}

// IncrementViews adds 1 to the views counter in a single UPDATE so
// concurrent calls never lose updates, and returns the new value.
func (r *Repository) IncrementViews(jobID int) (int, error) {
	var views int
	err := r.db.QueryRow(`UPDATE job SET views = views + 1 WHERE id = $1 RETURNING views`, jobID).Scan(&views)
	return views, err
}

func (r *Repository) IncrementApplicants(jobID int) (int, error) {
	var applicants int
	err := r.db.QueryRow(`UPDATE job SET applicants = applicants + 1 WHERE id = $1 RETURNING applicants`, jobID).Scan(&applicants)
	return applicants, err
}

func (r *Repository) DeactivateJob(jobID int) error {
	_, err := r.db.Exec(`UPDATE job SET is_active = FALSE WHERE id = $1`, jobID)
	return err
}

// DeactivateExpiredJobs turns off every active job whose expiry date
// has passed and returns how many rows changed.
func (r *Repository) DeactivateExpiredJobs() (int64, error) {
	res, err := r.db.Exec(`UPDATE job SET is_active = FALSE WHERE is_active = TRUE AND expiry_date IS NOT NULL AND expiry_date < NOW()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) ActivateJob(jobID int) error {
	_, err := r.db.Exec(`UPDATE job SET is_active = TRUE WHERE id = $1`, jobID)
	return err
}

// JobsByQuery returns the public listing: active, unexpired jobs
// narrowed by the caller's filters, with the total row count.
func (r *Repository) JobsByQuery(f Filters) ([]*JobPost, int, error) {
	where := []string{"is_active = TRUE", "(expiry_date IS NULL OR expiry_date > NOW())"}
	args := []interface{}{}
	where, args = appendFilterClauses(where, args, f)

	offset := f.Page*f.PageSize - f.PageSize
	args = append(args, f.PageSize, offset)
	query := fmt.Sprintf(
		`SELECT count(*) OVER() AS full_count, %s FROM job WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		jobCols,
		strings.Join(where, " AND "),
		f.OrderBy(),
		len(args)-1,
		len(args),
	)
	return r.queryJobsWithCount(query, args...)
}

// EmployerJobsByQuery returns all jobs regardless of lifecycle state,
// optionally narrowed by a company substring.
func (r *Repository) EmployerJobsByQuery(company string, page, perPage int) ([]*JobPost, int, error) {
	where := "1=1"
	args := []interface{}{}
	if company != "" {
		where = "company ILIKE '%' || $1 || '%'"
		args = append(args, company)
	}
	offset := page*perPage - perPage
	args = append(args, perPage, offset)
	query := fmt.Sprintf(
		`SELECT count(*) OVER() AS full_count, %s FROM job WHERE %s ORDER BY posted_date DESC LIMIT $%d OFFSET $%d`,
		jobCols,
		where,
		len(args)-1,
		len(args),
	)
	return r.queryJobsWithCount(query, args...)
}

// FeaturedJobs returns the most viewed jobs posted in the last 30 days.
// Expiry does not narrow this set; only the public listing hides
// expired posts.
func (r *Repository) FeaturedJobs(max int) ([]*JobPost, error) {
	return r.queryJobs(`SELECT `+jobCols+` FROM job
		WHERE is_active = TRUE
		AND posted_date >= NOW() - INTERVAL '30 days'
		ORDER BY views DESC, posted_date DESC LIMIT $1`, max)
}

func (r *Repository) RecentJobs(max int) ([]*JobPost, error) {
	return r.queryJobs(`SELECT `+jobCols+` FROM job
		WHERE is_active = TRUE
		ORDER BY posted_date DESC LIMIT $1`, max)
}

// UrgentJobs returns jobs expiring within the next 7 days.
func (r *Repository) UrgentJobs(max int) ([]*JobPost, error) {
	return r.queryJobs(`SELECT `+jobCols+` FROM job
		WHERE is_active = TRUE
		AND expiry_date IS NOT NULL
		AND expiry_date > NOW()
		AND expiry_date <= NOW() + INTERVAL '7 days'
		ORDER BY expiry_date ASC LIMIT $1`, max)
}

// TitleCompanyLocationSuggestions returns up to max distinct values per
// column matching the query as a case-insensitive substring, scanning
// active jobs only.
func (r *Repository) TitleCompanyLocationSuggestions(query string, max int) (titles, companies, locations []string, err error) {
	titles, err = r.distinctColumnMatches("title", query, max)
	if err != nil {
		return
	}
	companies, err = r.distinctColumnMatches("company", query, max)
	if err != nil {
		return
	}
	locations, err = r.distinctColumnMatches("location", query, max)
	return
}

func (r *Repository) distinctColumnMatches(column, query string, max int) ([]string, error) {
	out := make([]string, 0, max)
	rows, err := r.db.Query(
		`SELECT DISTINCT `+column+` FROM job WHERE is_active = TRUE AND `+column+` ILIKE '%' || $1 || '%' LIMIT $2`,
		query, max)
	if err != nil {
		return out, err
	}
	defer rows.Close()
	for rows.Next() {
		var val string
		if err := rows.Scan(&val); err != nil {
			return out, err
		}
		out = append(out, val)
	}
	return out, rows.Err()
}

// ActiveSkillLists loads every active job's skills list. Callers scan
// the lists in memory; fine at small scale, quadratic beyond it.
func (r *Repository) ActiveSkillLists() ([][]string, error) {
	lists := [][]string{}
	rows, err := r.db.Query(`SELECT skills FROM job WHERE is_active = TRUE`)
	if err != nil {
		return lists, err
	}
	defer rows.Close()
	for rows.Next() {
		var skills pq.StringArray
		if err := rows.Scan(&skills); err != nil {
			return lists, err
		}
		lists = append(lists, []string(skills))
	}
	return lists, rows.Err()
}

func appendFilterClauses(where []string, args []interface{}, f Filters) ([]string, []interface{}) {
	next := func() int { return len(args) + 1 }
	if len(f.JobTypes) > 0 {
		args = append(args, pq.Array(keys(f.JobTypes)))
		where = append(where, fmt.Sprintf("job_type = ANY($%d)", len(args)))
	}
	if len(f.EmploymentTypes) > 0 {
		args = append(args, pq.Array(keys(f.EmploymentTypes)))
		where = append(where, fmt.Sprintf("employment_type = ANY($%d)", len(args)))
	}
	if len(f.ExperienceLevels) > 0 {
		args = append(args, pq.Array(keys(f.ExperienceLevels)))
		where = append(where, fmt.Sprintf("experience_level = ANY($%d)", len(args)))
	}
	if f.Experience != nil {
		args = append(args, *f.Experience)
		where = append(where, fmt.Sprintf("experience = $%d", len(args)))
	}
	if f.ExperienceGte != nil {
		args = append(args, *f.ExperienceGte)
		where = append(where, fmt.Sprintf("experience >= $%d", len(args)))
	}
	if f.ExperienceLte != nil {
		args = append(args, *f.ExperienceLte)
		where = append(where, fmt.Sprintf("experience <= $%d", len(args)))
	}
	if len(f.ExperienceIn) > 0 {
		args = append(args, pq.Array(f.ExperienceIn))
		where = append(where, fmt.Sprintf("experience = ANY($%d)", len(args)))
	}
	if f.Company != "" {
		args = append(args, f.Company)
		where = append(where, fmt.Sprintf("company ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if f.Location != "" {
		args = append(args, f.Location)
		where = append(where, fmt.Sprintf("location ILIKE '%%' || $%d || '%%'", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	// every requested skill must be present
	for _, skill := range f.Skills {
		args = append(args, pq.Array([]string{skill}))
		where = append(where, fmt.Sprintf("skills @> $%d", len(args)))
	}
	if f.Search != "" {
		n := next()
		args = append(args, f.Search)
		where = append(where, fmt.Sprintf(
			`(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%' OR company ILIKE '%%' || $%d || '%%' OR location ILIKE '%%' || $%d || '%%' OR array_to_string(skills, ' ') ILIKE '%%' || $%d || '%%' OR array_to_string(requirements, ' ') ILIKE '%%' || $%d || '%%')`,
			n, n, n, n, n, n))
	}
	return where, args
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func (r *Repository) queryJobs(query string, args ...interface{}) ([]*JobPost, error) {
	jobs := []*JobPost{}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return jobs, err
	}
	defer rows.Close()
	now := time.Now().UTC()
	for rows.Next() {
		job, err := scanJobPostFromRows(rows, nil)
		if err != nil {
			return jobs, err
		}
		job.Derive(now)
		job.PostedTimeAgo = humanize.Time(job.PostedDate)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *Repository) queryJobsWithCount(query string, args ...interface{}) ([]*JobPost, int, error) {
	jobs := []*JobPost{}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return jobs, 0, err
	}
	defer rows.Close()
	var fullRowsCount int
	now := time.Now().UTC()
	for rows.Next() {
		job, err := scanJobPostFromRows(rows, &fullRowsCount)
		if err != nil {
			return jobs, fullRowsCount, err
		}
		job.Derive(now)
		job.PostedTimeAgo = humanize.Time(job.PostedDate)
		jobs = append(jobs, job)
	}
	return jobs, fullRowsCount, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJobPost(row rowScanner) (*JobPost, error) {
	job := &JobPost{}
	var employerID sql.NullString
	var expiryDate sql.NullTime
	err := row.Scan(
		&job.ID,
		&employerID,
		&job.Title,
		&job.Slug,
		&job.Description,
		&job.Company,
		&job.Location,
		&job.EmploymentType,
		&job.JobType,
		&job.ExperienceLevel,
		&job.Experience,
		&job.SalaryRange,
		&job.Skills,
		&job.Requirements,
		&job.Benefits,
		&job.Status,
		&job.IsActive,
		&job.Views,
		&job.Applicants,
		&job.PostedDate,
		&expiryDate,
	)
	if err != nil {
		return nil, err
	}
	if employerID.Valid {
		job.EmployerID = employerID.String
	}
	if expiryDate.Valid {
		job.ExpiryDate = &expiryDate.Time
	}
	job.Derive(time.Now().UTC())
	job.PostedTimeAgo = humanize.Time(job.PostedDate)
	return job, nil
}

func scanJobPostFromRows(rows *sql.Rows, fullCount *int) (*JobPost, error) {
	job := &JobPost{}
	var employerID sql.NullString
	var expiryDate sql.NullTime
	dest := []interface{}{}
	if fullCount != nil {
		dest = append(dest, fullCount)
	}
	dest = append(dest,
		&job.ID,
		&employerID,
		&job.Title,
		&job.Slug,
		&job.Description,
		&job.Company,
		&job.Location,
		&job.EmploymentType,
		&job.JobType,
		&job.ExperienceLevel,
		&job.Experience,
		&job.SalaryRange,
		&job.Skills,
		&job.Requirements,
		&job.Benefits,
		&job.Status,
		&job.IsActive,
		&job.Views,
		&job.Applicants,
		&job.PostedDate,
		&expiryDate,
	)
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	if employerID.Valid {
		job.EmployerID = employerID.String
	}
	if expiryDate.Valid {
		job.ExpiryDate = &expiryDate.Time
	}
	return job, nil
}
