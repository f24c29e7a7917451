package savedjob

import (
	"database/sql"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jobstack/job-board/internal/job"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// SaveJobForUser records a bookmark. Saving an already saved job is a
// no-op rather than an error.
func (r *Repository) SaveJobForUser(userID string, jobID int) error {
	_, err := r.db.Exec(
		`INSERT INTO saved_job (user_id, job_id, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, job_id) DO NOTHING`,
		userID, jobID, time.Now().UTC())
	return err
}

// RemoveSavedJob deletes a bookmark and reports whether one existed.
func (r *Repository) RemoveSavedJob(userID string, jobID int) (bool, error) {
	res, err := r.db.Exec(
		`DELETE FROM saved_job WHERE user_id = $1 AND job_id = $2`,
		userID, jobID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *Repository) SavedJobsByUser(userID string) ([]*SavedJob, error) {
	saved := []*SavedJob{}
	rows, err := r.db.Query(
		`SELECT s.user_id, s.job_id, s.created_at,
		j.id, j.title, j.slug, j.description, j.company, j.location, j.employment_type, j.job_type, j.experience_level, j.experience, j.salary_range, j.skills, j.requirements, j.benefits, j.status, j.is_active, j.views, j.applicants, j.posted_date, j.expiry_date
		FROM saved_job s JOIN job j ON j.id = s.job_id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return saved, err
	}
	defer rows.Close()
	now := time.Now().UTC()
	for rows.Next() {
		s := &SavedJob{Job: &job.JobPost{}}
		var expiryDate sql.NullTime
		err := rows.Scan(
			&s.UserID,
			&s.JobID,
			&s.CreatedAt,
			&s.Job.ID,
			&s.Job.Title,
			&s.Job.Slug,
			&s.Job.Description,
			&s.Job.Company,
			&s.Job.Location,
			&s.Job.EmploymentType,
			&s.Job.JobType,
			&s.Job.ExperienceLevel,
			&s.Job.Experience,
			&s.Job.SalaryRange,
			&s.Job.Skills,
			&s.Job.Requirements,
			&s.Job.Benefits,
			&s.Job.Status,
			&s.Job.IsActive,
			&s.Job.Views,
			&s.Job.Applicants,
			&s.Job.PostedDate,
			&expiryDate,
		)
		if err != nil {
			return saved, err
		}
		if expiryDate.Valid {
			s.Job.ExpiryDate = &expiryDate.Time
		}
		s.Job.Derive(now)
		s.Job.PostedTimeAgo = humanize.Time(s.Job.PostedDate)
		saved = append(saved, s)
	}
	return saved, rows.Err()
}
