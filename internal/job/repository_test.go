package job

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var jobRowCols = []string{
	"id", "employer_id", "title", "slug", "description", "company", "location",
	"employment_type", "job_type", "experience_level", "experience", "salary_range",
	"skills", "requirements", "benefits", "status", "is_active", "views",
	"applicants", "posted_date", "expiry_date",
}

func jobRow(id int, expiry interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(jobRowCols).AddRow(
		id, nil, "Go Developer", "go-developer-acme", "desc", "Acme", "Karachi",
		"full_time", "remote", "mid", 3, "100k-150k",
		[]byte("{}"), []byte("{}"), []byte("{}"), "published", true, 0,
		0, time.Now().UTC().AddDate(0, 0, -10), expiry,
	)
}

// The featured set runs on active jobs from the last 30 days with no
// expiry narrowing; only the public listing hides expired posts.
func TestFeaturedJobsDoesNotFilterByExpiry(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mockDB.ExpectQuery(`SELECT (.+) FROM job WHERE is_active = TRUE AND posted_date >= NOW\(\) - INTERVAL '30 days' ORDER BY views DESC, posted_date DESC LIMIT \$1`).
		WithArgs(10).
		WillReturnRows(jobRow(1, nil))

	jobs, err := repo.FeaturedJobs(10)
	assert.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestRecentJobsDoesNotFilterByExpiry(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	expired := time.Now().UTC().AddDate(0, 0, -3)
	mockDB.ExpectQuery(`SELECT (.+) FROM job WHERE is_active = TRUE ORDER BY posted_date DESC LIMIT \$1`).
		WithArgs(20).
		WillReturnRows(jobRow(2, expired))

	jobs, err := repo.RecentJobs(20)
	assert.NoError(t, err)
	if assert.Len(t, jobs, 1) {
		assert.True(t, jobs[0].IsExpired)
	}
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestJobsByQueryExcludesExpired(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	mockDB.ExpectQuery(`SELECT count\(\*\) OVER\(\) AS full_count, (.+) FROM job WHERE is_active = TRUE AND \(expiry_date IS NULL OR expiry_date > NOW\(\)\) ORDER BY (.+) LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(append([]string{"full_count"}, jobRowCols...)))

	_, count, err := repo.JobsByQuery(Filters{Page: 1, PageSize: 20})
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}
