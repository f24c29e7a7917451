package savedjob

import (
	"time"

	"github.com/jobstack/job-board/internal/job"
)

type SavedJob struct {
	UserID    string       `json:"user_id"`
	JobID     int          `json:"job_id"`
	CreatedAt time.Time    `json:"created_at"`
	Job       *job.JobPost `json:"job"`
}
