package handler

import (
	"time"

	"github.com/jobstack/job-board/internal/job"
	"github.com/jobstack/job-board/internal/savedjob"
	"github.com/jobstack/job-board/internal/user"
	"github.com/stretchr/testify/mock"
)

type mockJobStore struct{ mock.Mock }

func (m *mockJobStore) SaveJob(jobRq *job.JobRq, employerID string) (*job.JobPost, error) {
	args := m.Called(jobRq, employerID)
	var out *job.JobPost
	if v := args.Get(0); v != nil {
		out = v.(*job.JobPost)
	}
	return out, args.Error(1)
}

func (m *mockJobStore) JobPostByID(jobID int) (*job.JobPost, error) {
	args := m.Called(jobID)
	var out *job.JobPost
	if v := args.Get(0); v != nil {
		out = v.(*job.JobPost)
	}
	return out, args.Error(1)
}

func (m *mockJobStore) UpdateJob(jobRq *job.JobRqUpdate, jobID int) error {
	return m.Called(jobRq, jobID).Error(0)
}

func (m *mockJobStore) DeleteJobCascade(jobID int) error {
	return m.Called(jobID).Error(0)
}

func (m *mockJobStore) JobsByQuery(f job.Filters) ([]*job.JobPost, int, error) {
	args := m.Called(f)
	var out []*job.JobPost
	if v := args.Get(0); v != nil {
		out = v.([]*job.JobPost)
	}
	return out, args.Int(1), args.Error(2)
}

func (m *mockJobStore) EmployerJobsByQuery(company string, page, perPage int) ([]*job.JobPost, int, error) {
	args := m.Called(company, page, perPage)
	var out []*job.JobPost
	if v := args.Get(0); v != nil {
		out = v.([]*job.JobPost)
	}
	return out, args.Int(1), args.Error(2)
}

func (m *mockJobStore) FeaturedJobs(max int) ([]*job.JobPost, error) {
	args := m.Called(max)
	var out []*job.JobPost
	if v := args.Get(0); v != nil {
		out = v.([]*job.JobPost)
	}
	return out, args.Error(1)
}

func (m *mockJobStore) RecentJobs(max int) ([]*job.JobPost, error) {
	args := m.Called(max)
	var out []*job.JobPost
	if v := args.Get(0); v != nil {
		out = v.([]*job.JobPost)
	}
	return out, args.Error(1)
}

func (m *mockJobStore) UrgentJobs(max int) ([]*job.JobPost, error) {
	args := m.Called(max)
	var out []*job.JobPost
	if v := args.Get(0); v != nil {
		out = v.([]*job.JobPost)
	}
	return out, args.Error(1)
}

func (m *mockJobStore) IncrementViews(jobID int) (int, error) {
	args := m.Called(jobID)
	return args.Int(0), args.Error(1)
}

func (m *mockJobStore) IncrementApplicants(jobID int) (int, error) {
	args := m.Called(jobID)
	return args.Int(0), args.Error(1)
}

func (m *mockJobStore) DeactivateJob(jobID int) error {
	return m.Called(jobID).Error(0)
}

func (m *mockJobStore) ActivateJob(jobID int) error {
	return m.Called(jobID).Error(0)
}

func (m *mockJobStore) JobStats() (*job.Stats, error) {
	args := m.Called()
	var out *job.Stats
	if v := args.Get(0); v != nil {
		out = v.(*job.Stats)
	}
	return out, args.Error(1)
}

func (m *mockJobStore) JobAnalytics() (map[string]job.PeriodAnalytics, error) {
	args := m.Called()
	var out map[string]job.PeriodAnalytics
	if v := args.Get(0); v != nil {
		out = v.(map[string]job.PeriodAnalytics)
	}
	return out, args.Error(1)
}

func (m *mockJobStore) TitleCompanyLocationSuggestions(query string, max int) ([]string, []string, []string, error) {
	args := m.Called(query, max)
	toSlice := func(i int) []string {
		if v := args.Get(i); v != nil {
			return v.([]string)
		}
		return nil
	}
	return toSlice(0), toSlice(1), toSlice(2), args.Error(3)
}

func (m *mockJobStore) ActiveSkillLists() ([][]string, error) {
	args := m.Called()
	var out [][]string
	if v := args.Get(0); v != nil {
		out = v.([][]string)
	}
	return out, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) SaveUser(u *user.User) error {
	return m.Called(u).Error(0)
}

func (m *mockUserStore) UserByID(userID string) (*user.User, error) {
	args := m.Called(userID)
	var out *user.User
	if v := args.Get(0); v != nil {
		out = v.(*user.User)
	}
	return out, args.Error(1)
}

func (m *mockUserStore) UserByEmail(email string) (*user.User, error) {
	args := m.Called(email)
	var out *user.User
	if v := args.Get(0); v != nil {
		out = v.(*user.User)
	}
	return out, args.Error(1)
}

func (m *mockUserStore) EmailExists(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) UsernameExists(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) UpdatePassword(userID, passwordHash string) error {
	return m.Called(userID, passwordHash).Error(0)
}

func (m *mockUserStore) UpdateUserDetails(u *user.User) error {
	return m.Called(u).Error(0)
}

func (m *mockUserStore) UpdateJobseekerProfile(p *user.JobseekerProfile) error {
	return m.Called(p).Error(0)
}

func (m *mockUserStore) UpdateEmployerProfile(p *user.EmployerProfile) error {
	return m.Called(p).Error(0)
}

type mockSavedJobStore struct{ mock.Mock }

func (m *mockSavedJobStore) SaveJobForUser(userID string, jobID int) error {
	return m.Called(userID, jobID).Error(0)
}

func (m *mockSavedJobStore) RemoveSavedJob(userID string, jobID int) (bool, error) {
	args := m.Called(userID, jobID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSavedJobStore) SavedJobsByUser(userID string) ([]*savedjob.SavedJob, error) {
	args := m.Called(userID)
	var out []*savedjob.SavedJob
	if v := args.Get(0); v != nil {
		out = v.([]*savedjob.SavedJob)
	}
	return out, args.Error(1)
}

type mockRefreshStore struct{ mock.Mock }

func (m *mockRefreshStore) SaveRefreshToken(userID string, ttl time.Duration) (string, error) {
	args := m.Called(userID, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockRefreshStore) ValidateRefreshToken(raw string) (string, error) {
	args := m.Called(raw)
	return args.String(0), args.Error(1)
}

func (m *mockRefreshStore) RevokeRefreshToken(raw string) error {
	return m.Called(raw).Error(0)
}

func (m *mockRefreshStore) RevokeAllForUser(userID string) error {
	return m.Called(userID).Error(0)
}

func (m *mockRefreshStore) RotateRefreshToken(raw string, ttl time.Duration) (string, string, error) {
	args := m.Called(raw, ttl)
	return args.String(0), args.String(1), args.Error(2)
}
