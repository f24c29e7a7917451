package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jobstack/job-board/internal/job"
	"github.com/jobstack/job-board/internal/savedjob"
	"github.com/stretchr/testify/assert"
)

func TestSaveJob(t *testing.T) {
	svr := testServer()
	jobStore := new(mockJobStore)
	savedJobStore := new(mockSavedJobStore)
	jobStore.On("JobPostByID", 5).Return(&job.JobPost{ID: 5}, nil)
	savedJobStore.On("SaveJobForUser", "js-1", 5).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/5/save", nil)
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := serveJobRoute(http.MethodPost, "/api/jobs/{id:[0-9]+}/save", SaveJobHandler(svr, jobStore, savedJobStore), req)

	assert.Equal(t, http.StatusCreated, w.Code)
	savedJobStore.AssertExpectations(t)
}

func TestSaveJobMissingJob(t *testing.T) {
	svr := testServer()
	jobStore := new(mockJobStore)
	savedJobStore := new(mockSavedJobStore)
	jobStore.On("JobPostByID", 99).Return(nil, sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/99/save", nil)
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := serveJobRoute(http.MethodPost, "/api/jobs/{id:[0-9]+}/save", SaveJobHandler(svr, jobStore, savedJobStore), req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	savedJobStore.AssertNotCalled(t, "SaveJobForUser")
}

func TestUnsaveJobNotSaved(t *testing.T) {
	svr := testServer()
	savedJobStore := new(mockSavedJobStore)
	savedJobStore.On("RemoveSavedJob", "js-1", 5).Return(false, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/jobs/5/save", nil)
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := serveJobRoute(http.MethodDelete, "/api/jobs/{id:[0-9]+}/save", UnsaveJobHandler(svr, savedJobStore), req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSavedJobsList(t *testing.T) {
	svr := testServer()
	savedJobStore := new(mockSavedJobStore)
	saved := []*savedjob.SavedJob{
		{UserID: "js-1", JobID: 5, CreatedAt: time.Now().UTC(), Job: &job.JobPost{ID: 5, Title: "Go Developer"}},
	}
	savedJobStore.On("SavedJobsByUser", "js-1").Return(saved, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/me/saved-jobs", nil)
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := httptest.NewRecorder()
	SavedJobsHandler(svr, savedJobStore)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []*savedjob.SavedJob
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if assert.Len(t, resp, 1) {
		assert.Equal(t, "Go Developer", resp[0].Job.Title)
	}
	savedJobStore.AssertExpectations(t)
}
