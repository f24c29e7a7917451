package handler

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/jobstack/job-board/internal/middleware"
	"github.com/jobstack/job-board/internal/server"
)

// SaveJobHandler bookmarks a job for the authenticated user. Saving the
// same job twice is a no-op.
func SaveJobHandler(svr server.Server, jobRepo jobStore, savedJobRepo savedJobStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			claims, err := middleware.GetUserFromJWT(r, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
				return
			}
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
			if err := savedJobRepo.SaveJobForUser(claims.UserID, jobID); err != nil {
				svr.Log(err, fmt.Sprintf("unable to save job %d for user %s", jobID, claims.UserID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			svr.JSON(w, http.StatusCreated, map[string]string{"status": "Job saved successfully"})
		})
}

func UnsaveJobHandler(svr server.Server, savedJobRepo savedJobStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			claims, err := middleware.GetUserFromJWT(r, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
				return
			}
			jobID, ok := jobIDFromRequest(r)
			if !ok {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			removed, err := savedJobRepo.RemoveSavedJob(claims.UserID, jobID)
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to remove saved job %d for user %s", jobID, claims.UserID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			if !removed {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			svr.JSON(w, http.StatusNoContent, nil)
		})
}

func SavedJobsHandler(svr server.Server, savedJobRepo savedJobStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			claims, err := middleware.GetUserFromJWT(r, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
				return
			}
			saved, err := savedJobRepo.SavedJobsByUser(claims.UserID)
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve saved jobs for user %s", claims.UserID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			svr.JSON(w, http.StatusOK, saved)
		})
}
