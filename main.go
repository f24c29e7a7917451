package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jobstack/job-board/internal/config"
	"github.com/jobstack/job-board/internal/database"
	"github.com/jobstack/job-board/internal/handler"
	"github.com/jobstack/job-board/internal/job"
	"github.com/jobstack/job-board/internal/savedjob"
	"github.com/jobstack/job-board/internal/server"
	"github.com/jobstack/job-board/internal/token"
	"github.com/jobstack/job-board/internal/user"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load configuration: %+v", err)
	}
	conn, err := database.GetDbConn(
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)
	if err != nil {
		log.Fatalf("unable to connect to postgres: %+v", err)
	}
	defer database.CloseDbConn(conn)

	jobRepo := job.NewRepository(conn)
	userRepo := user.NewRepository(conn)
	savedJobRepo := savedjob.NewRepository(conn)
	refreshRepo := token.NewRefreshRepository(conn)

	svr := server.NewServer(cfg, conn, mux.NewRouter())

	svr.RegisterRoute("/api/jobs", handler.ListJobsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs", handler.CreateJobHandler(svr, jobRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/jobs/featured", handler.FeaturedJobsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/recent", handler.RecentJobsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/urgent", handler.UrgentJobsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/employer-jobs", handler.EmployerJobsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/stats", handler.JobStatsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/analytics", handler.JobAnalyticsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/search_suggestions", handler.SearchSuggestionsHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}", handler.GetJobHandler(svr, jobRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}", handler.UpdateJobHandler(svr, jobRepo), []string{http.MethodPut, http.MethodPatch})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}", handler.DeleteJobHandler(svr, jobRepo), []string{http.MethodDelete})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}/increment_views", handler.IncrementJobViewsHandler(svr, jobRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}/increment_applicants", handler.IncrementJobApplicantsHandler(svr, jobRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}/deactivate", handler.DeactivateJobHandler(svr, jobRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}/activate", handler.ActivateJobHandler(svr, jobRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}/save", handler.SaveJobHandler(svr, jobRepo, savedJobRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/jobs/{id:[0-9]+}/save", handler.UnsaveJobHandler(svr, savedJobRepo), []string{http.MethodDelete})
	svr.RegisterRoute("/api/me/saved-jobs", handler.SavedJobsHandler(svr, savedJobRepo), []string{http.MethodGet})

	svr.RegisterRoute("/api/auth/register", handler.RegisterHandler(svr, userRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/auth/login", handler.LoginHandler(svr, userRepo, refreshRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/auth/logout", handler.LogoutHandler(svr, refreshRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/auth/refresh", handler.RefreshTokenHandler(svr, userRepo, refreshRepo), []string{http.MethodPost})
	svr.RegisterRoute("/api/auth/profile", handler.ProfileHandler(svr, userRepo), []string{http.MethodGet})
	svr.RegisterRoute("/api/auth/profile-update", handler.ProfileUpdateHandler(svr, userRepo), []string{http.MethodPut, http.MethodPatch})
	svr.RegisterRoute("/api/auth/change-password", handler.ChangePasswordHandler(svr, userRepo, refreshRepo), []string{http.MethodPost})

	log.Fatal(svr.Run())
}
