package main

import (
	"log"

	"github.com/jobstack/job-board/internal/config"
	"github.com/jobstack/job-board/internal/database"
	"github.com/jobstack/job-board/internal/job"
)

func main() {
	log.Println("deactivating expired jobs")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config %v", err)
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
		log.Fatalf("unable to connect to postgres: %v", err)
	}
	defer database.CloseDbConn(conn)

	jobRepo := job.NewRepository(conn)
	deactivated, err := jobRepo.DeactivateExpiredJobs()
	if err != nil {
		log.Fatalf("unable to deactivate expired jobs: %v", err)
	}
	log.Printf("deactivated %d expired jobs\n", deactivated)
}
