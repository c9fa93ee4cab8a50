package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gosem/adapters/api"
	"gosem/adapters/postgres"
	"gosem/app"
	"gosem/domain/model"
	"gosem/internal/config"
	"gosem/ports"
)

func main() {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] failed to load configuration: %v", err)
	}

	spec := model.Default()

	var repo ports.RunRepository
	if cfg.Database.Enabled() {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("[Main] failed to connect to database: %v", err)
		}
		pgRepo := postgres.NewRunRepository(db)
		if err := pgRepo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("[Main] %v", err)
		}
		repo = pgRepo
		log.Printf("[Main] run persistence enabled")
	} else {
		log.Printf("[Main] DATABASE_URL not set, running without persistence")
	}

	pipeline := app.NewPipeline(spec, repo)
	httpApp := api.NewApp(spec, pipeline, repo, api.Config{
		Port:            cfg.Server.Port,
		SurveyFile:      cfg.Paths.SurveyFile,
		KPIFile:         cfg.Paths.KPIFile,
		OutputDir:       cfg.Paths.OutputDir,
		Method:          cfg.Analysis.Method,
		RunHistoryLimit: cfg.Server.RunHistoryLimit,
	})
	if err := httpApp.Start(); err != nil {
		log.Fatalf("[Main] server failed: %v", err)
	}
}
