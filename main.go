package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"tolninja/adapters/excel"
	"tolninja/adapters/memory"
	"tolninja/adapters/postgres"
	"tolninja/app"
	"tolninja/internal"
	"tolninja/internal/config"
	"tolninja/ports"
	"tolninja/ui"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	var repo ports.StackupRepository
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("failed to ensure schema: %v", err)
		}
		repo = postgres.NewStackupRepository(db)
		logger.Info("using postgres stackup store")
	} else {
		repo = memory.NewStackupRepository()
		logger.Warn("DATABASE_URL not set, using in-memory stackup store")
	}

	service := app.NewStackupService(repo, excel.NewReportWriter(), cfg.Report.Dir, app.EngineSettings{
		NumSamples: cfg.Engine.NumSamples,
		MaxRounds:  cfg.Engine.MaxRounds,
	}, logger)

	server := ui.NewServer(service, logger)
	if err := server.Run(cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
