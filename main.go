package main

import (
	"log"

	"github.com/joho/godotenv"

	"nocturna/adapters/ingest"
	"nocturna/app"
	"nocturna/internal"
	"nocturna/internal/config"
	"nocturna/internal/testkit"
	"nocturna/ports"
	"nocturna/ui"
)

func main() {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := internal.NewDefaultLogger()

	var reader ports.SeriesReader
	if cfg.Data.InputFile != "" {
		reader = ingest.NewDataReader(cfg.Data.InputFile,
			ingest.WithSheet(cfg.Data.SheetName),
			ingest.WithDateColumn(cfg.Data.DateColumn),
		)
		logger.Info("serving data from %s", cfg.Data.InputFile)
	} else {
		reader = testkit.NewDemoReader()
		logger.Warn("INPUT_FILE not set, serving synthetic demo data")
	}

	service := app.NewAnalysisService(reader, cfg.Engine, logger)
	api := ui.NewApp(service, logger)
	if err := api.Serve(cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
