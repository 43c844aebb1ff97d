package main

import (
	"log"

	"fininsight/app"
	"fininsight/internal"
	"fininsight/internal/config"
	"fininsight/internal/dataset"
	"fininsight/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := appConfig.EnsureDirs(); err != nil {
		log.Fatalf("Failed to prepare directories: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLevel(appConfig.LogLevel))

	storage := dataset.NewLocalFileStorage(&dataset.StorageConfig{
		BasePath:          appConfig.Paths.UploadDir,
		MaxFileSize:       appConfig.Limits.MaxUploadBytes,
		ChunkSize:         1024 * 1024,
		AllowedExtensions: []string{".csv"},
	})
	service := app.NewAnalysisService(app.OptionsFromConfig(appConfig), logger)

	server, err := ui.NewServer(appConfig, service, storage, logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
