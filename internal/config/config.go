package config

import (
	"os"
	"path/filepath"
	"strconv"

	"fininsight/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Paths    PathConfig
	Limits   LimitConfig
	Analysis AnalysisConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// PathConfig holds file system locations for uploads and generated artifacts
type PathConfig struct {
	UploadDir     string
	PlotDir       string
	PlotURLPrefix string
}

// LimitConfig bounds input size and the amount of data fed to plots and models
type LimitConfig struct {
	MaxUploadBytes  int64
	FullReadMaxRows int
	SampleChunkRows int
	AnalysisRowCap  int
}

// AnalysisConfig holds the fixed model parameters
type AnalysisConfig struct {
	Seed           int64
	SegmentCount   int
	KMeansInit     int
	Contamination  float64
	IsolationTrees int
}

// Default returns the configuration used when no environment overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", GinMode: "release"},
		Paths: PathConfig{
			UploadDir:     "uploads",
			PlotDir:       filepath.Join("static", "plots"),
			PlotURLPrefix: "/static/plots",
		},
		Limits: LimitConfig{
			MaxUploadBytes:  500 * 1024 * 1024,
			FullReadMaxRows: 5_000_000,
			SampleChunkRows: 100_000,
			AnalysisRowCap:  100_000,
		},
		Analysis: AnalysisConfig{
			Seed:           42,
			SegmentCount:   3,
			KMeansInit:     5,
			Contamination:  0.01,
			IsolationTrees: 100,
		},
		LogLevel: "INFO",
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	def := Default()
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", def.Server.Port),
			GinMode: getEnvOrDefault("GIN_MODE", def.Server.GinMode),
		},
		Paths: PathConfig{
			UploadDir:     getEnvOrDefault("UPLOAD_DIR", def.Paths.UploadDir),
			PlotDir:       getEnvOrDefault("PLOTS_DIR", def.Paths.PlotDir),
			PlotURLPrefix: getEnvOrDefault("PLOTS_URL_PREFIX", def.Paths.PlotURLPrefix),
		},
		Limits: LimitConfig{
			MaxUploadBytes:  int64(getEnvIntOrDefault("MAX_UPLOAD_MB", int(def.Limits.MaxUploadBytes/(1024*1024)))) * 1024 * 1024,
			FullReadMaxRows: getEnvIntOrDefault("FULL_READ_MAX_ROWS", def.Limits.FullReadMaxRows),
			SampleChunkRows: getEnvIntOrDefault("SAMPLE_CHUNK_ROWS", def.Limits.SampleChunkRows),
			AnalysisRowCap:  getEnvIntOrDefault("ANALYSIS_ROW_CAP", def.Limits.AnalysisRowCap),
		},
		Analysis: AnalysisConfig{
			Seed:           int64(getEnvIntOrDefault("RANDOM_SEED", int(def.Analysis.Seed))),
			SegmentCount:   getEnvIntOrDefault("SEGMENT_COUNT", def.Analysis.SegmentCount),
			KMeansInit:     getEnvIntOrDefault("KMEANS_INIT", def.Analysis.KMeansInit),
			Contamination:  getEnvFloatOrDefault("CONTAMINATION", def.Analysis.Contamination),
			IsolationTrees: getEnvIntOrDefault("ISOLATION_TREES", def.Analysis.IsolationTrees),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", def.LogLevel),
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks value ranges
func Validate(config *Config) error {
	if config.Paths.UploadDir == "" {
		return errors.ConfigInvalid("upload directory is required")
	}
	if config.Paths.PlotDir == "" {
		return errors.ConfigInvalid("plot directory is required")
	}
	if config.Limits.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Limits.SampleChunkRows <= 0 || config.Limits.AnalysisRowCap <= 0 {
		return errors.ConfigInvalid("row caps must be positive")
	}
	if config.Analysis.SegmentCount < 2 {
		return errors.ConfigInvalid("SEGMENT_COUNT must be at least 2")
	}
	if config.Analysis.KMeansInit < 1 {
		return errors.ConfigInvalid("KMEANS_INIT must be at least 1")
	}
	if config.Analysis.Contamination <= 0 || config.Analysis.Contamination > 0.5 {
		return errors.ConfigInvalid("CONTAMINATION must be in (0, 0.5]")
	}
	if config.Analysis.IsolationTrees < 1 {
		return errors.ConfigInvalid("ISOLATION_TREES must be at least 1")
	}
	return nil
}

// EnsureDirs creates the upload and plot directories
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.UploadDir, c.Paths.PlotDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
