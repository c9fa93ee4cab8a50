package config

import (
	"fmt"
	"os"
	"strconv"

	"gosem/domain/sem"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Paths    PathConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database connection settings. Persistence is
// optional: with an empty URL the application runs without a repository.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether run persistence is configured.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	RunHistoryLimit int
}

// PathConfig holds default input/output file locations
type PathConfig struct {
	SurveyFile string
	KPIFile    string
	OutputDir  string
}

// AnalysisConfig holds analysis defaults
type AnalysisConfig struct {
	Method sem.Method
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	method, err := sem.ParseMethod(getEnv("GOSEM_METHOD", string(sem.MethodSimple)))
	if err != nil {
		return nil, fmt.Errorf("invalid GOSEM_METHOD: %w", err)
	}

	return &Config{
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			RunHistoryLimit: getEnvInt("GOSEM_RUN_HISTORY_LIMIT", 50),
		},
		Paths: PathConfig{
			SurveyFile: getEnv("GOSEM_SURVEY_FILE", "data/examples/survey_example.csv"),
			KPIFile:    getEnv("GOSEM_KPI_FILE", "data/examples/kpis_example.csv"),
			OutputDir:  getEnv("GOSEM_OUTPUT_DIR", "data/outputs"),
		},
		Analysis: AnalysisConfig{
			Method: method,
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
