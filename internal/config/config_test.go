package config

import (
	"testing"

	"gosem/domain/sem"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("GOSEM_METHOD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Enabled() {
		t.Error("Persistence should be disabled without DATABASE_URL")
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Analysis.Method != sem.MethodSimple {
		t.Errorf("Expected default method simple, got %s", cfg.Analysis.Method)
	}
	if cfg.Paths.OutputDir != "data/outputs" {
		t.Errorf("Expected default output dir, got %s", cfg.Paths.OutputDir)
	}
	if cfg.Server.RunHistoryLimit != 50 {
		t.Errorf("Expected default run history limit 50, got %d", cfg.Server.RunHistoryLimit)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gsem")
	t.Setenv("PORT", "9090")
	t.Setenv("GOSEM_METHOD", "weighted")
	t.Setenv("GOSEM_SURVEY_FILE", "/tmp/survey.xlsx")
	t.Setenv("GOSEM_RUN_HISTORY_LIMIT", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Database.Enabled() {
		t.Error("Persistence should be enabled with DATABASE_URL set")
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Analysis.Method != sem.MethodWeighted {
		t.Errorf("Expected method weighted, got %s", cfg.Analysis.Method)
	}
	if cfg.Paths.SurveyFile != "/tmp/survey.xlsx" {
		t.Errorf("Expected overridden survey file, got %s", cfg.Paths.SurveyFile)
	}
	if cfg.Server.RunHistoryLimit != 10 {
		t.Errorf("Expected run history limit 10, got %d", cfg.Server.RunHistoryLimit)
	}
}

func TestLoad_UnparseableIntFallsBack(t *testing.T) {
	t.Setenv("GOSEM_RUN_HISTORY_LIMIT", "lots")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.RunHistoryLimit != 50 {
		t.Errorf("Expected fallback limit 50, got %d", cfg.Server.RunHistoryLimit)
	}
}

func TestLoad_InvalidMethod(t *testing.T) {
	t.Setenv("GOSEM_METHOD", "median")
	if _, err := Load(); err == nil {
		t.Fatal("Expected error for invalid GOSEM_METHOD")
	}
}
