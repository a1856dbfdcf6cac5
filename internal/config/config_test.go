package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MARKUP_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{
		"MARKUP_WORKERS", "MARKUP_MODE", "CATEGORY_ID", "CATEGORY_NAME",
		"MASK_SAT_MAX", "MASK_VAL_MIN", "MASK_KERNEL_SIZE", "LOG_DIR", "PROGRESS_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)
	os.Unsetenv("LEDGER_PATH")

	cfg := Load()

	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, expected 3", cfg.Workers)
	}
	if cfg.Mode != ModeBatch {
		t.Errorf("Mode = %q, expected %q", cfg.Mode, ModeBatch)
	}
	if cfg.CategoryID != 1 || cfg.CategoryName != "drone" {
		t.Errorf("Category = (%d, %q), expected (1, \"drone\")", cfg.CategoryID, cfg.CategoryName)
	}
	if cfg.MaskSaturationMax != 20 || cfg.MaskValueMin != 200 || cfg.MaskKernelSize != 5 {
		t.Errorf("Mask thresholds = (%d, %d, %d), expected (20, 200, 5)",
			cfg.MaskSaturationMax, cfg.MaskValueMin, cfg.MaskKernelSize)
	}
	if cfg.LedgerPath == "" {
		t.Error("Expected default ledger path")
	}
	if cfg.ProgressAddr != "" {
		t.Errorf("ProgressAddr = %q, expected empty", cfg.ProgressAddr)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("MARKUP_WORKERS", "8")
	t.Setenv("MARKUP_MODE", "SINGLE")
	t.Setenv("CATEGORY_NAME", "object")
	t.Setenv("LEDGER_PATH", "")

	cfg := Load()

	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, expected 8", cfg.Workers)
	}
	if cfg.Mode != ModeSingle {
		t.Errorf("Mode = %q, expected %q", cfg.Mode, ModeSingle)
	}
	if cfg.CategoryName != "object" {
		t.Errorf("CategoryName = %q, expected \"object\"", cfg.CategoryName)
	}
	if cfg.LedgerPath != "" {
		t.Errorf("LedgerPath = %q, expected empty (disabled)", cfg.LedgerPath)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	isolateEnv(t)
	tests := []struct {
		workers  string
		mode     string
		expected int
	}{
		{"0", "batch", 3},
		{"-2", "unknown", 3},
		{"abc", "", 3},
		{"1", "batch", 1},
	}

	for _, tt := range tests {
		t.Setenv("MARKUP_WORKERS", tt.workers)
		t.Setenv("MARKUP_MODE", tt.mode)
		cfg := Load()
		if cfg.Workers != tt.expected {
			t.Errorf("MARKUP_WORKERS=%q: Workers = %d, expected %d", tt.workers, cfg.Workers, tt.expected)
		}
		if cfg.Mode != ModeBatch {
			t.Errorf("MARKUP_MODE=%q: Mode = %q, expected %q", tt.mode, cfg.Mode, ModeBatch)
		}
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolateEnv(t)
	os.Unsetenv("CATEGORY_NAME")
	envFile := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envFile, []byte("CATEGORY_NAME=bird\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv("MARKUP_ENV_FILE", envFile)
	t.Cleanup(func() { os.Unsetenv("CATEGORY_NAME") })

	cfg := Load()

	if cfg.CategoryName != "bird" {
		t.Errorf("CategoryName = %q, expected \"bird\" from .env", cfg.CategoryName)
	}
}
