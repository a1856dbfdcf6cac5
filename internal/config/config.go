package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ModeBatch  = "batch"  // każdy podkatalog źródła to osobne zadanie
	ModeSingle = "single" // źródło jest jedynym zadaniem
)

type Config struct {
	Workers      int    // Liczba workerów przetwarzających zadania
	Mode         string // batch albo single
	CategoryID   int
	CategoryName string

	MaskSaturationMax int // Górna granica S dla pikseli "białych"
	MaskValueMin      int // Dolna granica V dla pikseli "białych"
	MaskKernelSize    int // Bok elementu strukturalnego dla close/open

	LogDirectory string
	LedgerPath   string // Pusta ścieżka wyłącza rejestr sqlite
	ProgressAddr string // Pusty adres wyłącza websocket z postępem
}

// Load reads the optional .env file and then the process environment.
func Load() *Config {
	envFile := getEnv("MARKUP_ENV_FILE", ".env")
	// Brak pliku .env nie jest błędem
	_ = godotenv.Load(envFile)

	cfg := &Config{
		Workers:           getEnvAsInt("MARKUP_WORKERS", 3),
		Mode:              strings.ToLower(getEnv("MARKUP_MODE", ModeBatch)),
		CategoryID:        getEnvAsInt("CATEGORY_ID", 1),
		CategoryName:      getEnv("CATEGORY_NAME", "drone"),
		MaskSaturationMax: getEnvAsInt("MASK_SAT_MAX", 20),
		MaskValueMin:      getEnvAsInt("MASK_VAL_MIN", 200),
		MaskKernelSize:    getEnvAsInt("MASK_KERNEL_SIZE", 5),
		LogDirectory:      getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LedgerPath:        getEnvAllowEmpty("LEDGER_PATH", filepath.Join(".", "data", "markup.db")),
		ProgressAddr:      getEnv("PROGRESS_ADDR", ""),
	}

	if cfg.Workers < 1 {
		cfg.Workers = 3
	}
	if cfg.Mode != ModeSingle {
		cfg.Mode = ModeBatch
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset variable from one set to "".
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
