package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"pulseboard/internal/scoring"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// SnapshotPath is the CSV file holding the weekly snapshot table.
	SnapshotPath string
	// ThresholdsPath optionally points to a YAML file of threshold overrides.
	ThresholdsPath string
	ListenAddr     string
	DataPath       string
	LogDir         string

	EnableMermaidCharts bool

	// Thresholds is the resolved scoring configuration: documented defaults
	// merged with any file overrides. Request-level overrides are applied on
	// top of this per call, never back into it.
	Thresholds scoring.Thresholds
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory first (the binary often
	// runs from a deployment folder that carries its own .env).
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	cfg := &AppConfig{
		SnapshotPath:        getEnv("SNAPSHOT_PATH", filepath.Join(dataPath, "data.csv")),
		ThresholdsPath:      getEnv("THRESHOLDS_PATH", ""),
		ListenAddr:          getEnv("LISTEN_ADDR", ":5050"),
		DataPath:            dataPath,
		LogDir:              logDir,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}

	th, err := loadThresholds(cfg.ThresholdsPath)
	if err != nil {
		return nil, err
	}
	cfg.Thresholds = th

	return cfg, nil
}

// loadThresholds resolves the scoring thresholds: defaults, overlaid with a
// YAML override file when one is configured. Entries that do not parse as
// numbers are ignored per-key, same as query-parameter overrides.
func loadThresholds(path string) (scoring.Thresholds, error) {
	if path == "" {
		return scoring.DefaultThresholds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Thresholds file not found, using defaults")
			return scoring.DefaultThresholds(), nil
		}
		return nil, fmt.Errorf("reading thresholds file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing thresholds file %s: %w", path, err)
	}

	return scoring.ResolveThresholds(raw), nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
