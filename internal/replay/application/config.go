package application

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Thresholds bound the drift a replayed run may show against its stored
// result before it is reported. Values are absolute differences.
type Thresholds struct {
	IRRAbs    float64 `yaml:"irr_abs"`
	DPIAbs    float64 `yaml:"dpi_abs"`
	TotalsAbs float64 `yaml:"totals_abs"`
}

// Config defines replay verification configuration.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`
	MaxRuns    int        `yaml:"max_runs"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		Thresholds: Thresholds{
			IRRAbs:    getenvFloatDefault("REPLAY_IRR_ABS", 0.01),
			DPIAbs:    getenvFloatDefault("REPLAY_DPI_ABS", 0.01),
			TotalsAbs: getenvFloatDefault("REPLAY_TOTALS_ABS", 0.01),
		},
		MaxRuns: getenvIntDefault("REPLAY_MAX_RUNS", 200),
	}

	if path := os.Getenv("REPLAY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Thresholds.IRRAbs <= 0 {
		cfg.Thresholds.IRRAbs = 0.01
	}
	if cfg.Thresholds.DPIAbs <= 0 {
		cfg.Thresholds.DPIAbs = 0.01
	}
	if cfg.Thresholds.TotalsAbs <= 0 {
		cfg.Thresholds.TotalsAbs = 0.01
	}
	if cfg.MaxRuns <= 0 {
		cfg.MaxRuns = 200
	}
	return cfg, nil
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
