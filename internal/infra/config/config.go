package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel / direction normalization

	"github.com/joho/godotenv"
)

// Alert direction modes accepted in ALERT_DIRECTIONS.
const (
	DirectionsBoth     = "both"
	DirectionsIncrease = "increase"
	DirectionsDecrease = "decrease"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DataFile     string // path of the raw dataset (Excel or CSV)
	ReportsDir   string // root of the generated report tree
	ProcessedDir string // destination of the cleaned base exports

	StudyYearStart int
	StudyYearEnd   int

	SignificanceThreshold float64 // %, single-change magnitude that flags an alert zone
	NetChangeThreshold    float64 // %, net first-to-last change for the trend classifier
	SustainedRunLength    int     // change steps; same-direction run that flags an alert zone
	MinYearlyPoints       int     // usable yearly counts required to classify a locality
	AlertDirections       string  // both | increase | decrease
	TopLocalities         int     // localities drawn in the evolution chart

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DataFile = os.Getenv("DATA_FILE")
	if cfg.DataFile == "" {
		return nil, fmt.Errorf("DATA_FILE is not set")
	}

	cfg.ReportsDir = os.Getenv("REPORTS_DIR")
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}

	cfg.ProcessedDir = os.Getenv("PROCESSED_DIR")
	if cfg.ProcessedDir == "" {
		cfg.ProcessedDir = "data/processed"
	}

	cfg.StudyYearStart, err = intEnv("STUDY_YEAR_START", 2021)
	if err != nil {
		return nil, err
	}
	cfg.StudyYearEnd, err = intEnv("STUDY_YEAR_END", 2025)
	if err != nil {
		return nil, err
	}
	if cfg.StudyYearStart > cfg.StudyYearEnd {
		return nil, fmt.Errorf("STUDY_YEAR_START %d is after STUDY_YEAR_END %d", cfg.StudyYearStart, cfg.StudyYearEnd)
	}

	cfg.SignificanceThreshold, err = floatEnv("SIGNIFICANCE_THRESHOLD", 20)
	if err != nil {
		return nil, err
	}
	if cfg.SignificanceThreshold <= 0 {
		return nil, fmt.Errorf("SIGNIFICANCE_THRESHOLD must be positive, got %v", cfg.SignificanceThreshold)
	}

	cfg.NetChangeThreshold, err = floatEnv("NET_CHANGE_THRESHOLD", 10)
	if err != nil {
		return nil, err
	}
	if cfg.NetChangeThreshold <= 0 {
		return nil, fmt.Errorf("NET_CHANGE_THRESHOLD must be positive, got %v", cfg.NetChangeThreshold)
	}

	cfg.SustainedRunLength, err = intEnv("SUSTAINED_RUN_LENGTH", 3)
	if err != nil {
		return nil, err
	}
	if cfg.SustainedRunLength < 1 {
		return nil, fmt.Errorf("SUSTAINED_RUN_LENGTH must be at least 1, got %d", cfg.SustainedRunLength)
	}

	cfg.MinYearlyPoints, err = intEnv("MIN_YEARLY_POINTS", 2)
	if err != nil {
		return nil, err
	}
	if cfg.MinYearlyPoints < 2 {
		return nil, fmt.Errorf("MIN_YEARLY_POINTS must be at least 2, got %d", cfg.MinYearlyPoints)
	}

	cfg.AlertDirections = strings.ToLower(os.Getenv("ALERT_DIRECTIONS"))
	if cfg.AlertDirections == "" {
		cfg.AlertDirections = DirectionsBoth
	}
	switch cfg.AlertDirections {
	case DirectionsBoth, DirectionsIncrease, DirectionsDecrease:
	default:
		return nil, fmt.Errorf("invalid ALERT_DIRECTIONS %q (want both, increase or decrease)", cfg.AlertDirections)
	}

	cfg.TopLocalities, err = intEnv("TOP_LOCALITIES", 10)
	if err != nil {
		return nil, err
	}
	if cfg.TopLocalities < 1 {
		return nil, fmt.Errorf("TOP_LOCALITIES must be at least 1, got %d", cfg.TopLocalities)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

// StudyYears expands the configured range into an ascending year slice.
func (c *AppConfig) StudyYears() []int {
	years := make([]int, 0, c.StudyYearEnd-c.StudyYearStart+1)
	for y := c.StudyYearStart; y <= c.StudyYearEnd; y++ {
		years = append(years, y)
	}
	return years
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func floatEnv(name string, def float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}
