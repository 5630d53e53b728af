package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvDatabaseURL overrides Config.DatabaseURL when set
const EnvDatabaseURL = "ADMISSION_DATABASE_URL"

// MajorConfig is one major and its seat quota
type MajorConfig struct {
	Name  string `yaml:"name" validate:"required"`
	Quota int    `yaml:"quota" validate:"min=0"`
}

// SheetsConfig points at the Google Sheet used by admitSheet
type SheetsConfig struct {
	SpreadsheetID string `yaml:"spreadsheetID" validate:"required"`
	StudentsTab   string `yaml:"studentsTab" validate:"required"`
	ResultsTab    string `yaml:"resultsTab" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	// Majors in fixed order; the order is used by the adjustment pass
	Majors []MajorConfig `yaml:"majors" validate:"required,min=1,dive"`

	// Preferences maps a preference code to an ordering of every major
	Preferences map[string][]string `yaml:"preferences" validate:"required,min=1,dive,keys,required,endkeys,min=1,dive,required"`

	// Priority is "rank" (lower first) or "score" (higher first)
	Priority string `yaml:"priority" validate:"required,oneof=rank score"`

	Strategy string `yaml:"strategy,omitempty" validate:"omitempty,oneof=single-pass multi-round"`
	Rounds   int    `yaml:"rounds,omitempty" validate:"min=0"`
	FoldCase bool   `yaml:"foldCase,omitempty"`

	DatabaseURL string        `yaml:"databaseURL,omitempty"`
	Sheets      *SheetsConfig `yaml:"sheets,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates the configuration for an environment.
// env="test" looks for "admission_config.test.yaml". A ".env" file next to it, if
// present, is loaded first so environment overrides can live outside the yaml.
func LoadWithEnv(env string) (*Config, error) {
	if err := loadDotEnv(env); err != nil {
		return nil, err
	}

	configPath, err := findFile(envFileName("admission_config", env, "yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if url := os.Getenv(EnvDatabaseURL); url != "" {
		cfg.DatabaseURL = url
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and cross-field rules.
// The preference table itself is checked against the majors when the allocator is built.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Majors))
	for i, major := range cfg.Majors {
		if seen[major.Name] {
			return fmt.Errorf("duplicate major in majors[%d]: %s", i, major.Name)
		}
		seen[major.Name] = true
	}

	if cfg.Rounds > 0 && cfg.Strategy != "multi-round" {
		return fmt.Errorf("rounds is only used by the multi-round strategy")
	}
	if cfg.Rounds > len(cfg.Majors) {
		return fmt.Errorf("rounds (%d) cannot exceed the number of majors (%d)", cfg.Rounds, len(cfg.Majors))
	}

	return nil
}

// loadDotEnv loads .env and .env.<env> from the current directory when they exist
func loadDotEnv(env string) error {
	candidates := []string{".env"}
	if env != "" {
		candidates = append(candidates, ".env."+env)
	}

	for _, name := range candidates {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// envFileName returns base.ext, or base.<env>.ext when env is set
func envFileName(base, env, ext string) string {
	if env == "" {
		return base + "." + ext
	}
	return base + "." + env + "." + ext
}

// findFile looks for name in the current directory, then the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
