package config

import (
	"os"
	"strconv"

	"opinionmap/internal/errors"
	"opinionmap/internal/repness"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config represents the complete application configuration
type Config struct {
	Votes      VotesConfig      `validate:"required"`
	Statements StatementsConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Analysis   AnalysisConfig   `validate:"required"`
	Profiling  ProfilingConfig
	LogLevel   string           `validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// VotesConfig holds the vote database connection settings
type VotesConfig struct {
	Driver string `validate:"required,oneof=sqlite3 postgres"`
	DSN    string `validate:"required"`
}

// StatementsConfig points at the statement metadata file
type StatementsConfig struct {
	File string `validate:"required"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string `validate:"oneof=debug release test"`
}

// ProfilingConfig controls the pprof listener
type ProfilingConfig struct {
	Enabled bool
	Port    string `validate:"required_if=Enabled true"`
}

// AnalysisConfig holds the selection policy and extraction settings
type AnalysisConfig struct {
	Repness            repness.Settings `yaml:"repness"`
	IncludeUnpainted   bool             `yaml:"include_unpainted"`
	ExtractConcurrency int              `yaml:"extract_concurrency" validate:"gte=1,lte=64"`
}

// LoadDotEnv loads .env files if present. Missing files are not an error.
func LoadDotEnv(paths ...string) bool {
	if err := godotenv.Load(paths...); err != nil {
		return false
	}
	return true
}

// Load reads configuration from the optional YAML file named by REPNESS_CONFIG_FILE,
// then environment variables, and validates the result
func Load() (*Config, error) {
	config := &Config{
		Votes:      loadVotesConfig(),
		Statements: StatementsConfig{File: getEnvOrDefault("STATEMENTS_FILE", "statements.json")},
		Server:     loadServerConfig(),
		Profiling: ProfilingConfig{
			Enabled: getEnvBoolOrDefault("PROFILING_ENABLED", false),
			Port:    getEnvOrDefault("PROFILING_PORT", "6060"),
		},
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	analysis, err := loadAnalysisConfig(os.Getenv("REPNESS_CONFIG_FILE"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysis

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadVotesConfig() VotesConfig {
	return VotesConfig{
		Driver: getEnvOrDefault("VOTES_DRIVER", "sqlite3"),
		DSN:    getEnvOrDefault("VOTES_DSN", "votes.db"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadAnalysisConfig(path string) (*AnalysisConfig, error) {
	analysis := &AnalysisConfig{
		Repness:            repness.DefaultSettings(),
		ExtractConcurrency: 4,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "read %s", path))
		}
		if err := yaml.Unmarshal(data, analysis); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "parse %s", path))
		}
	}

	// Environment wins over the file
	s := &analysis.Repness
	s.MinVotes = getEnvIntOrDefault("MIN_VOTES", s.MinVotes)
	s.SignificanceZ = getEnvFloatOrDefault("SIGNIFICANCE_Z", s.SignificanceZ)
	s.MaxResultsPerGroup = getEnvIntOrDefault("MAX_RESULTS_PER_GROUP", s.MaxResultsPerGroup)
	s.IncludeModerated = getEnvBoolOrDefault("INCLUDE_MODERATED", s.IncludeModerated)
	analysis.IncludeUnpainted = getEnvBoolOrDefault("INCLUDE_UNPAINTED", analysis.IncludeUnpainted)
	analysis.ExtractConcurrency = getEnvIntOrDefault("EXTRACT_CONCURRENCY", analysis.ExtractConcurrency)

	return analysis, nil
}

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
