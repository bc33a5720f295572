package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/pmitra96/castleverde/database"
	"github.com/pmitra96/castleverde/services"
)

// Config is the full service configuration.
type Config struct {
	Env            string                 `yaml:"env"`
	Port           string                 `yaml:"port"`
	APIKey         string                 `yaml:"api_key"`
	AllowedOrigins []string               `yaml:"allowed_origins"`
	DefaultAnchor  string                 `yaml:"default_anchor"`
	Database       database.Config        `yaml:"database"`
	LLM            LLMConfig              `yaml:"llm"`
	OpenFoodFacts  string                 `yaml:"open_food_facts_url"`
	OCRServiceURL  string                 `yaml:"ocr_service_url"`
	Index          services.IndexSettings `yaml:"index"`
}

// LLMConfig locates the OpenAI-compatible endpoint used for food lookups.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env:            "development",
		Port:           "8080",
		AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		DefaultAnchor:  "Protein",
		Database: database.Config{
			Host:    "localhost",
			User:    "postgres",
			DBName:  "castleverde",
			Port:    "5432",
			SSLMode: "disable",
			Path:    "castleverde.db",
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		OpenFoodFacts: "https://world.openfoodfacts.org",
		Index:         services.DefaultIndexSettings(),
	}
}

// GetEnv returns the environment value for key, or fallback when unset.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// Load builds the configuration from defaults, the YAML file at path (if
// any), a .env file (if present) and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := ReadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFile unmarshals the YAML file at path over cfg.
func ReadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Env = GetEnv("ENV", cfg.Env)
	cfg.Port = GetEnv("PORT", cfg.Port)
	cfg.APIKey = GetEnv("API_KEY", cfg.APIKey)
	cfg.DefaultAnchor = GetEnv("DEFAULT_ANCHOR", cfg.DefaultAnchor)
	if origins := GetEnv("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	db := &cfg.Database
	db.Driver = GetEnv("DB_DRIVER", db.Driver)
	db.Path = GetEnv("DB_PATH", db.Path)
	db.Host = GetEnv("DB_HOST", db.Host)
	db.User = GetEnv("DB_USER", db.User)
	db.Password = GetEnv("DB_PASSWORD", db.Password)
	db.DBName = GetEnv("DB_NAME", db.DBName)
	db.Port = GetEnv("DB_PORT", db.Port)
	db.SSLMode = GetEnv("DB_SSLMODE", db.SSLMode)

	cfg.LLM.APIKey = GetEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.BaseURL = GetEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = GetEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.OpenFoodFacts = GetEnv("OFF_BASE_URL", cfg.OpenFoodFacts)
	cfg.OCRServiceURL = GetEnv("OCR_SERVICE_URL", cfg.OCRServiceURL)

	var err error
	if cfg.Index.ScoreNoiseFraction, err = envFloat("NOISE_SCORE_FRACTION", cfg.Index.ScoreNoiseFraction); err != nil {
		return err
	}
	if cfg.Index.MacroNoiseFraction, err = envFloat("NOISE_MACRO_FRACTION", cfg.Index.MacroNoiseFraction); err != nil {
		return err
	}
	if cfg.Index.NoiseEnabled, err = envBool("NOISE_ENABLED", cfg.Index.NoiseEnabled); err != nil {
		return err
	}
	if cfg.Index.IncludeFiberEffect, err = envBool("INCLUDE_FIBER_EFFECT", cfg.Index.IncludeFiberEffect); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate rejects settings the engine cannot use. NaN fails every range check.
func (c *Config) Validate() error {
	if !inUnitRange(c.Index.ScoreNoiseFraction) {
		return fmt.Errorf("score noise fraction must be within [0, 1], got %v", c.Index.ScoreNoiseFraction)
	}
	if !inUnitRange(c.Index.MacroNoiseFraction) {
		return fmt.Errorf("macro noise fraction must be within [0, 1], got %v", c.Index.MacroNoiseFraction)
	}
	return nil
}

func inUnitRange(f float64) bool {
	return f >= 0 && f <= 1
}

func envFloat(key string, fallback float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return v, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return v, nil
}
