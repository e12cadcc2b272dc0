package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/scythe504/handkerchief-backend/internal"
	"gopkg.in/yaml.v3"
)

const devClientOrigin = "http://localhost:5173"

type Config struct {
	Port           int    `yaml:"port"`
	Env            string `yaml:"env"`
	LogLevel       string `yaml:"log_level"`
	ClientURL      string `yaml:"client_url"`
	GithubPagesURL string `yaml:"github_pages_url"`

	Game     Game     `yaml:"game"`
	Database Database `yaml:"database"`
}

type Game struct {
	StrictRoles     bool          `yaml:"strict_roles"`
	ResolutionDelay time.Duration `yaml:"resolution_delay"`
}

// Database holds Postgres connection settings. An empty Host disables
// match history.
type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Schema   string `yaml:"schema"`
	SSLMode  string `yaml:"sslmode"`
}

func Default() Config {
	return Config{
		Port:     3001,
		Env:      "development",
		LogLevel: "info",
		Game: Game{
			ResolutionDelay: internal.ResolutionDelay,
		},
		Database: Database{
			Port:    5432,
			Schema:  "public",
			SSLMode: "disable",
		},
	}
}

// Load reads the optional YAML file at path and then applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.Game.ResolutionDelay <= 0 {
		return cfg, fmt.Errorf("resolution delay must be positive, got %s", cfg.Game.ResolutionDelay)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnvAsInt("PORT", cfg.Port)
	cfg.Env = getEnv("APP_ENV", getEnv("NODE_ENV", cfg.Env))
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.ClientURL = getEnv("CLIENT_URL", cfg.ClientURL)
	cfg.GithubPagesURL = getEnv("GITHUB_PAGES_URL", cfg.GithubPagesURL)

	cfg.Game.StrictRoles = getEnvAsBool("STRICT_ROLES", cfg.Game.StrictRoles)
	cfg.Game.ResolutionDelay = getEnvAsDuration("RESOLUTION_DELAY", cfg.Game.ResolutionDelay)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USERNAME", getEnv("DB_USER", cfg.Database.User))
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_DATABASE", cfg.Database.Name)
	cfg.Database.Schema = getEnv("DB_SCHEMA", cfg.Database.Schema)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
}

func (c Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// AllowedOrigins lists the browser origins allowed to reach the server:
// the local client in development, then the deployed client URLs.
func (c Config) AllowedOrigins() []string {
	origins := make([]string, 0, 3)
	if c.IsDevelopment() {
		origins = append(origins, devClientOrigin)
	}
	if c.ClientURL != "" {
		origins = append(origins, c.ClientURL)
	}
	if c.GithubPagesURL != "" {
		origins = append(origins, c.GithubPagesURL)
	}
	if len(origins) == 0 {
		origins = append(origins, devClientOrigin)
	}
	return origins
}

// OriginAllowed accepts requests without an Origin header (non-browser
// clients) and those whose origin is in AllowedOrigins.
func (c Config) OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, allowed := range c.AllowedOrigins() {
		if strings.EqualFold(strings.TrimRight(allowed, "/"), origin) {
			return true
		}
	}
	return false
}

func (d Database) Enabled() bool {
	return d.Host != ""
}

// DSN returns the Postgres connection URL.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode, d.Schema,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
