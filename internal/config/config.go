package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "QUILL_CONFIG"

	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds process level settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Comments CommentsConfig `yaml:"comments"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`
	// ClientURLs are the allowed CORS origins.
	ClientURLs []string `yaml:"clientUrls"`
	// SiteURL is the public front end origin used in feed and sitemap links.
	SiteURL  string `yaml:"siteUrl"`
	SiteName string `yaml:"siteName"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Seed   *bool  `yaml:"seed"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type CommentsConfig struct {
	// RateLimit is the number of comment submissions allowed per IP per minute.
	RateLimit int `yaml:"rateLimit"`
}

func (c Config) IsProduction() bool { return c.Server.Env == EnvProduction }

// SeedEnabled reports whether default categories and tags should be inserted.
func (c Config) SeedEnabled() bool { return c.Database.Seed == nil || *c.Database.Seed }

// Load reads the optional YAML file named by QUILL_CONFIG and applies
// environment overrides on top of the defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			slog.Warn("config: cannot read file, using defaults", "path", path, "err", err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				slog.Warn("config: cannot parse file, using defaults", "path", path, "err", err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate reports settings the server cannot run without.
func (c Config) Validate() error {
	var problems []error
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		problems = append(problems, errors.New("database driver must be postgres or sqlite"))
	}
	if c.Database.DSN == "" {
		problems = append(problems, errors.New("database dsn is empty"))
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		problems = append(problems, errors.New("JWT_SECRET is required in production"))
	}
	if c.Server.Env != EnvDevelopment && c.Server.Env != EnvProduction {
		problems = append(problems, errors.New("env must be development or production"))
	}
	return errors.Join(problems...)
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:       "10000",
			Env:        EnvDevelopment,
			ClientURLs: []string{"http://localhost:4321"},
			SiteURL:    "http://localhost:4321",
			SiteName:   "Quill",
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			DSN:    "host=localhost user=postgres password=postgres dbname=quill port=5432 sslmode=disable TimeZone=UTC",
		},
		Logging:  LoggingConfig{Level: "info"},
		Comments: CommentsConfig{RateLimit: 20},
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Server.Env = strings.ToLower(v)
	} else if v := os.Getenv("NODE_ENV"); v != "" {
		c.Server.Env = strings.ToLower(v)
	}
	if v := os.Getenv("CLIENT_URL"); v != "" {
		c.Server.ClientURLs = splitList(v)
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		c.Server.SiteURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("SITE_NAME"); v != "" {
		c.Server.SiteName = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("SEED_DATA"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Database.Seed = &b
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("COMMENT_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Comments.RateLimit = n
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Server.Env != "" {
		base.Server.Env = strings.ToLower(override.Server.Env)
	}
	if len(override.Server.ClientURLs) > 0 {
		base.Server.ClientURLs = override.Server.ClientURLs
	}
	if override.Server.SiteURL != "" {
		base.Server.SiteURL = strings.TrimRight(override.Server.SiteURL, "/")
	}
	if override.Server.SiteName != "" {
		base.Server.SiteName = override.Server.SiteName
	}

	if override.Database.Driver != "" {
		base.Database.Driver = strings.ToLower(override.Database.Driver)
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Seed != nil {
		base.Database.Seed = override.Database.Seed
	}

	if override.Auth.JWTSecret != "" {
		base.Auth.JWTSecret = override.Auth.JWTSecret
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Comments.RateLimit > 0 {
		base.Comments.RateLimit = override.Comments.RateLimit
	}
	return base
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
