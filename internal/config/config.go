package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"

	"gestorcloud/internal/db"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the binaries read at startup.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Type       string `yaml:"type"`
	SQLitePath string `yaml:"sqlite_path"`
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
	MaxConns   int32  `yaml:"max_conns"`
	MinConns   int32  `yaml:"min_conns"`
}

type ServerConfig struct {
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: "data/gestorcloud.db",
			Host:       "localhost",
			Port:       "5432",
			Name:       "gestorcloud",
			User:       "postgres",
			SSLMode:    "disable",
			MaxConns:   db.DefaultPoolLimits.MaxConns,
			MinConns:   db.DefaultPoolLimits.MinConns,
		},
		Server: ServerConfig{Port: "8080"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load starts from Defaults, overlays the YAML file named by GESTOR_CONFIG when
// set, then overlays environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("GESTOR_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	d := &cfg.Database
	d.Type = getEnv("DB_TYPE", d.Type)
	d.SQLitePath = getEnv("SQLITE_PATH", d.SQLitePath)
	d.URL = getEnv("DATABASE_URL", d.URL)
	d.Host = getEnv("PG_HOST", d.Host)
	d.Port = getEnv("PG_PORT", d.Port)
	d.Name = getEnv("PG_DATABASE", d.Name)
	d.User = getEnv("PG_USER", d.User)
	d.Password = getEnv("PG_PASSWORD", d.Password)
	d.SSLMode = getEnv("PG_SSLMODE", d.SSLMode)

	var err error
	if d.MaxConns, err = getEnvInt32("PG_MAX_CONNS", d.MaxConns); err != nil {
		return nil, err
	}
	if d.MinConns, err = getEnvInt32("PG_MIN_CONNS", d.MinConns); err != nil {
		return nil, err
	}

	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.AllowedOrigins = getEnv("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := db.ParseKind(c.Database.Type); err != nil {
		return err
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("PG_MAX_CONNS must be positive, got %d", c.Database.MaxConns)
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("PG_MIN_CONNS must be between 0 and %d, got %d", c.Database.MaxConns, c.Database.MinConns)
	}
	return nil
}

// PostgresURL returns DATABASE_URL when set, otherwise a URL assembled from the
// individual PG_* settings.
func (d DatabaseConfig) PostgresURL() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}
	return u.String()
}

// BackendOptions translates the database settings for db.Open.
func (c *Config) BackendOptions() (db.Options, error) {
	kind, err := db.ParseKind(c.Database.Type)
	if err != nil {
		return db.Options{}, err
	}
	opts := db.Options{
		Kind:       kind,
		SQLitePath: c.Database.SQLitePath,
		Limits:     db.PoolLimits{MinConns: c.Database.MinConns, MaxConns: c.Database.MaxConns},
	}
	if kind == db.KindServer {
		opts.URL = c.Database.PostgresURL()
	}
	return opts, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) (int32, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return int32(n), nil
}
