package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SQLiteSource selects the built-in SQLite store as the internal source.
const SQLiteSource = "sqlite"

var ErrInvalidSource = errors.New("internal source must be \"sqlite\" or an http(s) URL")

type Config struct {
	Port           int
	DBPath         string
	InternalSource string
	FeedsFile      string
	AllowedOrigin  string
	RequestTimeout time.Duration
	DefaultLimit   int
}

// Load reads an optional .env file (NEWSIQ_ENV_FILE, default ".env") and
// then the environment. Variables already set win over the file.
func Load() (Config, error) {
	envFile := os.Getenv("NEWSIQ_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading %s: %w", envFile, err)
	}

	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func GetConfig() Config {
	config := Config{
		Port:           8080,
		DBPath:         "data/newsiq.db",
		InternalSource: SQLiteSource,
		AllowedOrigin:  "http://localhost:4200",
		RequestTimeout: 20 * time.Second,
		DefaultLimit:   20,
	}

	if port := os.Getenv("NEWSIQ_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}

	if dbPath := os.Getenv("NEWSIQ_DB_PATH"); dbPath != "" {
		config.DBPath = dbPath
	}

	if src := os.Getenv("NEWSIQ_INTERNAL_SOURCE"); src != "" {
		config.InternalSource = strings.TrimSpace(src)
	}

	if feeds := os.Getenv("NEWSIQ_FEEDS_FILE"); feeds != "" {
		config.FeedsFile = feeds
	}

	if origin := os.Getenv("NEWSIQ_ALLOWED_ORIGIN"); origin != "" {
		config.AllowedOrigin = origin
	}

	if timeout := os.Getenv("NEWSIQ_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			config.RequestTimeout = d
		}
	}

	if limit := os.Getenv("NEWSIQ_DEFAULT_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			config.DefaultLimit = n
		}
	}

	return config
}

// Validate checks values that cannot be defaulted silently.
func (c Config) Validate() error {
	if c.InternalSource == SQLiteSource {
		return nil
	}
	u, err := url.Parse(c.InternalSource)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSource, c.InternalSource)
	}
	return nil
}

// RemoteInternalSource reports whether the internal source is a remote service.
func (c Config) RemoteInternalSource() bool {
	return c.InternalSource != SQLiteSource
}

func (c Config) GetAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}
