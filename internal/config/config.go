// Package config resolves lessonkit settings from the environment and an
// optional .env file, then validates them.
//
// Precedence, highest first: command-line flags (applied by the caller on top
// of the returned Config), process environment, .env file, defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Environment keys.
const (
	EnvSiteDir        = "LESSONKIT_SITE_DIR"
	EnvLessonsFile    = "LESSONKIT_LESSONS_FILE"
	EnvCardsFile      = "LESSONKIT_CARDS_FILE"
	EnvLogLevel       = "LESSONKIT_LOG_LEVEL"
	EnvLogMode        = "LESSONKIT_LOG_MODE"
	EnvLogFile        = "LESSONKIT_LOG_FILE"
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvMetricsTags    = "METRICS_TAGS"
	EnvJournalKind    = "LESSONKIT_JOURNAL_KIND"
	EnvJournalDSN     = "LESSONKIT_JOURNAL_DSN"
)

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration shared by every subcommand.
type Config struct {
	SiteDir     string `validate:"required"`
	LessonsFile string
	CardsFile   string

	LogLevel string `validate:"oneof=debug info warn error"`
	LogMode  string `validate:"oneof=dev prod"`
	LogFile  string

	MetricsBackend string `validate:"oneof=none datadog"`
	MetricsTags    string

	JournalKind string `validate:"oneof=none sqlite postgres mssql"`
	JournalDSN  string `validate:"required_unless=JournalKind none"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		SiteDir:        ".",
		LogLevel:       "info",
		LogMode:        "dev",
		MetricsBackend: "none",
		JournalKind:    "none",
	}
}

var validate = validator.New()

// Load resolves a Config. getenv supplies the process environment (os.Getenv
// in production). dotenvPath names an optional .env file on fsys; a missing
// file is ignored, a malformed one is an error.
func Load(fsys afero.Fs, dotenvPath string, getenv func(string) string) (Config, error) {
	file, err := readDotEnv(fsys, dotenvPath)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) string {
		if getenv != nil {
			if v := strings.TrimSpace(getenv(key)); v != "" {
				return v
			}
		}
		return strings.TrimSpace(file[key])
	}

	cfg := Default()
	set := func(dst *string, key string) {
		if v := lookup(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.SiteDir, EnvSiteDir)
	set(&cfg.LessonsFile, EnvLessonsFile)
	set(&cfg.CardsFile, EnvCardsFile)
	set(&cfg.LogLevel, EnvLogLevel)
	set(&cfg.LogMode, EnvLogMode)
	set(&cfg.LogFile, EnvLogFile)
	set(&cfg.MetricsBackend, EnvMetricsBackend)
	set(&cfg.MetricsTags, EnvMetricsTags)
	set(&cfg.JournalKind, EnvJournalKind)
	set(&cfg.JournalDSN, EnvJournalDSN)

	cfg.normalize()
	return cfg, nil
}

func readDotEnv(fsys afero.Fs, path string) (map[string]string, error) {
	if fsys == nil || path == "" {
		return nil, nil
	}
	f, err := fsys.Open(path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := godotenv.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogMode = strings.ToLower(c.LogMode)
	c.MetricsBackend = strings.ToLower(c.MetricsBackend)
	c.JournalKind = strings.ToLower(c.JournalKind)
	if c.MetricsBackend == "" {
		c.MetricsBackend = "none"
	}
	if c.JournalKind == "" {
		c.JournalKind = "none"
	}
}

// Validate checks c after flags have been applied.
func (c *Config) Validate() error {
	c.normalize()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "required_unless":
		return fe.Field() + " is required when the journal is enabled"
	case "oneof":
		return fmt.Sprintf("%s=%q, want one of %s", fe.Field(), fe.Value(), fe.Param())
	default:
		return fe.Error()
	}
}
