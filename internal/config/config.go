// Package config loads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cwbudde/algo-modsynth/internal/logger"
)

// Supported assistant providers. The openai provider speaks to any
// OpenAI-compatible server through AI_BASE_URL and needs no key when the
// server takes none. A local Ollama setup:
//
//	AI_PROVIDER=openai
//	AI_BASE_URL=http://localhost:11434/v1
//	AI_MODEL=llama3.2
//
// An empty AI_PROVIDER disables the assistant.
const (
	ProviderNone   = ""
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var errInvalid = errors.New("config: invalid value")

// Config holds the application configuration.
type Config struct {
	Environment    string
	ReleaseVersion string
	SentryDSN      string

	// HTTP control surface
	Addr string

	// Audio engine
	SampleRate float64
	BlockSize  int
	Audio      bool   // open the audio device
	PatchFile  string // patch loaded at start-up instead of the default

	// Assistant
	AIProvider string
	AIBaseURL  string
	AIAPIKey   string
	AIModel    string
	AITimeout  time.Duration
}

// Load reads an optional .env file and then the environment. A missing
// .env file is not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		logger.Debug("no .env file loaded, using environment", logger.Fields{"error": err})
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ReleaseVersion: getEnv("RELEASE_VERSION", "dev"),
		SentryDSN:      getEnv("SENTRY_DSN", ""),
		Addr:           getEnv("MODSYNTH_ADDR", ":8088"),
		PatchFile:      getEnv("MODSYNTH_PATCH_FILE", ""),
		AIProvider:     strings.ToLower(getEnv("AI_PROVIDER", ProviderOpenAI)),
		AIBaseURL:      getEnv("AI_BASE_URL", ""),
		AIAPIKey:       getEnv("AI_API_KEY", ""),
		AIModel:        getEnv("AI_MODEL", ""),
	}

	var errs []error
	var err error
	if cfg.SampleRate, err = getFloat("MODSYNTH_SAMPLE_RATE", 48000); err != nil {
		errs = append(errs, err)
	}
	if cfg.BlockSize, err = getInt("MODSYNTH_BLOCK_SIZE", 512); err != nil {
		errs = append(errs, err)
	}
	if cfg.Audio, err = getBool("MODSYNTH_AUDIO", true); err != nil {
		errs = append(errs, err)
	}
	if cfg.AITimeout, err = getDuration("AI_TIMEOUT", 60*time.Second); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if c.SampleRate < 8000 || c.SampleRate > 384000 {
		errs = append(errs, fmt.Errorf("%w: MODSYNTH_SAMPLE_RATE=%g", errInvalid, c.SampleRate))
	}
	if c.BlockSize < 16 || c.BlockSize > 8192 {
		errs = append(errs, fmt.Errorf("%w: MODSYNTH_BLOCK_SIZE=%d", errInvalid, c.BlockSize))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: AI_TIMEOUT=%s", errInvalid, c.AITimeout))
	}
	switch c.AIProvider {
	case ProviderNone, ProviderOpenAI:
	case ProviderGemini:
		if c.AIAPIKey == "" {
			errs = append(errs, fmt.Errorf("%w: AI_API_KEY is required for AI_PROVIDER=gemini", errInvalid))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: AI_PROVIDER=%q (allowed: openai, gemini)", errInvalid, c.AIProvider))
	}
	return errors.Join(errs...)
}

// AssistantEnabled reports whether an assistant provider is selected. The
// API key is optional for OpenAI-compatible servers.
func (c *Config) AssistantEnabled() bool {
	return c.AIProvider != ProviderNone
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getInt(key string, def int) (int, error) {
	s := getEnv(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", errInvalid, key, s)
	}
	return v, nil
}

func getFloat(key string, def float64) (float64, error) {
	s := getEnv(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", errInvalid, key, s)
	}
	return v, nil
}

func getBool(key string, def bool) (bool, error) {
	s := getEnv(key, "")
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", errInvalid, key, s)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	s := getEnv(key, "")
	if s == "" {
		return def, nil
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v, nil
	}
	// Bare numbers are seconds.
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return def, fmt.Errorf("%w: %s=%q", errInvalid, key, s)
}
