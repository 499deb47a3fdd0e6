package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	// PublicBaseURL is the externally reachable API origin. Published landings post leads to it.
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL" validate:"required,url"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required,url|uri"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required,hostname_port"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	AsynqConcurrency int `mapstructure:"ASYNQ_CONCURRENCY" validate:"gte=1,lte=1000"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`

	LLM LLMConfig `mapstructure:",squash"`
	S3  S3Config  `mapstructure:",squash"`

	DefaultUserID    string `mapstructure:"DEFAULT_USER_ID" validate:"required"`
	DefaultProjectID string `mapstructure:"DEFAULT_PROJECT_ID" validate:"required"`

	LandingCancelPoll time.Duration `mapstructure:"LANDING_CANCEL_POLL"`
	UploadMaxBytes    int64         `mapstructure:"UPLOAD_MAX_BYTES" validate:"gte=1024"`
}

// LLMConfig configures the OpenAI-compatible generative model endpoint.
type LLMConfig struct {
	APIKey          string `mapstructure:"LLM_API_KEY" validate:"required"`
	BaseURL         string `mapstructure:"LLM_BASE_URL" validate:"omitempty,url"`
	TextModel       string `mapstructure:"LLM_TEXT_MODEL" validate:"required"`
	ImageModel      string `mapstructure:"LLM_IMAGE_MODEL" validate:"required"`
	LandingModel    string `mapstructure:"LLM_LANDING_MODEL" validate:"required"`
	StreamModel     string `mapstructure:"LLM_STREAM_MODEL" validate:"required"`
	LandingMaxToken int    `mapstructure:"LLM_LANDING_MAX_TOKENS" validate:"gte=1"`
	StreamMaxToken  int    `mapstructure:"LLM_STREAM_MAX_TOKENS" validate:"gte=1"`
}

// S3Config configures the artifact bucket.
type S3Config struct {
	Region          string `mapstructure:"S3_REGION" validate:"required"`
	Bucket          string `mapstructure:"S3_BUCKET" validate:"required"`
	AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	Endpoint        string `mapstructure:"S3_ENDPOINT" validate:"omitempty,url"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

var envKeys = []string{
	"APP_ENV",
	"HTTP_ADDR",
	"SHUTDOWN_TIMEOUT",
	"PUBLIC_BASE_URL",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"DATABASE_URL",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"ASYNQ_CONCURRENCY",
	"GOMAXPROCS",
	"LLM_API_KEY",
	"LLM_BASE_URL",
	"LLM_TEXT_MODEL",
	"LLM_IMAGE_MODEL",
	"LLM_LANDING_MODEL",
	"LLM_STREAM_MODEL",
	"LLM_LANDING_MAX_TOKENS",
	"LLM_STREAM_MAX_TOKENS",
	"S3_REGION",
	"S3_BUCKET",
	"S3_ACCESS_KEY_ID",
	"S3_SECRET_ACCESS_KEY",
	"S3_ENDPOINT",
	"DEFAULT_USER_ID",
	"DEFAULT_PROJECT_ID",
	"LANDING_CANCEL_POLL",
	"UPLOAD_MAX_BYTES",
}

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ASYNQ_CONCURRENCY", 10)
	v.SetDefault("GOMAXPROCS", 0)
	v.SetDefault("LLM_TEXT_MODEL", "gpt-4.1-mini")
	v.SetDefault("LLM_IMAGE_MODEL", "sora_image")
	v.SetDefault("LLM_LANDING_MODEL", "gemini-3.1-pro-preview")
	v.SetDefault("LLM_STREAM_MODEL", "gemini-3.1-pro-preview")
	v.SetDefault("LLM_LANDING_MAX_TOKENS", 26000)
	v.SetDefault("LLM_STREAM_MAX_TOKENS", 16000)
	v.SetDefault("DEFAULT_USER_ID", "default-user-001")
	v.SetDefault("DEFAULT_PROJECT_ID", "default-project-001")
	v.SetDefault("LANDING_CANCEL_POLL", "2s")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)

	// Optional config file
	_ = v.ReadInConfig()

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Durations may arrive as plain strings from the environment.
	for key, dst := range map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT":    &c.ShutdownTimeout,
		"LANDING_CANCEL_POLL": &c.LandingCancelPoll,
	} {
		if s := v.GetString(key); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}

// OrderEndpoint is the callback URL a published landing posts its lead form to.
func (c *Config) OrderEndpoint(landingID string) string {
	return OrderEndpoint(c.PublicBaseURL, landingID)
}

// OrderEndpoint joins the public API base with the order intake route.
func OrderEndpoint(base, landingID string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/api/analyze/orders/" + landingID
}
