package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         string `yaml:"port"`
	AllowOrigins string `yaml:"allow_origins"`

	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`

	OpenAIKey         string `yaml:"openai_api_key"`
	OpenAIBaseURL     string `yaml:"openai_base_url"`
	OpenAILlmModel    string `yaml:"openai_llm_model"`
	OpenAIVisionModel string `yaml:"openai_vision_model"`

	ReqTimeoutSec  int     `yaml:"request_timeout_seconds"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	MaxUploadMB    int64   `yaml:"max_upload_mb"`

	SessionSecret      string `yaml:"session_secret"`
	SessionIdleMinutes int    `yaml:"session_idle_minutes"`
	RedisAddr          string `yaml:"redis_addr"`
	RedisPassword      string `yaml:"redis_password"`
	RedisDB            int    `yaml:"redis_db"`

	ResetDelivery string `yaml:"reset_delivery"` // inline, ses
	AWSRegion     string `yaml:"aws_region"`
	SESSender     string `yaml:"ses_sender"`

	WorkoutFreshnessDays     int `yaml:"workout_freshness_days"`
	AIBreakerMaxFailures     int `yaml:"ai_breaker_max_failures"`
	AIBreakerCooldownSeconds int `yaml:"ai_breaker_cooldown_seconds"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text, json
}

func Default() *Config {
	return &Config{
		Port:                     "8080",
		AllowOrigins:             "*",
		DBHost:                   "localhost",
		DBPort:                   "5432",
		DBUser:                   "postgres",
		DBName:                   "nutrivision",
		DBSSLMode:                "disable",
		OpenAIBaseURL:            "https://api.openai.com/v1",
		OpenAILlmModel:           "gpt-4o",
		OpenAIVisionModel:        "gpt-4o",
		ReqTimeoutSec:            90,
		RateLimitRPS:             1,
		RateLimitBurst:           5,
		MaxUploadMB:              10,
		SessionIdleMinutes:       30,
		ResetDelivery:            "inline",
		WorkoutFreshnessDays:     14,
		AIBreakerMaxFailures:     5,
		AIBreakerCooldownSeconds: 30,
		LogLevel:                 "info",
		LogFormat:                "text",
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func atof(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Load reads .env (if present), then the optional YAML file named by
// CONFIG_FILE, then environment variables. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getenv("PORT", cfg.Port)
	cfg.AllowOrigins = getenv("ALLOW_ORIGINS", cfg.AllowOrigins)

	cfg.DBHost = getenv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getenv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getenv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getenv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getenv("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getenv("DB_SSLMODE", cfg.DBSSLMode)

	cfg.OpenAIKey = getenv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.OpenAIBaseURL = getenv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAILlmModel = getenv("OPENAI_LLM_MODEL", cfg.OpenAILlmModel)
	cfg.OpenAIVisionModel = getenv("OPENAI_VISION_MODEL", cfg.OpenAIVisionModel)

	cfg.ReqTimeoutSec = atoi("REQUEST_TIMEOUT_SECONDS", cfg.ReqTimeoutSec)
	cfg.RateLimitRPS = atof("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = atoi("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.MaxUploadMB = int64(atoi("MAX_UPLOAD_MB", int(cfg.MaxUploadMB)))

	cfg.SessionSecret = getenv("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionIdleMinutes = atoi("SESSION_IDLE_MINUTES", cfg.SessionIdleMinutes)
	cfg.RedisAddr = getenv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getenv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = atoi("REDIS_DB", cfg.RedisDB)

	cfg.ResetDelivery = getenv("RESET_DELIVERY", cfg.ResetDelivery)
	cfg.AWSRegion = getenv("AWS_REGION", cfg.AWSRegion)
	cfg.SESSender = getenv("SES_SENDER", cfg.SESSender)

	cfg.WorkoutFreshnessDays = atoi("WORKOUT_FRESHNESS_DAYS", cfg.WorkoutFreshnessDays)
	cfg.AIBreakerMaxFailures = atoi("AI_BREAKER_MAX_FAILURES", cfg.AIBreakerMaxFailures)
	cfg.AIBreakerCooldownSeconds = atoi("AI_BREAKER_COOLDOWN_SECONDS", cfg.AIBreakerCooldownSeconds)

	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("LOG_FORMAT", cfg.LogFormat)
}

func (c *Config) Validate() error {
	switch c.ResetDelivery {
	case "inline":
	case "ses":
		if c.SESSender == "" {
			return errors.New("SES_SENDER is required when RESET_DELIVERY=ses")
		}
	default:
		return errors.Errorf("unknown RESET_DELIVERY %q", c.ResetDelivery)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}
	if c.SessionIdleMinutes <= 0 {
		return errors.New("SESSION_IDLE_MINUTES must be positive")
	}
	if c.WorkoutFreshnessDays <= 0 {
		return errors.New("WORKOUT_FRESHNESS_DAYS must be positive")
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.ReqTimeoutSec) * time.Second
}

func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c *Config) WorkoutFreshness() time.Duration {
	return time.Duration(c.WorkoutFreshnessDays) * 24 * time.Hour
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}
