package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port    string `yaml:"port"`
	LogMode string `yaml:"log_mode"`

	DBDriver string `yaml:"db_driver"`
	DBURL    string `yaml:"db_url"`

	JWTSecret  string `yaml:"jwt_secret"`
	CronSecret string `yaml:"cron_secret"`

	Timezone           string `yaml:"timezone"`
	RetentionSchedule  string `yaml:"retention_schedule"`
	SchedulingSchedule string `yaml:"scheduling_schedule"`

	TwilioAccountSID     string `yaml:"twilio_account_sid"`
	TwilioAuthToken      string `yaml:"twilio_auth_token"`
	TwilioPhoneNumber    string `yaml:"twilio_phone_number"`
	TwilioWhatsAppNumber string `yaml:"twilio_whatsapp_number"`

	SlackBotToken     string `yaml:"slack_bot_token"`
	SlackAlertChannel string `yaml:"slack_alert_channel"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	RedisAddr            string `yaml:"redis_addr"`
	RedisPassword        string `yaml:"redis_password"`
	RedisDB              int    `yaml:"redis_db"`
	DashboardCacheTTLSec int    `yaml:"dashboard_cache_ttl_seconds"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	RecommendationLimit int `yaml:"recommendation_limit"`

	Location *time.Location `yaml:"-"`
}

func defaults() Config {
	return Config{
		Port:                 "8080",
		LogMode:              "development",
		DBDriver:             "postgres",
		Timezone:             "UTC",
		RetentionSchedule:    "0 2 * * *",
		SchedulingSchedule:   "0 6 * * *",
		KafkaTopic:           "salon-agent-activity",
		DashboardCacheTTLSec: 300,
		AnthropicModel:       "claude-sonnet-4-20250514",
		AllowedOrigins:       []string{"http://localhost:3000"},
		RecommendationLimit:  10,
	}
}

// DashboardCacheTTL is the configured dashboard cache lifetime.
func (c Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLSec) * time.Second
}

// Load reads .env, then the YAML file at CONFIG_PATH (default config.yaml),
// then lets environment variables override individual fields.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	envOverride(&cfg.Port, "PORT")
	envOverride(&cfg.LogMode, "LOG_MODE")
	envOverride(&cfg.DBDriver, "DB_DRIVER")
	envOverride(&cfg.DBURL, "DB_URL")
	envOverride(&cfg.JWTSecret, "JWT_SECRET")
	envOverride(&cfg.CronSecret, "CRON_SECRET")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverride(&cfg.RetentionSchedule, "RETENTION_SCHEDULE")
	envOverride(&cfg.SchedulingSchedule, "SCHEDULING_SCHEDULE")
	envOverride(&cfg.TwilioAccountSID, "TWILIO_ACCOUNT_SID")
	envOverride(&cfg.TwilioAuthToken, "TWILIO_AUTH_TOKEN")
	envOverride(&cfg.TwilioPhoneNumber, "TWILIO_PHONE_NUMBER")
	envOverride(&cfg.TwilioWhatsAppNumber, "TWILIO_WHATSAPP_NUMBER")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAlertChannel, "SLACK_ALERT_CHANNEL")
	envOverrideList(&cfg.KafkaBrokers, "KAFKA_BROKERS")
	envOverride(&cfg.KafkaTopic, "KAFKA_TOPIC")
	envOverride(&cfg.RedisAddr, "REDIS_ADDR")
	envOverride(&cfg.RedisPassword, "REDIS_PASSWORD")
	envOverrideList(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.AnthropicModel, "ANTHROPIC_MODEL")
	for _, o := range []struct {
		field *int
		key   string
	}{
		{&cfg.RedisDB, "REDIS_DB"},
		{&cfg.DashboardCacheTTLSec, "DASHBOARD_CACHE_TTL_SECONDS"},
		{&cfg.RecommendationLimit, "RECOMMENDATION_LIMIT"},
	} {
		if err := envOverrideInt(o.field, o.key); err != nil {
			return cfg, err
		}
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return cfg, fmt.Errorf("unsupported db_driver %q", cfg.DBDriver)
	}
	return cfg, nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideList(field *[]string, envKey string) {
	val := os.Getenv(envKey)
	if val == "" {
		return
	}
	*field = nil
	for _, v := range strings.Split(val, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*field = append(*field, v)
		}
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
