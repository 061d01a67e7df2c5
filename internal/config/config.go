package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	GinMode       string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	RedisHost     string
	RedisPort     string
	SessionSecret string

	PushDriver    string
	NATSURL       string
	NATSPrefix    string
	KafkaBrokers  []string
	KafkaTopic    string
	RetentionDays int
	PurgeInterval time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// Load reads configuration from defaults, an optional config.yaml, a local
// .env file and the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/creative-task-api")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("db_driver", "mysql")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_user", "taskuser")
	v.SetDefault("db_password", "taskpassword")
	v.SetDefault("db_name", "creative_tasks")
	v.SetDefault("db_path", "creative_tasks.db")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("session_secret", "default-secret-key-change-me")
	v.SetDefault("push_driver", "none")
	v.SetDefault("nats_url", "nats://localhost:4222")
	v.SetDefault("nats_prefix", "notifications.user")
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_topic", "task-notifications")
	v.SetDefault("notification_retention_days", 30)
	v.SetDefault("notification_purge_interval", "1h")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", "")
	v.SetDefault("openai_model", "gpt-4o")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("port"),
		GinMode:       v.GetString("gin_mode"),
		DBDriver:      strings.ToLower(v.GetString("db_driver")),
		DBHost:        v.GetString("db_host"),
		DBPort:        v.GetString("db_port"),
		DBUser:        v.GetString("db_user"),
		DBPassword:    v.GetString("db_password"),
		DBName:        v.GetString("db_name"),
		DBPath:        v.GetString("db_path"),
		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		SessionSecret: v.GetString("session_secret"),
		PushDriver:    strings.ToLower(v.GetString("push_driver")),
		NATSURL:       v.GetString("nats_url"),
		NATSPrefix:    v.GetString("nats_prefix"),
		KafkaBrokers:  splitList(v.GetString("kafka_brokers")),
		KafkaTopic:    v.GetString("kafka_topic"),
		RetentionDays: v.GetInt("notification_retention_days"),
		OpenAIAPIKey:  v.GetString("openai_api_key"),
		OpenAIBaseURL: v.GetString("openai_base_url"),
		OpenAIModel:   v.GetString("openai_model"),
	}

	interval, err := time.ParseDuration(v.GetString("notification_purge_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid notification_purge_interval: %w", err)
	}
	cfg.PurgeInterval = interval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	switch c.PushDriver {
	case "nats", "kafka", "none":
	default:
		return fmt.Errorf("unsupported push_driver %q", c.PushDriver)
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("notification_retention_days must be positive")
	}
	return nil
}

// Retention is the lifetime of a notification before it becomes purgeable.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
