package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Logging        LoggingConfig
	Wiki           WikiConfig
	Webhook        WebhookConfig
	Relay          RelayConfig
	Sources        SourcesConfig
	Broker         BrokerConfig
	Database       DatabaseConfig
	CircuitBreaker CircuitBreakerConfig
}

type ServerConfig struct {
	Port                int           `mapstructure:"port"`
	ReadTimeoutSeconds  time.Duration `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds time.Duration `mapstructure:"write_timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// WikiConfig describes the observed wiki for URL construction.
// ArticlePath and ScriptPath follow the MediaWiki conventions
// ("/wiki/$1" and "/w" on Wikimedia sites).
type WikiConfig struct {
	ServerURL   string `mapstructure:"server_url"`
	ArticlePath string `mapstructure:"article_path"`
	ScriptPath  string `mapstructure:"script_path"`
}

type WebhookConfig struct {
	URL            string          `mapstructure:"url"`
	TimeoutSeconds time.Duration   `mapstructure:"timeout_seconds"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type RelayConfig struct {
	DisabledNamespaces []int          `mapstructure:"disabled_namespaces"`
	IgnoreBots         bool           `mapstructure:"ignore_bots"`
	Rules              []RuleConfig   `mapstructure:"rules"`
	Fallback           FallbackConfig `mapstructure:"fallback"`
}

type RuleConfig struct {
	Name       string `mapstructure:"name"`
	Expression string `mapstructure:"expression"` // CEL expression over `event`, must evaluate to bool
}

type FallbackConfig struct {
	OnError string `mapstructure:"on_error"` // "allow" or "deny" (default: "allow")
}

type SourcesConfig struct {
	HTTP   HTTPSourceConfig   `mapstructure:"http"`
	Kafka  KafkaSourceConfig  `mapstructure:"kafka"`
	Stream StreamSourceConfig `mapstructure:"stream"`
}

type HTTPSourceConfig struct {
	Enabled   bool            `mapstructure:"enabled"`
	RateLimit IngestRateLimit `mapstructure:"rate_limit"`
}

type IngestRateLimit struct {
	Enabled         bool    `mapstructure:"enabled"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
	CleanupInterval int     `mapstructure:"cleanup_interval"`
	MaxAge          int     `mapstructure:"max_age"`
}

type KafkaSourceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type StreamSourceConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	URL       string `mapstructure:"url"`
	UserAgent string `mapstructure:"user_agent"`
}

type BrokerConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers    []string    `mapstructure:"brokers"`
	GroupID    string      `mapstructure:"group_id"`
	InputTopic string      `mapstructure:"input_topic"`
	DLQTopic   string      `mapstructure:"dlq_topic"`
	Retry      RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
