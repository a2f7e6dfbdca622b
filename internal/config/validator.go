package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateStatic fails fast on deployment mistakes. A missing webhook URL
// is a config error, not a runtime-recoverable condition.
func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateWebhook(cfg.Webhook); err != nil {
		errors = append(errors, err)
	}

	if err := validateWiki(cfg.Wiki); err != nil {
		errors = append(errors, err)
	}

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateRelay(cfg.Relay); err != nil {
		errors = append(errors, err)
	}

	if err := validateSources(cfg); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateWebhook(cfg WebhookConfig) error {
	if cfg.URL == "" {
		return &ValidationError{
			Field:   "webhook.url",
			Message: "webhook URL is required",
		}
	}

	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{
			Field:   "webhook.url",
			Message: fmt.Sprintf("webhook URL must be an absolute http(s) URL, got %q", cfg.URL),
		}
	}

	if cfg.TimeoutSeconds < 0 {
		return &ValidationError{
			Field:   "webhook.timeout_seconds",
			Message: "timeout must be non-negative",
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RPS <= 0 {
			return &ValidationError{
				Field:   "webhook.rate_limit.rps",
				Message: "rps must be positive when rate limiting is enabled",
			}
		}
		if cfg.RateLimit.Burst < 1 {
			return &ValidationError{
				Field:   "webhook.rate_limit.burst",
				Message: "burst must be at least 1",
			}
		}
	}

	return nil
}

func validateWiki(cfg WikiConfig) error {
	if cfg.ServerURL == "" {
		return &ValidationError{
			Field:   "wiki.server_url",
			Message: "wiki server URL is required",
		}
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{
			Field:   "wiki.server_url",
			Message: fmt.Sprintf("wiki server URL must be an absolute http(s) URL, got %q", cfg.ServerURL),
		}
	}

	if cfg.ArticlePath != "" && !strings.Contains(cfg.ArticlePath, "$1") {
		return &ValidationError{
			Field:   "wiki.article_path",
			Message: fmt.Sprintf("article path must contain the $1 title placeholder, got %q", cfg.ArticlePath),
		}
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateRelay(cfg RelayConfig) error {
	switch strings.ToLower(cfg.Fallback.OnError) {
	case "", "allow", "deny":
	default:
		return &ValidationError{
			Field:   "relay.fallback.on_error",
			Message: fmt.Sprintf("invalid fallback: %s (valid: allow, deny)", cfg.Fallback.OnError),
		}
	}

	for i, rule := range cfg.Rules {
		if rule.Expression == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("relay.rules[%d].expression", i),
				Message: "rule expression cannot be empty",
			}
		}
	}

	return nil
}

func validateSources(cfg *Config) error {
	if !cfg.Sources.HTTP.Enabled && !cfg.Sources.Kafka.Enabled && !cfg.Sources.Stream.Enabled {
		return &ValidationError{
			Field:   "sources",
			Message: "at least one event source must be enabled",
		}
	}

	if cfg.Sources.Kafka.Enabled {
		if err := validateKafka(cfg.Broker.Kafka); err != nil {
			return err
		}
	}

	if cfg.Sources.Stream.Enabled {
		if cfg.Sources.Stream.URL == "" {
			return &ValidationError{
				Field:   "sources.stream.url",
				Message: "stream URL is required when the stream source is enabled",
			}
		}
	}

	return nil
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.GroupID == "" {
		return &ValidationError{
			Field:   "broker.kafka.group_id",
			Message: "Kafka consumer group ID is required",
		}
	}

	if cfg.InputTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.input_topic",
			Message: "Kafka input topic is required",
		}
	}

	if cfg.Retry.MaxAttempts < 0 {
		return &ValidationError{
			Field:   "broker.kafka.retry.max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.Retry.MaxInterval > 0 && cfg.Retry.InitialInterval > 0 && cfg.Retry.MaxInterval < cfg.Retry.InitialInterval {
		return &ValidationError{
			Field:   "broker.kafka.retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host != "" || cfg.Postgres.Port > 0 {
		if err := validatePostgres(cfg.Postgres); err != nil {
			return err
		}
	}

	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if err := validateRedis(cfg.Redis); err != nil {
			return err
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.TTLSeconds < 0 {
		return &ValidationError{
			Field:   "database.redis.ttl_seconds",
			Message: "TTL must be non-negative",
		}
	}

	return nil
}
