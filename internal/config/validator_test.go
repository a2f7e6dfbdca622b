package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                8080,
			ReadTimeoutSeconds:  15 * time.Second,
			WriteTimeoutSeconds: 15 * time.Second,
		},
		Wiki: WikiConfig{
			ServerURL:   "https://wiki.example.org",
			ArticlePath: "/wiki/$1",
			ScriptPath:  "/w",
		},
		Webhook: WebhookConfig{
			URL:            "https://chat.example.org/api/webhooks/1/token",
			TimeoutSeconds: 10 * time.Second,
		},
		Sources: SourcesConfig{
			HTTP: HTTPSourceConfig{Enabled: true},
		},
	}
}

func TestValidateStatic_ValidConfig(t *testing.T) {
	assert.NoError(t, ValidateStatic(validConfig()))
}

func TestValidateStatic_MissingWebhookURL(t *testing.T) {
	cfg := validConfig()
	cfg.Webhook.URL = ""

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook.url")
}

func TestValidateStatic_RelativeWebhookURL(t *testing.T) {
	cfg := validConfig()
	cfg.Webhook.URL = "/api/webhooks/1/token"

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute http(s) URL")
}

func TestValidateStatic_MissingWikiServerURL(t *testing.T) {
	cfg := validConfig()
	cfg.Wiki.ServerURL = ""

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wiki.server_url")
}

func TestValidateStatic_ArticlePathWithoutPlaceholder(t *testing.T) {
	cfg := validConfig()
	cfg.Wiki.ArticlePath = "/wiki/"

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$1")
}

func TestValidateStatic_InvalidFallback(t *testing.T) {
	cfg := validConfig()
	cfg.Relay.Fallback.OnError = "reject"

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback")
}

func TestValidateStatic_EmptyRuleExpression(t *testing.T) {
	cfg := validConfig()
	cfg.Relay.Rules = []RuleConfig{{Name: "empty", Expression: ""}}

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expression")
}

func TestValidateStatic_NoSourcesEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.HTTP.Enabled = false

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one event source")
}

func TestValidateStatic_KafkaSourceNeedsBrokers(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.Kafka.Enabled = true

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker")
}

func TestValidateStatic_StreamSourceNeedsURL(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.Stream.Enabled = true
	cfg.Sources.Stream.URL = ""

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream")
}

func TestValidateStatic_BadServerPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0

	err := ValidateStatic(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}
