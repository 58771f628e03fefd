// Package config loads the daemon configuration from the process environment,
// optionally overlaid with secrets from Vault (when VAULT_ADDR is set).
// The daemon takes no CLI flags and reads no config files.
package config

import (
	"fmt"
	"net/url"
	"os"
)

// Config is populated once at boot and read-only afterwards.
type Config struct {
	MQTTBrokerURL string // required, mqtt:// or mqtts://
	PostgresURL   string // required
	MQTTUsername  string
	MQTTPassword  string
	MQTTClientID  string // process-unique, derived from the PID
	OTLPEndpoint  string // optional, enables tracing and metrics export
	LogLevel      string // debug|info|warn|error
	Env           string // development|production|test
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var envs = map[string]bool{"development": true, "production": true, "test": true}

// Load reads the environment, applies the Vault overlay when configured, and
// validates the result. Any missing or unparseable required value is an error;
// the caller exits 1 on it.
func Load() (*Config, error) {
	secrets, err := loadVaultSecrets()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MQTTBrokerURL: lookup("MQTT_BROKER_URL", secrets),
		PostgresURL:   lookup("POSTGRES_URL", secrets),
		MQTTUsername:  lookup("MQTT_USERNAME", secrets),
		MQTTPassword:  lookup("MQTT_PASSWORD", secrets),
		MQTTClientID:  fmt.Sprintf("ingestor-%d", os.Getpid()),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:      getenvDefault("LOG_LEVEL", "info"),
		Env:           getenvDefault("NODE_ENV", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the field contract. Broker and store URLs must parse and the
// broker scheme must be mqtt or mqtts.
func (c *Config) Validate() error {
	if c.MQTTBrokerURL == "" {
		return fmt.Errorf("MQTT_BROKER_URL is required")
	}
	u, err := url.Parse(c.MQTTBrokerURL)
	if err != nil {
		return fmt.Errorf("MQTT_BROKER_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "mqtt" && u.Scheme != "mqtts" {
		return fmt.Errorf("MQTT_BROKER_URL scheme must be mqtt or mqtts, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("MQTT_BROKER_URL has no host")
	}

	if c.PostgresURL == "" {
		return fmt.Errorf("POSTGRES_URL is required")
	}
	if _, err := url.Parse(c.PostgresURL); err != nil {
		return fmt.Errorf("POSTGRES_URL is not a valid URL: %w", err)
	}

	if !logLevels[c.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of debug|info|warn|error, got %q", c.LogLevel)
	}
	if !envs[c.Env] {
		return fmt.Errorf("NODE_ENV must be one of development|production|test, got %q", c.Env)
	}
	return nil
}

// lookup prefers the environment variable over the Vault secret of the same name.
func lookup(key string, secrets map[string]interface{}) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if secrets != nil {
		if v, ok := secrets[key].(string); ok {
			return v
		}
	}
	return ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
