package configuration

import (
	"os"
	"path/filepath"
	"pricewatch/internal/logger"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestGetConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
price_api_url = "http://localhost:9000/price"
auth_secret_key = "test-secret-key-test-secret-key!"
`)
	config, err := GetConfig(path)
	if err != nil {
		t.Fatalf("GetConfig returned error: %v", err)
	}
	if config.ServerAddress != "localhost:8888" {
		t.Errorf("unexpected default server address: %s", config.ServerAddress)
	}
	if config.DatabaseURI != "mongodb://localhost:27017" {
		t.Errorf("unexpected default database URI: %s", config.DatabaseURI)
	}
	if config.CheckInterval != 30*time.Minute {
		t.Errorf("unexpected default check interval: %v", config.CheckInterval)
	}
	if config.LogLevel != logger.LevelInfo {
		t.Errorf("unexpected default log level: %v", config.LogLevel)
	}
	if config.AuthSecretKey == nil {
		t.Error("expected auth secret key to be set")
	}
}

func TestGetConfigParsesValues(t *testing.T) {
	path := writeConfig(t, `
server_address = "0.0.0.0:9999"
database_uri = "mongodb://db:27017"
redis_uri = "redis://cache:6379"
price_api_url = "http://prices:9000/price"
check_interval = "1h"
log_level = "debug"
log_to_file = true
auth_secret_key = "test-secret-key-test-secret-key!"
`)
	config, err := GetConfig(path)
	if err != nil {
		t.Fatalf("GetConfig returned error: %v", err)
	}
	if config.ServerAddress != "0.0.0.0:9999" {
		t.Errorf("unexpected server address: %s", config.ServerAddress)
	}
	if config.RedisURI != "redis://cache:6379" {
		t.Errorf("unexpected redis URI: %s", config.RedisURI)
	}
	if config.CheckInterval != time.Hour {
		t.Errorf("unexpected check interval: %v", config.CheckInterval)
	}
	if config.LogLevel != logger.LevelDebug {
		t.Errorf("unexpected log level: %v", config.LogLevel)
	}
	if !config.LogToFile {
		t.Error("expected log_to_file to be true")
	}
}

func TestGetConfigRejectsShortInterval(t *testing.T) {
	path := writeConfig(t, `
price_api_url = "http://localhost:9000/price"
check_interval = "10s"
auth_secret_key = "test-secret-key-test-secret-key!"
`)
	if _, err := GetConfig(path); err == nil {
		t.Error("expected error for check_interval below the minimum")
	}
}

func TestGetConfigRequiresPriceAPIURL(t *testing.T) {
	path := writeConfig(t, `
auth_secret_key = "test-secret-key-test-secret-key!"
`)
	if _, err := GetConfig(path); err == nil {
		t.Error("expected error when price_api_url is not set")
	}
}

func TestGetConfigRequiresAuthSecretKey(t *testing.T) {
	path := writeConfig(t, `
price_api_url = "http://localhost:9000/price"
`)
	if _, err := GetConfig(path); err == nil {
		t.Error("expected error when auth_secret_key is not set")
	}
}
