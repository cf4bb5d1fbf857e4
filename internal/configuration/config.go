package configuration

import (
	"github.com/BurntSushi/toml"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
	"pricewatch/internal/logger"
	"time"
)

type Config struct {
	ServerAddress string
	DatabaseURI   string
	RedisURI      string
	PriceAPIURL   string
	CheckInterval time.Duration
	LogLevel      logger.Level
	LogToFile     bool
	AuthSecretKey jwk.Key
}

type tomlConfig struct {
	ServerAddress string `toml:"server_address"`
	DatabaseURI   string `toml:"database_uri"`
	RedisURI      string `toml:"redis_uri"`
	PriceAPIURL   string `toml:"price_api_url"`
	CheckInterval string `toml:"check_interval"`
	LogLevel      string `toml:"log_level"`
	LogToFile     bool   `toml:"log_to_file"`
	AuthSecretKey string `toml:"auth_secret_key"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}

	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}

	if tc.PriceAPIURL == "" {
		return nil, errors.New("price_api_url is not set")
	}

	if tc.CheckInterval == "" {
		tc.CheckInterval = "30m"
	}
	checkInterval, err := time.ParseDuration(tc.CheckInterval)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse check_interval: %s", tc.CheckInterval)
	}
	if checkInterval < time.Minute {
		return nil, errors.Errorf("check_interval too short (%v), minimum interval: 1m", checkInterval)
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}
	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	return &Config{
		ServerAddress: tc.ServerAddress,
		DatabaseURI:   tc.DatabaseURI,
		RedisURI:      tc.RedisURI,
		PriceAPIURL:   tc.PriceAPIURL,
		CheckInterval: checkInterval,
		LogLevel:      logLevel,
		LogToFile:     tc.LogToFile,
		AuthSecretKey: authSecretKey,
	}, nil
}
