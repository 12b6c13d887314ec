package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/stellar/go/keypair"
)

// environment variables overriding the configuration file
const (
	EnvRpcURL            = "RPC_URL"
	EnvNetworkPassphrase = "NETWORK_PASSPHRASE"
	EnvSecretKey         = "STELLAR_SECRET_KEY"
	EnvListenAddress     = "LISTEN_ADDRESS"
	EnvBotToken          = "BOT_TOKEN"
)

const (
	defaultListenAddress   = "127.0.0.1:3000"
	defaultRequestTimeout  = "30s"
	defaultShutdownTimeout = "10s"
	defaultDatabasePath    = "./fiddle.db"
)

// ConfigError - the configuration is missing required values or holds invalid ones.
// It is fatal: the application must not start serving requests
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LookupFunc - resolves an environment variable
type LookupFunc func(key string) (string, bool)

// NewConfig - reads the application configuration from the provided path, applies the
// process environment on top of it and returns an AppConfig struct or an error if something goes wrong.
// A missing configuration file is not an error, as long as the environment provides the required values
func NewConfig(configPath string) (*data.AppConfig, error) {
	return Load(configPath, os.LookupEnv)
}

// Load - same as NewConfig, with the environment given by lookup
func Load(configPath string, lookup LookupFunc) (*data.AppConfig, error) {
	cfg := &data.AppConfig{}

	if configPath != "" {
		bytes, err := ioutil.ReadFile(configPath)
		switch {
		case err == nil:
			err = json.Unmarshal(bytes, cfg)
			if err != nil {
				return nil, &ConfigError{Err: errors.Wrapf(err, "parsing %s", configPath)}
			}
		case os.IsNotExist(err):
		default:
			return nil, &ConfigError{Err: errors.Wrapf(err, "reading %s", configPath)}
		}
	}

	applyEnv(cfg, lookup)
	applyDefaults(cfg)

	err := Validate(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *data.AppConfig, lookup LookupFunc) {
	if lookup == nil {
		return
	}

	overrides := map[string]*string{
		EnvRpcURL:            &cfg.RpcURL,
		EnvNetworkPassphrase: &cfg.NetworkPassphrase,
		EnvSecretKey:         &cfg.SecretKey,
		EnvListenAddress:     &cfg.ListenAddress,
		EnvBotToken:          &cfg.BotToken,
	}
	for key, field := range overrides {
		value, ok := lookup(key)
		if ok && strings.TrimSpace(value) != "" {
			*field = strings.TrimSpace(value)
		}
	}
}

func applyDefaults(cfg *data.AppConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddress
	}
	if cfg.RequestTimeout == "" {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ShutdownTimeout == "" {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = defaultDatabasePath
	}
}

// Validate - checks that the required fields are present and well formed
func Validate(cfg *data.AppConfig) error {
	if cfg.RpcURL == "" {
		return &ConfigError{Field: "rpcUrl", Err: errors.New("missing RPC endpoint, set " + EnvRpcURL)}
	}
	if cfg.NetworkPassphrase == "" {
		return &ConfigError{Field: "networkPassphrase", Err: errors.New("missing network passphrase, set " + EnvNetworkPassphrase)}
	}
	for field, value := range map[string]string{"requestTimeout": cfg.RequestTimeout, "shutdownTimeout": cfg.ShutdownTimeout} {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return &ConfigError{Field: field, Err: errors.Errorf("invalid duration %q", value)}
		}
	}
	if cfg.SecretKey != "" {
		_, err := keypair.ParseFull(cfg.SecretKey)
		if err != nil {
			return &ConfigError{Field: "secretKey", Err: errors.Wrap(err, "invalid secret key")}
		}
	}

	return nil
}
