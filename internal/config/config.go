package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Backend    BackendConfig
	Storage    StorageConfig
	Logger     LoggerConfig
	StubServer StubServerConfig
}

// BackendConfig points the client at the remote platform API.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StorageConfig locates the on-disk credential store (token plus cached
// user record, shared across program runs).
type StorageConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

// StubServerConfig configures the local development backend.
type StubServerConfig struct {
	Port           int           `yaml:"port"`
	JWTSecret      string        `yaml:"jwt_secret"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.SetDefault("backend.timeout", 30)
	viper.SetDefault("storage.credentials_file", defaultCredentialsFile())
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("stub_server.port", 8090)
	viper.SetDefault("stub_server.access_token_ttl", 30)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Backend: BackendConfig{
			BaseURL: viper.GetString("backend.base_url"),
			Timeout: viper.GetDuration("backend.timeout") * time.Second,
		},
		Storage: StorageConfig{
			CredentialsFile: viper.GetString("storage.credentials_file"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		StubServer: StubServerConfig{
			Port:           viper.GetInt("stub_server.port"),
			JWTSecret:      viper.GetString("stub_server.jwt_secret"),
			AccessTokenTTL: viper.GetDuration("stub_server.access_token_ttl") * time.Minute,
		},
	}

	// Override with environment variables if set
	if baseURL := os.Getenv("BACKEND_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if credFile := os.Getenv("CREDENTIALS_FILE"); credFile != "" {
		config.Storage.CredentialsFile = credFile
	}
	if secret := os.Getenv("STUB_JWT_SECRET"); secret != "" {
		config.StubServer.JWTSecret = secret
	}

	return config, nil
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eduassess/credentials.json"
	}
	return filepath.Join(home, ".eduassess", "credentials.json")
}
