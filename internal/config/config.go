package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Backend names for event storage
const (
	BackendLocal = "local"
	BackendCloud = "cloud"
)

// Config holds user preferences
type Config struct {
	Backend   string `yaml:"backend" json:"backend"`       // Event storage: "local" or "cloud"
	ServerURL string `yaml:"server_url" json:"server_url"` // Sync server base URL
	Token     string `yaml:"token" json:"token"`           // Session token for cloud backend
	UserID    string `yaml:"user_id" json:"user_id"`       // Account id for cloud backend

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := ""
	if home != "" {
		logPath = filepath.Join(home, ".timeblock", "logs", "timeblock.log")
	}

	return &Config{
		Backend:    getEnv("TIMEBLOCK_BACKEND", BackendLocal),
		ServerURL:  getEnv("TIMEBLOCK_SERVER_URL", "http://localhost:8080"),
		LogLevel:   getEnv("TIMEBLOCK_LOG_LEVEL", "INFO"),
		LogFile:    getEnv("TIMEBLOCK_LOG_FILE", logPath),
		LogConsole: getEnv("TIMEBLOCK_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Dir returns the config directory (~/.timeblock)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".timeblock"), nil
}

// Load loads config from ~/.timeblock/config.yaml
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.timeblock/config.yaml
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
