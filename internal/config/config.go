package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Storage StorageConfig `json:"storage"`
	Email   EmailConfig   `json:"email"`
	Digest  DigestConfig  `json:"digest"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// StorageConfig configures the local key/value store
type StorageConfig struct {
	Dir string `json:"dir"`
}

// EmailConfig configures outbound email delivery
type EmailConfig struct {
	Provider    string     `json:"provider"` // smtp, ses, or empty to disable
	TeamEmail   string     `json:"team_email"`
	FromAddress string     `json:"from_address"`
	FromName    string     `json:"from_name"`
	SMTP        SMTPConfig `json:"smtp"`
	SES         SESConfig  `json:"ses"`
}

// SMTPConfig holds SMTP transport settings
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SESConfig holds Amazon SES settings
type SESConfig struct {
	Region string `json:"region"`
}

// DigestConfig configures the weekly progress digest email
type DigestConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"` // cron expression
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Dir: "data",
		},
		Email: EmailConfig{
			FromName: "Energy+ Onboarding",
			SMTP:     SMTPConfig{Port: 587},
			SES:      SESConfig{Region: "us-east-1"},
		},
		Digest: DigestConfig{
			Schedule: "0 9 * * MON",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		config.Storage.Dir = dir
	}
	if provider := os.Getenv("EMAIL_PROVIDER"); provider != "" {
		config.Email.Provider = provider
	}
	if team := os.Getenv("TEAM_EMAIL"); team != "" {
		config.Email.TeamEmail = team
	}
	if from := os.Getenv("EMAIL_FROM_ADDRESS"); from != "" {
		config.Email.FromAddress = from
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		config.Email.SMTP.Host = host
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Email.SMTP.Port = p
		}
	}
	if user := os.Getenv("SMTP_USERNAME"); user != "" {
		config.Email.SMTP.Username = user
	}
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		config.Email.SMTP.Password = pass
	}
	if region := os.Getenv("SES_REGION"); region != "" {
		config.Email.SES.Region = region
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
