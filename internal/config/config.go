package config

import (
	"fmt"
	"os"

	"github.com/bencullenn/chronicle-voice/internal/llm"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	// Voice-call provider (Vapi)
	Voice struct {
		APIKey        string `yaml:"api_key"`
		BaseURL       string `yaml:"base_url"`
		PhoneNumberID string `yaml:"phone_number_id"`
		DefaultNumber string `yaml:"default_number"`
		Assistants    struct {
			Normal    string `yaml:"normal"`
			Severance string `yaml:"severance"`
		} `yaml:"assistants"`
	} `yaml:"voice"`

	// Narrative-cleaning providers, tried in order with failover
	Providers []llm.ProviderConfig `yaml:"providers"`

	Database struct {
		Type string `yaml:"type"` // "sqlite", "postgres" or "supabase"
		Path string `yaml:"path"` // SQLite path
		DSN  string `yaml:"dsn"`  // PostgreSQL connection string
		URL  string `yaml:"url"`  // Supabase project URL
		Key  string `yaml:"key"`  // Supabase API key
	} `yaml:"database"`

	MaxFailuresBeforeSwitch int `yaml:"max_failures_before_switch"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Set defaults
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Database.Type == "" {
		config.Database.Type = "sqlite"
	}

	if config.Database.Path == "" {
		config.Database.Path = "./data/entries.db"
	}

	if config.MaxFailuresBeforeSwitch == 0 {
		config.MaxFailuresBeforeSwitch = 3
	}

	// Expand environment variables in secrets
	config.Voice.APIKey = os.ExpandEnv(config.Voice.APIKey)
	config.Database.DSN = os.ExpandEnv(config.Database.DSN)
	config.Database.Key = os.ExpandEnv(config.Database.Key)
	for i := range config.Providers {
		config.Providers[i].APIKey = os.ExpandEnv(config.Providers[i].APIKey)
	}

	return config, nil
}
