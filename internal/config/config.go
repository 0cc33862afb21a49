package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Backup BackupConfig `mapstructure:"backup"`
}

type AppConfig struct {
	Name       string `mapstructure:"name"`
	LogLevel   string `mapstructure:"log_level"`
	LogFile    string `mapstructure:"log_file"`
	InstanceID string `mapstructure:"instance_id"`

	// Supervised installs delegate local backup storage to the supervisor,
	// so no local agent is registered.
	Supervised bool `mapstructure:"supervised"`
}

type BackupConfig struct {
	LocalPath   string        `mapstructure:"local_path"`
	Compress    bool          `mapstructure:"compress"`
	Folders     []string      `mapstructure:"folders"`
	Database    string        `mapstructure:"database"`
	Schedule    string        `mapstructure:"schedule"`
	AgentConfig []AgentTarget `mapstructure:"agents"`
}

type AgentTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name"`

	// Google Drive
	CredentialsFile  string `mapstructure:"credentials_file"`
	ClientSecretFile string `mapstructure:"client_secret_file"`
	FolderID         string `mapstructure:"folder_id"`

	// AWS S3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`

	// Telegram notifications
	BotToken   string `mapstructure:"bot_token"`
	ChatID     string `mapstructure:"chat_id"`
	SendFile   bool   `mapstructure:"send_file"`
	NotifyOnly bool   `mapstructure:"notify_only"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "kustos")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("backup.compress", true)
	v.SetDefault("backup.folders", []string{"media", "share"})

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if !c.App.Supervised && c.Backup.LocalPath == "" {
		return fmt.Errorf("backup.local_path is required on non-supervised installs")
	}

	for i, agent := range c.Backup.AgentConfig {
		if agent.Type == "" {
			return fmt.Errorf("backup.agents[%d]: type is required", i)
		}
		if !agent.Enabled {
			continue
		}
		switch agent.Type {
		case "s3":
			if agent.Bucket == "" {
				return fmt.Errorf("backup.agents[%d]: bucket is required for s3", i)
			}
		case "gdrive":
			if agent.CredentialsFile == "" && agent.ClientSecretFile == "" {
				return fmt.Errorf("backup.agents[%d]: credentials_file or client_secret_file is required for gdrive", i)
			}
		case "telegram":
			if agent.BotToken == "" {
				return fmt.Errorf("backup.agents[%d]: bot_token is required for telegram", i)
			}
		}
	}

	return nil
}

func (c *Config) GetEnabledAgents() []AgentTarget {
	var enabled []AgentTarget
	for _, agent := range c.Backup.AgentConfig {
		if agent.Enabled {
			enabled = append(enabled, agent)
		}
	}
	return enabled
}
