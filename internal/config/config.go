// Package config handles configuration loading from files, environment variables, and flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultProjectTable = "DRPProject"
	defaultWatchTable   = "DRPVpcWatch"
)

// Config holds all configuration for the regionsync server.
type Config struct {
	ListenAddr               string
	Region                   string
	StoreBackend             string
	ProjectTable             string
	WatchTable               string
	SecretPrefix             string
	WorkerPool               int
	SyncTimeout              time.Duration
	RunTimeout               time.Duration
	PollInterval             time.Duration
	CreateVpcProjectFunction string
	DeleteVpcFunction        string
	CheckWatchReadyFunction  string
	Debug                    bool
}

// Load initializes configuration from file, environment variables, and flags.
func Load(configFile string) (*Config, error) {
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("store_backend", "dynamodb")
	viper.SetDefault("project_table", defaultProjectTable)
	viper.SetDefault("watch_table", defaultWatchTable)
	viper.SetDefault("secret_prefix", "drp")
	viper.SetDefault("worker_pool", 8)
	viper.SetDefault("sync_timeout", "10m")
	viper.SetDefault("run_timeout", "24h")
	viper.SetDefault("poll_interval", "3s")
	viper.SetDefault("create_vpc_project_function", "DRPVpcCreateVpcProject")
	viper.SetDefault("delete_vpc_function", "DRPVpcDeleteVpc")
	viper.SetDefault("check_watch_ready_function", "DRPVpcCheckWatchReady")

	viper.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		ListenAddr:               viper.GetString("listen_addr"),
		Region:                   viper.GetString("region"),
		StoreBackend:             viper.GetString("store_backend"),
		ProjectTable:             viper.GetString("project_table"),
		WatchTable:               viper.GetString("watch_table"),
		SecretPrefix:             viper.GetString("secret_prefix"),
		WorkerPool:               viper.GetInt("worker_pool"),
		SyncTimeout:              viper.GetDuration("sync_timeout"),
		RunTimeout:               viper.GetDuration("run_timeout"),
		PollInterval:             viper.GetDuration("poll_interval"),
		CreateVpcProjectFunction: viper.GetString("create_vpc_project_function"),
		DeleteVpcFunction:        viper.GetString("delete_vpc_function"),
		CheckWatchReadyFunction:  viper.GetString("check_watch_ready_function"),
		Debug:                    viper.GetBool("debug"),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.StoreBackend != "dynamodb" && c.StoreBackend != "memory" {
		return fmt.Errorf("store_backend must be dynamodb or memory, got %q", c.StoreBackend)
	}
	if c.StoreBackend == "dynamodb" && c.Region == "" {
		return fmt.Errorf("region is required for the dynamodb store backend")
	}
	if c.WorkerPool < 1 {
		return fmt.Errorf("worker_pool must be at least 1")
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("sync_timeout must be positive")
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("run_timeout must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	return nil
}

// LoadConfig loads configuration using the global Viper instance.
func LoadConfig() (*Config, error) {
	return Load("")
}
