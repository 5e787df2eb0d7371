package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type ServerConfig struct {
	Port    string `yaml:"port" env:"PORT" env-default:"8080"`
	GinMode string `yaml:"gin_mode" env:"GIN_MODE" env-default:"release"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	DBPath string `yaml:"db_path" env:"DB_PATH" env-default:"./data/auctions.db"`
}

type LoggerConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	Logger   LoggerConfig  `yaml:"logger"`
	SeedDemo bool          `yaml:"seed_demo" env:"SEED_DEMO_DATA" env-default:"true"`
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// Validate rejects settings the application cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("config: empty port")
	}
	return nil
}

// Load reads configuration from the YAML file at path, if any, then from the
// environment. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
			return &cfg, cfg.Validate()
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return &cfg, cfg.Validate()
}
