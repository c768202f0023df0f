package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Database  Database  `mapstructure:"database"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Retention Retention `mapstructure:"retention"`
	Export    Export    `mapstructure:"export"`
}

// Database holds the configuration for the embedded journal store.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Server holds the configuration for the local web UI.
type Server struct {
	Port int `mapstructure:"port"`
}

// Retention controls market data pruning.
type Retention struct {
	DaysToKeep int `mapstructure:"days_to_keep"`
}

// Export holds defaults for snapshot files.
type Export struct {
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from path/config.yml, an optional path/.env
// file and environment variables. A missing config file is not an error.
func LoadConfig(path string) (config Config, err error) {
	envFile := filepath.Join(path, ".env")
	if _, statErr := os.Stat(envFile); statErr == nil {
		if err = godotenv.Load(envFile); err != nil {
			return
		}
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("database.dsn", "trading_journal.db")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("retention.days_to_keep", 30)
	v.SetDefault("export.format", "json")

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
