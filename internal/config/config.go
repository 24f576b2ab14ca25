package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Journal   Journal   `mapstructure:"journal"`
	Digest    Digest    `mapstructure:"digest"`
	Reminders Reminders `mapstructure:"reminders"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
}

// Journal holds the workbook and import locations.
type Journal struct {
	WorkbookPath string `mapstructure:"workbook_path"`
	ImportPath   string `mapstructure:"import_path"`
	Backup       bool   `mapstructure:"backup"`
}

// Digest holds the weekly one-pager settings.
type Digest struct {
	WatchList []string `mapstructure:"watch_list"`
}

// Reminders holds the sweep thresholds and the watch-mode schedule.
type Reminders struct {
	StaleAfterDays int    `mapstructure:"stale_after_days"`
	Schedule       string `mapstructure:"schedule"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is fine; defaults and environment cover it.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("journal.workbook_path", "journal.xlsx")
	viper.SetDefault("journal.import_path", "export.csv")
	viper.SetDefault("journal.backup", true)
	viper.SetDefault("digest.watch_list", []string{"SPY", "MES", "QQQ", "CONGLO", "IWM", "VIX"})
	viper.SetDefault("reminders.stale_after_days", 30)
	viper.SetDefault("reminders.schedule", "0 8 * * *") // daily at 08:00
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("server.port", 8080)

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
