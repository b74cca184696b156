package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Journal  Journal  `mapstructure:"journal"`
	Fetch    Fetch    `mapstructure:"fetch"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Journal holds the analytics defaults and per-account settings.
type Journal struct {
	// StartEquity is the fallback starting capital for accounts that have
	// no explicit entry in Accounts.
	StartEquity float64 `mapstructure:"start_equity"`
	// Accounts maps an account label to its starting equity.
	Accounts map[string]float64 `mapstructure:"accounts"`
	// BreakevenPolicy controls how zero-PnL trades count in the win rate:
	// "exclude", "loss" or "win".
	BreakevenPolicy string `mapstructure:"breakeven_policy"`
	// YearsBack is how many years the monthly performance table covers.
	YearsBack int `mapstructure:"years_back"`
	// DefaultAccount labels imported rows that carry no account column.
	DefaultAccount string `mapstructure:"default_account"`
}

// Fetch holds the configuration for the remote export downloader.
type Fetch struct {
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the dashboard API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("journal.start_equity", 5000.0)
	viper.SetDefault("journal.breakeven_policy", "exclude")
	viper.SetDefault("journal.years_back", 2)
	viper.SetDefault("journal.default_account", "Journal")
	viper.SetDefault("fetch.rate_limit", 2)       // requests per second
	viper.SetDefault("fetch.rate_limit_burst", 1) // burst size
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.dsn", "journal.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

// StartEquityFor resolves the starting equity for a set of account labels.
// Selected accounts are summed; an account without an explicit entry falls
// back to the default. An empty selection yields the default alone.
func (j Journal) StartEquityFor(accounts []string) float64 {
	if len(accounts) == 0 {
		return j.StartEquity
	}
	total := 0.0
	for _, acc := range accounts {
		if eq, ok := j.Accounts[acc]; ok {
			total += eq
		} else {
			total += j.StartEquity
		}
	}
	return total
}
