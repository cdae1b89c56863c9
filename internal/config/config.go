package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/tjpa/agil-workflow/internal/domain/projection"
)

// Config holds all application configuration
type Config struct {
	Server         ServerConfig               `mapstructure:"server"`
	Database       DatabaseConfig             `mapstructure:"database"`
	Priority       projection.PriorityConfig  `mapstructure:"priority"`
	Accountability AccountabilityConfig       `mapstructure:"accountability"`
	Logger         LoggerConfig               `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// AccountabilityConfig holds prestação de contas policy
type AccountabilityConfig struct {
	// DeadlineDays counts from payment confirmation to the filing deadline.
	DeadlineDays int `mapstructure:"deadline_days"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/agil.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Priority defaults match the SEFIN signing-queue policy
	defaults := projection.DefaultPriorityConfig()
	viper.SetDefault("priority.weight_age", defaults.WeightAge)
	viper.SetDefault("priority.weight_value", defaults.WeightValue)
	viper.SetDefault("priority.weight_type", defaults.WeightType)
	viper.SetDefault("priority.max_age_hours", defaults.MaxAgeHours)
	viper.SetDefault("priority.max_value", defaults.MaxValue)
	viper.SetDefault("priority.stale_after_hours", defaults.StaleAfterHours)

	// Accountability defaults
	viper.SetDefault("accountability.deadline_days", 30)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "AGIL_SERVER_PORT")
	viper.BindEnv("database.path", "AGIL_DATABASE_PATH")
	viper.BindEnv("logger.level", "AGIL_LOG_LEVEL")
	viper.BindEnv("accountability.deadline_days", "AGIL_ACCOUNTABILITY_DEADLINE_DAYS")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Priority.WeightAge < 0 || c.Priority.WeightValue < 0 || c.Priority.WeightType < 0 {
		return fmt.Errorf("priority weights must be non-negative")
	}
	sum := c.Priority.WeightAge + c.Priority.WeightValue + c.Priority.WeightType
	if sum <= 0 {
		return fmt.Errorf("priority weights must not all be zero")
	}
	if c.Priority.MaxAgeHours <= 0 {
		return fmt.Errorf("priority.max_age_hours must be positive")
	}
	if c.Priority.MaxValue <= 0 {
		return fmt.Errorf("priority.max_value must be positive")
	}

	if c.Accountability.DeadlineDays <= 0 {
		return fmt.Errorf("accountability.deadline_days must be positive")
	}

	return nil
}
