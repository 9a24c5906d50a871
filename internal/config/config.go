package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Store     StoreConfig     `mapstructure:"store"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	// Store is either "cookie" or "redis".
	Store  string `mapstructure:"store"`
	MaxAge int    `mapstructure:"max_age"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	PoolSize int    `mapstructure:"pool_size"`
}

type StoreConfig struct {
	// DSN of the in-memory SQLite database backing the entity store.
	DSN   string `mapstructure:"dsn"`
	Seed  bool   `mapstructure:"seed"`
	Debug bool   `mapstructure:"debug"`
}

type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type WorkflowConfig struct {
	StrictLifecycle bool `mapstructure:"strict_lifecycle"`
}

type SchedulerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	ReminderInterval time.Duration `mapstructure:"reminder_interval"`
	ReminderWindow   time.Duration `mapstructure:"reminder_window"`
	PoolSize         int           `mapstructure:"pool_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // stdout or file
	File   string `mapstructure:"file"`
}

// Load reads config.yaml from the working directory or ./config, then applies
// environment overrides (server.port -> SERVER_PORT).
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path searches the
// default locations; a missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.mode", "SERVER_MODE", "GIN_MODE")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("session.secret", "default-secret-key-change-me")
	v.SetDefault("session.store", "cookie")
	v.SetDefault("session.max_age", 86400*7)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("store.dsn", "file::memory:?cache=shared")
	v.SetDefault("store.seed", true)
	v.SetDefault("store.debug", false)

	v.SetDefault("auth.bcrypt_cost", bcrypt.DefaultCost)

	v.SetDefault("workflow.strict_lifecycle", false)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.reminder_interval", 10*time.Minute)
	v.SetDefault("scheduler.reminder_window", 72*time.Hour)
	v.SetDefault("scheduler.pool_size", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case "cookie", "redis":
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Scheduler.Enabled && c.Scheduler.ReminderInterval <= 0 {
		return errors.New("scheduler.reminder_interval must be positive")
	}
	if c.Scheduler.PoolSize <= 0 {
		c.Scheduler.PoolSize = 1
	}
	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "release"
}

// RedisAddr returns host:port for the Redis session store.
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}
