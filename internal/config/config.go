package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite / postgres
	Path    string `mapstructure:"path"`   // sqlite file path
	DSN     string `mapstructure:"dsn"`    // postgres DSN
	LogMode bool   `mapstructure:"log_mode"`
}

type SessionConfig struct {
	CookieName  string `mapstructure:"cookie_name"`
	ExpireHours int    `mapstructure:"expire_hours"`
	Secure      bool   `mapstructure:"secure"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type InviteConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type NotifyConfig struct {
	URL      string `mapstructure:"url"` // amqp URL; empty disables publishing
	Exchange string `mapstructure:"exchange"`
}

type AttendanceConfig struct {
	Timezone         string `mapstructure:"timezone"` // IANA name used for "local midnight"
	SweepIntervalMin int    `mapstructure:"sweep_interval_min"`
}

type AppSubConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Session    SessionConfig    `mapstructure:"session"`
	Security   SecurityConfig   `mapstructure:"security"`
	Invite     InviteConfig     `mapstructure:"invite"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	App        AppSubConfig     `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. TT_SERVER_PORT=9000
		v.SetEnvPrefix("TT")
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		applyDefaults(&c)
		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

func applyDefaults(c *Config) {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "tt_session"
	}
	if c.Session.ExpireHours <= 0 {
		c.Session.ExpireHours = 24
	}
	if c.Security.BcryptCost <= 0 {
		c.Security.BcryptCost = 12
	}
	if c.Invite.ExpireHours <= 0 {
		c.Invite.ExpireHours = 72
	}
	if c.Attendance.Timezone == "" {
		c.Attendance.Timezone = "Local"
	}
	if c.Attendance.SweepIntervalMin <= 0 {
		c.Attendance.SweepIntervalMin = 30
	}
	if c.App.PageSize <= 0 {
		c.App.PageSize = 20
	}
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
