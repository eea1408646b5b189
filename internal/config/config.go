// Package config loads sprintboard settings from flags, SB_* environment
// variables, the YAML config file and defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "SB"

var (
	ErrNoGroup      = errors.New("no group configured; set group_id or pass --group")
	ErrNoManagement = errors.New("no management configured; set management_id or pass --management")
)

type Config struct {
	APIURL            string        `mapstructure:"api_url"`
	Token             string        `mapstructure:"token"`
	GroupID           int64         `mapstructure:"group_id"`
	ManagementID      int64         `mapstructure:"management_id"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	RollbackOnFailure bool          `mapstructure:"rollback_on_failure"`
	DataDir           string        `mapstructure:"data_dir"`
	Log               LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File is the log destination. Empty means the default state file and
	// "-" means stderr.
	File string `mapstructure:"file"`
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("api_url", "")
	v.SetDefault("token", "")
	v.SetDefault("group_id", 0)
	v.SetDefault("management_id", 0)
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("poll_interval", 5*time.Second)
	v.SetDefault("rollback_on_failure", false)
	v.SetDefault("data_dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"api-url":    "api_url",
	"token":      "token",
	"group":      "group_id",
	"management": "management_id",
	"log-level":  "log.level",
	"log-file":   "log.file",
	"data-dir":   "data_dir",
}

// BindFlags binds the flags in fs that have a config key. Flags missing
// from fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file at path, or the default path when path is
// empty, and decodes the merged settings. A missing default file is not an
// error.
func Load(v *viper.Viper, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if explicit || !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	return cfg, nil
}

// Validate checks the settings every remote command needs.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("no API URL configured; set api_url or pass --api-url")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API URL %q", c.APIURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	return nil
}

func (c *Config) RequireGroup() error {
	if c.GroupID <= 0 {
		return ErrNoGroup
	}
	return nil
}

// RequireManagement checks for the course offering id that announcements
// and evaluation templates are scoped to.
func (c *Config) RequireManagement() error {
	if c.ManagementID <= 0 {
		return ErrNoManagement
	}
	return nil
}

func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".sprintboard", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sprintboard", "config.yaml")
}
