// Package config loads the settings of the crontab command.
//
// Values come from, in increasing priority: defaults, a YAML file
// (~/.crontab.yaml unless --config says otherwise), CRONTAB_* environment
// variables, and command line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	envPrefix       = "CRONTAB"
	defaultBasename = ".crontab.yaml"
)

type Config struct {
	// Spec is an inline specification. SpecFile is read when Spec is empty.
	Spec     string `mapstructure:"spec"`
	SpecFile string `mapstructure:"spec_file"`
	// SeedName spreads H symbols; usually the name of the job.
	SeedName string `mapstructure:"seed_name"`
	Count    int    `mapstructure:"count"`
	Format   string `mapstructure:"format"`
	Log      Log    `mapstructure:"log"`
}

type Log struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

var formats = []string{"text", "json", "yaml"}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("spec", "")
	v.SetDefault("spec_file", "")
	v.SetDefault("seed_name", "")
	v.SetDefault("count", 5)
	v.SetDefault("format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultPath returns ~/.crontab.yaml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, defaultBasename), nil
}

// Load reads path into v and decodes the result. An empty path means the
// default file, which may be missing; an explicit path must exist.
func Load(v *viper.Viper, path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if explicit || !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", c.Count)
	}
	for _, f := range formats {
		if c.Format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(formats, ", "))
}

// ReadSpec returns the specification text: Spec if set, else the contents of
// SpecFile. It reports false if neither is configured.
func (c Config) ReadSpec() (string, bool, error) {
	if c.Spec != "" {
		return c.Spec, true, nil
	}
	if c.SpecFile == "" {
		return "", false, nil
	}
	path, err := homedir.Expand(c.SpecFile)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}
