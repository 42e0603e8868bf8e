package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "LINKBOX"
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Manager ManagerConfig `mapstructure:"manager" yaml:"manager"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
}

type StorageConfig struct {
	// Backend is one of: sqlite|bolt|memory. Empty auto-detects: an existing
	// bolt file without a sqlite file selects bolt, anything else sqlite.
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Dir overrides where substrate files live (default: the config dir).
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" default:"info"`
	// File receives log output. The TUI owns the terminal, so stderr is only used by plain commands.
	File string `mapstructure:"file" yaml:"file"`
}

type ManagerConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr" default:"127.0.0.1:7787"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics" default:"true"`
}

type TUIConfig struct {
	// Theme is one of: auto|light|dark.
	Theme string `mapstructure:"theme" yaml:"theme" default:"auto"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.linkbox).
	if v := strings.TrimSpace(os.Getenv("LINKBOX_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".linkbox"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName+"."+configFileType), nil
}

// DataDir is where the substrate files live.
func (c *Config) DataDir() (string, error) {
	if d := strings.TrimSpace(c.Storage.Dir); d != "" {
		return d, nil
	}
	return ConfigDir()
}

// configKeys are the settable keys, with their default values.
func configKeys(def *Config) map[string]any {
	return map[string]any{
		"storage.backend": def.Storage.Backend,
		"storage.dir":     def.Storage.Dir,
		"log.level":       def.Log.Level,
		"log.file":        def.Log.File,
		"manager.addr":    def.Manager.Addr,
		"manager.metrics": def.Manager.Metrics,
		"tui.theme":       def.TUI.Theme,
	}
}

// ConfigKeys lists the keys accepted by SetConfigValue.
func ConfigKeys() []string {
	def := &Config{}
	_ = defaults.Set(def)
	out := make([]string, 0, 8)
	for k := range configKeys(def) {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newViper() (*viper.Viper, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	def := &Config{}
	if err := defaults.Set(def); err != nil {
		return nil, errors.Wrap(err, "config defaults")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configFileType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, d := range configKeys(def) {
		v.SetDefault(k, d)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has a default.
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
	}
	return v, nil
}

// LoadConfig reads ~/.linkbox/config.yaml plus LINKBOX_* environment overrides.
func LoadConfig() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "config defaults")
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// ConfigValue returns the effective value of key.
func ConfigValue(key string) (any, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !knownConfigKey(key) {
		return nil, errors.Errorf("unknown config key: %s", key)
	}
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return v.Get(key), nil
}

// SetConfigValue persists key=value into the config file.
func SetConfigValue(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !knownConfigKey(key) {
		return errors.Errorf("unknown config key: %s", key)
	}
	if key == "storage.backend" {
		if _, err := ParseBackend(value); err != nil {
			return err
		}
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	v, err := newViper()
	if err != nil {
		return err
	}
	v.Set(key, value)

	// Write next to the real file, then rename, so a crash never leaves a truncated config.
	tmp := filepath.Join(filepath.Dir(path), "config.pending."+configFileType)
	if err := v.WriteConfigAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "write config")
	}
	return errors.Wrap(os.Rename(tmp, path), "replace config")
}

func knownConfigKey(key string) bool {
	for _, k := range ConfigKeys() {
		if k == key {
			return true
		}
	}
	return false
}
