package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database   DatabaseConfig
	UI         UIConfig
	Log        LogConfig
	Automation AutomationConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	StartPage      string `mapstructure:"start_page"`
	StatePath      string `mapstructure:"state_path"`
}

// LogConfig holds logger settings. An empty path disables logging.
type LogConfig struct {
	Level string
	Path  string
}

// AutomationConfig controls the simulated automation actions.
type AutomationConfig struct {
	Delay time.Duration
}

func defaultDataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "kilowatt")
}

func defaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "kilowatt", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix KILOWATT_.
// path wins over KILOWATT_CONFIG, which wins over ~/.config/kilowatt/config.toml.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(defaultDataDir(), "kilowatt.db"))
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.start_page", "home")
	v.SetDefault("ui.state_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(defaultDataDir(), "kilowatt.log"))
	v.SetDefault("automation.delay", "1500ms")

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("KILOWATT_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(defaultConfigPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("KILOWATT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config, path string) error {
	if path == "" {
		path = os.Getenv("KILOWATT_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.start_page", cfg.UI.StartPage)
	v.Set("ui.state_path", cfg.UI.StatePath)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)
	v.Set("automation.delay", cfg.Automation.Delay.String())

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
