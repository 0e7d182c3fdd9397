package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("KILOWATT_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "share", "kilowatt", "kilowatt.db"), cfg.Database.Path)
	require.Equal(t, "$", cfg.UI.CurrencySymbol)
	require.Equal(t, "home", cfg.UI.StartPage)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, 1500*time.Millisecond, cfg.Automation.Delay)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	body := []byte(`
[database]
path = "/tmp/kw.db"

[ui]
currency_symbol = "€"
start_page = "commissions"

[automation]
delay = "250ms"
`)
	require.NoError(t, os.WriteFile(path, body, 0o644))
	t.Setenv("KILOWATT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/tmp/kw.db", cfg.Database.Path)
	require.Equal(t, "€", cfg.UI.CurrencySymbol)
	require.Equal(t, "commissions", cfg.UI.StartPage)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 250*time.Millisecond, cfg.Automation.Delay)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	in := Config{
		Database:   DatabaseConfig{Path: "/data/kw.db"},
		UI:         UIConfig{CurrencySymbol: "$", StartPage: "accounts"},
		Log:        LogConfig{Level: "warn", Path: "/data/kw.log"},
		Automation: AutomationConfig{Delay: 2 * time.Second},
	}
	require.NoError(t, Save(in, path))

	out, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, in, out)
}
