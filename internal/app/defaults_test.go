package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("CIID_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("CIID_HOME", "/custom/ciid")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults.ConfigPath != "/custom/config.toml" {
			t.Errorf("ConfigPath = %q, want %q", defaults.ConfigPath, "/custom/config.toml")
		}
		if defaults.BaseDir != "/custom/ciid" {
			t.Errorf("BaseDir = %q, want %q", defaults.BaseDir, "/custom/ciid")
		}
		if defaults.LogDir != "/custom/ciid/log" {
			t.Errorf("LogDir = %q, want %q", defaults.LogDir, "/custom/ciid/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("CIID_CONFIG_PATH", "")
		t.Setenv("CIID_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "ciid.toml")
		if defaults.ConfigPath != wantConfig {
			t.Errorf("ConfigPath = %q, want %q", defaults.ConfigPath, wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "ciid")
		if defaults.BaseDir != wantBase {
			t.Errorf("BaseDir = %q, want %q", defaults.BaseDir, wantBase)
		}
		if defaults.LogDir != filepath.Join(wantBase, "log") {
			t.Errorf("LogDir = %q, want %q", defaults.LogDir, filepath.Join(wantBase, "log"))
		}
	})
}
