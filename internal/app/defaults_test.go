package app

import (
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SENTINEL_CONFIG_PATH", "/custom/sentinel.toml")
		t.Setenv("SENTINEL_HOME", "/custom/home")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/sentinel.toml" {
			t.Errorf("config_path = %q", defaults["config_path"])
		}
		if defaults["base_dir"] != "/custom/home" {
			t.Errorf("base_dir = %q", defaults["base_dir"])
		}
		if defaults["log_dir"] != filepath.Join("/custom/home", "log") {
			t.Errorf("log_dir = %q", defaults["log_dir"])
		}
	})

	t.Run("falls back to home directory", func(t *testing.T) {
		t.Setenv("SENTINEL_CONFIG_PATH", "")
		t.Setenv("SENTINEL_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if !filepath.IsAbs(defaults["config_path"]) {
			t.Errorf("config_path = %q, want absolute path", defaults["config_path"])
		}
		if filepath.Base(defaults["config_path"]) != "sentinel.toml" {
			t.Errorf("config_path = %q, want sentinel.toml", defaults["config_path"])
		}
		if filepath.Base(defaults["base_dir"]) != "sentinel" {
			t.Errorf("base_dir = %q", defaults["base_dir"])
		}
	})
}
