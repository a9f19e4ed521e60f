package app

import (
	"path/filepath"
	"testing"
)

func TestGetDefaults_EnvOverrides(t *testing.T) {
	t.Setenv("RAPIDTRIAGE_CONFIG_PATH", "/etc/rapidtriage/config.toml")
	t.Setenv("RAPIDTRIAGE_HOME", "/var/lib/rapidtriage")

	defaults, err := GetDefaults()
	if err != nil {
		t.Fatalf("GetDefaults() error = %v", err)
	}

	if defaults["config_path"] != "/etc/rapidtriage/config.toml" {
		t.Errorf("config_path = %q", defaults["config_path"])
	}
	if defaults["base_dir"] != "/var/lib/rapidtriage" {
		t.Errorf("base_dir = %q", defaults["base_dir"])
	}
	if defaults["log_dir"] != filepath.Join("/var/lib/rapidtriage", "log") {
		t.Errorf("log_dir = %q", defaults["log_dir"])
	}
}

func TestGetDefaults_HomeFallback(t *testing.T) {
	t.Setenv("RAPIDTRIAGE_CONFIG_PATH", "")
	t.Setenv("RAPIDTRIAGE_HOME", "")
	t.Setenv("HOME", "/home/tester")

	defaults, err := GetDefaults()
	if err != nil {
		t.Fatalf("GetDefaults() error = %v", err)
	}

	if defaults["config_path"] != "/home/tester/.config/rapidtriage.toml" {
		t.Errorf("config_path = %q", defaults["config_path"])
	}
	if defaults["base_dir"] != "/home/tester/.local/share/rapidtriage" {
		t.Errorf("base_dir = %q", defaults["base_dir"])
	}
}
