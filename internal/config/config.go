package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the main configuration for the screenshot storage service.
type Config struct {
	// ScreenshotHost is the public host screenshot URLs are served from.
	ScreenshotHost string `toml:"screenshot_host"`

	// SigningSecret is the server-held secret for signed URL HMACs.
	SigningSecret string `toml:"signing_secret"`

	LogDir      string            `toml:"log_dir"`
	ObjectStore ObjectStoreConfig `toml:"object_store"`
	KV          KVConfig          `toml:"kv"`
	Retention   RetentionConfig   `toml:"retention"`
}

// ObjectStoreConfig selects and configures the blob storage backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ObjectStoreConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", or "s3"

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"` // custom endpoint for S3-compatible stores
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// KVConfig selects and configures the key-value store backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type KVConfig struct {
	Type string `toml:"type"` // "memory", "redis", or "sqlite"

	// Redis-specific fields (only used when Type == "redis")
	RedisURL string `toml:"redis_url,omitempty"`

	// SQLite-specific fields (only used when Type == "sqlite")
	DataDir string `toml:"data_dir,omitempty"`
}

// RetentionConfig overrides the per-tier retention windows, in days.
// Zero values keep the built-in defaults.
type RetentionConfig struct {
	Free       int `toml:"free,omitempty"`
	User       int `toml:"user,omitempty"`
	Team       int `toml:"team,omitempty"`
	Enterprise int `toml:"enterprise,omitempty"`
}

// NewConfig creates a Config with defaults rooted at baseDir.
func NewConfig(host, baseDir string) *Config {
	return &Config{
		ScreenshotHost: host,
		LogDir:         filepath.Join(baseDir, "log"),
		ObjectStore: ObjectStoreConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "objects"),
		},
		KV: KVConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
