package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for ciid.
type Config struct {
	LogDir      string            `toml:"log_dir"`
	Identifier  IdentifierConfig  `toml:"identifier"`
	Fingerprint FingerprintConfig `toml:"fingerprint"`
	Metadata    MetadataConfig    `toml:"metadata"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Filesystem  FilesystemConfig  `toml:"filesystem"`
}

// IdentifierConfig controls how identifiers are encoded.
// Changing any of these changes every identifier, so they should be set once per collection.
type IdentifierConfig struct {
	Scheme          string `toml:"scheme"`           // "decimal" (default) or "base32"
	TimestampDigits *int   `toml:"timestamp_digits"` // minimum width of a decimal timestamp; nil means 14
	Alphabet        string `toml:"alphabet,omitempty"`
	NoHash          bool   `toml:"no_hash"`
}

// FingerprintConfig controls content fingerprinting.
type FingerprintConfig struct {
	Hash        string `toml:"hash"`     // "sha256" (default) or "blake3"
	Classify    string `toml:"classify"` // "extension" (default) or "content"
	JPEGPattern string `toml:"jpeg_pattern,omitempty"`
}

// MetadataConfig selects where capture timestamps are read from.
// This uses a tagged union pattern - the Source field determines which other fields are relevant.
type MetadataConfig struct {
	Source           string `toml:"source"`                  // "exiftool" (default) or "exif"
	ExifToolPath     string `toml:"exiftool_path,omitempty"` // only used when Source == "exiftool"
	InferZoneFromGPS bool   `toml:"infer_zone_from_gps"`
}

// CatalogConfig represents configuration for the identifier catalog.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type CatalogConfig struct {
	Type    string `toml:"type"`               // "" (disabled), "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// NewConfig creates a new Config with default values rooted at baseDir.
func NewConfig(baseDir string) *Config {
	digits := 14
	return &Config{
		LogDir: filepath.Join(baseDir, "log"),
		Identifier: IdentifierConfig{
			Scheme:          "decimal",
			TimestampDigits: &digits,
		},
		Fingerprint: FingerprintConfig{
			Hash:     "sha256",
			Classify: "extension",
		},
		Metadata: MetadataConfig{
			Source:       "exiftool",
			ExifToolPath: "exiftool",
		},
		Catalog: CatalogConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "catalog"),
		},
		Filesystem: FilesystemConfig{
			Ignore: []string{"*.xmp", ".DS_Store"},
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

// Load reads the config at path, falling back to NewConfig(baseDir) when the
// file does not exist. Fields left empty in the file keep their defaults.
func Load(path, baseDir string) (*Config, error) {
	defaults := NewConfig(baseDir)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	// Decoding over the defaults leaves unset keys untouched.
	if _, err := toml.NewDecoder(f).Decode(defaults); err != nil {
		return nil, fmt.Errorf("reading config from %s: failed to decode config: %w", path, err)
	}
	return defaults, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
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
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Digits returns the configured timestamp width, defaulting to 14.
func (c IdentifierConfig) Digits() int {
	if c.TimestampDigits == nil {
		return 14
	}
	return *c.TimestampDigits
}
