package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Search      SearchConfig      `toml:"search"`
	Download    DownloadConfig    `toml:"download"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the profile to export.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	UserURL      string `toml:"user_url"`
}

// SearchConfig contains the YouTube Music search endpoint settings.
type SearchConfig struct {
	BaseURL string `toml:"base_url"`
}

// DownloadConfig contains the download pipeline settings.
type DownloadConfig struct {
	ManifestDir  string  `toml:"manifest_dir"`
	OutputRoot   string  `toml:"output_root"`
	Workers      int     `toml:"workers"`
	RateLimit    float64 `toml:"rate_limit"`
	AudioFormat  string  `toml:"audio_format"`
	AudioQuality string  `toml:"audio_quality"`
}

// DatabaseConfig contains database connection settings for the resolve cache.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path,
// then overlays credentials from the environment (and a .env file if present).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.loadEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded
// example config, with environment credentials applied on top.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.loadEnv()
	return &config
}

// loadEnv overlays credentials from a .env file and the process environment.
// Environment values win over TOML so secrets can stay out of config files.
func (c *Config) loadEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_USER_URL"); v != "" {
		c.Credentials.Spotify.UserURL = v
	}
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidInput, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
