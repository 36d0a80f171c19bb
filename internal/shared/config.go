package shared

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// APIKeyEnv overrides [LastFMConfig.APIKey] when set.
const APIKeyEnv = "LASTFM_API_KEY"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	LastFM   LastFMConfig   `toml:"lastfm"`
	Tagging  TaggingConfig  `toml:"tagging"`
	Library  LibraryConfig  `toml:"library"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// LastFMConfig contains web service settings.
type LastFMConfig struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	MinDelayMS     int    `toml:"min_delay_ms"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TaggingConfig contains the tag filtering and genre formatting options.
//
// UseTrackTags and UseArtistTags are kept as configuration surface; all three lookups run regardless.
type TaggingConfig struct {
	MinTagUsage    int    `toml:"min_tag_usage"`
	JoinTags       string `toml:"join_tags"`
	UseTrackTags   bool   `toml:"use_track_tags"`
	UseArtistTags  bool   `toml:"use_artist_tags"`
	IgnoreTagsPath string `toml:"ignore_tags_path"`
	GenreField     string `toml:"genre_field"`
}

// LibraryConfig contains settings for batch tagging of audio files.
type LibraryConfig struct {
	Workers    int      `toml:"workers"`
	Extensions []string `toml:"extensions"`
	DryRun     bool     `toml:"dry_run"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// MinDelay is the minimum spacing between two requests to the same host:port.
func (c LastFMConfig) MinDelay() time.Duration {
	return time.Duration(c.MinDelayMS) * time.Millisecond
}

// Timeout is the per-request HTTP timeout.
func (c LastFMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig reads a TOML configuration file from the specified path and overlays it on [DefaultConfig].
//
// Keys that do not map to a configuration field are rejected with [ErrInvalidConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	md, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}

	config.ApplyEnv()
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv() {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		c.LastFM.APIKey = key
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.LastFM.APIKey == "" || c.LastFM.APIKey == "your_lastfm_api_key":
		return fmt.Errorf("%w: set lastfm.api_key or %s", ErrMissingCredentials, APIKeyEnv)
	case c.LastFM.BaseURL == "":
		return fmt.Errorf("%w: lastfm.base_url is empty", ErrInvalidConfig)
	case c.LastFM.MinDelayMS < 0:
		return fmt.Errorf("%w: lastfm.min_delay_ms must not be negative", ErrInvalidConfig)
	case c.LastFM.TimeoutSeconds <= 0:
		return fmt.Errorf("%w: lastfm.timeout_seconds must be positive", ErrInvalidConfig)
	case c.Tagging.MinTagUsage < 0:
		return fmt.Errorf("%w: tagging.min_tag_usage must not be negative", ErrInvalidConfig)
	case c.Tagging.GenreField == "":
		return fmt.Errorf("%w: tagging.genre_field is empty", ErrInvalidConfig)
	case c.Library.Workers <= 0:
		return fmt.Errorf("%w: library.workers must be positive", ErrInvalidConfig)
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
