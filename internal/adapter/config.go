package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig holds object-storage backend configuration
type StorageConfig struct {
	URL        string `mapstructure:"url"`         // Storage API root, e.g. https://xyz.supabase.co/storage/v1
	ServiceKey string `mapstructure:"service_key"` // Bearer key for the storage API
	Bucket     string `mapstructure:"bucket"`      // Bucket holding the dataset files
}

// UIConfig holds UI configuration
type UIConfig struct {
	ExportDir   string `mapstructure:"export_dir"`   // Where local downloads land
	SentenceLen int    `mapstructure:"sentence_len"` // Max sentence chars in the table
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Storage: StorageConfig{},
		UI: UIConfig{
			ExportDir:   filepath.Join(home, "Downloads"),
			SentenceLen: 60,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "annotab", "annotab.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "annotab", "annotab.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "annotab")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "annotab")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "annotab", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "annotab", "cache")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("ANNOTAB")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("storage.url", cfg.Storage.URL)
	viper.Set("storage.service_key", cfg.Storage.ServiceKey)
	viper.Set("storage.bucket", cfg.Storage.Bucket)

	viper.Set("ui.export_dir", cfg.UI.ExportDir)
	viper.Set("ui.sentence_len", cfg.UI.SentenceLen)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the storage URL, key and bucket are set
func (c *Config) IsConfigured() bool {
	return c.Storage.URL != "" && c.Storage.ServiceKey != "" && c.Storage.Bucket != ""
}

// GetCachePath returns the draft cache directory path
func GetCachePath() string {
	return defaultCachePath()
}

// ClearCache removes all locally cached drafts
func ClearCache() error {
	if err := os.RemoveAll(defaultCachePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
