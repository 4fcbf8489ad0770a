// Package config loads the client configuration: a properties file named on the command
// line, overridden by BOFH_ prefixed environment variables and .env files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"bofhshell/internal/logger"
)

// Configuration keys as they appear in the properties file.
const (
	KeyURL         = "bofhd_url"
	KeyPrompt      = "console_prompt"
	KeyHistoryFile = "history_file"
	KeyCAFile      = "ca_file"
	KeyLogLevel    = "log_level"
)

// EnvPrefix prefixes every environment override, e.g. BOFH_BOFHD_URL.
const EnvPrefix = "BOFH"

const (
	defaultPrompt      = "jbofh> "
	defaultHistoryFile = "~/.bofh_history"
)

// ErrMissingURL is returned when no server URL is configured.
var ErrMissingURL = errors.New("bofhd_url is not set")

// Config is the resolved client configuration.
type Config struct {
	// URL is the XML-RPC endpoint of the server.
	URL         string
	Prompt      string
	HistoryFile string
	// CAFile, when set, replaces the system roots for TLS verification.
	CAFile   string
	LogLevel string
}

// Load reads the properties file at path. A .env file next to it and one in the working
// directory are loaded into the environment first; variables already set win.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("no config file given")
	}
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	if wd, err := os.Getwd(); err == nil {
		if err := loadDotEnv(filepath.Join(wd, ".env")); err != nil {
			return nil, err
		}
	}

	v := viper.NewWithOptions(viper.WithCodecRegistry(newCodecRegistry()))
	v.SetConfigFile(path)
	v.SetConfigType(propertiesFormat)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyPrompt, defaultPrompt)
	v.SetDefault(KeyHistoryFile, defaultHistoryFile)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	logger.Debug("Config loaded", "file", v.ConfigFileUsed())

	cfg := &Config{
		URL:         strings.TrimSpace(v.GetString(KeyURL)),
		Prompt:      v.GetString(KeyPrompt),
		HistoryFile: expandHome(v.GetString(KeyHistoryFile)),
		CAFile:      expandHome(v.GetString(KeyCAFile)),
		LogLevel:    strings.ToLower(v.GetString(KeyLogLevel)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the server URL is set and uses http or https.
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrMissingURL
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid bofhd_url %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid bofhd_url %q: scheme must be http or https", c.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid bofhd_url %q: missing host", c.URL)
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		// A missing .env file is not an error
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	logger.Debug("Loaded environment file", "path", path)
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
