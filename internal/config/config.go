// Package config loads and validates the postcard YAML configuration.
package config

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-postcard/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength    = 4096     // Stylesheet and preview paths
	MaxAffixLength   = 64 << 10 // Prefix/suffix template markers
	MaxURLLength     = 2048     // Browser limit
	MaxEmailLength   = 254      // RFC 5321
	MaxSubjectLength = 998      // RFC 5322 line limit
)

// configDirName is the directory searched under the user config dir.
const configDirName = "go-postcard"

// Config holds the defaults applied to every conversion.
// CLI flags and environment variables take precedence over these values.
type Config struct {
	Styles    string        `yaml:"styles"`    // Stylesheet path (SCSS, Sass or CSS)
	Plaintext bool          `yaml:"plaintext"` // Emit plain text instead of markup
	Prefix    string        `yaml:"prefix"`    // Literal text before the body
	Suffix    string        `yaml:"suffix"`    // Literal text after the body
	Inliner   InlinerConfig `yaml:"inliner"`
	Preview   PreviewConfig `yaml:"preview"`
	Send      SendConfig    `yaml:"send"`
}

// InlinerConfig defines the remote inline service options.
type InlinerConfig struct {
	Endpoint string `yaml:"endpoint"` // Empty = default service
	Timeout  string `yaml:"timeout"`  // Go duration, e.g. "30s" (empty = default)
}

// PreviewConfig defines screenshot options.
type PreviewConfig struct {
	Output string `yaml:"output"` // PNG path (empty = no preview)
}

// SendConfig defines test send options. Tokens come from the environment.
type SendConfig struct {
	To      string `yaml:"to"`
	From    string `yaml:"from"`
	Subject string `yaml:"subject"`
}

// TimeoutDuration parses Inliner.Timeout. Returns 0 when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Inliner.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Inliner.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: inliner.timeout: %v", ErrInvalidField, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: inliner.timeout: must be positive, got %s", ErrInvalidField, c.Inliner.Timeout)
	}
	return d, nil
}

// Validate checks field lengths and formats.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("styles", c.Styles, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("prefix", c.Prefix, MaxAffixLength); err != nil {
		return err
	}
	if err := validateFieldLength("suffix", c.Suffix, MaxAffixLength); err != nil {
		return err
	}

	// Validate inliner fields
	if err := validateFieldLength("inliner.endpoint", c.Inliner.Endpoint, MaxURLLength); err != nil {
		return err
	}
	if c.Inliner.Endpoint != "" {
		if err := ValidateEndpoint(c.Inliner.Endpoint); err != nil {
			return fmt.Errorf("inliner.endpoint: %w", err)
		}
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	// Validate preview fields
	if err := validateFieldLength("preview.output", c.Preview.Output, MaxPathLength); err != nil {
		return err
	}
	if c.Preview.Output != "" && !fileutil.HasExtension(c.Preview.Output, ".png") {
		return fmt.Errorf("%w: preview.output: must end in .png, got %q", ErrInvalidField, c.Preview.Output)
	}

	// Validate send fields
	if err := validateAddress("send.to", c.Send.To); err != nil {
		return err
	}
	if err := validateAddress("send.from", c.Send.From); err != nil {
		return err
	}
	if err := validateFieldLength("send.subject", c.Send.Subject, MaxSubjectLength); err != nil {
		return err
	}

	return nil
}

// ValidateEndpoint checks that endpoint is an absolute http(s) URL.
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidField, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidField, endpoint)
	}
	return nil
}

// validateAddress checks an optional email address.
func validateAddress(fieldName, value string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxEmailLength); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidField, fieldName, err)
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration: markup output, no
// stylesheet, default inline service.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if strings.ContainsAny(nameOrPath, "/\\") {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := unmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths lists, in order, the files tried when resolving a config name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-postcard/
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	triedPaths := SearchPaths(name)
	for _, p := range triedPaths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
