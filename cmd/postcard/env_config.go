package main

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/alnah/go-postcard/internal/config"
)

// envPrefix namespaces every variable read by the CLI.
const envPrefix = "POSTCARD_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        `env:"CONFIG"`  // config file name or path
	Styles     string        `env:"STYLES"`  // stylesheet path
	Timeout    time.Duration `env:"TIMEOUT"` // conversion timeout
	Endpoint   string        `env:"ENDPOINT"`

	// Test send
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	From         string `env:"FROM"`
}

// knownEnvVars lists valid POSTCARD_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"POSTCARD_CONFIG":                 true,
	"POSTCARD_STYLES":                 true,
	"POSTCARD_TIMEOUT":                true,
	"POSTCARD_ENDPOINT":               true,
	"POSTCARD_POSTMARK_SERVER_TOKEN":  true,
	"POSTCARD_POSTMARK_ACCOUNT_TOKEN": true,
	"POSTCARD_FROM":                   true,
}

// environMap merges the dotenv file at dotEnvPath under environ: a variable
// set in the process environment always wins over the file.
// A missing dotenv file is not an error.
func environMap(environ []string, dotEnvPath string) (map[string]string, error) {
	vars := make(map[string]string)

	if dotEnvPath != "" {
		fileVars, err := godotenv.Read(dotEnvPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidEnv, dotEnvPath, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	return vars, nil
}

// loadEnvConfig reads configuration from the merged environment.
// Returns ErrInvalidEnv when a value cannot be parsed, or when the timeout
// is not positive.
func loadEnvConfig(vars map[string]string) (*envConfig, error) {
	var cfg envConfig
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      envPrefix,
		Environment: vars,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnv, err)
	}

	if _, set := vars[envPrefix+"TIMEOUT"]; set && cfg.Timeout <= 0 {
		return nil, fmt.Errorf("%w: %sTIMEOUT must be positive, got %s", ErrInvalidEnv, envPrefix, cfg.Timeout)
	}

	return &cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized POSTCARD_* variables.
// Helps catch typos like POSTCARD_STYLE instead of POSTCARD_STYLES.
func warnUnknownEnvVars(log *zap.Logger, vars map[string]string) {
	var unknown []string
	for name := range vars {
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)

	for _, name := range unknown {
		log.Warn("unknown environment variable (typo?)", zap.String("name", name))
	}
}

// applyEnvConfig applies environment variable values over the config file.
// Precedence: CLI flags > env vars > config file > defaults.
// CLI flags are applied later via mergeFlags, the timeout in resolveTimeout.
func applyEnvConfig(e *envConfig, cfg *config.Config) {
	if e.Styles != "" {
		cfg.Styles = e.Styles
	}
	if e.Endpoint != "" {
		cfg.Inliner.Endpoint = e.Endpoint
	}
	if e.From != "" {
		cfg.Send.From = e.From
	}
}
