package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/blendin/extractor/pkg/artifact"
	"github.com/blendin/extractor/pkg/digest"
)

// EnvPrefix matches the variables GitHub Actions exports for action inputs.
const EnvPrefix = "INPUT"

// DefaultProjectFile is where the project settings live, relative to the working directory.
const DefaultProjectFile = "./src/blendin.json"

// Config holds all application configuration.
type Config struct {
	SourcePath  string        `mapstructure:"source_path"`
	OutputPath  string        `mapstructure:"output_path"`
	Marker      string        `mapstructure:"marker"`
	TextField   string        `mapstructure:"text_field"`
	Digest      string        `mapstructure:"digest"`
	Workers     int           `mapstructure:"workers"`
	Exclude     []string      `mapstructure:"exclude"`
	Include     []string      `mapstructure:"include"`
	MaxFileSize int64         `mapstructure:"max_file_size"`
	CacheSize   int           `mapstructure:"cache_size"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ProjectFile string        `mapstructure:"project_file"`
	Upload      bool          `mapstructure:"upload"`
	Log         LogConfig     `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func setDefaults(v *viper.Viper) {
	v.SetDefault("source_path", "")
	v.SetDefault("output_path", artifact.DefaultPath)
	v.SetDefault("marker", "t")
	v.SetDefault("text_field", "text")
	v.SetDefault("digest", string(digest.DefaultAlgorithm))
	v.SetDefault("workers", 0)
	v.SetDefault("exclude", []string{})
	v.SetDefault("include", []string{})
	v.SetDefault("max_file_size", 0)
	v.SetDefault("cache_size", 4096)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("project_file", DefaultProjectFile)
	v.SetDefault("upload", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks configuration. Unusable values are returned as an error,
// questionable ones as warnings.
func (c *Config) Validate() ([]string, error) {
	var (
		warnings []string
		errs     []error
	)

	if strings.TrimSpace(c.SourcePath) == "" {
		errs = append(errs, errors.New("source_path is required"))
	}
	if !identifierPattern.MatchString(c.Marker) {
		errs = append(errs, fmt.Errorf("marker %q is not a valid identifier", c.Marker))
	}
	if c.TextField == "" {
		errs = append(errs, errors.New("text_field must not be empty"))
	}
	if _, err := digest.ParseAlgorithm(c.Digest); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be text or json", c.Log.Format))
	}

	if c.Workers > 1024 {
		warnings = append(warnings, fmt.Sprintf("workers %d exceeds the maximum and will be capped at 1024", c.Workers))
	}
	if c.Workers < 0 {
		warnings = append(warnings, fmt.Sprintf("workers %d is negative, GOMAXPROCS will be used", c.Workers))
	}
	if c.CacheSize < 0 {
		warnings = append(warnings, "cache_size is negative, the parse cache is disabled")
	}
	if c.Timeout < 0 {
		warnings = append(warnings, fmt.Sprintf("timeout %s is negative and will be ignored", c.Timeout))
	}
	if c.MaxFileSize < 0 {
		warnings = append(warnings, "max_file_size is negative, no size limit will be applied")
	}

	return warnings, errors.Join(errs...)
}

// Load reads configuration from an optional file and the environment.
// Environment variables use the INPUT_ prefix, so INPUT_SOURCE_PATH sets
// source_path and INPUT_LOG_LEVEL sets log.level. Overrides, keyed like the
// file, take precedence over both.
func Load(path string, overrides map[string]any) (*Config, error) {
	cfg, err := Read(path, overrides)
	if err != nil {
		return nil, err
	}

	warnings, err := cfg.Validate()
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read resolves configuration like Load without validating it, for
// commands that only need part of it.
func Read(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}
