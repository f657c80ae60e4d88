// Package logging builds and hot-reconfigures the engine's slog logger,
// and exposes that configuration over HTTP so an operator can bump the
// level or redirect output without restarting the process (§4.8).
package logging

import (
	"bytes"
	"fmt"
	"strings"
)

// Defaults applied by WithDefaults when a field is left blank, e.g. in
// a config file that only sets the level.
const (
	DefaultLevel  = "info"
	DefaultFormat = "text"
	DefaultOutput = "stdout"
)

// Config describes where log lines go and how they're formatted.
// Buffer is only populated when Output is "string" and is never
// serialized to JSON -- it lets tests and the config service itself
// inspect emitted lines without touching the filesystem.
type Config struct {
	Level    string        `json:"level"`
	Format   string        `json:"format"`
	Output   string        `json:"output"`
	FilePath string        `json:"filePath,omitempty"`
	Buffer   *bytes.Buffer `json:"-"`
}

// DefaultConfig is what a fresh supervisor starts with before any
// config document overrides it.
func DefaultConfig() Config {
	return Config{
		Level:  DefaultLevel,
		Format: DefaultFormat,
		Output: DefaultOutput,
	}
}

// WithDefaults fills blank fields with the package defaults.
func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.Level) == "" {
		c.Level = DefaultLevel
	}
	if strings.TrimSpace(c.Format) == "" {
		c.Format = DefaultFormat
	}
	if strings.TrimSpace(c.Output) == "" {
		c.Output = DefaultOutput
	}
	return c
}

// Normalize lowercases the string fields and drops whichever of
// FilePath/Buffer doesn't apply to the chosen output, so a PUT that
// switches from file to stdout doesn't leave a stale path behind.
func (c Config) Normalize() Config {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	if c.Output != "file" {
		c.FilePath = ""
	}
	if c.Output != "string" {
		c.Buffer = nil
	}
	return c
}

// Validate rejects anything Build wouldn't know how to construct.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}

	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging: unsupported format %q", c.Format)
	}

	switch c.Output {
	case "stdout", "stderr", "file", "string":
	default:
		return fmt.Errorf("logging: unsupported output %q", c.Output)
	}

	if c.Output == "file" && strings.TrimSpace(c.FilePath) == "" {
		return fmt.Errorf("logging: file output requires filePath")
	}
	return nil
}

// normalizeConfig runs the full fill-in/lowercase/validate pipeline
// that both Build and Service.SetConfig need before touching slog.
func normalizeConfig(cfg Config) (Config, error) {
	cfg = cfg.WithDefaults().Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
