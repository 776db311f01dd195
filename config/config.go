// Package config provides YAML configuration loading for the codec
// service and CLI.
//
// Configuration is loaded from a single file named either by the
// TXCODEC_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no per-field environment
// override. Unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/blockberries/txcodec/docfmt"
	"github.com/blockberries/txcodec/server"
	"github.com/blockberries/txcodec/types"
	"github.com/blockberries/txcodec/x/bank"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable read by Load.
const EnvVar = "TXCODEC_CONFIG"

// modules maps module names to their registration functions.
var modules = map[string]func(*types.InterfaceRegistry) error{
	"bank": bank.RegisterInterfaces,
}

// Config is the master configuration.
type Config struct {
	// Listen is the gRPC listen address of the serve command.
	Listen string `yaml:"listen"`

	Log    LogConfig    `yaml:"log"`
	Codec  CodecConfig  `yaml:"codec"`
	Output OutputConfig `yaml:"output"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is "console" for human output or "json".
	// Default: console
	Format string `yaml:"format"`
}

// CodecConfig configures the codec service.
type CodecConfig struct {
	// MaxMessageBytes bounds a single request payload.
	// Default: server.DefaultMaxMessageBytes
	MaxMessageBytes int `yaml:"max_message_bytes"`

	// Modules lists the message modules to register.
	// Default: [bank]
	Modules []string `yaml:"modules"`
}

// OutputConfig configures how the CLI prints documents.
type OutputConfig struct {
	// Format is json, yaml or cbor.
	// Default: json
	Format string `yaml:"format"`
}

// Default returns the default configuration. Loaded files are merged
// over it.
func Default() *Config {
	return &Config{
		Listen: "127.0.0.1:9090",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Codec: CodecConfig{
			MaxMessageBytes: server.DefaultMaxMessageBytes,
			Modules:         []string{"bank"},
		},
		Output: OutputConfig{
			Format: string(docfmt.JSON),
		},
	}
}

// Load loads configuration from the file named by TXCODEC_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your config file, or use --config flag", EnvVar)
	}
	return LoadFile(path)
}

// LoadFile loads and validates configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown formats, levels and modules.
func (c *Config) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil || c.Log.Level == "" {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: must be console or json, got %q", c.Log.Format))
	}
	if c.Codec.MaxMessageBytes <= 0 {
		errs = append(errs, fmt.Errorf("codec.max_message_bytes: must be positive, got %d", c.Codec.MaxMessageBytes))
	}
	for _, m := range c.Codec.Modules {
		if _, ok := modules[m]; !ok {
			errs = append(errs, fmt.Errorf("codec.modules: unknown module %q (supported: %s)", m, strings.Join(Modules(), ", ")))
		}
	}
	if _, err := docfmt.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	return errors.Join(errs...)
}

// Modules returns the supported module names in sorted order.
func Modules() []string {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Registry builds an interface registry with the public keys and the
// configured modules registered.
func (c *Config) Registry() (*types.InterfaceRegistry, error) {
	reg := types.NewInterfaceRegistry()
	if err := types.RegisterPublicKeys(reg); err != nil {
		return nil, err
	}
	for _, m := range c.Codec.Modules {
		register, ok := modules[m]
		if !ok {
			return nil, fmt.Errorf("config: unknown module %q", m)
		}
		if err := register(reg); err != nil {
			return nil, fmt.Errorf("config: module %s: %w", m, err)
		}
	}
	return reg, nil
}

// Logger builds the configured logger writing to w.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if c.Log.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// OutputFormat returns the configured document format.
func (c *Config) OutputFormat() docfmt.Format {
	f, err := docfmt.ParseFormat(c.Output.Format)
	if err != nil {
		return docfmt.JSON
	}
	return f
}
