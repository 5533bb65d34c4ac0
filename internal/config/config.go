// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keyshare.
//
// go-keyshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads the keyshare CLI configuration.
//
// Values are resolved by viper in the usual order: command line flag,
// KEYSHARE_* environment variable, configuration file, default. The file
// defaults to $HOME/.keyshare.yaml and is optional. Nested keys map to
// environment variables with dots replaced by underscores, so
// entropy.pkcs11.pin is read from KEYSHARE_ENTROPY_PKCS11_PIN.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-keyshare/pkg/codex32"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/entropy"
	"github.com/jeremyhahn/go-keyshare/pkg/logging"
	"github.com/jeremyhahn/go-keyshare/pkg/slip39"
)

const (
	// EnvPrefix prefixes every environment override
	EnvPrefix = "KEYSHARE"

	// DefaultFileName is looked up in the home directory when no file is given
	DefaultFileName = ".keyshare.yaml"
)

// Config represents the complete CLI configuration
type Config struct {
	Output  string        `mapstructure:"output" yaml:"output" json:"output"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
	Entropy EntropyConfig `mapstructure:"entropy" yaml:"entropy" json:"entropy"`
	SLIP39  SLIP39Config  `mapstructure:"slip39" yaml:"slip39" json:"slip39"`
	Codex32 Codex32Config `mapstructure:"codex32" yaml:"codex32" json:"codex32"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// MetricsConfig controls metrics collection
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`

	// Textfile receives the metrics in Prometheus text format on exit
	Textfile string `mapstructure:"textfile" yaml:"textfile" json:"textfile"`
}

// EntropyConfig selects the random source used for splitting
type EntropyConfig struct {
	Mode     string       `mapstructure:"mode" yaml:"mode" json:"mode"`
	Fallback string       `mapstructure:"fallback" yaml:"fallback" json:"fallback"`
	TPM2     TPM2Config   `mapstructure:"tpm2" yaml:"tpm2" json:"tpm2"`
	PKCS11   PKCS11Config `mapstructure:"pkcs11" yaml:"pkcs11" json:"pkcs11"`
}

// TPM2Config contains TPM 2.0 RNG settings
type TPM2Config struct {
	Device         string `mapstructure:"device" yaml:"device" json:"device"`
	MaxRequestSize int    `mapstructure:"max_request_size" yaml:"max_request_size" json:"max_request_size"`
	Simulator      string `mapstructure:"simulator" yaml:"simulator,omitempty" json:"simulator,omitempty"`
}

// PKCS11Config contains PKCS#11 RNG settings
type PKCS11Config struct {
	Module string `mapstructure:"module" yaml:"module,omitempty" json:"module,omitempty"`
	SlotID uint   `mapstructure:"slot_id" yaml:"slot_id" json:"slot_id"`
	PIN    string `mapstructure:"pin" yaml:"-" json:"-"`
}

// SLIP39Config holds SLIP-39 split defaults
type SLIP39Config struct {
	IterationExponent int  `mapstructure:"iteration_exponent" yaml:"iteration_exponent" json:"iteration_exponent"`
	Extendable        bool `mapstructure:"extendable" yaml:"extendable" json:"extendable"`
}

// Codex32Config holds codex32 split defaults
type Codex32Config struct {
	// Identifier is used for every split when set, otherwise one is drawn
	// at random per split
	Identifier string `mapstructure:"identifier" yaml:"identifier,omitempty" json:"identifier,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Output: "text",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Entropy: EntropyConfig{
			Mode: string(entropy.ModeAuto),
			TPM2: TPM2Config{
				Device:         "/dev/tpmrm0",
				MaxRequestSize: 32,
			},
		},
		SLIP39: SLIP39Config{
			IterationExponent: slip39.DefaultIterationExponent,
			Extendable:        true,
		},
	}
}

// flagBindings maps configuration keys to the CLI flags that override them.
var flagBindings = map[string]string{
	"output":           "output",
	"logging.level":    "log-level",
	"entropy.mode":     "rng",
	"metrics.textfile": "metrics-file",
}

// Load resolves the configuration. path names the configuration file; when
// empty $HOME/.keyshare.yaml is used if it exists. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, DefaultFileName))
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// setDefaults registers every key of def so environment variables resolve
// during Unmarshal.
func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("output", def.Output)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.textfile", def.Metrics.Textfile)
	v.SetDefault("entropy.mode", def.Entropy.Mode)
	v.SetDefault("entropy.fallback", def.Entropy.Fallback)
	v.SetDefault("entropy.tpm2.device", def.Entropy.TPM2.Device)
	v.SetDefault("entropy.tpm2.max_request_size", def.Entropy.TPM2.MaxRequestSize)
	v.SetDefault("entropy.tpm2.simulator", def.Entropy.TPM2.Simulator)
	v.SetDefault("entropy.pkcs11.module", def.Entropy.PKCS11.Module)
	v.SetDefault("entropy.pkcs11.slot_id", def.Entropy.PKCS11.SlotID)
	v.SetDefault("entropy.pkcs11.pin", def.Entropy.PKCS11.PIN)
	v.SetDefault("slip39.iteration_exponent", def.SLIP39.IterationExponent)
	v.SetDefault("slip39.extendable", def.SLIP39.Extendable)
	v.SetDefault("codex32.identifier", def.Codex32.Identifier)
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	switch strings.ToLower(c.Output) {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", c.Output)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch logging.Format(strings.ToLower(c.Logging.Format)) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	if _, err := entropy.ParseMode(c.Entropy.Mode); err != nil {
		return err
	}
	if c.Entropy.Fallback != "" {
		if _, err := entropy.ParseMode(c.Entropy.Fallback); err != nil {
			return fmt.Errorf("fallback: %w", err)
		}
	}
	if c.Entropy.Mode == string(entropy.ModePKCS11) && c.Entropy.PKCS11.Module == "" {
		return fmt.Errorf("entropy.pkcs11.module is required when entropy mode is pkcs11")
	}
	if c.Entropy.TPM2.MaxRequestSize < 0 {
		return fmt.Errorf("invalid entropy.tpm2.max_request_size: %d", c.Entropy.TPM2.MaxRequestSize)
	}

	if e := c.SLIP39.IterationExponent; e < 0 || e >= 1<<slip39.IterationExponentBits {
		return fmt.Errorf("invalid slip39.iteration_exponent: %d (must be 0-%d)",
			e, 1<<slip39.IterationExponentBits-1)
	}

	if id := c.Codex32.Identifier; id != "" {
		if len(id) != codex32.IdentifierLength {
			return fmt.Errorf("invalid codex32.identifier %q: must be %d characters", id, codex32.IdentifierLength)
		}
		for _, r := range strings.ToLower(id) {
			if !strings.ContainsRune(codex32.Charset, r) {
				return fmt.Errorf("invalid codex32.identifier %q: %q is not a bech32 character", id, r)
			}
		}
	}
	return nil
}

// EntropyResolver opens the configured random source. The caller closes it.
func (c *Config) EntropyResolver() (entropy.Resolver, error) {
	mode, err := entropy.ParseMode(c.Entropy.Mode)
	if err != nil {
		return nil, err
	}
	ecfg := &entropy.Config{
		Mode:         mode,
		FallbackMode: entropy.Mode(c.Entropy.Fallback),
		TPM2: &entropy.TPM2Config{
			Device:           c.Entropy.TPM2.Device,
			MaxRequestSize:   c.Entropy.TPM2.MaxRequestSize,
			SimulatorAddress: c.Entropy.TPM2.Simulator,
		},
	}
	if c.Entropy.PKCS11.Module != "" {
		ecfg.PKCS11 = &entropy.PKCS11Config{
			Module: c.Entropy.PKCS11.Module,
			SlotID: c.Entropy.PKCS11.SlotID,
			PIN:    c.Entropy.PKCS11.PIN,
		}
	}
	return entropy.NewResolver(ecfg)
}

// Logger builds the configured logger writing to w. verbose forces debug.
func (c *Config) Logger(w io.Writer, verbose bool) logging.Logger {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.LevelWarn
	}
	if verbose {
		level = logging.LevelDebug
	}
	return logging.NewSlogAdapter(&logging.SlogConfig{
		Level:  level,
		Format: logging.Format(strings.ToLower(c.Logging.Format)),
		Output: w,
	})
}

// Save writes the configuration to path as YAML. Secrets such as the
// PKCS#11 PIN are not written.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
