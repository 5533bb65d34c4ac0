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

// Package entropy selects the cryptographically secure random source used to
// draw polynomial coefficients, share identifiers and digest randomness.
//
// The random source is part of the security contract of secret sharing: a
// weak or repeated source breaks confidentiality even though shares still
// reconstruct correctly. Every Resolver returned here is backed by a CSPRNG.
//
// # Sources
//
//   - Software: crypto/rand from the Go standard library (always available)
//   - TPM2: TPM2_GetRandom on a TPM 2.0 device or simulator (build tag "tpm2")
//   - PKCS11: C_GenerateRandom on an HSM slot (build tag "pkcs11")
//   - Auto: the first available hardware source, otherwise software
//
// # Usage
//
//	rng, err := entropy.NewResolver(&entropy.Config{Mode: entropy.ModeAuto})
//	if err != nil {
//	    return err
//	}
//	defer rng.Close()
//
//	shares, err := secretsharing.SplitSecret(secret, &secretsharing.ShareConfig{
//	    Threshold:   3,
//	    TotalShares: 5,
//	    Rand:        rng,
//	})
//
// All Resolver implementations are safe for concurrent use.
package entropy

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Mode selects a random source.
type Mode string

const (
	// ModeAuto prefers PKCS#11, then TPM2, then software.
	ModeAuto Mode = "auto"

	// ModeSoftware uses crypto/rand.
	ModeSoftware Mode = "software"

	// ModeTPM2 uses the TPM 2.0 hardware RNG.
	ModeTPM2 Mode = "tpm2"

	// ModePKCS11 uses a PKCS#11 token RNG.
	ModePKCS11 Mode = "pkcs11"
)

// Modes lists every supported mode in preference order.
var Modes = []Mode{ModeAuto, ModeSoftware, ModeTPM2, ModePKCS11}

// Config contains random source configuration.
type Config struct {
	// Mode is the primary source. Defaults to ModeAuto.
	Mode Mode

	// FallbackMode is used when the primary source fails a read.
	FallbackMode Mode

	// TPM2 configures the TPM2 source
	TPM2 *TPM2Config

	// PKCS11 configures the PKCS#11 source
	PKCS11 *PKCS11Config
}

// TPM2Config configures the TPM2 source.
type TPM2Config struct {
	// Device is the TPM character device (default /dev/tpmrm0)
	Device string

	// MaxRequestSize bounds a single TPM2_GetRandom request (default 32)
	MaxRequestSize int

	// SimulatorAddress connects to a TCP simulator (swtpm) instead of Device
	// when set, e.g. "localhost:2321". The platform port is the next port.
	SimulatorAddress string
}

// PKCS11Config configures the PKCS#11 source.
type PKCS11Config struct {
	// Module is the path to the PKCS#11 shared library
	Module string

	// SlotID is the token slot providing the RNG
	SlotID uint

	// PIN logs in to the token when non-empty
	PIN string
}

// Resolver is a random source. It implements io.Reader so it can be passed
// anywhere crypto/rand.Reader is accepted.
type Resolver interface {
	io.Reader

	// Mode reports which source actually serves reads.
	Mode() Mode

	// Available reports whether the source can serve reads.
	Available() bool

	// Close releases device handles.
	Close() error
}

// NewResolver returns a Resolver for cfg. A nil cfg selects ModeAuto.
func NewResolver(cfg *Config) (Resolver, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	primary, err := newSource(cfg.Mode, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.FallbackMode == "" || cfg.FallbackMode == primary.Mode() {
		return primary, nil
	}
	fallback, err := newSource(cfg.FallbackMode, cfg)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("entropy: fallback source: %w", err)
	}
	return &fallbackResolver{primary: primary, fallback: fallback}, nil
}

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("entropy: unknown mode: %s", s)
}

func newSource(mode Mode, cfg *Config) (Resolver, error) {
	switch mode {
	case ModeAuto, "":
		return newAutoSource(cfg)
	case ModeSoftware:
		return Software(), nil
	case ModeTPM2:
		return newTPM2Source(cfg.TPM2)
	case ModePKCS11:
		return newPKCS11Source(cfg.PKCS11)
	default:
		return nil, fmt.Errorf("entropy: unknown mode: %s", mode)
	}
}

func newAutoSource(cfg *Config) (Resolver, error) {
	if pkcs11Compiled() && cfg.PKCS11 != nil {
		if src, err := newPKCS11Source(cfg.PKCS11); err == nil {
			return src, nil
		}
	}
	if tpm2Compiled() {
		if src, err := newTPM2Source(cfg.TPM2); err == nil {
			return src, nil
		}
	}
	return Software(), nil
}

// Software returns the crypto/rand backed resolver.
func Software() Resolver {
	return softwareSource{}
}

type softwareSource struct{}

func (softwareSource) Read(p []byte) (int, error) { return rand.Read(p) }
func (softwareSource) Mode() Mode                 { return ModeSoftware }
func (softwareSource) Available() bool            { return true }
func (softwareSource) Close() error               { return nil }

type fallbackResolver struct {
	primary  Resolver
	fallback Resolver
}

func (f *fallbackResolver) Read(p []byte) (int, error) {
	n, err := io.ReadFull(f.primary, p)
	if err == nil {
		return n, nil
	}
	return io.ReadFull(f.fallback, p)
}

func (f *fallbackResolver) Mode() Mode {
	if f.primary.Available() {
		return f.primary.Mode()
	}
	return f.fallback.Mode()
}

func (f *fallbackResolver) Available() bool {
	return f.primary.Available() || f.fallback.Available()
}

func (f *fallbackResolver) Close() error {
	err := f.primary.Close()
	if ferr := f.fallback.Close(); err == nil {
		err = ferr
	}
	return err
}

// Read fills p from r, failing on short reads. It is the single place the
// engine draws randomness from.
func Read(r io.Reader, p []byte) error {
	if r == nil {
		r = Software()
	}
	if _, err := io.ReadFull(r, p); err != nil {
		return fmt.Errorf("entropy: read %d random bytes: %w", len(p), err)
	}
	return nil
}
