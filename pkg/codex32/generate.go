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

package codex32

import (
	"fmt"
	"io"
	"strings"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/entropy"
	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

// Config configures share generation.
type Config struct {
	// Threshold is the number of shares needed, 2..9
	Threshold int

	// TotalShares is the number of shares to produce, at most 31
	TotalShares int

	// Identifier is a 4 character label. A random one is drawn when empty.
	Identifier string

	// Rand supplies the identifier and the random shares. Defaults to
	// crypto/rand.
	Rand io.Reader
}

// MaxShares is the number of non-secret share indices.
const MaxShares = len(ShareIndices)

func validateSecret(secret []byte) error {
	if len(secret) < MinSecretLength || len(secret) > MaxSecretLength {
		return types.Malformed(format, "secret must be %d to %d bytes, got %d",
			MinSecretLength, MaxSecretLength, len(secret))
	}
	return nil
}

func validateIdentifier(id string) error {
	if len(id) != IdentifierLength {
		return types.Malformed(format, "identifier must be %d characters", IdentifierLength)
	}
	for i := 0; i < len(id); i++ {
		if _, ok := charValue(id[i]); !ok {
			return types.Malformed(format, "invalid identifier character %q", id[i])
		}
	}
	return nil
}

func randomIdentifier(rng io.Reader) (string, error) {
	var b [IdentifierLength]byte
	if err := entropy.Read(rng, b[:]); err != nil {
		return "", err
	}
	id := make([]byte, IdentifierLength)
	for i, v := range b {
		id[i] = Charset[v&31]
	}
	return string(id), nil
}

// EncodeSecret returns the threshold 0 string holding secret unshared.
func EncodeSecret(secret []byte, id string) (*Share, error) {
	if err := validateSecret(secret); err != nil {
		return nil, err
	}
	id = strings.ToLower(id)
	if err := validateIdentifier(id); err != nil {
		return nil, err
	}
	return newShare(0, id, SecretIndex, secret)
}

func newShare(threshold int, id string, index byte, payload []byte) (*Share, error) {
	symbols, _ := convertBits(payload, 8, 5, true)
	defer secure.Zero(symbols)
	encoded, err := encode(threshold, id, index, symbols)
	if err != nil {
		return nil, err
	}
	return &Share{
		Threshold:  threshold,
		Identifier: id,
		Index:      index,
		Payload:    secure.Clone(payload),
		Encoded:    encoded,
	}, nil
}

// GenerateShares splits secret into TotalShares codex32 strings. The secret
// share 's' fixes the polynomial together with Threshold-1 random shares at
// indices a, c, d and so on; the remaining shares are interpolated, which
// keeps their checksums valid.
func GenerateShares(secret []byte, cfg *Config) ([]*Share, error) {
	if cfg == nil {
		return nil, fmt.Errorf("codex32: config cannot be nil")
	}
	if err := validateSecret(secret); err != nil {
		return nil, err
	}
	if cfg.Threshold < 2 || cfg.Threshold > MaxThreshold {
		return nil, fmt.Errorf("%w: threshold must be between 2 and %d, got %d",
			types.ErrInvalidThreshold, MaxThreshold, cfg.Threshold)
	}
	if cfg.TotalShares > MaxShares {
		return nil, fmt.Errorf("%w: at most %d shares, got %d", types.ErrInvalidThreshold, MaxShares, cfg.TotalShares)
	}
	if cfg.Threshold > cfg.TotalShares {
		return nil, fmt.Errorf("%w: threshold %d, total shares %d",
			types.ErrThresholdExceedsShares, cfg.Threshold, cfg.TotalShares)
	}

	id := strings.ToLower(cfg.Identifier)
	if id == "" {
		var err error
		if id, err = randomIdentifier(cfg.Rand); err != nil {
			return nil, err
		}
	}
	if err := validateIdentifier(id); err != nil {
		return nil, err
	}

	secretShare, err := newShare(cfg.Threshold, id, SecretIndex, secret)
	if err != nil {
		return nil, err
	}
	defer secure.Zero(secretShare.Payload)

	base := []*Share{secretShare}
	random := make([]byte, len(secret))
	defer secure.Zero(random)
	for i := 0; i < cfg.Threshold-1; i++ {
		if err := entropy.Read(cfg.Rand, random); err != nil {
			return nil, err
		}
		s, err := newShare(cfg.Threshold, id, ShareIndices[i], random)
		if err != nil {
			return nil, err
		}
		base = append(base, s)
	}

	shares := make([]*Share, 0, cfg.TotalShares)
	shares = append(shares, base[1:]...)
	for i := cfg.Threshold - 1; i < cfg.TotalShares; i++ {
		s, err := interpolateShare(base, ShareIndices[i])
		if err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, nil
}

// interpolateShare derives the share at index from shares of one set.
func interpolateShare(shares []*Share, index byte) (*Share, error) {
	values := make([][]byte, len(shares))
	xs := make([]byte, len(shares))
	for i, s := range shares {
		values[i] = stringToSymbols(s.Encoded[len(Prefix):])
		xs[i], _ = charValue(s.Index)
	}
	target, _ := charValue(index)
	out := interpolate(values, xs, target)
	defer secure.Zero(out)
	for _, v := range values {
		secure.Zero(v)
	}
	return ParseShare(Prefix + symbolsToString(out))
}

// CombineShares recovers the secret from at least threshold shares of one
// set. A secret share 's' is returned directly.
func CombineShares(shares []*Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares supplied", types.ErrInsufficientShares)
	}

	first := shares[0]
	seen := make(map[byte]bool, len(shares))
	for _, s := range shares {
		if s == nil {
			return nil, fmt.Errorf("%w: nil share", types.ErrMismatchedShares)
		}
		if s.Threshold != first.Threshold || s.Identifier != first.Identifier {
			return nil, fmt.Errorf("%w: shares belong to different sets", types.ErrMismatchedShares)
		}
		if len(s.Encoded) != len(first.Encoded) {
			return nil, fmt.Errorf("%w: shares have different lengths", types.ErrMismatchedShares)
		}
		if seen[s.Index] {
			return nil, fmt.Errorf("%w: duplicate share index %q", types.ErrMismatchedShares, s.Index)
		}
		seen[s.Index] = true
	}

	for _, s := range shares {
		if s.IsSecret() {
			return secure.Clone(s.Payload), nil
		}
	}

	if len(shares) < first.Threshold {
		return nil, fmt.Errorf("%w: need %d, got %d", types.ErrInsufficientShares, first.Threshold, len(shares))
	}

	secret, err := interpolateShare(shares[:first.Threshold], SecretIndex)
	if err != nil {
		return nil, err
	}
	return secret.Payload, nil
}
