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

package secretsharing

import (
	"fmt"
	"io"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/entropy"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/gf256"
	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

const (
	// MinThreshold is the smallest threshold the engine accepts.
	MinThreshold = 2

	// MaxShares is the largest number of shares a GF(256) split can produce.
	MaxShares = 255
)

// ShareConfig configures secret sharing parameters.
type ShareConfig struct {
	Threshold   int // M - minimum shares needed to reconstruct
	TotalShares int // N - total shares to create

	// Indices overrides the default evaluation points 1..N. When set it must
	// hold TotalShares distinct non-zero values.
	Indices []byte

	// Rand supplies polynomial coefficients. Defaults to crypto/rand.
	Rand io.Reader
}

// Share is one evaluation point of the sharing polynomials: Data[i] is the
// value of the polynomial for secret byte i at x = Index.
type Share struct {
	Index byte   // x coordinate (1-255)
	Data  []byte // one y coordinate per secret byte
}

// Tagged returns the share in the Data || Index layout used by HashiCorp
// Vault compatible libraries.
func (s Share) Tagged() []byte {
	out := make([]byte, len(s.Data)+1)
	copy(out, s.Data)
	out[len(s.Data)] = s.Index
	return out
}

// ShareFromTagged parses the Data || Index layout produced by Tagged.
func ShareFromTagged(b []byte) (Share, error) {
	if len(b) < 2 {
		return Share{}, types.Malformed("tagged", "share must hold at least one data byte and an index")
	}
	idx := b[len(b)-1]
	if idx == 0 {
		return Share{}, types.Malformed("tagged", "index 0 is reserved for the secret")
	}
	return Share{Index: idx, Data: secure.Clone(b[:len(b)-1])}, nil
}

// Zero overwrites the share data.
func (s *Share) Zero() {
	if s == nil {
		return
	}
	secure.Zero(s.Data)
}

// Shamir implements Shamir's Secret Sharing Scheme using finite field
// arithmetic in GF(256).
type Shamir struct {
	config  *ShareConfig
	indices []byte
}

// NewShamir creates a new Shamir instance with the given configuration.
// Returns an error if the configuration is invalid.
func NewShamir(config *ShareConfig) (*Shamir, error) {
	if config == nil {
		return nil, fmt.Errorf("secretsharing: config cannot be nil")
	}
	if config.Threshold < MinThreshold {
		return nil, fmt.Errorf("%w: must be at least %d, got %d",
			types.ErrInvalidThreshold, MinThreshold, config.Threshold)
	}
	if config.TotalShares > MaxShares {
		return nil, fmt.Errorf("%w: total shares must be <= %d, got %d",
			types.ErrInvalidThreshold, MaxShares, config.TotalShares)
	}
	if config.Threshold > config.TotalShares {
		return nil, fmt.Errorf("%w: threshold %d, total shares %d",
			types.ErrThresholdExceedsShares, config.Threshold, config.TotalShares)
	}

	indices, err := evaluationPoints(config)
	if err != nil {
		return nil, err
	}
	return &Shamir{config: config, indices: indices}, nil
}

func evaluationPoints(config *ShareConfig) ([]byte, error) {
	if len(config.Indices) == 0 {
		indices := make([]byte, config.TotalShares)
		for i := range indices {
			indices[i] = byte(i + 1)
		}
		return indices, nil
	}
	if len(config.Indices) != config.TotalShares {
		return nil, fmt.Errorf("%w: %d custom indices for %d shares",
			types.ErrMismatchedShares, len(config.Indices), config.TotalShares)
	}
	var seen [256]bool
	for _, x := range config.Indices {
		if x == 0 {
			return nil, fmt.Errorf("%w: index 0 is reserved for the secret", types.ErrMismatchedShares)
		}
		if seen[x] {
			return nil, fmt.Errorf("%w: duplicate index %d", types.ErrMismatchedShares, x)
		}
		seen[x] = true
	}
	return append([]byte(nil), config.Indices...), nil
}

// Split divides a secret into N shares, requiring M to reconstruct.
// Every secret byte gets its own polynomial with fresh random coefficients.
func (s *Shamir) Split(secret []byte) ([]Share, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("secretsharing: secret cannot be empty")
	}

	shares := make([]Share, len(s.indices))
	for i, x := range s.indices {
		shares[i] = Share{Index: x, Data: make([]byte, len(secret))}
	}

	coeffs := make([]byte, s.config.Threshold)
	defer secure.Zero(coeffs)

	for pos, b := range secret {
		coeffs[0] = b
		if err := entropy.Read(s.config.Rand, coeffs[1:]); err != nil {
			for i := range shares {
				shares[i].Zero()
			}
			return nil, fmt.Errorf("secretsharing: polynomial coefficients: %w", err)
		}
		for i := range shares {
			shares[i].Data[pos] = gf256.EvalPoly(coeffs, shares[i].Index)
		}
	}

	return shares, nil
}

// Combine reconstructs the secret from at least M shares.
func (s *Shamir) Combine(shares []Share) ([]byte, error) {
	if len(shares) < s.config.Threshold {
		return nil, fmt.Errorf("%w: need %d, got %d",
			types.ErrInsufficientShares, s.config.Threshold, len(shares))
	}
	return ReconstructSecret(shares)
}

// SplitSecret is a convenience wrapper around NewShamir and Split.
func SplitSecret(secret []byte, config *ShareConfig) ([]Share, error) {
	s, err := NewShamir(config)
	if err != nil {
		return nil, err
	}
	return s.Split(secret)
}

// ReconstructSecret interpolates the shares at x = 0.
//
// The threshold is not encoded in a share, so supplying fewer shares than the
// original threshold yields a wrong secret rather than an error. Encodings
// that need detection carry their own checksum or digest.
func ReconstructSecret(shares []Share) ([]byte, error) {
	if len(shares) < MinThreshold {
		return nil, fmt.Errorf("%w: need at least %d, got %d",
			types.ErrInsufficientShares, MinThreshold, len(shares))
	}
	for _, sh := range shares {
		if sh.Index == 0 {
			return nil, fmt.Errorf("%w: index 0 is reserved for the secret", types.ErrMismatchedShares)
		}
	}
	return Interpolate(shares, 0)
}

// Interpolate evaluates, at x, the unique polynomials of degree len(points)-1
// passing through points. Point indices must be distinct and may include 0.
// When x equals one of the point indices a copy of that point's data is
// returned.
func Interpolate(points []Share, x byte) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points to interpolate", types.ErrInsufficientShares)
	}

	length := len(points[0].Data)
	if length == 0 {
		return nil, fmt.Errorf("%w: shares have empty data", types.ErrMismatchedShares)
	}
	var seen [256]bool
	for _, p := range points {
		if len(p.Data) != length {
			return nil, fmt.Errorf("%w: data lengths %d and %d differ",
				types.ErrMismatchedShares, length, len(p.Data))
		}
		if seen[p.Index] {
			return nil, fmt.Errorf("%w: duplicate index %d", types.ErrMismatchedShares, p.Index)
		}
		seen[p.Index] = true
	}

	for _, p := range points {
		if p.Index == x {
			return secure.Clone(p.Data), nil
		}
	}

	// log of the basis polynomial weight for point i:
	//   l_i(x) = prod_{j != i} (x - x_j) / (x_i - x_j)
	// every factor is non-zero because x is not a point index and the
	// indices are distinct.
	logProd := 0
	for _, p := range points {
		l, _ := gf256.Log(x ^ p.Index)
		logProd += l
	}

	out := make([]byte, length)
	for i, pi := range points {
		lx, _ := gf256.Log(x ^ pi.Index)
		logBasis := logProd - lx
		for j, pj := range points {
			if i == j {
				continue
			}
			l, _ := gf256.Log(pi.Index ^ pj.Index)
			logBasis -= l
		}
		weight := gf256.Exp(logBasis)
		for k, y := range pi.Data {
			out[k] ^= gf256.Mul(y, weight)
		}
	}
	return out, nil
}
