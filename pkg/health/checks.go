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

package health

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/codex32"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/entropy"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-keyshare/pkg/slip39"
)

// Check names
const (
	CheckEntropy = "entropy"
	CheckShamir  = "shamir"
	CheckSLIP39  = "slip39"
	CheckCodex32 = "codex32"
)

// sampleSize is the length of each entropy sample and self-test secret
const sampleSize = 32

// codex32 known answer: shares A and C of a 2-of-n set
const (
	codex32ShareA = "MS12NAMEA320ZYXWVUTSRQPNMLKJHGFEDCAXRPP870HKKQRM"
	codex32ShareC = "MS12NAMECACDEFGHJKLMNPQRSTUVWXYZ023FTR2GDZMPY6PN"
	codex32Secret = "d1808e096b35b209ca12132b264662a5"
)

// EntropyCheck draws two samples from r. It is unhealthy when r cannot be
// read, returns all zero bytes, or repeats itself, and degraded when the
// source serving reads is not want. want of ModeAuto accepts any source.
func EntropyCheck(r entropy.Resolver, want entropy.Mode) CheckFunc {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Name: CheckEntropy}
		if r == nil || !r.Available() {
			result.Status = StatusUnhealthy
			result.Message = "no random source available"
			return result
		}

		a := make([]byte, sampleSize)
		b := make([]byte, sampleSize)
		defer secure.ZeroAll(a, b)
		if err := entropy.Read(r, a); err != nil {
			return failed(result, err)
		}
		if err := entropy.Read(r, b); err != nil {
			return failed(result, err)
		}

		switch {
		case bytes.Equal(a, make([]byte, sampleSize)):
			result.Status = StatusUnhealthy
			result.Message = "random source returned all zero bytes"
		case bytes.Equal(a, b):
			result.Status = StatusUnhealthy
			result.Message = "random source repeated its output"
		case want != entropy.ModeAuto && want != "" && r.Mode() != want:
			result.Status = StatusDegraded
			result.Message = fmt.Sprintf("%s requested, %s serving reads", want, r.Mode())
		default:
			result.Status = StatusHealthy
			result.Message = fmt.Sprintf("%s source produced distinct samples", r.Mode())
		}
		return result
	}
}

// ShamirCheck splits a random secret 3-of-5 and recovers it from every
// window of three consecutive shares.
func ShamirCheck(r io.Reader) CheckFunc {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Name: CheckShamir}

		secret := make([]byte, sampleSize)
		defer secure.Zero(secret)
		if err := entropy.Read(r, secret); err != nil {
			return failed(result, err)
		}
		shares, err := secretsharing.SplitSecret(secret, &secretsharing.ShareConfig{
			Threshold:   3,
			TotalShares: 5,
			Rand:        r,
		})
		if err != nil {
			return failed(result, err)
		}
		defer func() {
			for i := range shares {
				shares[i].Zero()
			}
		}()

		for i := 0; i+3 <= len(shares); i++ {
			got, err := secretsharing.ReconstructSecret(shares[i : i+3])
			if err != nil {
				return failed(result, err)
			}
			ok := secure.Equal(got, secret)
			secure.Zero(got)
			if !ok {
				result.Status = StatusUnhealthy
				result.Message = fmt.Sprintf("shares %d-%d reconstructed the wrong secret", i+1, i+3)
				return result
			}
		}
		result.Status = StatusHealthy
		result.Message = "3-of-5 split recovered from every window"
		return result
	}
}

// SLIP39Check generates a two-group SLIP-39 set with a passphrase and
// recovers it from the minimum quorum. Iteration exponent 0 keeps it fast.
func SLIP39Check(r io.Reader) CheckFunc {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Name: CheckSLIP39}

		secret := make([]byte, sampleSize/2)
		defer secure.Zero(secret)
		if err := entropy.Read(r, secret); err != nil {
			return failed(result, err)
		}

		passphrase := []byte("health check")
		cfg := slip39.NewConfig(2,
			slip39.GroupConfig{MemberThreshold: 2, MemberCount: 3},
			slip39.GroupConfig{MemberThreshold: 1, MemberCount: 1},
		)
		cfg.IterationExponent = 0
		cfg.Passphrase = passphrase
		cfg.Rand = r

		groups, err := slip39.GenerateShares(secret, cfg)
		if err != nil {
			return failed(result, err)
		}
		defer func() {
			for _, g := range groups {
				for _, s := range g {
					secure.Zero(s.Value)
				}
			}
		}()

		got, err := slip39.CombineShares([]*slip39.Share{groups[0][2], groups[1][0], groups[0][0]}, passphrase)
		if err != nil {
			return failed(result, err)
		}
		defer secure.Zero(got)
		if !secure.Equal(got, secret) {
			result.Status = StatusUnhealthy
			result.Message = "mnemonics recovered the wrong secret"
			return result
		}
		result.Status = StatusHealthy
		result.Message = "two-group set recovered with passphrase"
		return result
	}
}

// Codex32Check recovers a published codex32 secret from two of its shares.
func Codex32Check() CheckFunc {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Name: CheckCodex32}

		shares := make([]*codex32.Share, 0, 2)
		for _, s := range []string{codex32ShareA, codex32ShareC} {
			sh, err := codex32.ParseShare(s)
			if err != nil {
				return failed(result, err)
			}
			shares = append(shares, sh)
		}
		got, err := codex32.CombineShares(shares)
		if err != nil {
			return failed(result, err)
		}
		if hex.EncodeToString(got) != codex32Secret {
			result.Status = StatusUnhealthy
			result.Message = "known answer mismatch"
			return result
		}
		result.Status = StatusHealthy
		result.Message = "known answer recovered"
		return result
	}
}

// NewSelfTest returns a Checker with every built-in check registered
// against r, whose configured mode is want.
func NewSelfTest(r entropy.Resolver, want entropy.Mode) *Checker {
	c := NewChecker()
	c.RegisterCheck(CheckEntropy, EntropyCheck(r, want))
	c.RegisterCheck(CheckShamir, ShamirCheck(r))
	c.RegisterCheck(CheckSLIP39, SLIP39Check(r))
	c.RegisterCheck(CheckCodex32, Codex32Check())
	return c
}

func failed(result CheckResult, err error) CheckResult {
	result.Status = StatusUnhealthy
	result.Error = err.Error()
	return result
}
