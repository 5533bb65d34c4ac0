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

package slip39

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/entropy"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

// DefaultIterationExponent gives 20000 PBKDF2 iterations in total.
const DefaultIterationExponent = 1

// GroupConfig is the member threshold and count of one group.
type GroupConfig struct {
	MemberThreshold int
	MemberCount     int
}

// Config configures share generation.
type Config struct {
	// GroupThreshold is the number of groups required to recover the secret
	GroupThreshold int

	// Groups lists the member threshold and count of every group
	Groups []GroupConfig

	// Passphrase encrypts the master secret. Printable ASCII only.
	Passphrase []byte

	// IterationExponent scales the PBKDF2 work factor (0-15)
	IterationExponent int

	// Extendable allows adding shares to an existing set later without
	// changing the identifier-dependent encryption.
	Extendable bool

	// Rand supplies the identifier, digest and share randomness.
	// Defaults to crypto/rand.
	Rand io.Reader
}

// NewConfig returns a Config with extendable shares and the default
// iteration exponent.
func NewConfig(groupThreshold int, groups ...GroupConfig) *Config {
	return &Config{
		GroupThreshold:    groupThreshold,
		Groups:            groups,
		IterationExponent: DefaultIterationExponent,
		Extendable:        true,
	}
}

// SingleGroup returns a Config for a plain threshold-of-count split.
func SingleGroup(threshold, count int) *Config {
	return NewConfig(1, GroupConfig{MemberThreshold: threshold, MemberCount: count})
}

func (c *Config) validate(secret []byte) error {
	if len(secret)*8 < MinStrengthBits {
		return types.Malformed(format, "master secret must be at least %d bits", MinStrengthBits)
	}
	if len(secret)%2 != 0 {
		return types.Malformed(format, "master secret length must be even")
	}
	if c.IterationExponent < 0 || c.IterationExponent >= 1<<IterationExponentBits {
		return fmt.Errorf("slip39: iteration exponent %d out of range", c.IterationExponent)
	}
	if err := ValidatePassphrase(c.Passphrase); err != nil {
		return err
	}
	if len(c.Groups) == 0 || len(c.Groups) > MaxShareCount {
		return fmt.Errorf("%w: group count must be between 1 and %d, got %d",
			types.ErrInvalidThreshold, MaxShareCount, len(c.Groups))
	}
	if c.GroupThreshold < 1 {
		return fmt.Errorf("%w: group threshold must be positive", types.ErrInvalidThreshold)
	}
	if c.GroupThreshold > len(c.Groups) {
		return fmt.Errorf("%w: group threshold %d, %d groups",
			types.ErrThresholdExceedsShares, c.GroupThreshold, len(c.Groups))
	}
	for i, g := range c.Groups {
		if g.MemberCount < 1 || g.MemberCount > MaxShareCount {
			return fmt.Errorf("%w: group %d member count must be between 1 and %d, got %d",
				types.ErrInvalidThreshold, i+1, MaxShareCount, g.MemberCount)
		}
		if g.MemberThreshold < 1 {
			return fmt.Errorf("%w: group %d member threshold must be positive", types.ErrInvalidThreshold, i+1)
		}
		if g.MemberThreshold > g.MemberCount {
			return fmt.Errorf("%w: group %d threshold %d, count %d",
				types.ErrThresholdExceedsShares, i+1, g.MemberThreshold, g.MemberCount)
		}
		if g.MemberThreshold == 1 && g.MemberCount > 1 {
			return fmt.Errorf("%w: group %d with member threshold 1 must have a single member, use 1-of-1 instead",
				types.ErrInvalidThreshold, i+1)
		}
	}
	return nil
}

// GenerateShares splits secret into groups of member shares. The result
// holds one slice per configured group.
func GenerateShares(secret []byte, cfg *Config) ([][]*Share, error) {
	if cfg == nil {
		return nil, fmt.Errorf("slip39: config cannot be nil")
	}
	if err := cfg.validate(secret); err != nil {
		return nil, err
	}

	var idBytes [2]byte
	if err := entropy.Read(cfg.Rand, idBytes[:]); err != nil {
		return nil, err
	}
	identifier := binary.BigEndian.Uint16(idBytes[:]) & (1<<IDLengthBits - 1)

	ems, err := Encrypt(secret, cfg.Passphrase, cfg.IterationExponent, identifier, cfg.Extendable)
	if err != nil {
		return nil, err
	}
	defer secure.Zero(ems)

	groupShares, err := splitSecret(cfg.GroupThreshold, len(cfg.Groups), ems, cfg.Rand)
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range groupShares {
			groupShares[i].Zero()
		}
	}()

	out := make([][]*Share, len(cfg.Groups))
	for g, group := range cfg.Groups {
		members, err := splitSecret(group.MemberThreshold, group.MemberCount, groupShares[g].Data, cfg.Rand)
		if err != nil {
			return nil, err
		}
		out[g] = make([]*Share, len(members))
		for m, member := range members {
			out[g][m] = &Share{
				Identifier:        identifier,
				Extendable:        cfg.Extendable,
				IterationExponent: cfg.IterationExponent,
				GroupIndex:        int(groupShares[g].Index),
				GroupThreshold:    cfg.GroupThreshold,
				GroupCount:        len(cfg.Groups),
				MemberIndex:       int(member.Index),
				MemberThreshold:   group.MemberThreshold,
				Value:             member.Data,
			}
		}
	}
	return out, nil
}

// GenerateMnemonics is GenerateShares returning mnemonic strings.
func GenerateMnemonics(secret []byte, cfg *Config) ([][]string, error) {
	groups, err := GenerateShares(secret, cfg)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(groups))
	for g, members := range groups {
		out[g] = make([]string, len(members))
		for m, s := range members {
			out[g][m] = s.Mnemonic()
		}
	}
	return out, nil
}

type memberGroup struct {
	index     int
	threshold int
	members   []*Share
}

// CombineShares recovers the master secret. It needs member-threshold
// shares from at least group-threshold groups; surplus shares and
// incomplete groups are ignored.
func CombineShares(shares []*Share, passphrase []byte) ([]byte, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares supplied", types.ErrInsufficientShares)
	}

	groups, err := groupShares(shares)
	if err != nil {
		return nil, err
	}

	first := shares[0]
	var complete []*memberGroup
	for _, g := range groups {
		if len(g.members) >= g.threshold {
			complete = append(complete, g)
		}
	}
	if len(complete) < first.GroupThreshold {
		return nil, fmt.Errorf("%w: need %d complete groups, got %d",
			types.ErrInsufficientShares, first.GroupThreshold, len(complete))
	}
	complete = complete[:first.GroupThreshold]

	groupSecrets := make([]secretsharing.Share, 0, len(complete))
	defer func() {
		for i := range groupSecrets {
			groupSecrets[i].Zero()
		}
	}()
	for _, g := range complete {
		points := make([]secretsharing.Share, g.threshold)
		for i, m := range g.members[:g.threshold] {
			points[i] = secretsharing.Share{Index: byte(m.MemberIndex), Data: m.Value}
		}
		value, err := recoverSecret(g.threshold, points)
		if err != nil {
			return nil, fmt.Errorf("slip39: group %d: %w", g.index+1, err)
		}
		groupSecrets = append(groupSecrets, secretsharing.Share{Index: byte(g.index), Data: value})
	}

	ems, err := recoverSecret(first.GroupThreshold, groupSecrets)
	if err != nil {
		return nil, err
	}
	defer secure.Zero(ems)

	return Decrypt(ems, passphrase, first.IterationExponent, first.Identifier, first.Extendable)
}

// groupShares validates that shares belong to one set and buckets them by
// group index, dropping exact duplicates.
func groupShares(shares []*Share) ([]*memberGroup, error) {
	first := shares[0]
	byIndex := make(map[int]*memberGroup)

	for _, s := range shares {
		if s == nil {
			return nil, fmt.Errorf("%w: nil share", types.ErrMismatchedShares)
		}
		if !first.commonParameters(s) {
			return nil, fmt.Errorf("%w: shares belong to different share sets", types.ErrMismatchedShares)
		}
		if len(s.Value) != len(first.Value) {
			return nil, fmt.Errorf("%w: share values have different lengths", types.ErrMismatchedShares)
		}
		if s.GroupIndex >= s.GroupCount {
			return nil, types.Malformed(format, "group index %d exceeds group count %d", s.GroupIndex+1, s.GroupCount)
		}

		g, ok := byIndex[s.GroupIndex]
		if !ok {
			g = &memberGroup{index: s.GroupIndex, threshold: s.MemberThreshold}
			byIndex[s.GroupIndex] = g
		}
		if g.threshold != s.MemberThreshold {
			return nil, fmt.Errorf("%w: group %d has inconsistent member thresholds",
				types.ErrMismatchedShares, s.GroupIndex+1)
		}

		duplicate := false
		for _, m := range g.members {
			if m.MemberIndex != s.MemberIndex {
				continue
			}
			if !secure.Equal(m.Value, s.Value) {
				return nil, fmt.Errorf("%w: group %d member %d appears with different values",
					types.ErrMismatchedShares, s.GroupIndex+1, s.MemberIndex+1)
			}
			duplicate = true
			break
		}
		if !duplicate {
			g.members = append(g.members, s)
		}
	}

	out := make([]*memberGroup, 0, len(byIndex))
	for _, g := range byIndex {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out, nil
}

// CombineMnemonics parses and combines mnemonic strings.
func CombineMnemonics(mnemonics []string, passphrase []byte) ([]byte, error) {
	shares := make([]*Share, 0, len(mnemonics))
	for i, m := range mnemonics {
		s, err := ParseMnemonicString(m)
		if err != nil {
			return nil, fmt.Errorf("slip39: mnemonic %d: %w", i+1, err)
		}
		shares = append(shares, s)
	}
	defer func() {
		for _, s := range shares {
			secure.Zero(s.Value)
		}
	}()
	return CombineShares(shares, passphrase)
}
