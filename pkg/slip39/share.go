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
	"fmt"
	"strings"

	"github.com/jeremyhahn/go-keyshare/pkg/crypto/rs1024"
	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

const (
	format = "slip39"

	// IDLengthBits is the width of the random share set identifier.
	IDLengthBits = 15

	// IterationExponentBits is the width of the PBKDF2 iteration exponent.
	IterationExponentBits = 4

	// MaxShareCount bounds both the number of groups and members per group.
	MaxShareCount = 16

	// MinStrengthBits is the smallest master secret length.
	MinStrengthBits = 128

	// MetadataWords is the number of non-value words in a mnemonic.
	MetadataWords = 4 + rs1024.ChecksumLength

	// MinMnemonicLength is the number of words in a mnemonic for a
	// 128-bit secret.
	MinMnemonicLength = MetadataWords + (MinStrengthBits+RadixBits-1)/RadixBits

	maxPaddingBits = 8
)

// Share is one decoded SLIP-39 mnemonic.
type Share struct {
	Identifier        uint16
	Extendable        bool
	IterationExponent int
	GroupIndex        int
	GroupThreshold    int
	GroupCount        int
	MemberIndex       int
	MemberThreshold   int
	Value             []byte
}

// Words encodes the share as mnemonic words.
func (s *Share) Words() []string {
	indices := s.indices()
	words := make([]string, len(indices))
	for i, v := range indices {
		words[i] = wordlist[v]
	}
	return words
}

// Mnemonic returns the space separated mnemonic.
func (s *Share) Mnemonic() string {
	return strings.Join(s.Words(), " ")
}

// String implements fmt.Stringer without revealing the share value.
func (s *Share) String() string {
	return fmt.Sprintf("slip39 share id=%d group=%d/%d (threshold %d) member=%d (threshold %d)",
		s.Identifier, s.GroupIndex+1, s.GroupCount, s.GroupThreshold, s.MemberIndex+1, s.MemberThreshold)
}

// commonParameters reports whether two shares belong to the same share set.
func (s *Share) commonParameters(o *Share) bool {
	return s.Identifier == o.Identifier &&
		s.Extendable == o.Extendable &&
		s.IterationExponent == o.IterationExponent &&
		s.GroupThreshold == o.GroupThreshold &&
		s.GroupCount == o.GroupCount
}

func (s *Share) indices() []uint16 {
	ext := uint32(0)
	if s.Extendable {
		ext = 1
	}
	idExp := uint32(s.Identifier)<<5 | ext<<4 | uint32(s.IterationExponent&0xF)
	params := uint32(s.GroupIndex&0xF)<<16 |
		uint32((s.GroupThreshold-1)&0xF)<<12 |
		uint32((s.GroupCount-1)&0xF)<<8 |
		uint32(s.MemberIndex&0xF)<<4 |
		uint32((s.MemberThreshold-1)&0xF)

	data := []uint16{
		uint16(idExp >> RadixBits), uint16(idExp & (RadixWords - 1)),
		uint16(params >> RadixBits), uint16(params & (RadixWords - 1)),
	}
	data = append(data, bytesToWords(s.Value)...)
	return rs1024.AppendChecksum(rs1024.Customization(s.Extendable), data)
}

// bytesToWords packs b into 10-bit symbols, left padding with zero bits.
func bytesToWords(b []byte) []uint16 {
	n := (len(b)*8 + RadixBits - 1) / RadixBits
	out := make([]uint16, 0, n)

	var acc uint32
	bits := n*RadixBits - len(b)*8
	for _, v := range b {
		acc = acc<<8 | uint32(v)
		bits += 8
		for bits >= RadixBits {
			bits -= RadixBits
			out = append(out, uint16(acc>>bits)&(RadixWords-1))
		}
		acc &= 1<<bits - 1
	}
	return out
}

// wordsToBytes reverses bytesToWords. The leading padding bits must be
// zero and there must be at most maxPaddingBits of them.
func wordsToBytes(words []uint16) ([]byte, error) {
	padding := len(words) * RadixBits % 16
	if padding > maxPaddingBits {
		return nil, types.Malformed(format, "invalid mnemonic length")
	}
	out := make([]byte, 0, (len(words)*RadixBits-padding)/8)

	var acc uint32
	bits := 0
	for i, w := range words {
		acc = acc<<RadixBits | uint32(w)
		bits += RadixBits
		if i == 0 {
			bits -= padding
			if acc>>bits != 0 {
				return nil, types.Malformed(format, "invalid padding")
			}
		}
		for bits >= 8 {
			bits -= 8
			out = append(out, byte(acc>>bits))
		}
		acc &= 1<<bits - 1
	}
	return out, nil
}

// ParseMnemonicString parses a whitespace separated mnemonic.
func ParseMnemonicString(mnemonic string) (*Share, error) {
	return ParseMnemonic(strings.Fields(mnemonic))
}

// ParseMnemonic decodes and verifies one share.
func ParseMnemonic(words []string) (*Share, error) {
	if len(words) < MinMnemonicLength {
		return nil, types.Malformed(format, "mnemonic must be at least %d words, got %d", MinMnemonicLength, len(words))
	}

	data := make([]uint16, len(words))
	for i, w := range words {
		idx, ok := WordIndex(w)
		if !ok {
			return nil, types.Malformed(format, "unknown word %q at position %d", truncate(w), i+1)
		}
		data[i] = uint16(idx)
	}

	if (len(data)-MetadataWords)*RadixBits%16 > maxPaddingBits {
		return nil, types.Malformed(format, "invalid mnemonic length %d", len(data))
	}

	idExp := uint32(data[0])<<RadixBits | uint32(data[1])
	share := &Share{
		Identifier:        uint16(idExp >> (IterationExponentBits + 1)),
		Extendable:        (idExp>>IterationExponentBits)&1 == 1,
		IterationExponent: int(idExp & (1<<IterationExponentBits - 1)),
	}

	if !rs1024.VerifyChecksum(rs1024.Customization(share.Extendable), data) {
		return nil, fmt.Errorf("%w: invalid mnemonic checksum", types.ErrChecksumFailed)
	}

	params := uint32(data[2])<<RadixBits | uint32(data[3])
	share.GroupIndex = int(params>>16&0xF)
	share.GroupThreshold = int(params>>12&0xF) + 1
	share.GroupCount = int(params>>8&0xF) + 1
	share.MemberIndex = int(params>>4&0xF)
	share.MemberThreshold = int(params&0xF) + 1

	if share.GroupCount < share.GroupThreshold {
		return nil, types.Malformed(format, "group threshold %d exceeds group count %d",
			share.GroupThreshold, share.GroupCount)
	}

	value, err := wordsToBytes(data[4 : len(data)-rs1024.ChecksumLength])
	if err != nil {
		return nil, err
	}
	share.Value = value
	return share, nil
}

func truncate(s string) string {
	const maxLen = 16
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
