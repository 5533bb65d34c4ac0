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

// Package rs1024 implements the Reed-Solomon checksum over GF(1024) that
// protects SLIP-39 mnemonics.
//
// Values are 10-bit symbols (one mnemonic word each). The checksum is three
// symbols and is bound to a customization string, so a share created under
// "shamir" never verifies under "shamir_extendable". The code only detects
// errors: any error affecting at most three words is guaranteed to be caught,
// and no correction is attempted.
package rs1024

const (
	// ChecksumLength is the number of 10-bit checksum symbols.
	ChecksumLength = 3

	// CustomizationNonExtendable binds checksums of non-extendable shares.
	CustomizationNonExtendable = "shamir"

	// CustomizationExtendable binds checksums of extendable shares.
	CustomizationExtendable = "shamir_extendable"
)

var generator = [10]uint32{
	0xE0E040,
	0x1C1C080,
	0x3838100,
	0x7070200,
	0xE0E0009,
	0x1C0C2412,
	0x38086C24,
	0x3090FC48,
	0x21B1F890,
	0x3F3F120,
}

// Polymod returns the remainder of the polynomial formed by values modulo
// the RS1024 generator, with the register seeded to 1.
func Polymod(values []uint16) uint32 {
	chk := uint32(1)
	for _, v := range values {
		b := chk >> 20
		chk = (chk&0xFFFFF)<<10 ^ uint32(v)
		for i := 0; i < 10; i++ {
			if (b>>i)&1 != 0 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

// Customization returns the customization string for the extendable flag.
func Customization(extendable bool) string {
	if extendable {
		return CustomizationExtendable
	}
	return CustomizationNonExtendable
}

func prefixed(customization string, data []uint16, extra int) []uint16 {
	values := make([]uint16, 0, len(customization)+len(data)+extra)
	for i := 0; i < len(customization); i++ {
		values = append(values, uint16(customization[i]))
	}
	return append(values, data...)
}

// CreateChecksum returns the three checksum symbols for data.
func CreateChecksum(customization string, data []uint16) [ChecksumLength]uint16 {
	values := prefixed(customization, data, ChecksumLength)
	values = append(values, 0, 0, 0)
	p := Polymod(values) ^ 1

	var out [ChecksumLength]uint16
	for i := range out {
		out[i] = uint16(p>>(10*(ChecksumLength-1-i))) & 0x3FF
	}
	return out
}

// VerifyChecksum reports whether data, which ends with its three checksum
// symbols, is a valid codeword under customization.
func VerifyChecksum(customization string, data []uint16) bool {
	if len(data) < ChecksumLength {
		return false
	}
	return Polymod(prefixed(customization, data, 0)) == 1
}

// AppendChecksum returns data followed by its checksum.
func AppendChecksum(customization string, data []uint16) []uint16 {
	sum := CreateChecksum(customization, data)
	out := make([]uint16, 0, len(data)+ChecksumLength)
	out = append(out, data...)
	return append(out, sum[:]...)
}
