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

// Charset is the bech32 alphabet. A character's position is its 5-bit value.
const Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// ShareIndices lists the share index characters in allocation order. The
// secret itself is always index 's'.
const ShareIndices = "acdefghjklmnpqrtuvwxyz023456789"

// SecretIndex is the index character of the unshared secret.
const SecretIndex = 's'

var charsetRev [128]int8

// gf32 log/exp tables, polynomial x^5 + x^3 + 1, generator x
var (
	gf32Exp [31]byte
	gf32Log [32]byte
)

func init() {
	for i := range charsetRev {
		charsetRev[i] = -1
	}
	for i := 0; i < len(Charset); i++ {
		charsetRev[Charset[i]] = int8(i)
	}

	x := byte(1)
	for i := 0; i < 31; i++ {
		gf32Exp[i] = x
		gf32Log[x] = byte(i)
		x <<= 1
		if x&32 != 0 {
			x ^= 0x29
		}
	}
}

// charValue returns the 5-bit value of a lowercase bech32 character.
func charValue(c byte) (byte, bool) {
	if c >= 128 || charsetRev[c] < 0 {
		return 0, false
	}
	return byte(charsetRev[c]), true
}

func gf32Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gf32Exp[(int(gf32Log[a])+int(gf32Log[b]))%31]
}

// gf32Div divides a by a non-zero b.
func gf32Div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return gf32Exp[(int(gf32Log[a])+31-int(gf32Log[b]))%31]
}

// interpolate evaluates, at target, the polynomials through the given
// equal-length symbol strings. xs holds each string's x coordinate and must
// be distinct and different from target.
func interpolate(values [][]byte, xs []byte, target byte) []byte {
	out := make([]byte, len(values[0]))
	for i := range values {
		num, den := byte(1), byte(1)
		for j := range values {
			if i == j {
				continue
			}
			num = gf32Mul(num, target^xs[j])
			den = gf32Mul(den, xs[i]^xs[j])
		}
		weight := gf32Div(num, den)
		for k, v := range values[i] {
			out[k] ^= gf32Mul(v, weight)
		}
	}
	return out
}

// convertBits regroups data from fromBits to toBits wide values. When pad
// is set the last group is zero padded, otherwise leftover bits are
// returned for the caller to check.
func convertBits(data []byte, fromBits, toBits uint, pad bool) (out []byte, leftoverBits uint) {
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	for _, v := range data {
		acc = acc<<fromBits | uint32(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
		acc &= 1<<bits - 1
	}
	if pad && bits > 0 {
		out = append(out, byte(acc<<(toBits-bits)&maxv))
		bits = 0
	}
	return out, bits
}
