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

// residue is a BCH checksum register wider than 64 bits.
type residue struct {
	hi, lo uint64
}

func (r residue) xor(o residue) residue {
	return residue{hi: r.hi ^ o.hi, lo: r.lo ^ o.lo}
}

// shr returns r >> n for 0 < n < 128.
func (r residue) shr(n uint) residue {
	if n >= 64 {
		return residue{lo: r.hi >> (n - 64)}
	}
	return residue{hi: r.hi >> n, lo: r.hi<<(64-n) | r.lo>>n}
}

// mask keeps the low n bits, 0 < n < 128.
func (r residue) mask(n uint) residue {
	if n < 64 {
		return residue{lo: r.lo & (1<<n - 1)}
	}
	return residue{hi: r.hi & (1<<(n-64) - 1), lo: r.lo}
}

func (r residue) shl5() residue {
	return residue{hi: r.hi<<5 | r.lo>>59, lo: r.lo << 5}
}

// bchCode is one of the two codex32 checksums.
type bchCode struct {
	gen      [5]residue
	topShift uint
	target   residue
	length   int
}

var (
	// 13 character checksum for data parts of up to 93 characters
	shortCode = bchCode{
		gen: [5]residue{
			{0x1, 0x9dc500ce73fde210},
			{0x1, 0xbfae00def77fe529},
			{0x1, 0xfbd920fffe7bee52},
			{0x1, 0x739640bdeee3fdad},
			{0x0, 0x7729a039cfc75f5a},
		},
		topShift: 60,
		target:   residue{0x1, 0x0ce0795c2fd1e62a},
		length:   13,
	}

	// 15 character checksum for data parts of 96 to 124 characters
	longCode = bchCode{
		gen: [5]residue{
			{0x3d5, 0x9d273535ea62d897},
			{0x7a9, 0xbecb6361c6c51507},
			{0x543, 0xf9b7e6c38d8a2a0e},
			{0x0c5, 0x77eaeccf1990d13c},
			{0x188, 0x7f74f8dc71b10651},
		},
		topShift: 70,
		target:   residue{0x433, 0x81e570bf4798ab26},
		length:   15,
	}
)

const (
	maxShortDataLength = 93
	minLongDataLength  = 96
	maxLongDataLength  = 124
)

// codeFor selects the checksum for a data part of n characters, checksum
// included.
func codeFor(n int) (*bchCode, bool) {
	switch {
	case n <= maxShortDataLength:
		return &shortCode, true
	case n >= minLongDataLength && n <= maxLongDataLength:
		return &longCode, true
	default:
		return nil, false
	}
}

func (c *bchCode) polymod(values []byte) residue {
	r := residue{lo: 0x23181b3}
	for _, v := range values {
		b := r.shr(c.topShift).lo
		r = r.mask(c.topShift).shl5()
		r.lo ^= uint64(v)
		for i := 0; i < 5; i++ {
			if (b>>i)&1 != 0 {
				r = r.xor(c.gen[i])
			}
		}
	}
	return r
}

func (c *bchCode) verify(values []byte) bool {
	return c.polymod(values) == c.target
}

// checksum returns the checksum symbols for values, which exclude them.
func (c *bchCode) checksum(values []byte) []byte {
	padded := make([]byte, len(values)+c.length)
	copy(padded, values)
	p := c.polymod(padded).xor(c.target)

	out := make([]byte, c.length)
	for i := range out {
		out[i] = byte(p.shr(uint(5*(c.length-1-i))).lo & 31)
	}
	return out
}
