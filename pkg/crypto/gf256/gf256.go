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

// Package gf256 implements arithmetic in the finite field GF(2^8) using the
// AES (Rijndael) representation: bytes are polynomials over GF(2) reduced by
// the irreducible polynomial x^8 + x^4 + x^3 + x + 1 (0x11B).
//
// Addition and subtraction are XOR. Multiplication, division and inversion
// go through logarithm and exponentiation tables built once at package
// initialization with the generator 0x03. The tables are read-only after
// init and safe for concurrent use.
package gf256

import (
	"errors"
)

// ErrDivideByZero is returned when dividing by, or inverting, the zero element.
var ErrDivideByZero = errors.New("gf256: division by zero")

// Polynomial is the reduction polynomial without the x^8 term.
const Polynomial = 0x1B

var (
	logTable [256]byte
	expTable [510]byte
)

func init() {
	var x byte = 1
	for i := 0; i < 255; i++ {
		expTable[i] = x
		logTable[x] = byte(i)
		x = mulSlow(x, 0x03)
	}
	// duplicate so log(a)+log(b) never needs a modulo
	for i := 255; i < len(expTable); i++ {
		expTable[i] = expTable[i-255]
	}
}

// mulSlow multiplies with the peasant algorithm. Only used to build the tables.
func mulSlow(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= Polynomial
		}
		b >>= 1
	}
	return p
}

// Add returns a + b.
func Add(a, b byte) byte {
	return a ^ b
}

// Sub returns a - b, which in characteristic 2 equals a + b.
func Sub(a, b byte) byte {
	return a ^ b
}

// Mul returns a * b.
func Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[int(logTable[a])+int(logTable[b])]
}

// Inverse returns the multiplicative inverse of a.
func Inverse(a byte) (byte, error) {
	if a == 0 {
		return 0, ErrDivideByZero
	}
	return expTable[255-int(logTable[a])], nil
}

// Div returns a / b.
func Div(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	if a == 0 {
		return 0, nil
	}
	return expTable[int(logTable[a])+255-int(logTable[b])], nil
}

// Exp returns g^n for the field generator g = 0x03.
func Exp(n int) byte {
	n %= 255
	if n < 0 {
		n += 255
	}
	return expTable[n]
}

// Log returns the discrete logarithm of a to base 0x03.
func Log(a byte) (int, error) {
	if a == 0 {
		return 0, ErrDivideByZero
	}
	return int(logTable[a]), nil
}

// EvalPoly evaluates the polynomial with the given coefficients (constant term
// first) at x using Horner's method.
func EvalPoly(coeffs []byte, x byte) byte {
	if len(coeffs) == 0 {
		return 0
	}
	result := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = Mul(result, x) ^ coeffs[i]
	}
	return result
}
