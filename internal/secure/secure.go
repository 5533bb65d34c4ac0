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

// Package secure provides memory hygiene helpers for buffers that hold
// secret material: master secrets, polynomial coefficients, digests and
// reconstructed output.
//
// Every secret-bearing buffer in go-keyshare is released through Zero on all
// exit paths, normally with a defer placed right after the allocation:
//
//	coeffs := make([]byte, threshold)
//	defer secure.Zero(coeffs)
package secure

import (
	"crypto/subtle"
	"runtime"
)

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// ZeroAll zeroes every buffer in bufs.
func ZeroAll(bufs ...[]byte) {
	for _, b := range bufs {
		Zero(b)
	}
}

// Clone returns a copy of b. The caller owns the copy and must Zero it.
func Clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// Equal compares a and b in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Buffer holds secret bytes that are locked in memory where the platform
// allows it and wiped on Destroy.
type Buffer struct {
	data   []byte
	locked bool
}

// NewBuffer copies b into a new Buffer. The source slice is not modified.
func NewBuffer(b []byte) *Buffer {
	buf := &Buffer{data: Clone(b)}
	buf.locked = lock(buf.data) == nil
	return buf
}

// Bytes returns the underlying secret. The slice is invalid after Destroy.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Locked reports whether the buffer is pinned in RAM.
func (b *Buffer) Locked() bool {
	return b != nil && b.locked
}

// Destroy zeroes and unlocks the buffer. Safe to call more than once.
func (b *Buffer) Destroy() {
	if b == nil || b.data == nil {
		return
	}
	Zero(b.data)
	if b.locked {
		_ = unlock(b.data)
		b.locked = false
	}
	b.data = nil
}
