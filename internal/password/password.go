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

// Package password holds the optional SLIP-39 passphrase while the CLI
// encrypts or decrypts a master secret.
//
// A Passphrase owns its bytes and zeroes them on Clear. Comparison is
// constant time so the confirmation prompt leaks nothing about where two
// entries differ.
package password

import (
	"crypto/subtle"
	"errors"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/slip39"
)

var (
	// ErrPassphraseMismatch is returned when a confirmation entry differs.
	ErrPassphraseMismatch = errors.New("passphrases do not match")

	// ErrPassphraseCleared is returned when a cleared passphrase is used.
	ErrPassphraseCleared = errors.New("passphrase has been cleared")
)

// Passphrase stores a SLIP-39 passphrase in memory. The zero value is the
// empty passphrase, which SLIP-39 treats as valid.
type Passphrase struct {
	data    []byte
	cleared bool
}

// New copies b into a new Passphrase after checking that it is printable
// ASCII. The caller keeps ownership of b.
func New(b []byte) (*Passphrase, error) {
	if err := slip39.ValidatePassphrase(b); err != nil {
		return nil, err
	}
	return &Passphrase{data: secure.Clone(b)}, nil
}

// Take is New without the copy: b is owned by the Passphrase from here on
// and is zeroed even when validation fails.
func Take(b []byte) (*Passphrase, error) {
	if err := slip39.ValidatePassphrase(b); err != nil {
		secure.Zero(b)
		return nil, err
	}
	return &Passphrase{data: b}, nil
}

// Bytes returns the passphrase without copying. The slice is only valid
// until Clear. A nil receiver yields the empty passphrase.
func (p *Passphrase) Bytes() []byte {
	if p == nil {
		return nil
	}
	return p.data
}

// Empty reports whether no passphrase was given.
func (p *Passphrase) Empty() bool {
	return p == nil || len(p.data) == 0
}

// Clear zeroes the passphrase. It is safe to call more than once.
func (p *Passphrase) Clear() {
	if p == nil {
		return
	}
	secure.Zero(p.data)
	p.data = nil
	p.cleared = true
}

// Confirm compares p with a second entry in constant time and clears the
// second entry.
func (p *Passphrase) Confirm(again *Passphrase) error {
	defer again.Clear()
	if p.cleared || (again != nil && again.cleared) {
		return ErrPassphraseCleared
	}
	if subtle.ConstantTimeCompare(p.Bytes(), again.Bytes()) != 1 {
		return ErrPassphraseMismatch
	}
	return nil
}
