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
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
)

const (
	// BaseIterationCount is the PBKDF2 iteration count for exponent 0,
	// spread over all rounds.
	BaseIterationCount = 10000

	// RoundCount is the number of Feistel rounds.
	RoundCount = 4

	customizationSalt = "shamir"
)

// ValidatePassphrase rejects passphrases outside printable ASCII.
func ValidatePassphrase(passphrase []byte) error {
	for i, c := range passphrase {
		if c < 32 || c > 126 {
			return fmt.Errorf("slip39: passphrase must be printable ASCII, invalid byte at position %d", i)
		}
	}
	return nil
}

// Encrypt applies the SLIP-39 passphrase cipher to a master secret,
// producing the encrypted master secret that is split into shares.
func Encrypt(masterSecret, passphrase []byte, iterationExponent int, identifier uint16, extendable bool) ([]byte, error) {
	return feistel(masterSecret, passphrase, iterationExponent, identifier, extendable, false)
}

// Decrypt reverses Encrypt. Any passphrase decrypts to some secret; there
// is no way to detect a wrong one.
func Decrypt(encrypted, passphrase []byte, iterationExponent int, identifier uint16, extendable bool) ([]byte, error) {
	return feistel(encrypted, passphrase, iterationExponent, identifier, extendable, true)
}

func feistel(in, passphrase []byte, e int, identifier uint16, extendable, reverse bool) ([]byte, error) {
	if len(in) == 0 || len(in)%2 != 0 {
		return nil, fmt.Errorf("slip39: secret length must be a positive even number of bytes, got %d", len(in))
	}
	if e < 0 || e >= 1<<IterationExponentBits {
		return nil, fmt.Errorf("slip39: iteration exponent %d out of range", e)
	}
	if err := ValidatePassphrase(passphrase); err != nil {
		return nil, err
	}

	half := len(in) / 2
	l := secure.Clone(in[:half])
	r := secure.Clone(in[half:])
	defer secure.ZeroAll(l, r)

	salt := cipherSalt(identifier, extendable)
	iterations := (BaseIterationCount << e) / RoundCount

	password := make([]byte, len(passphrase)+1)
	defer secure.Zero(password)
	copy(password[1:], passphrase)

	saltR := make([]byte, len(salt)+half)
	defer secure.Zero(saltR)
	copy(saltR, salt)

	for n := 0; n < RoundCount; n++ {
		i := n
		if reverse {
			i = RoundCount - 1 - n
		}
		password[0] = byte(i)
		copy(saltR[len(salt):], r)
		f := pbkdf2.Key(password, saltR, iterations, half, sha256.New)
		for k := range l {
			l[k] ^= f[k]
		}
		secure.Zero(f)
		l, r = r, l
	}

	out := make([]byte, 0, len(in))
	out = append(out, r...)
	return append(out, l...), nil
}

func cipherSalt(identifier uint16, extendable bool) []byte {
	if extendable {
		return nil
	}
	salt := make([]byte, len(customizationSalt)+2)
	copy(salt, customizationSalt)
	binary.BigEndian.PutUint16(salt[len(customizationSalt):], identifier)
	return salt
}
