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

//go:build !tpm2 && !pkcs11

package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHardwareSourcesNotCompiled(t *testing.T) {
	_, err := NewResolver(&Config{Mode: ModeTPM2})
	assert.ErrorIs(t, err, ErrTPM2NotCompiled)

	_, err = NewResolver(&Config{Mode: ModePKCS11, PKCS11: &PKCS11Config{Module: "/usr/lib/softhsm/libsofthsm2.so"}})
	assert.ErrorIs(t, err, ErrPKCS11NotCompiled)

	_, err = NewResolver(&Config{Mode: ModeSoftware, FallbackMode: ModeTPM2})
	assert.ErrorIs(t, err, ErrTPM2NotCompiled)
}

func TestAutoWithoutHardware(t *testing.T) {
	rng, err := NewResolver(&Config{Mode: ModeAuto, PKCS11: &PKCS11Config{Module: "/nonexistent.so"}})
	if assert.NoError(t, err) {
		assert.Equal(t, ModeSoftware, rng.Mode())
	}
}
