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

package rs1024

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var vectorData = []uint16{100, 200, 300, 400, 500, 600}

func TestCreateChecksum_Vectors(t *testing.T) {
	tests := []struct {
		customization string
		want          [3]uint16
	}{
		{CustomizationNonExtendable, [3]uint16{87, 29, 751}},
		{CustomizationExtendable, [3]uint16{603, 540, 482}},
	}
	for _, tt := range tests {
		t.Run(tt.customization, func(t *testing.T) {
			assert.Equal(t, tt.want, CreateChecksum(tt.customization, vectorData))
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	for _, c := range []string{CustomizationNonExtendable, CustomizationExtendable} {
		word := AppendChecksum(c, vectorData)
		assert.Len(t, word, len(vectorData)+ChecksumLength)
		assert.True(t, VerifyChecksum(c, word), c)
	}
}

func TestVerifyChecksum_CrossCustomization(t *testing.T) {
	word := AppendChecksum(CustomizationNonExtendable, vectorData)
	assert.False(t, VerifyChecksum(CustomizationExtendable, word))

	word = AppendChecksum(CustomizationExtendable, vectorData)
	assert.False(t, VerifyChecksum(CustomizationNonExtendable, word))
}

func TestVerifyChecksum_DetectsErrors(t *testing.T) {
	word := AppendChecksum(CustomizationNonExtendable, vectorData)

	// every single symbol substitution
	for i := range word {
		for delta := uint16(1); delta < 1024; delta += 37 {
			corrupted := append([]uint16(nil), word...)
			corrupted[i] ^= delta
			assert.False(t, VerifyChecksum(CustomizationNonExtendable, corrupted), "pos %d delta %d", i, delta)
		}
	}

	// up to three symbols at once
	corrupted := append([]uint16(nil), word...)
	corrupted[0] ^= 1
	corrupted[4] ^= 512
	corrupted[8] ^= 77
	assert.False(t, VerifyChecksum(CustomizationNonExtendable, corrupted))
}

func TestVerifyChecksum_Short(t *testing.T) {
	assert.False(t, VerifyChecksum(CustomizationNonExtendable, nil))
	assert.False(t, VerifyChecksum(CustomizationNonExtendable, []uint16{1, 2}))
}

func TestCustomization(t *testing.T) {
	assert.Equal(t, "shamir_extendable", Customization(true))
	assert.Equal(t, "shamir", Customization(false))
}
