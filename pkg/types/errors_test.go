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

package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMalformedError_Is(t *testing.T) {
	err := Malformed("codex32", "invalid character %q", 'b')

	assert.True(t, errors.Is(err, ErrMalformedEncoding))
	assert.False(t, errors.Is(err, ErrChecksumFailed))
	assert.Contains(t, err.Error(), "codex32")
	assert.Contains(t, err.Error(), `invalid character 'b'`)

	var me *MalformedError
	assert.True(t, errors.As(err, &me))
	assert.Equal(t, "codex32", me.Format)
}

func TestMalformedError_Wrapped(t *testing.T) {
	err := fmt.Errorf("share 3: %w", Malformed("slip39", "mnemonic too short"))
	assert.True(t, errors.Is(err, ErrMalformedEncoding))
}

func TestMalformedError_NoFormat(t *testing.T) {
	err := Malformed("", "empty input")
	assert.Equal(t, "keyshare: malformed encoding: empty input", err.Error())
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{
		ErrInvalidThreshold,
		ErrThresholdExceedsShares,
		ErrInsufficientShares,
		ErrMismatchedShares,
		ErrChecksumFailed,
		ErrMalformedEncoding,
		ErrFormatNotRecognized,
	}
	for i := range all {
		for j := range all {
			if i != j {
				assert.False(t, errors.Is(all[i], all[j]), "%v should not match %v", all[i], all[j])
			}
		}
	}
}
