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

//go:build !tpm2

package entropy

import "errors"

// ErrTPM2NotCompiled is returned when the binary was built without the tpm2 tag.
var ErrTPM2NotCompiled = errors.New("entropy: TPM2 support not compiled")

func tpm2Compiled() bool { return false }

func newTPM2Source(*TPM2Config) (Resolver, error) {
	return nil, ErrTPM2NotCompiled
}
