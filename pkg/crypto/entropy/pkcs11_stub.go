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

//go:build !pkcs11

package entropy

import "errors"

// ErrPKCS11NotCompiled is returned when the binary was built without the pkcs11 tag.
var ErrPKCS11NotCompiled = errors.New("entropy: PKCS#11 support not compiled")

func pkcs11Compiled() bool { return false }

func newPKCS11Source(*PKCS11Config) (Resolver, error) {
	return nil, ErrPKCS11NotCompiled
}
