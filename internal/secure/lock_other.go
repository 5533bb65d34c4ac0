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

//go:build !unix

package secure

import "errors"

var errLockUnsupported = errors.New("secure: memory locking not supported on this platform")

func lock(b []byte) error {
	return errLockUnsupported
}

func unlock(b []byte) error {
	return nil
}
