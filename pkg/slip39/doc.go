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

// Package slip39 implements SLIP-0039, Shamir's Secret-Sharing for Mnemonic
// Codes.
//
// A master secret is encrypted with an optional passphrase, split into
// groups with a group threshold, and each group secret is split again among
// its members. Every resulting share is encoded as a mnemonic of 20 or more
// words from a 1024-word list, protected by a three word RS1024 checksum.
//
//	groups, err := slip39.GenerateMnemonics(secret, slip39.SingleGroup(3, 5))
//	...
//	secret, err := slip39.CombineMnemonics(mnemonics, passphrase)
//
// Recovery verifies a 4-byte HMAC digest embedded in the shared polynomial,
// so a wrong or foreign share is reported as types.ErrChecksumFailed. A
// wrong passphrase cannot be detected and yields a different secret.
//
// See https://github.com/satoshilabs/slips/blob/master/slip-0039.md
package slip39
