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

// Package codex32 implements BIP-93 codex32 strings, a Bech32 based share
// format designed to be checked and combined by hand with paper computers.
//
// A codex32 string is
//
//	ms1 <threshold> <identifier> <index> <payload> <checksum>
//
// where the threshold is a digit (0 for an unshared secret, otherwise 2-9),
// the identifier is four bech32 characters, the index is one bech32
// character ('s' is reserved for the secret) and the checksum is a BCH code
// of 13 characters, or 15 for long strings. Shares are combined by Lagrange
// interpolation over GF(32) character by character, so every derived share
// carries a valid checksum.
//
// See https://github.com/bitcoin/bips/blob/master/bip-0093.mediawiki
package codex32
