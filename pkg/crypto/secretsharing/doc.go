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

// Package secretsharing implements Shamir's Secret Sharing Scheme over
// GF(2^8).
//
// A secret is divided into N shares so that any M of them reconstruct it
// exactly while M-1 or fewer reveal nothing about it. Each secret byte is the
// constant term of its own polynomial of degree M-1:
//
//	p(x) = a0 + a1*x + a2*x^2 + ... + a(M-1)*x^(M-1)
//
// Share i holds p(x_i) for every byte position. Reconstruction is Lagrange
// interpolation at x = 0. Interpolate evaluates at any x, which the SLIP-39
// codec uses to place its digest and secret at x = 254 and x = 255.
//
// The field is the Rijndael field with reduction polynomial 0x11B, the same
// one used by HashiCorp Vault's shamir package and its forks, so shares
// produced by those libraries reconstruct here and vice versa. Share.Tagged
// produces their Data || Index byte layout.
//
// # Usage Example
//
//	shares, err := secretsharing.SplitSecret(secret, &secretsharing.ShareConfig{
//	    Threshold:   3,
//	    TotalShares: 5,
//	})
//	if err != nil {
//	    return err
//	}
//
//	recovered, err := secretsharing.ReconstructSecret(shares[:3])
//
// # Constraints
//
//   - 2 <= M <= N <= 255
//   - Share indices are bytes (1-255), index 0 is reserved for the secret
//   - Reconstruction cannot detect a wrong share or too few shares; the
//     SLIP-39 and codex32 encodings layer checksums on top
//
// # References
//
// - Shamir, Adi (1979). "How to Share a Secret"
// - SLIP-0039: Shamir's Secret-Sharing for Mnemonic Codes
package secretsharing
