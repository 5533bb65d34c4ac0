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

package secretsharing_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/jeremyhahn/go-keyshare/pkg/crypto/secretsharing"
)

// ExampleShamir demonstrates basic usage of Shamir's Secret Sharing.
func ExampleShamir() {
	// any 3 of the 5 shares reconstruct the secret
	shamir, err := secretsharing.NewShamir(&secretsharing.ShareConfig{
		Threshold:   3,
		TotalShares: 5,
	})
	if err != nil {
		log.Fatal(err)
	}

	secret := []byte("0123456789abcdef")
	shares, err := shamir.Split(secret)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Secret split into %d shares\n", len(shares))

	reconstructed, err := shamir.Combine([]secretsharing.Share{shares[0], shares[2], shares[4]})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Secret reconstructed successfully: %v\n", bytes.Equal(reconstructed, secret))

	// Output:
	// Secret split into 5 shares
	// Secret reconstructed successfully: true
}

// ExampleInterpolate recovers a lost share from any three others.
func ExampleInterpolate() {
	shares, _ := secretsharing.SplitSecret([]byte("0123456789abcdef"), &secretsharing.ShareConfig{
		Threshold:   3,
		TotalShares: 5,
	})

	lost := shares[3]
	recovered, _ := secretsharing.Interpolate([]secretsharing.Share{shares[0], shares[1], shares[4]}, lost.Index)

	fmt.Println(bytes.Equal(recovered, lost.Data))
	// Output: true
}
