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

package slip39_test

import (
	"encoding/hex"
	"fmt"

	"github.com/jeremyhahn/go-keyshare/pkg/slip39"
)

func Example() {
	masterSecret, _ := hex.DecodeString("bb54aac4b89dc868ba37d9cc21b2cece")
	passphrase := []byte("TREZOR")

	cfg := slip39.SingleGroup(3, 5)
	cfg.Passphrase = passphrase

	groups, _ := slip39.GenerateMnemonics(masterSecret, cfg)
	fmt.Println(len(groups[0]))

	shares := []string{groups[0][0], groups[0][2], groups[0][4]}
	recovered, _ := slip39.CombineMnemonics(shares, passphrase)
	fmt.Println(hex.EncodeToString(recovered))

	// Output: 5
	// bb54aac4b89dc868ba37d9cc21b2cece
}
