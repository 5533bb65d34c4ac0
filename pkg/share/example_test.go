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

package share_test

import (
	"fmt"

	"github.com/jeremyhahn/go-keyshare/pkg/share"
)

func ExampleParseString() {
	for _, in := range []string{
		"ms10testsxxxxxxxxxxxxxxxxxxxxxxxxxx4nzvca9cmczlw",
		"deadbeef",
	} {
		s, err := share.ParseString(in)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(s.Kind, share.ExportString(s))
	}
	// Output:
	// physical ms10testsxxxxxxxxxxxxxxxxxxxxxxxxxx4nzvca9cmczlw
	// raw deadbeef
}
