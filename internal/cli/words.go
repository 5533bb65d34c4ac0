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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keyshare/pkg/slip39"
)

func newWordsCmd(a *app) *cobra.Command {
	var closest bool
	cmd := &cobra.Command{
		Use:   "words [prefix]",
		Short: "List SLIP-39 words",
		Long: `List the SLIP-39 word list, or the words starting with prefix. Every
word is uniquely identified by its first four letters.

With --closest the single word at or after prefix in sort order is printed,
which is how hardware wallets complete partially typed words.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			printer := a.printer(cmd.OutOrStdout())

			if closest {
				idx, _ := slip39.ClosestWord(prefix)
				if idx < 0 {
					return fmt.Errorf("no word at or after %q", prefix)
				}
				w, _ := slip39.Word(idx)
				return printer.PrintWords([]string{w})
			}

			words := slip39.WordsWithPrefix(prefix)
			if len(words) == 0 {
				return fmt.Errorf("no word starts with %q", prefix)
			}
			return printer.PrintWords(words)
		},
	}
	cmd.Flags().BoolVar(&closest, "closest", false, "print the closest word instead of all matches")
	return cmd
}
