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
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keyshare/pkg/crypto/rs1024"
	"github.com/jeremyhahn/go-keyshare/pkg/metrics"
	"github.com/jeremyhahn/go-keyshare/pkg/slip39"
	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

func newChecksumCmd(a *app) *cobra.Command {
	var extendable bool

	cmd := &cobra.Command{
		Use:   "checksum",
		Short: "Compute or verify RS1024 checksums over SLIP-39 words",
		Long: `Compute or verify the RS1024 checksum that protects SLIP-39 mnemonics.
Words are read from the arguments or from stdin, and may be abbreviated to
their first four letters.`,
	}
	cmd.PersistentFlags().BoolVar(&extendable, "extendable", false,
		"use the shamir_extendable customization string")

	createCmd := &cobra.Command{
		Use:   "create [word...]",
		Short: "Append three checksum words",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChecksum(cmd, args, extendable, false)
		},
	}
	verifyCmd := &cobra.Command{
		Use:   "verify [word...]",
		Short: "Verify words ending in their checksum",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChecksum(cmd, args, extendable, true)
		},
	}
	cmd.AddCommand(createCmd, verifyCmd)
	return cmd
}

func (a *app) runChecksum(cmd *cobra.Command, args []string, extendable, verify bool) (err error) {
	defer func(start time.Time) {
		metrics.Observe(metrics.OpChecksum, metrics.SchemeRS1024, start, err)
	}(time.Now())

	words, err := readWords(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	data := make([]uint16, len(words))
	for i, w := range words {
		idx, ok := slip39.WordIndex(w)
		if !ok {
			return types.Malformed("slip39", "unknown word %q", w)
		}
		data[i] = uint16(idx)
		words[i], _ = slip39.Word(idx)
	}

	customization := rs1024.Customization(extendable)
	result := &ChecksumResult{Customization: customization, Words: words}
	printer := a.printer(cmd.OutOrStdout())

	if verify {
		valid := rs1024.VerifyChecksum(customization, data)
		result.Valid = &valid
		if perr := printer.PrintChecksum(result); perr != nil {
			return perr
		}
		if !valid {
			return fmt.Errorf("rs1024: %w", types.ErrChecksumFailed)
		}
		return nil
	}

	for _, c := range rs1024.CreateChecksum(customization, data) {
		w, _ := slip39.Word(int(c))
		result.Checksum = append(result.Checksum, w)
	}
	return printer.PrintChecksum(result)
}

func readWords(r io.Reader, args []string) ([]string, error) {
	var words []string
	if len(args) > 0 {
		for _, arg := range args {
			words = append(words, strings.Fields(arg)...)
		}
	} else {
		scanner := bufio.NewScanner(io.LimitReader(r, maxInputSize))
		scanner.Split(bufio.ScanWords)
		for scanner.Scan() {
			words = append(words, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read words: %w", err)
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("no words given")
	}
	return words, nil
}
