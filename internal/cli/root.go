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
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the keyshare command tree.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

func newRootCommand() (*cobra.Command, *app) {
	a := newApp()

	rootCmd := &cobra.Command{
		Use:   "keyshare",
		Short: "go-keyshare CLI - Threshold secret sharing tool",
		Long: `keyshare splits a secret into shares so that any threshold of them
reconstruct it and fewer reveal nothing, and recombines them.

Supported schemes:
  - raw:     Shamir shares over GF(256), hex encoded
  - slip39:  SLIP-39 mnemonic shares with optional groups and passphrase
  - codex32: BIP-93 codex32 strings for hand-copied backups`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.ConfigFile, "config", "",
		"config file (default is $HOME/.keyshare.yaml)")
	flags.StringP("output", "o", "text",
		"output format (text, json, yaml)")
	flags.BoolVarP(&a.opts.Verbose, "verbose", "v", false,
		"verbose output")
	flags.String("rng", "auto",
		"random source (auto, software, tpm2, pkcs11)")
	flags.String("log-level", "warn",
		"log level (debug, info, warn, error)")
	flags.String("metrics-file", "",
		"write Prometheus metrics to this file on exit")

	// Add subcommands
	rootCmd.AddCommand(newSplitCmd(a))
	rootCmd.AddCommand(newCombineCmd(a))
	rootCmd.AddCommand(newInspectCmd(a))
	rootCmd.AddCommand(newChecksumCmd(a))
	rootCmd.AddCommand(newWordsCmd(a))
	rootCmd.AddCommand(newHealthCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	return rootCmd, a
}

// Execute runs the root command, printing any error to stderr
func Execute() error {
	rootCmd, a := newRootCommand()
	err := rootCmd.Execute()
	a.finish()
	if err != nil {
		printer := a.printer(os.Stderr)
		_ = printer.PrintError(err) // Error printing to stderr is best-effort
	}
	return err
}
