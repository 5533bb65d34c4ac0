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
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeremyhahn/go-keyshare/internal/password"
	"github.com/jeremyhahn/go-keyshare/internal/secure"
)

// PassphraseEnvVar supplies the SLIP-39 passphrase non-interactively
const PassphraseEnvVar = "KEYSHARE_PASSPHRASE"

// maxInputSize bounds stdin reads
const maxInputSize = 1 << 20

// readSecret decodes the hex secret given as the only argument or on stdin.
// The caller zeroes the result.
func readSecret(cmd *cobra.Command, args []string) ([]byte, error) {
	var text []byte
	if len(args) > 0 {
		text = []byte(args[0])
	} else {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxInputSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read secret: %w", err)
		}
		text = data
	}
	defer secure.Zero(text)

	trimmed := bytes.TrimSpace(text)
	if len(trimmed) == 0 {
		return nil, errors.New("no secret given: pass it as an argument or on stdin")
	}
	secret := make([]byte, hex.DecodedLen(len(trimmed)))
	if _, err := hex.Decode(secret, trimmed); err != nil {
		secure.Zero(secret)
		return nil, fmt.Errorf("secret must be hex encoded: %w", err)
	}
	return secret, nil
}

// readShareLines returns the shares given as arguments, or one per stdin
// line. Blank lines and lines starting with # are skipped.
func readShareLines(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var lines []string
	scanner := bufio.NewScanner(io.LimitReader(cmd.InOrStdin(), maxInputSize))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shares: %w", err)
	}
	if len(lines) == 0 {
		return nil, errors.New("no shares given: pass them as arguments or one per line on stdin")
	}
	return lines, nil
}

// getPassphrase returns the passphrase from KEYSHARE_PASSPHRASE, or prompts
// for it on the terminal when prompt is set. confirm asks twice. Without
// either source the passphrase is empty. The caller clears the result.
func getPassphrase(cmd *cobra.Command, prompt, confirm bool) (*password.Passphrase, error) {
	if envPass := os.Getenv(PassphraseEnvVar); envPass != "" {
		return password.Take([]byte(envPass))
	}
	if !prompt {
		return &password.Passphrase{}, nil
	}

	passphrase, err := readPassphrase(cmd, "Passphrase: ")
	if err != nil {
		return nil, err
	}
	if !confirm {
		return passphrase, nil
	}

	again, err := readPassphrase(cmd, "Confirm passphrase: ")
	if err != nil {
		passphrase.Clear()
		return nil, err
	}
	if err := passphrase.Confirm(again); err != nil {
		passphrase.Clear()
		return nil, err
	}
	return passphrase, nil
}

func readPassphrase(cmd *cobra.Command, prompt string) (*password.Passphrase, error) {
	b, err := readPassword(cmd, prompt)
	if err != nil {
		return nil, err
	}
	return password.Take(b)
}

func readPassword(cmd *cobra.Command, prompt string) ([]byte, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	defer fmt.Fprintln(cmd.ErrOrStderr())

	// shares may be arriving on stdin, so fall back to the controlling
	// terminal when stdin is not one
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		return term.ReadPassword(fd)
	}
	tty, err := os.Open("/dev/tty")
	if err != nil {
		return nil, fmt.Errorf("cannot read passphrase: stdin is not a terminal; set %s", PassphraseEnvVar)
	}
	defer tty.Close()
	return term.ReadPassword(int(tty.Fd()))
}
