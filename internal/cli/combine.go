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
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/codex32"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-keyshare/pkg/logging"
	"github.com/jeremyhahn/go-keyshare/pkg/metrics"
	"github.com/jeremyhahn/go-keyshare/pkg/share"
	"github.com/jeremyhahn/go-keyshare/pkg/slip39"
)

func newCombineCmd(a *app) *cobra.Command {
	var passphrasePrompt bool
	cmd := &cobra.Command{
		Use:   "combine [share...]",
		Short: "Reconstruct a secret from shares",
		Long: `Reconstruct a secret from shares given as arguments or one per line
on stdin. The encoding of every share is detected automatically and all
shares must use the same one. Lines starting with # are ignored, so the
text output of split can be fed back unchanged.

The recovered secret is printed hex encoded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCombine(cmd, args, passphrasePrompt)
		},
	}
	cmd.Flags().BoolVar(&passphrasePrompt, "passphrase-prompt", false,
		"slip39 prompt for the passphrase")
	return cmd
}

func (a *app) runCombine(cmd *cobra.Command, args []string, passphrasePrompt bool) error {
	lines, err := readShareLines(cmd, args)
	if err != nil {
		return err
	}

	detector := share.NewDetector(share.WithLogger(a.logger))
	shares, err := detector.ParseAll(a.ctx, lines)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range shares {
			s.Zero()
		}
	}()

	kind := shares[0].Kind
	start := time.Now()
	var secret []byte
	switch kind {
	case share.KindRaw:
		secret, err = combineRaw(shares)
	case share.KindDigital:
		secret, err = combineDigital(cmd, shares, passphrasePrompt)
	case share.KindPhysical:
		secret, err = combinePhysical(shares)
	default:
		err = fmt.Errorf("unsupported share kind: %s", kind)
	}
	metrics.Observe(metrics.OpCombine, kind.Scheme(), start, err)
	if err != nil {
		a.logger.ErrorContext(a.ctx, "combine failed",
			logging.String("scheme", kind.Scheme()),
			logging.String("error_type", metrics.ErrorType(err)))
		return err
	}
	defer secure.Zero(secret)

	metrics.RecordShares(metrics.OpCombine, kind.Scheme(), len(shares))
	metrics.RecordSecretSize(kind.Scheme(), len(secret))
	a.logger.InfoContext(a.ctx, "secret recovered",
		logging.String("scheme", kind.Scheme()),
		logging.Int("shares", len(shares)))

	return a.printer(cmd.OutOrStdout()).PrintSecret(&SecretResult{
		Scheme: kind.Scheme(),
		Secret: hex.EncodeToString(secret),
		Length: len(secret),
	})
}

func combineRaw(shares []*share.AnyShare) ([]byte, error) {
	raw := make([]secretsharing.Share, 0, len(shares))
	defer func() {
		for i := range raw {
			raw[i].Zero()
		}
	}()
	for i, s := range shares {
		sh, err := secretsharing.ShareFromTagged(s.Raw)
		if err != nil {
			return nil, fmt.Errorf("share %d: %w", i+1, err)
		}
		raw = append(raw, sh)
	}
	return secretsharing.ReconstructSecret(raw)
}

func combineDigital(cmd *cobra.Command, shares []*share.AnyShare, prompt bool) ([]byte, error) {
	digital := make([]*slip39.Share, len(shares))
	for i, s := range shares {
		digital[i] = s.Digital
	}
	passphrase, err := getPassphrase(cmd, prompt, false)
	if err != nil {
		return nil, err
	}
	defer passphrase.Clear()
	return slip39.CombineShares(digital, passphrase.Bytes())
}

func combinePhysical(shares []*share.AnyShare) ([]byte, error) {
	physical := make([]*codex32.Share, len(shares))
	for i, s := range shares {
		physical[i] = s.Physical
	}
	return codex32.CombineShares(physical)
}
