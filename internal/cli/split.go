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
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/codex32"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-keyshare/pkg/logging"
	"github.com/jeremyhahn/go-keyshare/pkg/metrics"
	"github.com/jeremyhahn/go-keyshare/pkg/slip39"
)

type splitOptions struct {
	scheme            string
	threshold         int
	shares            int
	groups            string
	groupThreshold    int
	passphrasePrompt  bool
	identifier        string
	iterationExponent int
	extendable        bool
	upper             bool
}

func newSplitCmd(a *app) *cobra.Command {
	opts := &splitOptions{}
	cmd := &cobra.Command{
		Use:   "split [hex-secret]",
		Short: "Split a secret into shares",
		Long: `Split a hex encoded secret, given as an argument or on stdin, into
shares. Any threshold of the shares reconstruct the secret.

SLIP-39 secrets must be at least 16 bytes and of even length; codex32
secrets must be 16 to 64 bytes. SLIP-39 groups are given as a comma
separated list of member thresholds and counts:

  keyshare split --scheme slip39 --groups 2of3,3of5 --group-threshold 2 <secret>

The SLIP-39 passphrase is read from $KEYSHARE_PASSPHRASE, or prompted for
with --passphrase-prompt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSplit(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scheme, "scheme", "s", metrics.SchemeSLIP39,
		"share scheme (raw, slip39, codex32)")
	cmd.Flags().IntVarP(&opts.threshold, "threshold", "t", 2,
		"number of shares required to reconstruct")
	cmd.Flags().IntVarP(&opts.shares, "shares", "n", 3,
		"number of shares to create")
	cmd.Flags().StringVar(&opts.groups, "groups", "",
		"slip39 groups as MofN list, e.g. 2of3,3of5 (overrides -t and -n)")
	cmd.Flags().IntVar(&opts.groupThreshold, "group-threshold", 1,
		"slip39 number of groups required")
	cmd.Flags().BoolVar(&opts.passphrasePrompt, "passphrase-prompt", false,
		"slip39 prompt for a passphrase")
	cmd.Flags().IntVar(&opts.iterationExponent, "iteration-exponent", slip39.DefaultIterationExponent,
		"slip39 PBKDF2 iteration exponent (0-15)")
	cmd.Flags().BoolVar(&opts.extendable, "extendable", true,
		"slip39 create an extendable share set")
	cmd.Flags().StringVar(&opts.identifier, "id", "",
		"codex32 4 character identifier (random when empty)")
	cmd.Flags().BoolVar(&opts.upper, "upper", false,
		"codex32 print shares in upper case")

	return cmd
}

func (a *app) runSplit(cmd *cobra.Command, args []string, opts *splitOptions) error {
	switch opts.scheme {
	case metrics.SchemeRaw, metrics.SchemeSLIP39, metrics.SchemeCodex32:
	default:
		return fmt.Errorf("unknown scheme: %s (must be raw, slip39, or codex32)", opts.scheme)
	}
	if !cmd.Flags().Changed("iteration-exponent") {
		opts.iterationExponent = a.cfg.SLIP39.IterationExponent
	}
	if !cmd.Flags().Changed("extendable") {
		opts.extendable = a.cfg.SLIP39.Extendable
	}
	if opts.identifier == "" {
		opts.identifier = a.cfg.Codex32.Identifier
	}

	secret, err := readSecret(cmd, args)
	if err != nil {
		return err
	}
	buf := secure.NewBuffer(secret)
	secure.Zero(secret)
	defer buf.Destroy()

	rng, err := a.entropy()
	if err != nil {
		return err
	}
	defer rng.Close()

	start := time.Now()
	var result *SplitResult
	switch opts.scheme {
	case metrics.SchemeRaw:
		result, err = splitRaw(buf.Bytes(), opts, rng)
	case metrics.SchemeSLIP39:
		result, err = a.splitSLIP39(cmd, buf.Bytes(), opts, rng)
	case metrics.SchemeCodex32:
		result, err = splitCodex32(buf.Bytes(), opts, rng)
	}
	metrics.Observe(metrics.OpSplit, opts.scheme, start, err)
	if err != nil {
		a.logger.ErrorContext(a.ctx, "split failed",
			logging.String("scheme", opts.scheme),
			logging.String("error_type", metrics.ErrorType(err)))
		return err
	}

	total := 0
	for _, g := range result.Groups {
		total += len(g.Shares)
	}
	metrics.RecordShares(metrics.OpSplit, opts.scheme, total)
	metrics.RecordSecretSize(opts.scheme, len(buf.Bytes()))
	a.logger.InfoContext(a.ctx, "secret split",
		logging.String("scheme", opts.scheme),
		logging.Int("groups", len(result.Groups)),
		logging.Int("shares", total),
		logging.String("rng", string(rng.Mode())))

	return a.printer(cmd.OutOrStdout()).PrintSplit(result)
}

func splitRaw(secret []byte, opts *splitOptions, rng io.Reader) (*SplitResult, error) {
	shares, err := secretsharing.SplitSecret(secret, &secretsharing.ShareConfig{
		Threshold:   opts.threshold,
		TotalShares: opts.shares,
		Rand:        rng,
	})
	if err != nil {
		return nil, err
	}

	group := GroupResult{Threshold: opts.threshold, Count: opts.shares}
	for i := range shares {
		tagged := shares[i].Tagged()
		group.Shares = append(group.Shares, hex.EncodeToString(tagged))
		secure.Zero(tagged)
		shares[i].Zero()
	}
	return &SplitResult{
		Scheme:         metrics.SchemeRaw,
		GroupThreshold: 1,
		Groups:         []GroupResult{group},
	}, nil
}

func (a *app) splitSLIP39(cmd *cobra.Command, secret []byte, opts *splitOptions, rng io.Reader) (*SplitResult, error) {
	var cfg *slip39.Config
	if opts.groups != "" {
		groups, err := parseGroups(opts.groups)
		if err != nil {
			return nil, err
		}
		cfg = slip39.NewConfig(opts.groupThreshold, groups...)
	} else {
		cfg = slip39.SingleGroup(opts.threshold, opts.shares)
	}
	cfg.IterationExponent = opts.iterationExponent
	cfg.Extendable = opts.extendable
	cfg.Rand = rng

	passphrase, err := getPassphrase(cmd, opts.passphrasePrompt, true)
	if err != nil {
		return nil, err
	}
	defer passphrase.Clear()
	cfg.Passphrase = passphrase.Bytes()

	groups, err := slip39.GenerateShares(secret, cfg)
	if err != nil {
		return nil, err
	}

	result := &SplitResult{
		Scheme:         metrics.SchemeSLIP39,
		GroupThreshold: cfg.GroupThreshold,
	}
	for i, members := range groups {
		g := GroupResult{
			Threshold: cfg.Groups[i].MemberThreshold,
			Count:     cfg.Groups[i].MemberCount,
		}
		for _, s := range members {
			g.Shares = append(g.Shares, s.Mnemonic())
			secure.Zero(s.Value)
		}
		result.Groups = append(result.Groups, g)
	}
	return result, nil
}

func splitCodex32(secret []byte, opts *splitOptions, rng io.Reader) (*SplitResult, error) {
	shares, err := codex32.GenerateShares(secret, &codex32.Config{
		Threshold:   opts.threshold,
		TotalShares: opts.shares,
		Identifier:  strings.ToLower(opts.identifier),
		Rand:        rng,
	})
	if err != nil {
		return nil, err
	}

	group := GroupResult{Threshold: opts.threshold, Count: opts.shares}
	for _, s := range shares {
		if opts.upper {
			group.Shares = append(group.Shares, s.Upper())
		} else {
			group.Shares = append(group.Shares, s.String())
		}
		secure.Zero(s.Payload)
	}
	return &SplitResult{
		Scheme:         metrics.SchemeCodex32,
		Identifier:     shares[0].Identifier,
		GroupThreshold: 1,
		Groups:         []GroupResult{group},
	}, nil
}

// parseGroups parses "2of3,3of5" (or "2/3,3/5") into group configurations.
func parseGroups(s string) ([]slip39.GroupConfig, error) {
	var groups []slip39.GroupConfig
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		m, n, ok := strings.Cut(part, "of")
		if !ok {
			m, n, ok = strings.Cut(part, "/")
		}
		if !ok {
			return nil, fmt.Errorf("invalid group %q: expected MofN", part)
		}
		threshold, err := strconv.Atoi(strings.TrimSpace(m))
		if err != nil {
			return nil, fmt.Errorf("invalid group %q: %w", part, err)
		}
		count, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil, fmt.Errorf("invalid group %q: %w", part, err)
		}
		groups = append(groups, slip39.GroupConfig{MemberThreshold: threshold, MemberCount: count})
	}
	return groups, nil
}
