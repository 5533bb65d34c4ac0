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

	"github.com/jeremyhahn/go-keyshare/pkg/crypto/entropy"
	"github.com/jeremyhahn/go-keyshare/pkg/health"
	"github.com/jeremyhahn/go-keyshare/pkg/logging"
)

func newHealthCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Self-test the random source and sharing engines",
		Long: `Run the self-tests that should pass before trusting this host with a
secret: the configured random source must produce distinct non-zero output,
and the Shamir, SLIP-39 and codex32 engines must recover known secrets.

A degraded result means a hardware random source was configured but the
software fallback is serving reads. With --strict it fails the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHealth(cmd, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat a degraded result as a failure")
	return cmd
}

func (a *app) runHealth(cmd *cobra.Command, strict bool) error {
	rng, err := a.entropy()
	if err != nil {
		return err
	}
	defer rng.Close()

	want, err := entropy.ParseMode(a.cfg.Entropy.Mode)
	if err != nil {
		return err
	}

	results := health.NewSelfTest(rng, want).Run(cmd.Context())
	status := health.AggregateStatus(results)
	for _, r := range results {
		a.logger.DebugContext(a.ctx, "health check",
			logging.String("check", r.Name),
			logging.String("status", string(r.Status)),
			logging.Duration("latency", r.Latency))
	}

	if err := a.printer(cmd.OutOrStdout()).PrintHealth(&HealthResult{
		Status: status,
		Source: string(rng.Mode()),
		Checks: results,
	}); err != nil {
		return err
	}

	if status == health.StatusUnhealthy || (strict && status == health.StatusDegraded) {
		return fmt.Errorf("self-test %s", status)
	}
	return nil
}
