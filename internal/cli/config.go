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
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keyshare/internal/config"
	"github.com/jeremyhahn/go-keyshare/pkg/correlation"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/entropy"
	"github.com/jeremyhahn/go-keyshare/pkg/logging"
	"github.com/jeremyhahn/go-keyshare/pkg/metrics"
)

// Options holds the global CLI flags that are not configuration keys
type Options struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// Verbose enables debug logging
	Verbose bool
}

// app is the state shared by every command of one invocation.
type app struct {
	opts   *Options
	cfg    *config.Config
	logger logging.Logger
	ctx    context.Context
}

func newApp() *app {
	return &app{
		opts:   &Options{},
		cfg:    config.Default(),
		logger: logging.NoOp{},
		ctx:    context.Background(),
	}
}

// setup loads the configuration once flags are parsed.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.opts.ConfigFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	a.logger = cfg.Logger(cmd.ErrOrStderr(), a.opts.Verbose)
	ctx, id := correlation.Ensure(cmd.Context())
	a.ctx = ctx
	cmd.SetContext(ctx)

	a.logger.DebugContext(ctx, "command started",
		logging.String("command", cmd.CommandPath()),
		logging.String("correlation_id", id))
	return nil
}

// finish writes the metrics textfile when one is configured.
func (a *app) finish() {
	if a.cfg == nil || a.cfg.Metrics.Textfile == "" || !metrics.IsEnabled() {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Error("failed to write metrics", logging.Error(err))
	}
}

// printer returns a Printer for the configured output format.
func (a *app) printer(w io.Writer) *Printer {
	return NewPrinter(a.cfg.Output, w)
}

// entropy opens the configured random source.
func (a *app) entropy() (entropy.Resolver, error) {
	rng, err := a.cfg.EntropyResolver()
	if err != nil {
		return nil, fmt.Errorf("failed to open random source: %w", err)
	}
	a.logger.DebugContext(a.ctx, "random source ready", logging.String("mode", string(rng.Mode())))
	return rng, nil
}
