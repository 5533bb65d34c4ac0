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

package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeremyhahn/go-keyshare/pkg/correlation"
	"github.com/jeremyhahn/go-keyshare/pkg/logging"
	"github.com/jeremyhahn/go-keyshare/pkg/metrics"
	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

// Detector parses share strings and records what it saw. Share values are
// never logged, only their kind and size.
type Detector struct {
	logger logging.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLogger sets the detector logger. The default discards output.
func WithLogger(logger logging.Logger) DetectorOption {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector returns a Detector.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{logger: logging.NoOp{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Parse is ParseString with logging and metrics.
func (d *Detector) Parse(ctx context.Context, input string) (*AnyShare, error) {
	start := time.Now()
	kind := Detect(input)

	s, err := ParseString(input)
	metrics.RecordDetection(kind.String())
	metrics.Observe(metrics.OpParse, kind.Scheme(), start, err)

	if err != nil {
		d.logger.DebugContext(ctx, "share rejected",
			logging.String("kind", kind.String()),
			logging.String("error_type", metrics.ErrorType(err)),
			logging.Int("length", len(input)))
		return nil, err
	}
	d.logger.DebugContext(ctx, "share parsed",
		logging.String("kind", kind.String()),
		logging.Int("length", len(input)))
	return s, nil
}

// ParseAll parses every input, failing on the first invalid one. All
// shares must share one kind. Returned shares are the caller's to zero.
func (d *Detector) ParseAll(ctx context.Context, inputs []string) ([]*AnyShare, error) {
	ctx, _ = correlation.Ensure(ctx)

	out := make([]*AnyShare, 0, len(inputs))
	fail := func(err error) ([]*AnyShare, error) {
		for _, s := range out {
			s.Zero()
		}
		return nil, err
	}

	for i, in := range inputs {
		s, err := d.Parse(ctx, in)
		if err != nil {
			return fail(fmt.Errorf("share %d: %w", i+1, err))
		}
		out = append(out, s)
	}
	if _, err := CommonKind(out); err != nil {
		return fail(err)
	}
	return out, nil
}

// ErrMixedKinds is returned by CommonKind when shares use different encodings.
var ErrMixedKinds = errors.New("share: shares use different encodings")

// CommonKind returns the kind shared by every element of shares.
func CommonKind(shares []*AnyShare) (Kind, error) {
	if len(shares) == 0 {
		return KindUnknown, fmt.Errorf("%w: no shares", types.ErrInsufficientShares)
	}
	kind := shares[0].Kind
	for _, s := range shares[1:] {
		if s.Kind != kind {
			return KindUnknown, fmt.Errorf("%w: %w: %s and %s",
				types.ErrMismatchedShares, ErrMixedKinds, kind, s.Kind)
		}
	}
	return kind, nil
}
