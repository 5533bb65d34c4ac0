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

package health

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keyshare/pkg/crypto/entropy"
)

// fakeSource is a Resolver serving reads from r under a fixed mode.
type fakeSource struct {
	r         io.Reader
	mode      entropy.Mode
	available bool
}

func (f *fakeSource) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *fakeSource) Mode() entropy.Mode         { return f.mode }
func (f *fakeSource) Available() bool            { return f.available }
func (f *fakeSource) Close() error               { return nil }

type constReader byte

func (c constReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(c)
	}
	return len(p), nil
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestChecker_RunOrderAndNames(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("b", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	c.RegisterCheck("a", func(ctx context.Context) CheckResult {
		return CheckResult{Name: "a", Status: StatusDegraded}
	})
	c.RegisterCheck("ignored", nil)

	assert.Equal(t, []string{"a", "b"}, c.Names())

	results := c.Run(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Name)
	assert.Equal(t, "b", results[1].Name, "name filled in from registration")
	assert.Equal(t, StatusDegraded, AggregateStatus(results))

	c.UnregisterCheck("a")
	assert.Equal(t, []string{"b"}, c.Names())
}

func TestChecker_RunCancelled(t *testing.T) {
	c := NewChecker()
	called := false
	c.RegisterCheck("x", func(ctx context.Context) CheckResult {
		called = true
		return CheckResult{Status: StatusHealthy}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := c.Run(ctx)
	require.Len(t, results, 1)
	assert.False(t, called)
	assert.Equal(t, StatusUnhealthy, results[0].Status)
	assert.NotEmpty(t, results[0].Error)
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]CheckResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i].Status = s
			}
			assert.Equal(t, tt.want, AggregateStatus(results))
		})
	}
}

func TestEntropyCheck(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		source entropy.Resolver
		want   entropy.Mode
		status Status
	}{
		{"software", entropy.Software(), entropy.ModeSoftware, StatusHealthy},
		{"auto accepts any", entropy.Software(), entropy.ModeAuto, StatusHealthy},
		{"fallback engaged", entropy.Software(), entropy.ModeTPM2, StatusDegraded},
		{"unavailable", &fakeSource{r: entropy.Software(), mode: entropy.ModeTPM2}, entropy.ModeTPM2, StatusUnhealthy},
		{"all zero", &fakeSource{r: constReader(0), mode: entropy.ModeSoftware, available: true}, entropy.ModeSoftware, StatusUnhealthy},
		{"stuck", &fakeSource{r: constReader(0xA5), mode: entropy.ModeSoftware, available: true}, entropy.ModeSoftware, StatusUnhealthy},
		{"read error", &fakeSource{r: errReader{}, mode: entropy.ModeSoftware, available: true}, entropy.ModeSoftware, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EntropyCheck(tt.source, tt.want)(ctx)
			assert.Equal(t, CheckEntropy, result.Name)
			assert.Equal(t, tt.status, result.Status, result.Message+result.Error)
		})
	}

	assert.Equal(t, StatusUnhealthy, EntropyCheck(nil, entropy.ModeAuto)(ctx).Status)
}

func TestEngineChecks(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, StatusHealthy, ShamirCheck(entropy.Software())(ctx).Status)
	assert.Equal(t, StatusHealthy, SLIP39Check(entropy.Software())(ctx).Status)
	assert.Equal(t, StatusHealthy, Codex32Check()(ctx).Status)

	short := bytes.NewReader([]byte{1, 2, 3})
	result := ShamirCheck(short)(ctx)
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.NotEmpty(t, result.Error)

	assert.Equal(t, StatusUnhealthy, SLIP39Check(errReader{})(ctx).Status)
}

func TestNewSelfTest(t *testing.T) {
	c := NewSelfTest(entropy.Software(), entropy.ModeSoftware)
	assert.Equal(t, []string{CheckCodex32, CheckEntropy, CheckShamir, CheckSLIP39}, c.Names())

	results := c.Run(context.Background())
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, StatusHealthy, r.Status, "%s: %s%s", r.Name, r.Message, r.Error)
	}
	assert.Equal(t, StatusHealthy, AggregateStatus(results))
}
