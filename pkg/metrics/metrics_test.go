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

package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

func TestMetricsEnabled(t *testing.T) {
	// Metrics should be enabled by default
	assert.True(t, IsEnabled())

	Disable()
	assert.False(t, IsEnabled())

	Enable()
	assert.True(t, IsEnabled())
}

func TestRecordOperation(t *testing.T) {
	Enable()
	OperationsTotal.Reset()
	OperationDuration.Reset()

	RecordOperation(OpSplit, SchemeSLIP39, StatusSuccess, 0.5)
	RecordOperation(OpSplit, SchemeSLIP39, StatusSuccess, 0.25)
	RecordOperation(OpCombine, SchemeCodex32, StatusError, 0.01)

	assert.Equal(t, 2, testutil.CollectAndCount(OperationsTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(OperationDuration))
	assert.Equal(t, float64(2), testutil.ToFloat64(OperationsTotal.WithLabelValues(OpSplit, SchemeSLIP39, StatusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(OperationsTotal.WithLabelValues(OpCombine, SchemeCodex32, StatusError)))
}

func TestRecordOperation_Disabled(t *testing.T) {
	OperationsTotal.Reset()
	Disable()
	defer Enable()

	RecordOperation(OpSplit, SchemeRaw, StatusSuccess, 0.1)
	RecordError(OpSplit, SchemeRaw, ErrorTypeOther)
	RecordShares(OpSplit, SchemeRaw, 3)
	RecordDetection("raw")

	assert.Equal(t, 0, testutil.CollectAndCount(OperationsTotal))
}

func TestRecordShares(t *testing.T) {
	Enable()
	SharesTotal.Reset()

	RecordShares(OpSplit, SchemeCodex32, 5)
	RecordShares(OpSplit, SchemeCodex32, 0)
	RecordShares(OpCombine, SchemeCodex32, 3)

	assert.Equal(t, float64(5), testutil.ToFloat64(SharesTotal.WithLabelValues(OpSplit, SchemeCodex32)))
	assert.Equal(t, float64(3), testutil.ToFloat64(SharesTotal.WithLabelValues(OpCombine, SchemeCodex32)))
}

func TestRecordSecretSizeAndDetection(t *testing.T) {
	Enable()
	SecretBytes.Reset()
	FormatDetections.Reset()

	RecordSecretSize(SchemeSLIP39, 32)
	RecordDetection("physical")
	RecordDetection("physical")
	RecordDetection("digital")

	assert.Equal(t, 1, testutil.CollectAndCount(SecretBytes))
	assert.Equal(t, float64(2), testutil.ToFloat64(FormatDetections.WithLabelValues("physical")))
	assert.Equal(t, float64(1), testutil.ToFloat64(FormatDetections.WithLabelValues("digital")))
}

func TestObserve(t *testing.T) {
	Enable()
	OperationsTotal.Reset()
	ErrorsTotal.Reset()

	Observe(OpCombine, SchemeSLIP39, time.Now(), nil)
	Observe(OpCombine, SchemeSLIP39, time.Now(), fmt.Errorf("combine: %w", types.ErrChecksumFailed))

	assert.Equal(t, float64(1), testutil.ToFloat64(OperationsTotal.WithLabelValues(OpCombine, SchemeSLIP39, StatusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(OperationsTotal.WithLabelValues(OpCombine, SchemeSLIP39, StatusError)))
	assert.Equal(t, float64(1), testutil.ToFloat64(ErrorsTotal.WithLabelValues(OpCombine, SchemeSLIP39, ErrorTypeChecksumFailed)))
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{types.ErrInvalidThreshold, ErrorTypeInvalidThreshold},
		{fmt.Errorf("x: %w", types.ErrThresholdExceedsShares), ErrorTypeThresholdExceeds},
		{types.ErrInsufficientShares, ErrorTypeInsufficientShares},
		{types.ErrMismatchedShares, ErrorTypeMismatchedShares},
		{types.ErrChecksumFailed, ErrorTypeChecksumFailed},
		{types.Malformed("codex32", "bad"), ErrorTypeMalformedEncoding},
		{types.ErrFormatNotRecognized, ErrorTypeFormatUnrecognized},
		{errors.New("boom"), ErrorTypeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorType(tt.err), "%v", tt.err)
	}
}

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, Status(nil))
	assert.Equal(t, StatusError, Status(errors.New("x")))
}

func TestWriteTextfile(t *testing.T) {
	Enable()
	OperationsTotal.Reset()
	RecordOperation(OpSplit, SchemeRaw, StatusSuccess, 0.001)

	path := filepath.Join(t.TempDir(), "keyshare.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `keyshare_operations_total{operation="split",scheme="raw",status="success"} 1`)
}
