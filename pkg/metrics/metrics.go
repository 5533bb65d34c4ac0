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

// Package metrics provides Prometheus instrumentation for secret sharing
// operations. It counts splits, reconstructions, share parsing and format
// detection by scheme, and classifies failures by the error taxonomy in
// pkg/types. Labels never carry share material.
package metrics

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

const (
	// Namespace is the Prometheus namespace for all keyshare metrics
	Namespace = "keyshare"

	// Label names
	LabelOperation = "operation"
	LabelScheme    = "scheme"
	LabelStatus    = "status"
	LabelErrorType = "error_type"
	LabelKind      = "kind"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpSplit       = "split"
	OpCombine     = "combine"
	OpParse       = "parse"
	OpExport      = "export"
	OpInterpolate = "interpolate"
	OpChecksum    = "checksum"

	// Scheme names
	SchemeRaw     = "raw"
	SchemeSLIP39  = "slip39"
	SchemeCodex32 = "codex32"
	SchemeRS1024  = "rs1024"

	// Error types
	ErrorTypeInvalidThreshold   = "invalid_threshold"
	ErrorTypeThresholdExceeds   = "threshold_exceeds_shares"
	ErrorTypeInsufficientShares = "insufficient_shares"
	ErrorTypeMismatchedShares   = "mismatched_shares"
	ErrorTypeChecksumFailed     = "checksum_failed"
	ErrorTypeMalformedEncoding  = "malformed_encoding"
	ErrorTypeFormatUnrecognized = "format_not_recognized"
	ErrorTypeOther              = "other"
)

var (
	// OperationsTotal tracks the total number of operations by type, scheme, and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of secret sharing operations by type, scheme, and status",
		},
		[]string{LabelOperation, LabelScheme, LabelStatus},
	)

	// OperationDuration tracks the duration of operations in seconds. SLIP-39
	// splits and combines are dominated by PBKDF2, so the buckets reach into
	// whole seconds for high iteration exponents.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of secret sharing operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{LabelOperation, LabelScheme},
	)

	// ErrorsTotal tracks the total number of errors by operation, scheme, and error type.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation, scheme, and error type",
		},
		[]string{LabelOperation, LabelScheme, LabelErrorType},
	)

	// SharesTotal tracks the number of shares produced or consumed per scheme.
	SharesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shares_total",
			Help:      "Total number of shares produced or consumed by operation and scheme",
		},
		[]string{LabelOperation, LabelScheme},
	)

	// SecretBytes observes the length of secrets being split or recovered.
	SecretBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "secret_bytes",
			Help:      "Length in bytes of secrets split or recovered",
			Buckets:   []float64{16, 20, 24, 32, 48, 64, 128, 256},
		},
		[]string{LabelScheme},
	)

	// FormatDetections tracks which share encoding the format detector chose.
	FormatDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "format_detections_total",
			Help:      "Total number of share strings classified by detected kind",
		},
		[]string{LabelKind},
	)

	// enabled tracks whether metrics collection is enabled
	enabled atomic.Bool
)

func init() {
	// Metrics are enabled by default
	enabled.Store(true)
}

// RecordOperation records an operation with its duration and status.
//
// Example:
//
//	start := time.Now()
//	shares, err := slip39.GenerateShares(secret, cfg)
//	metrics.RecordOperation(metrics.OpSplit, metrics.SchemeSLIP39,
//	    metrics.Status(err), time.Since(start).Seconds())
func RecordOperation(operation, scheme, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, scheme, status).Inc()
	OperationDuration.WithLabelValues(operation, scheme).Observe(duration)
}

// RecordError records an error event. Use ErrorType to derive errorType.
func RecordError(operation, scheme, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, scheme, errorType).Inc()
}

// RecordShares adds count to the shares produced or consumed by an operation.
func RecordShares(operation, scheme string, count int) {
	if !enabled.Load() || count <= 0 {
		return
	}
	SharesTotal.WithLabelValues(operation, scheme).Add(float64(count))
}

// RecordSecretSize observes the length of a split or recovered secret.
func RecordSecretSize(scheme string, n int) {
	if !enabled.Load() {
		return
	}
	SecretBytes.WithLabelValues(scheme).Observe(float64(n))
}

// RecordDetection records the kind chosen by the format detector.
func RecordDetection(kind string) {
	if !enabled.Load() {
		return
	}
	FormatDetections.WithLabelValues(kind).Inc()
}

// Observe records the outcome of an operation that started at start. A
// non-nil err is also counted in ErrorsTotal under its ErrorType.
//
//	defer func(start time.Time) {
//	    metrics.Observe(metrics.OpCombine, metrics.SchemeCodex32, start, err)
//	}(time.Now())
func Observe(operation, scheme string, start time.Time, err error) {
	RecordOperation(operation, scheme, Status(err), time.Since(start).Seconds())
	if err != nil {
		RecordError(operation, scheme, ErrorType(err))
	}
}

// Status maps an error to StatusSuccess or StatusError.
func Status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// ErrorType classifies err by the sentinel it wraps.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrInvalidThreshold):
		return ErrorTypeInvalidThreshold
	case errors.Is(err, types.ErrThresholdExceedsShares):
		return ErrorTypeThresholdExceeds
	case errors.Is(err, types.ErrInsufficientShares):
		return ErrorTypeInsufficientShares
	case errors.Is(err, types.ErrMismatchedShares):
		return ErrorTypeMismatchedShares
	case errors.Is(err, types.ErrChecksumFailed):
		return ErrorTypeChecksumFailed
	case errors.Is(err, types.ErrMalformedEncoding):
		return ErrorTypeMalformedEncoding
	case errors.Is(err, types.ErrFormatNotRecognized):
		return ErrorTypeFormatUnrecognized
	default:
		return ErrorTypeOther
	}
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text exposition format, for pickup by node_exporter's textfile collector.
// Short lived processes such as the CLI use it instead of a scrape endpoint.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
// Useful for testing or when metrics are not desired.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
