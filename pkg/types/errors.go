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

// Package types holds the error taxonomy shared by the secret sharing engine
// and its share encodings.
//
// Every error returned by the engine, the codecs and the format detector
// wraps exactly one of the sentinels below, so callers classify failures with
// errors.Is regardless of which layer produced them:
//
//	shares, err := slip39.ParseMnemonicString(input)
//	if errors.Is(err, types.ErrChecksumFailed) {
//	    // ask the user to re-check the transcription
//	}
package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidThreshold is returned when a threshold is below the scheme minimum.
	ErrInvalidThreshold = errors.New("keyshare: invalid threshold")

	// ErrThresholdExceedsShares is returned when the threshold is larger than
	// the number of shares to create.
	ErrThresholdExceedsShares = errors.New("keyshare: threshold exceeds share count")

	// ErrInsufficientShares is returned when fewer shares than required are
	// supplied for reconstruction.
	ErrInsufficientShares = errors.New("keyshare: insufficient shares")

	// ErrMismatchedShares is returned when shares disagree in length, repeat an
	// index or belong to different share sets.
	ErrMismatchedShares = errors.New("keyshare: mismatched shares")

	// ErrChecksumFailed is returned when an encoded share or a recovered
	// secret digest fails verification.
	ErrChecksumFailed = errors.New("keyshare: checksum verification failed")

	// ErrMalformedEncoding is returned for structural violations of an encoding.
	ErrMalformedEncoding = errors.New("keyshare: malformed encoding")

	// ErrFormatNotRecognized is returned when format detection exhausts every
	// known share encoding.
	ErrFormatNotRecognized = errors.New("keyshare: share format not recognized")
)

// MalformedError describes why an encoded share is structurally invalid.
// It matches ErrMalformedEncoding with errors.Is.
type MalformedError struct {
	// Format names the encoding being decoded (slip39, codex32, hex)
	Format string

	// Reason is a short human readable description of the violation
	Reason string
}

// Malformed returns a *MalformedError for the given format.
func Malformed(format, reason string, args ...any) error {
	if len(args) > 0 {
		reason = fmt.Sprintf(reason, args...)
	}
	return &MalformedError{Format: format, Reason: reason}
}

// Error implements the error interface.
func (e *MalformedError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedEncoding, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrMalformedEncoding, e.Format, e.Reason)
}

// Unwrap returns ErrMalformedEncoding.
func (e *MalformedError) Unwrap() error {
	return ErrMalformedEncoding
}
