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

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keyshare/pkg/correlation"
)

func newJSONLogger(buf *bytes.Buffer, level Level) *SlogAdapter {
	return NewSlogAdapter(&SlogConfig{Level: level, Format: FormatJSON, Output: buf})
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestSlogAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, LevelDebug)

	log.Info("split", String("scheme", "slip39"), Int("shares", 5), Bool("grouped", false), Error(errors.New("boom")))

	record := decode(t, &buf)
	assert.Equal(t, "split", record["msg"])
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "slip39", record["scheme"])
	assert.Equal(t, float64(5), record["shares"])
	assert.Equal(t, false, record["grouped"])
	assert.Equal(t, "boom", record["error"])
}

func TestSlogAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, LevelWarn)

	log.Debug("hidden")
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSlogAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, LevelInfo).With(String("component", "detector"))

	log.Info("parsed")
	record := decode(t, &buf)
	assert.Equal(t, "detector", record["component"])
}

func TestSlogAdapter_Context(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf, LevelDebug)

	ctx := correlation.WithCorrelationID(context.Background(), "req-1")
	log.InfoContext(ctx, "combine")
	assert.Equal(t, "req-1", decode(t, &buf)["correlation_id"])

	buf.Reset()
	log.ErrorContext(context.Background(), "combine")
	_, ok := decode(t, &buf)["correlation_id"]
	assert.False(t, ok)
}

func TestRedacted(t *testing.T) {
	f := Redacted("secret", []byte{1, 2, 3})
	assert.Equal(t, "secret", f.Key)
	assert.Equal(t, "[REDACTED 3 bytes]", f.Value)
}

func TestNoOp(t *testing.T) {
	var log Logger = NoOp{}
	assert.NotPanics(t, func() {
		log.Info("x")
		log.With(String("a", "b")).ErrorContext(context.Background(), "y")
	})
}
