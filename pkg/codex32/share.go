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

package codex32

import (
	"fmt"
	"strings"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

const (
	format = "codex32"

	// HRP is the human readable part of every codex32 string.
	HRP = "ms"

	// Prefix is the HRP followed by the bech32 separator.
	Prefix = HRP + "1"

	// IdentifierLength is the number of identifier characters.
	IdentifierLength = 4

	headerLength = 1 + IdentifierLength + 1

	// MinSecretLength and MaxSecretLength bound the payload in bytes.
	MinSecretLength = 16
	MaxSecretLength = 64

	// MaxThreshold is the largest threshold digit.
	MaxThreshold = 9

	maxPaddingBits = 4
)

// Share is one parsed codex32 string.
type Share struct {
	// Threshold is 0 for an unshared secret, otherwise 2..9
	Threshold int

	// Identifier labels the share set
	Identifier string

	// Index is the share index character; 's' for the secret
	Index byte

	// Payload holds the share data bytes
	Payload []byte

	// Encoded is the full lowercase string
	Encoded string
}

// String returns the encoded share.
func (s *Share) String() string {
	return s.Encoded
}

// Upper returns the encoded share in upper case, the form printed on
// physical backups.
func (s *Share) Upper() string {
	return strings.ToUpper(s.Encoded)
}

// IsSecret reports whether the share is the unshared secret.
func (s *Share) IsSecret() bool {
	return s.Index == SecretIndex
}

// ParseShare parses and verifies a codex32 string. It never panics.
func ParseShare(text string) (*Share, error) {
	lower := strings.ToLower(text)
	if lower != text && strings.ToUpper(text) != text {
		return nil, types.Malformed(format, "mixed case")
	}
	if !strings.HasPrefix(lower, Prefix) {
		return nil, types.Malformed(format, "missing %q prefix", Prefix)
	}

	data := lower[len(Prefix):]
	if len(data) < headerLength+shortCode.length {
		return nil, types.Malformed(format, "string too short")
	}

	threshold, ok := parseThreshold(data[0])
	if !ok {
		return nil, types.Malformed(format, "invalid threshold %q", data[0])
	}

	id := data[1 : 1+IdentifierLength]
	for i := 0; i < len(id); i++ {
		if _, ok := charValue(id[i]); !ok {
			return nil, types.Malformed(format, "invalid identifier character %q", id[i])
		}
	}

	index := data[headerLength-1]
	if _, ok := charValue(index); !ok {
		return nil, types.Malformed(format, "invalid share index %q", index)
	}
	if threshold == 0 && index != SecretIndex {
		return nil, types.Malformed(format, "threshold 0 requires share index %q", SecretIndex)
	}

	values := make([]byte, len(data))
	defer secure.Zero(values)
	for i := 0; i < len(data); i++ {
		v, ok := charValue(data[i])
		if !ok {
			return nil, types.Malformed(format, "invalid character %q at position %d", data[i], len(Prefix)+i+1)
		}
		values[i] = v
	}

	code, ok := codeFor(len(values))
	if !ok {
		return nil, types.Malformed(format, "invalid length %d", len(text))
	}
	if len(values) < headerLength+code.length {
		return nil, types.Malformed(format, "string too short")
	}
	if !code.verify(values) {
		return nil, fmt.Errorf("%w: invalid codex32 checksum", types.ErrChecksumFailed)
	}

	payload, err := decodePayload(values[headerLength : len(values)-code.length])
	if err != nil {
		return nil, err
	}

	return &Share{
		Threshold:  threshold,
		Identifier: id,
		Index:      index,
		Payload:    payload,
		Encoded:    lower,
	}, nil
}

func parseThreshold(c byte) (int, bool) {
	switch {
	case c == '0':
		return 0, true
	case c >= '2' && c <= '9':
		return int(c - '0'), true
	default:
		return 0, false
	}
}

// decodePayload converts 5-bit payload symbols to bytes. At most four
// padding bits are allowed. Their value is not checked: published shares
// carry arbitrary padding.
func decodePayload(symbols []byte) ([]byte, error) {
	payload, leftover := convertBits(symbols, 5, 8, false)
	if leftover > maxPaddingBits {
		secure.Zero(payload)
		return nil, types.Malformed(format, "invalid payload length")
	}
	if len(payload) < MinSecretLength || len(payload) > MaxSecretLength {
		secure.Zero(payload)
		return nil, types.Malformed(format, "payload must be %d to %d bytes, got %d",
			MinSecretLength, MaxSecretLength, len(payload))
	}
	return payload, nil
}

// encode builds the checksummed string from a header and 5-bit payload.
func encode(threshold int, id string, index byte, payload []byte) (string, error) {
	head := fmt.Sprintf("%d%s%c", threshold, id, index)
	values := make([]byte, 0, len(head)+len(payload)+longCode.length)
	defer func() { secure.Zero(values) }()
	for i := 0; i < len(head); i++ {
		v, ok := charValue(head[i])
		if !ok {
			return "", types.Malformed(format, "invalid header character %q", head[i])
		}
		values = append(values, v)
	}
	values = append(values, payload...)

	code := &shortCode
	if len(values)+shortCode.length > maxShortDataLength {
		code = &longCode
		if len(values)+longCode.length > maxLongDataLength {
			return "", types.Malformed(format, "payload too long")
		}
	}
	values = append(values, code.checksum(values)...)
	return Prefix + symbolsToString(values), nil
}

func symbolsToString(values []byte) string {
	var sb strings.Builder
	sb.Grow(len(values))
	for _, v := range values {
		sb.WriteByte(Charset[v])
	}
	return sb.String()
}

func stringToSymbols(s string) []byte {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i], _ = charValue(s[i])
	}
	return out
}
