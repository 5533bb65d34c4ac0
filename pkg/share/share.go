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

// Package share wraps the share encodings of go-keyshare in a single
// transport type and recognises which encoding a string uses.
//
// An AnyShare is for display and transport only. Reconstruction always
// happens in the owning codec: slip39.CombineShares, codex32.CombineShares
// or secretsharing.ReconstructSecret.
//
// Detection rules, applied to the trimmed input in order:
//
//  1. a case-insensitive "ms1" prefix is a codex32 (physical) share
//  2. anything containing whitespace is a SLIP-39 (digital) mnemonic
//  3. a non-empty, even-length hex string is a raw share
//
// Everything else fails with types.ErrFormatNotRecognized.
package share

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/codex32"
	"github.com/jeremyhahn/go-keyshare/pkg/slip39"
	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

// Kind identifies the encoding held by an AnyShare.
type Kind int

const (
	// KindUnknown is the zero value
	KindUnknown Kind = iota

	// KindDigital is a SLIP-39 mnemonic
	KindDigital

	// KindPhysical is a codex32 string
	KindPhysical

	// KindRaw is hex encoded bytes
	KindRaw
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindDigital:
		return "digital"
	case KindPhysical:
		return "physical"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Scheme returns the encoding scheme behind the kind.
func (k Kind) Scheme() string {
	switch k {
	case KindDigital:
		return "slip39"
	case KindPhysical:
		return "codex32"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// AnyShare holds exactly one share encoding, selected by Kind.
type AnyShare struct {
	Kind     Kind
	Digital  *slip39.Share
	Physical *codex32.Share

	// Raw holds share bytes. Shares produced by the raw engine use the
	// Data || Index layout of secretsharing.Share.Tagged.
	Raw []byte
}

// Digital wraps a SLIP-39 share.
func Digital(s *slip39.Share) *AnyShare {
	return &AnyShare{Kind: KindDigital, Digital: s}
}

// Physical wraps a codex32 share.
func Physical(s *codex32.Share) *AnyShare {
	return &AnyShare{Kind: KindPhysical, Physical: s}
}

// Raw wraps raw share bytes.
func Raw(b []byte) *AnyShare {
	return &AnyShare{Kind: KindRaw, Raw: b}
}

// Zero overwrites the share value held by s.
func (s *AnyShare) Zero() {
	if s == nil {
		return
	}
	switch {
	case s.Digital != nil:
		secure.Zero(s.Digital.Value)
	case s.Physical != nil:
		secure.Zero(s.Physical.Payload)
	}
	secure.Zero(s.Raw)
}

// ExportString renders s in its transport form: space separated words for
// digital shares, the lowercase codex32 string for physical shares and
// lowercase hex for raw shares. A share with no value renders as "".
func ExportString(s *AnyShare) string {
	if s == nil {
		return ""
	}
	switch s.Kind {
	case KindDigital:
		if s.Digital == nil {
			return ""
		}
		return s.Digital.Mnemonic()
	case KindPhysical:
		if s.Physical == nil {
			return ""
		}
		return s.Physical.Encoded
	case KindRaw:
		return hex.EncodeToString(s.Raw)
	default:
		return ""
	}
}

// Detect reports the kind ParseString would try for input without decoding
// it.
func Detect(input string) Kind {
	s := strings.TrimSpace(input)
	switch {
	case s == "":
		return KindUnknown
	case hasPhysicalPrefix(s):
		return KindPhysical
	case strings.ContainsFunc(s, unicode.IsSpace):
		return KindDigital
	case isHex(s):
		return KindRaw
	default:
		return KindUnknown
	}
}

// ParseString detects the encoding of input and decodes it. Decoding errors
// from the selected codec are returned as is, wrapped; the parser never
// falls through to another encoding once one has been selected.
func ParseString(input string) (*AnyShare, error) {
	s := strings.TrimSpace(input)

	switch Detect(s) {
	case KindPhysical:
		p, err := codex32.ParseShare(s)
		if err != nil {
			return nil, fmt.Errorf("share: %w", err)
		}
		return Physical(p), nil

	case KindDigital:
		d, err := slip39.ParseMnemonic(strings.Fields(s))
		if err != nil {
			return nil, fmt.Errorf("share: %w", err)
		}
		return Digital(d), nil

	case KindRaw:
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, types.Malformed("hex", "%v", err)
		}
		return Raw(b), nil

	default:
		return nil, fmt.Errorf("%w: %d characters", types.ErrFormatNotRecognized, len(s))
	}
}

func hasPhysicalPrefix(s string) bool {
	return len(s) >= len(codex32.Prefix) && strings.EqualFold(s[:len(codex32.Prefix)], codex32.Prefix)
}

func isHex(s string) bool {
	if len(s)%2 != 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
