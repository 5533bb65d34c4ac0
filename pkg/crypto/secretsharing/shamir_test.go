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

package secretsharing

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/vault/shamir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

func randomSecret(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

// subsets returns every k-element subset of shares.
func subsets(shares []Share, k int) [][]Share {
	var out [][]Share
	var walk func(start int, cur []Share)
	walk = func(start int, cur []Share) {
		if len(cur) == k {
			out = append(out, append([]Share(nil), cur...))
			return
		}
		for i := start; i < len(shares); i++ {
			walk(i+1, append(cur, shares[i]))
		}
	}
	walk(0, nil)
	return out
}

func TestNewShamir(t *testing.T) {
	tests := []struct {
		name    string
		config  *ShareConfig
		wantErr error
	}{
		{"valid configuration", &ShareConfig{Threshold: 3, TotalShares: 5}, nil},
		{"threshold equals total shares", &ShareConfig{Threshold: 5, TotalShares: 5}, nil},
		{"maximum valid configuration", &ShareConfig{Threshold: 255, TotalShares: 255}, nil},
		{"custom indices", &ShareConfig{Threshold: 2, TotalShares: 3, Indices: []byte{7, 9, 200}}, nil},
		{"threshold one", &ShareConfig{Threshold: 1, TotalShares: 3}, types.ErrInvalidThreshold},
		{"zero threshold", &ShareConfig{Threshold: 0, TotalShares: 5}, types.ErrInvalidThreshold},
		{"threshold greater than total", &ShareConfig{Threshold: 6, TotalShares: 5}, types.ErrThresholdExceedsShares},
		{"too many shares", &ShareConfig{Threshold: 3, TotalShares: 256}, types.ErrInvalidThreshold},
		{"index zero", &ShareConfig{Threshold: 2, TotalShares: 2, Indices: []byte{0, 1}}, types.ErrMismatchedShares},
		{"duplicate index", &ShareConfig{Threshold: 2, TotalShares: 2, Indices: []byte{4, 4}}, types.ErrMismatchedShares},
		{"index count mismatch", &ShareConfig{Threshold: 2, TotalShares: 3, Indices: []byte{1, 2}}, types.ErrMismatchedShares},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewShamir(tt.config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}

	_, err := NewShamir(nil)
	assert.Error(t, err)
}

func TestSplit_ShareShape(t *testing.T) {
	secret := randomSecret(t, 32)
	shares, err := SplitSecret(secret, &ShareConfig{Threshold: 3, TotalShares: 5})
	require.NoError(t, err)
	require.Len(t, shares, 5)

	for i, sh := range shares {
		assert.Equal(t, byte(i+1), sh.Index)
		assert.Len(t, sh.Data, len(secret))
	}
}

func TestSplit_CustomIndices(t *testing.T) {
	secret := randomSecret(t, 16)
	indices := []byte{10, 20, 30, 40}
	shares, err := SplitSecret(secret, &ShareConfig{Threshold: 2, TotalShares: 4, Indices: indices})
	require.NoError(t, err)

	for i, sh := range shares {
		assert.Equal(t, indices[i], sh.Index)
	}
	got, err := ReconstructSecret([]Share{shares[3], shares[1]})
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestSplit_EmptySecret(t *testing.T) {
	_, err := SplitSecret(nil, &ShareConfig{Threshold: 2, TotalShares: 3})
	assert.Error(t, err)
}

func TestSplit_DeterministicReader(t *testing.T) {
	// threshold 2 with every coefficient set to 1 gives p(x) = s ^ x
	secret := []byte{0x00, 0x42, 0xFF}
	shares, err := SplitSecret(secret, &ShareConfig{
		Threshold:   2,
		TotalShares: 3,
		Rand:        bytes.NewReader(bytes.Repeat([]byte{1}, len(secret))),
	})
	require.NoError(t, err)

	for _, sh := range shares {
		for i, b := range secret {
			assert.Equal(t, b^sh.Index, sh.Data[i])
		}
	}
}

func TestSplit_ShortReader(t *testing.T) {
	_, err := SplitSecret(randomSecret(t, 16), &ShareConfig{
		Threshold:   3,
		TotalShares: 5,
		Rand:        bytes.NewReader([]byte{1, 2, 3}),
	})
	assert.Error(t, err)
}

func TestRoundTrip_AllSubsets(t *testing.T) {
	configs := []struct{ m, n int }{{2, 2}, {2, 3}, {3, 5}, {4, 6}, {5, 5}}

	for _, length := range []int{16, 20, 24, 28, 32} {
		for _, cfg := range configs {
			t.Run(fmt.Sprintf("%dof%d_%dbytes", cfg.m, cfg.n, length), func(t *testing.T) {
				secret := randomSecret(t, length)
				s, err := NewShamir(&ShareConfig{Threshold: cfg.m, TotalShares: cfg.n})
				require.NoError(t, err)

				shares, err := s.Split(secret)
				require.NoError(t, err)

				for k := cfg.m; k <= cfg.n; k++ {
					for _, subset := range subsets(shares, k) {
						got, err := s.Combine(subset)
						require.NoError(t, err)
						require.Equal(t, secret, got)
					}
				}
			})
		}
	}
}

func TestRoundTrip_LargeSets(t *testing.T) {
	tests := []struct {
		name    string
		m, n    int
		subsets [][2]int // [from, to) ranges of the share list to combine
	}{
		{"255of255", 255, 255, [][2]int{{0, 255}}},
		{"128of255", 128, 255, [][2]int{{0, 128}, {127, 255}, {64, 192}, {0, 255}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := randomSecret(t, 32)
			s, err := NewShamir(&ShareConfig{Threshold: tt.m, TotalShares: tt.n})
			require.NoError(t, err)

			shares, err := s.Split(secret)
			require.NoError(t, err)
			require.Len(t, shares, tt.n)
			assert.Equal(t, byte(255), shares[tt.n-1].Index)

			for _, r := range tt.subsets {
				got, err := s.Combine(shares[r[0]:r[1]])
				require.NoError(t, err)
				assert.Equal(t, secret, got, "shares %d..%d", r[0], r[1])
			}

			_, err = s.Combine(shares[:tt.m-1])
			assert.ErrorIs(t, err, types.ErrInsufficientShares)

			got, err := ReconstructSecret(shares[1:tt.m])
			require.NoError(t, err)
			assert.NotEqual(t, secret, got)
		})
	}
}

func TestCombine_InsufficientShares(t *testing.T) {
	secret := randomSecret(t, 16)
	s, err := NewShamir(&ShareConfig{Threshold: 3, TotalShares: 5})
	require.NoError(t, err)
	shares, err := s.Split(secret)
	require.NoError(t, err)

	_, err = s.Combine(shares[:2])
	assert.ErrorIs(t, err, types.ErrInsufficientShares)

	_, err = ReconstructSecret(shares[:1])
	assert.ErrorIs(t, err, types.ErrInsufficientShares)

	// below threshold the engine cannot tell, it just returns a wrong secret
	got, err := ReconstructSecret(shares[:2])
	require.NoError(t, err)
	assert.NotEqual(t, secret, got)
}

func TestReconstructSecret_Mismatched(t *testing.T) {
	a := Share{Index: 1, Data: []byte{1, 2, 3}}
	b := Share{Index: 2, Data: []byte{4, 5}}
	dup := Share{Index: 1, Data: []byte{7, 8, 9}}
	zero := Share{Index: 0, Data: []byte{1, 1, 1}}
	empty := Share{Index: 3}

	tests := []struct {
		name   string
		shares []Share
	}{
		{"different lengths", []Share{a, b}},
		{"duplicate index", []Share{a, dup}},
		{"index zero", []Share{a, zero}},
		{"empty data", []Share{empty, {Index: 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReconstructSecret(tt.shares)
			assert.True(t, errors.Is(err, types.ErrMismatchedShares), "got %v", err)
		})
	}
}

func TestInterpolate(t *testing.T) {
	secret := randomSecret(t, 16)
	shares, err := SplitSecret(secret, &ShareConfig{Threshold: 3, TotalShares: 5})
	require.NoError(t, err)

	t.Run("recovers other points", func(t *testing.T) {
		got, err := Interpolate(shares[:3], shares[4].Index)
		require.NoError(t, err)
		assert.Equal(t, shares[4].Data, got)
	})

	t.Run("x at a supplied index", func(t *testing.T) {
		got, err := Interpolate(shares[:3], shares[1].Index)
		require.NoError(t, err)
		assert.Equal(t, shares[1].Data, got)
		got[0] ^= 0xFF
		assert.NotEqual(t, shares[1].Data, got, "result must be a copy")
	})

	t.Run("points may include zero", func(t *testing.T) {
		points := []Share{{Index: 0, Data: secret}, shares[0], shares[1]}
		got, err := Interpolate(points, shares[2].Index)
		require.NoError(t, err)
		assert.Equal(t, shares[2].Data, got)
	})

	t.Run("single point is constant", func(t *testing.T) {
		got, err := Interpolate(shares[:1], 200)
		require.NoError(t, err)
		assert.Equal(t, shares[0].Data, got)
	})

	t.Run("no points", func(t *testing.T) {
		_, err := Interpolate(nil, 0)
		assert.ErrorIs(t, err, types.ErrInsufficientShares)
	})
}

func TestTagged(t *testing.T) {
	sh := Share{Index: 9, Data: []byte{0xde, 0xad}}
	tagged := sh.Tagged()
	assert.Equal(t, []byte{0xde, 0xad, 9}, tagged)

	back, err := ShareFromTagged(tagged)
	require.NoError(t, err)
	assert.Equal(t, sh, back)

	_, err = ShareFromTagged([]byte{1})
	assert.ErrorIs(t, err, types.ErrMalformedEncoding)

	_, err = ShareFromTagged([]byte{1, 0})
	assert.ErrorIs(t, err, types.ErrMalformedEncoding)
}

func TestShare_Zero(t *testing.T) {
	sh := Share{Index: 1, Data: []byte{1, 2, 3}}
	sh.Zero()
	assert.Equal(t, []byte{0, 0, 0}, sh.Data)

	var nilShare *Share
	assert.NotPanics(t, func() { nilShare.Zero() })
}

// Shares produced by Vault's Rijndael-field implementation reconstruct
// here, and shares produced here reconstruct there. Vault draws random x
// coordinates, so several rounds cover more of the field.
func TestInterop_VaultShamir(t *testing.T) {
	for round := 0; round < 20; round++ {
		secret := randomSecret(t, 32)

		t.Run(fmt.Sprintf("import %d", round), func(t *testing.T) {
			parts, err := shamir.Split(secret, 5, 3)
			require.NoError(t, err)
			require.Len(t, parts, 5)

			shares := make([]Share, 0, 3)
			for _, p := range parts[:3] {
				sh, err := ShareFromTagged(p)
				require.NoError(t, err)
				shares = append(shares, sh)
			}
			got, err := ReconstructSecret(shares)
			require.NoError(t, err)
			assert.Equal(t, secret, got)
		})

		t.Run(fmt.Sprintf("export %d", round), func(t *testing.T) {
			shares, err := SplitSecret(secret, &ShareConfig{Threshold: 3, TotalShares: 5})
			require.NoError(t, err)

			parts := make([][]byte, 0, 3)
			for _, sh := range shares[1:4] {
				parts = append(parts, sh.Tagged())
			}
			got, err := shamir.Combine(parts)
			require.NoError(t, err)
			assert.Equal(t, secret, got)
		})
	}
}

func BenchmarkSplit32(b *testing.B) {
	secret := make([]byte, 32)
	s, _ := NewShamir(&ShareConfig{Threshold: 3, TotalShares: 5})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Split(secret)
	}
}

func BenchmarkCombine32(b *testing.B) {
	secret := make([]byte, 32)
	s, _ := NewShamir(&ShareConfig{Threshold: 3, TotalShares: 5})
	shares, _ := s.Split(secret)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Combine(shares[:3])
	}
}
