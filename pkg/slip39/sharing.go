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

package slip39

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-keyshare/internal/secure"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/entropy"
	"github.com/jeremyhahn/go-keyshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-keyshare/pkg/types"
)

const (
	digestLengthBytes = 4
	digestIndex       = 254
	secretIndex       = 255
)

// splitSecret shares secret with the digest construction: threshold-2
// random shares, a digest share at x=254 and the secret at x=255 fix the
// polynomials, and the remaining shares are interpolated.
func splitSecret(threshold, count int, secret []byte, rng io.Reader) ([]secretsharing.Share, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: threshold must be positive", types.ErrInvalidThreshold)
	}
	if threshold > count {
		return nil, fmt.Errorf("%w: threshold %d, count %d", types.ErrThresholdExceedsShares, threshold, count)
	}
	if count > MaxShareCount {
		return nil, fmt.Errorf("%w: at most %d shares, got %d", types.ErrInvalidThreshold, MaxShareCount, count)
	}

	shares := make([]secretsharing.Share, 0, count)
	if threshold == 1 {
		for i := 0; i < count; i++ {
			shares = append(shares, secretsharing.Share{Index: byte(i), Data: secure.Clone(secret)})
		}
		return shares, nil
	}

	fail := func(err error) ([]secretsharing.Share, error) {
		for i := range shares {
			shares[i].Zero()
		}
		return nil, err
	}

	randomShareCount := threshold - 2
	for i := 0; i < randomShareCount; i++ {
		data := make([]byte, len(secret))
		if err := entropy.Read(rng, data); err != nil {
			return fail(err)
		}
		shares = append(shares, secretsharing.Share{Index: byte(i), Data: data})
	}

	randomPart := make([]byte, len(secret)-digestLengthBytes)
	defer secure.Zero(randomPart)
	if err := entropy.Read(rng, randomPart); err != nil {
		return fail(err)
	}
	digestShare := append(digest(randomPart, secret), randomPart...)
	defer secure.Zero(digestShare)

	base := make([]secretsharing.Share, 0, threshold)
	base = append(base, shares...)
	base = append(base,
		secretsharing.Share{Index: digestIndex, Data: digestShare},
		secretsharing.Share{Index: secretIndex, Data: secret},
	)

	for i := randomShareCount; i < count; i++ {
		data, err := secretsharing.Interpolate(base, byte(i))
		if err != nil {
			return fail(err)
		}
		shares = append(shares, secretsharing.Share{Index: byte(i), Data: data})
	}
	return shares, nil
}

// recoverSecret interpolates threshold shares and verifies the digest.
func recoverSecret(threshold int, shares []secretsharing.Share) ([]byte, error) {
	if threshold == 1 {
		return secure.Clone(shares[0].Data), nil
	}

	secret, err := secretsharing.Interpolate(shares, secretIndex)
	if err != nil {
		return nil, err
	}
	digestShare, err := secretsharing.Interpolate(shares, digestIndex)
	if err != nil {
		secure.Zero(secret)
		return nil, err
	}
	defer secure.Zero(digestShare)

	if len(digestShare) < digestLengthBytes ||
		!hmac.Equal(digestShare[:digestLengthBytes], digest(digestShare[digestLengthBytes:], secret)) {
		secure.Zero(secret)
		return nil, fmt.Errorf("%w: invalid digest of the shared secret", types.ErrChecksumFailed)
	}
	return secret, nil
}

func digest(randomPart, secret []byte) []byte {
	mac := hmac.New(sha256.New, randomPart)
	mac.Write(secret)
	return mac.Sum(nil)[:digestLengthBytes]
}
