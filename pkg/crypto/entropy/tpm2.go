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

//go:build tpm2

package entropy

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
	"github.com/google/go-tpm/tpm2/transport/tcp"
	"github.com/google/go-tpm/tpmutil"
)

type tpm2Source struct {
	mu      sync.Mutex
	tpm     transport.TPMCloser
	maxSize int
}

func tpm2Compiled() bool { return true }

func newTPM2Source(cfg *TPM2Config) (Resolver, error) {
	if cfg == nil {
		cfg = &TPM2Config{}
	}
	maxSize := cfg.MaxRequestSize
	if maxSize <= 0 {
		maxSize = 32
	}

	var tpm transport.TPMCloser
	if cfg.SimulatorAddress != "" {
		host, port, err := net.SplitHostPort(cfg.SimulatorAddress)
		if err != nil {
			return nil, fmt.Errorf("entropy: tpm2 simulator address: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("entropy: tpm2 simulator port: %w", err)
		}
		tpm, err = tcp.Open(tcp.Config{
			CommandAddress:  net.JoinHostPort(host, port),
			PlatformAddress: net.JoinHostPort(host, strconv.Itoa(p+1)),
		})
		if err != nil {
			return nil, fmt.Errorf("entropy: connect tpm2 simulator %s: %w", cfg.SimulatorAddress, err)
		}
	} else {
		device := cfg.Device
		if device == "" {
			device = "/dev/tpmrm0"
		}
		rwc, err := tpmutil.OpenTPM(device)
		if err != nil {
			return nil, fmt.Errorf("entropy: open tpm2 device %s: %w", device, err)
		}
		tpm = transport.FromReadWriteCloser(rwc)
	}

	return &tpm2Source{tpm: tpm, maxSize: maxSize}, nil
}

func (t *tpm2Source) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tpm == nil {
		return 0, fmt.Errorf("entropy: tpm2 source closed")
	}

	n := 0
	for n < len(p) {
		chunk := len(p) - n
		if chunk > t.maxSize {
			chunk = t.maxSize
		}
		rsp, err := tpm2.GetRandom{BytesRequested: uint16(chunk)}.Execute(t.tpm)
		if err != nil {
			return n, fmt.Errorf("entropy: TPM2_GetRandom: %w", err)
		}
		if len(rsp.RandomBytes.Buffer) == 0 {
			return n, fmt.Errorf("entropy: TPM2_GetRandom returned no data")
		}
		n += copy(p[n:], rsp.RandomBytes.Buffer)
	}
	return n, nil
}

func (t *tpm2Source) Mode() Mode { return ModeTPM2 }

func (t *tpm2Source) Available() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tpm != nil
}

func (t *tpm2Source) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tpm == nil {
		return nil
	}
	err := t.tpm.Close()
	t.tpm = nil
	return err
}
