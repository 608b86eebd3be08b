// SPDX-License-Identifier: GPL-2.0-or-later

// Package challenge implements a stateless, forgery-resistant challenge
// value: derived deterministically from the remote address and a
// server-held secret, reproducible on demand without persisting
// anything per address.
package challenge

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
)

const secretSize = 32

// Authority mints and verifies challenges for one server process. The
// secret lives only in memory; a restart invalidates every outstanding
// challenge, which is acceptable since a challenge only needs to survive a
// single connection attempt.
type Authority struct {
	secret [secretSize]byte
}

// New returns an Authority seeded from the OS CSPRNG.
func New() (*Authority, error) {
	a := &Authority{}
	if _, err := rand.Read(a.secret[:]); err != nil {
		return nil, err
	}
	return a, nil
}

// Create derives the challenge for addr. Calling it twice for the same
// address in the same process returns the same value, which is what lets
// getchallenge and the later connect re-derive and compare independently.
func (a *Authority) Create(addr string) int32 {
	mac := hmac.New(sha256.New, a.secret[:])
	mac.Write([]byte(addr))
	sum := mac.Sum(nil)
	return int32(binary.BigEndian.Uint32(sum[:4]))
}

// Verify reports whether challenge was produced by Create for addr.
func (a *Authority) Verify(addr string, challenge int32) bool {
	return a.Create(addr) == challenge
}
