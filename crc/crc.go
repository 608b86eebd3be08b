// SPDX-License-Identifier: GPL-2.0-or-later

// Package crc provides the keyed string hash the movement ingester's
// session-key derivation needs: HashKey(s, 32).
//
// This replaces a table-driven CCITT CRC16: that update rule does not
// match the accumulation the protocol actually specifies, so the table
// is gone and the accumulation itself is adapted instead of carried
// over unused.
package crc

// HashKey is the engine's classic string hash: each of the first maxlen
// bytes is weighted by its position and summed, then the sum is spread
// across its own bits. It intentionally has no avalanche properties,
// since determinism and cheapness are what the session key needs, not
// collision resistance.
func HashKey(s string, maxlen int) uint32 {
	var hash int32
	for i := 0; i < len(s) && i < maxlen; i++ {
		hash += int32(s[i]) * int32(119+i)
	}
	hash = hash ^ (hash >> 10) ^ (hash >> 20)
	return uint32(hash)
}
