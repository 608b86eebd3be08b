// SPDX-License-Identifier: GPL-2.0-or-later

// Package netchan models the datagram channel binding a ConnectionSlot to a
// remote address: qport, sequence counters, and a pending-fragments flag.
// The actual send/receive plumbing and packet fragmentation are external
// collaborators; this package only carries the state the core needs
// to read and mutate, plus a narrow Transport seam for tests.
package netchan

import "net/netip"

// Transport is the narrow collaborator that actually puts bytes on the
// wire. Production code backs it with a UDP socket; tests back it with an
// in-memory recorder.
type Transport interface {
	Send(addr netip.AddrPort, b []byte) error
}

// Chan is the netchan binding for one ConnectionSlot.
type Chan struct {
	Addr             netip.AddrPort
	QPort            uint16
	OutgoingSequence int32
	IncomingSequence int32
	// UnsentFragments is set by the external fragmentation layer while a
	// prior oversized message is still being drained in pieces; the
	// lifecycle controller must not start a new gamestate write until it
	// is clear.
	UnsentFragments bool

	transport Transport
}

func New(addr netip.AddrPort, qport uint16, t Transport) *Chan {
	return &Chan{Addr: addr, QPort: qport, transport: t}
}

// Bind rebinds the channel to a new address/qport without resetting the
// sequence counters, used when a slot is reused by address: the
// slot's netchan follows the reconnecting client.
func (c *Chan) Bind(addr netip.AddrPort, qport uint16, t Transport) {
	c.Addr = addr
	c.QPort = qport
	c.transport = t
}

// Reset zeroes the channel entirely, used when a slot returns to FREE.
func (c *Chan) Reset() {
	*c = Chan{}
}

// Transmit sends one outgoing message and advances the sequence counter.
// It is a no-op error source only through the Transport seam; splitting an
// oversized message into fragments is the external layer's job, signalled
// back to the core only through UnsentFragments.
func (c *Chan) Transmit(b []byte) error {
	c.OutgoingSequence++
	if c.transport == nil {
		return nil
	}
	return c.transport.Send(c.Addr, b)
}

// Matches reports whether addr/qport identifies the same client this
// channel is already bound to, using a "qport OR port" address
// matching rule for reconnect-rate checks and slot reuse.
func (c *Chan) Matches(addr netip.AddrPort, qport uint16) bool {
	if c.Addr.Addr() != addr.Addr() {
		return false
	}
	return c.QPort == qport || c.Addr.Port() == addr.Port()
}
