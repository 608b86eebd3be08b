// SPDX-License-Identifier: GPL-2.0-or-later

// Package udp is the concrete datagram transport the connection core
// treats as an external collaborator: it only puts bytes on the wire
// and reads them back, with no framing, fragmentation, or protocol
// knowledge of its own.
package udp

import (
	"net"
	"net/netip"

	"github.com/pkg/errors"
)

// Socket is a bound UDP listener usable as both a netchan.Transport
// and a conn.Transmitter.
type Socket struct {
	conn *net.UDPConn
}

func Listen(addr string) (*Socket, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", addr)
	}
	c, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}
	return &Socket{conn: c}, nil
}

func (s *Socket) Close() error {
	return s.conn.Close()
}

// Send implements netchan.Transport.
func (s *Socket) Send(addr netip.AddrPort, b []byte) error {
	_, err := s.conn.WriteToUDPAddrPort(b, addr)
	return err
}

// SendTo implements conn.Transmitter for out-of-band replies.
func (s *Socket) SendTo(addr netip.AddrPort, msg string) {
	s.conn.WriteToUDPAddrPort([]byte(msg), addr)
}

// ReadFrom reads one datagram, used by the main frame loop to pull
// incoming packets before they're routed to the connection core.
func (s *Socket) ReadFrom(buf []byte) (int, netip.AddrPort, error) {
	n, addr, err := s.conn.ReadFromUDPAddrPort(buf)
	return n, addr, err
}
