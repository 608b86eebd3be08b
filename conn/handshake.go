// SPDX-License-Identifier: GPL-2.0-or-later

package conn

import (
	"fmt"
	"net/netip"
	"strconv"
	"time"

	"svconn/cvars"
	"svconn/logging"
	"svconn/netchan"
	"svconn/protocol"
	"svconn/userinfo"
)

// GetChallenge answers an out-of-band getchallenge packet. clientEcho
// is argv[1] of the request, echoed back verbatim.
func (s *Server) GetChallenge(from netip.AddrPort, clientEcho string) {
	c := s.Chal.Create(from.Addr().String())
	s.Out.SendTo(from, fmt.Sprintf("challengeResponse %d %s", c, clientEcho))
}

// ConnectResult reports the outcome of a connect attempt.
type ConnectResult struct {
	Accepted bool
	SlotIdx  int
	Reason   string
}

// Connect handles an out-of-band connect packet. info is the parsed
// userinfo payload the client sent alongside the request.
func (s *Server) Connect(from netip.AddrPort, qport uint16, info *userinfo.Info, loopback bool) ConnectResult {
	if s.Bans != nil {
		if banned, reason := s.Bans.Check(from.Addr()); banned {
			s.reject(from, "banned: "+reason)
			return ConnectResult{Reason: "banned"}
		}
	}

	ver, _ := strconv.Atoi(info.Get("protocol"))
	if ver != protocol.Version {
		s.reject(from, "Incompatible protocol.")
		return ConnectResult{Reason: "protocol mismatch"}
	}
	challengeVal, _ := strconv.Atoi(info.Get("challenge"))

	if existing := s.findByAddr(from, qport); existing != nil {
		limit := time.Duration(cvars.SvReconnectLimit.Value()) * time.Second
		if now().Sub(existing.LastConnectTime) < limit {
			s.reject(from, "Reconnect rejected : too soon")
			return ConnectResult{Reason: "too soon"}
		}
	}

	work := info.Clone()
	if !work.Set("ip", from.String()) {
		s.reject(from, "userinfo too long")
		return ConnectResult{Reason: "userinfo overflow"}
	}

	if !loopback {
		if !s.Chal.Verify(from.Addr().String(), int32(challengeVal)) {
			s.reject(from, "Bad challenge.")
			return ConnectResult{Reason: "bad challenge"}
		}
	}

	slot := s.findByAddr(from, qport)
	firstTime := true
	if slot != nil {
		s.dropClient(slot, "reconnecting")
		firstTime = false
	} else {
		slot = s.findFreeSlot(info.Get("password"))
		if slot == nil {
			if loopback {
				if bot := s.findReplaceableBot(); bot != nil {
					s.dropClient(bot, "was kicked to make room for a human player")
					slot = bot
				}
			}
			if slot == nil {
				s.reject(from, "Server is full.")
				return ConnectResult{Reason: "server full"}
			}
		}
	}

	slot.reset()
	slot.Chan = netchan.New(from, qport, s.Net)
	slot.Info = work
	slot.Challenge = int32(challengeVal)

	if reject := s.Game.ClientConnect(slot.Index, firstTime, false); reject != "" {
		slot.reset()
		s.reject(from, reject)
		return ConnectResult{Reason: reject}
	}

	s.applyUserinfo(slot, work, true)

	s.Out.SendTo(from, "connectResponse")
	slot.state = Connected
	slot.LastPacketTime = now()
	slot.LastConnectTime = slot.LastPacketTime
	slot.GamestateMessageNum = -1

	s.maybeHeartbeat()

	logging.Log.WithFields(map[string]interface{}{
		"event": "connect",
		"slot":  slot.Index,
		"addr":  from.String(),
	}).Info("client connected")

	return ConnectResult{Accepted: true, SlotIdx: slot.Index}
}

func (s *Server) reject(to netip.AddrPort, reason string) {
	s.Out.SendTo(to, "print\n"+reason+"\n")
}

func (s *Server) findByAddr(addr netip.AddrPort, qport uint16) *ConnectionSlot {
	for _, c := range s.Clients {
		if c.state == Free || c.Chan == nil {
			continue
		}
		if c.Chan.Matches(addr, qport) {
			return c
		}
	}
	return nil
}

func (s *Server) findFreeSlot(password string) *ConnectionSlot {
	start := privateSlotsStart(password)
	for i := start; i < len(s.Clients); i++ {
		if s.Clients[i].state == Free {
			return s.Clients[i]
		}
	}
	return nil
}

func (s *Server) findReplaceableBot() *ConnectionSlot {
	for i := len(s.Clients) - 1; i >= 0; i-- {
		c := s.Clients[i]
		if c.state != Free && c.IsBot {
			return c
		}
	}
	return nil
}
