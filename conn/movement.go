// SPDX-License-Identifier: GPL-2.0-or-later

package conn

import (
	"svconn/crc"
	"svconn/cvars"
	"svconn/logging"
	"svconn/protocol"
)

// ClientCommandBlock is one reliable client->server command carried
// inside an in-band movement packet.
type ClientCommandBlock struct {
	Seq     int32
	Command string
}

// MovementPacket is one decoded in-band client->server payload.
type MovementPacket struct {
	ServerID           int32
	MessageAcknowledge int32
	ReliableAck        int32
	Commands           []ClientCommandBlock
	HasMove            bool
	NoDelta            bool
	RawCmds            [][]byte // opaque keyed delta payloads, one per usercmd
}

// ProcessMovement ingests one decoded movement packet.
func (s *Server) ProcessMovement(slot *ConnectionSlot, pkt MovementPacket) {
	if pkt.MessageAcknowledge < 0 {
		return
	}

	if pkt.ReliableAck < slot.reliable.sequence-protocol.MaxReliableCommands {
		pkt.ReliableAck = slot.reliable.sequence - protocol.MaxReliableCommands
	}
	if pkt.ReliableAck > slot.reliable.sequence {
		pkt.ReliableAck = slot.reliable.sequence
	}
	slot.reliable.acknowledge = pkt.ReliableAck

	if pkt.ServerID != slot.ServerID {
		switch {
		case slot.download.active():
			// mid-download: accept despite the stale id.
		case pkt.ServerID > slot.RestartedServerID && pkt.ServerID < slot.ServerID:
			return
		case pkt.MessageAcknowledge > slot.GamestateMessageNum && slot.state != Active:
			s.SendClientGameState(slot)
			return
		default:
			return
		}
	} else {
		slot.OldServerTime = 0
	}

	for _, c := range pkt.Commands {
		s.ExecuteClientCommand(slot, c.Seq, c.Command)
		if slot.state == Zombie {
			return
		}
	}

	if !pkt.HasMove && !pkt.NoDelta {
		return
	}
	if pkt.HasMove {
		slot.DeltaMessage = pkt.MessageAcknowledge
	} else {
		slot.DeltaMessage = -1
	}

	cmdCount := len(pkt.RawCmds)
	if cmdCount < 1 || cmdCount > protocol.MaxPacketUserCmds {
		logging.Log.WithField("slot", slot.Index).Warn("invalid usercmd count")
		return
	}

	key := s.deriveSessionKey(slot, pkt.MessageAcknowledge, pkt.ReliableAck)

	cmds := make([]UserCmd, cmdCount)
	prev := slot.LastUsercmd
	for i, raw := range pkt.RawCmds {
		_ = raw
		cmds[i] = prev // placeholder chain; the Codec collaborator performs
		// the actual keyed delta decode into cmds[i] given prev and key.
		if s.Codec != nil {
			s.Codec.ReadDeltaUsercmdKey(key, &prev, &cmds[i])
		}
		sanitizeUsercmd(&cmds[i])
		if cvars.SvStrictPacketTimestamp.Bool() && slot.state == Active {
			cmds[i].ServerTime = clampServerTime(cmds[i].ServerTime, s.Time)
		}
		prev = cmds[i]
	}

	s.recordAck(slot, pkt.MessageAcknowledge)

	if slot.state == Primed && cmdCount > 0 {
		s.ClientEnterWorld(slot, cmds[0])
	}

	if cvars.SvPure.Value() != 0 && !slot.PureAuthentic {
		if !slot.GotCP && slot.state == Active {
			s.SendClientGameState(slot)
			return
		}
		if slot.GotCP {
			s.DropClient(slot.Index, "unpure client")
			return
		}
	}

	last := cmds[len(cmds)-1].ServerTime
	for _, cmd := range cmds {
		if cmd.ServerTime > slot.LastUsercmd.ServerTime && cmd.ServerTime <= last {
			s.Game.ClientThink(slot.Index, cmd)
			slot.LastUsercmd = cmd
		}
	}
}

// deriveSessionKey computes the XOR keystream seed the client used to
// encode its usercmd batch.
func (s *Server) deriveSessionKey(slot *ConnectionSlot, messageAck, reliableAck int32) uint32 {
	cmd := slot.reliable.commands[reliableAck&(protocol.MaxReliableCommands-1)]
	return s.ChecksumFeed ^ uint32(messageAck) ^ crc.HashKey(cmd, 32)
}

// sanitizeUsercmd clamps obviously-invalid fields a decoded usercmd
// might carry.
func sanitizeUsercmd(cmd *UserCmd) {
	if cmd.ForceSel > 32 {
		cmd.ForceSel = 0
	}
	cmd.Angles[2] = 0 // roll is always zeroed server-side
}

func clampServerTime(t, svTime int32) int32 {
	lo := svTime - 1000
	hi := svTime + 200
	if t < lo {
		return lo
	}
	if t > hi {
		return hi
	}
	return t
}

// recordAck timestamps the ping-measurement ring for messageAck. With
// sv_pingFix off it always records the current server time, matching
// ping computed as a delta of server time; with it on, only the first
// ack for a ring slot is recorded, using wall-clock time instead.
func (s *Server) recordAck(slot *ConnectionSlot, messageAck int32) {
	idx := int(messageAck) % protocol.PacketBackup
	if idx < 0 {
		idx += protocol.PacketBackup
	}
	fixPing := cvars.SvPingFix.Value() != 0
	if !fixPing {
		slot.Frames[idx].MessageAcked = int64(s.Time)
		return
	}
	if slot.Frames[idx].MessageAcked == unackedFrame {
		slot.Frames[idx].MessageAcked = now().UnixMilli()
	}
}
