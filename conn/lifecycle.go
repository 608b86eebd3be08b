// SPDX-License-Identifier: GPL-2.0-or-later

package conn

import (
	"fmt"

	"svconn/logging"
	"svconn/protocol"
)

// SendClientGameState transitions CONNECTED -> PRIMED and emits the
// gamestate message: queued reliable commands, configstrings, entity
// baselines, and the client's slot/checksum handshake. Building the
// actual wire payload belongs to the Codec collaborator; this records
// the state transition and bookkeeping the core owns.
func (s *Server) SendClientGameState(slot *ConnectionSlot) {
	if slot.Chan != nil && slot.Chan.UnsentFragments {
		return
	}
	if slot.state == Connected {
		slot.state = Primed
	}
	slot.PureAuthentic = false
	slot.GotCP = false
	if slot.Chan != nil {
		slot.GamestateMessageNum = slot.Chan.OutgoingSequence
	}
}

// ClientEnterWorld transitions PRIMED -> ACTIVE on the first usercmd
// received for the slot.
func (s *Server) ClientEnterWorld(slot *ConnectionSlot, cmd UserCmd) {
	slot.state = Active
	slot.LastUsercmd = cmd
	s.Game.ClientBegin(slot.Index)
	if s.Demo != nil {
		s.Demo.BeginAuto(slot.Index)
	}
}

// dropClient ends a connection: closes any in-flight download,
// notifies the game module, and transitions the slot to ZOMBIE (or
// straight to FREE for bots, which own no grace period).
func (s *Server) dropClient(slot *ConnectionSlot, reason string) {
	if slot.state == Free {
		return
	}
	slot.download.close()

	s.broadcastReliable(fmt.Sprintf("print\n%s disconnected (%s)\n", slot.Name, reason))
	s.sendReliable(slot, "disconnect \""+reason+"\"")

	s.Game.ClientDisconnect(slot.Index)
	if s.Demo != nil {
		s.Demo.Stop(slot.Index)
	}

	logging.Log.WithFields(map[string]interface{}{
		"event":  "drop",
		"slot":   slot.Index,
		"reason": reason,
	}).Info("client dropped")

	if slot.IsBot {
		slot.reset()
	} else {
		slot.state = Zombie
	}
	s.maybeHeartbeat()
}

// DropClient is the public entry point the movement/reliable/download
// paths call on integrity violations.
func (s *Server) DropClient(slotIdx int, reason string) {
	s.dropClient(s.Clients[slotIdx], reason)
}

// Reap transitions slot back to FREE if it is a ZOMBIE and leaves any
// other state alone. It does not check a grace period: the zombie
// timeout is the external hibernation controller's call, so Reap only
// applies the transition once told to.
func (s *Server) Reap(slot *ConnectionSlot) {
	if slot.state == Zombie {
		slot.reset()
	}
}

// SendPrint queues a reliable "print" command to one slot, the
// surface admin command replies use.
func (s *Server) SendPrint(slotIdx int, msg string) {
	s.sendReliable(s.Clients[slotIdx], "print \""+msg+"\"")
}

// Broadcast queues a reliable "chat" command to every non-FREE slot.
func (s *Server) Broadcast(msg string) {
	for _, c := range s.Clients {
		if c.state == Free {
			continue
		}
		s.sendReliable(c, "chat \""+msg+"\"")
	}
}

func (s *Server) broadcastReliable(msg string) {
	for _, c := range s.Clients {
		if c.state == Free {
			continue
		}
		s.sendReliable(c, msg)
	}
}

// sendReliable enqueues msg into slot's server->client reliable ring,
// clamping to MAX_RELIABLE_COMMANDS outstanding so a client that stops
// acking can't grow the ring unbounded.
func (s *Server) sendReliable(slot *ConnectionSlot, msg string) {
	if slot.reliable.sequence-slot.reliable.acknowledge >= protocol.MaxReliableCommands {
		return
	}
	slot.reliable.add(msg)
}
