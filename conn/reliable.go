// SPDX-License-Identifier: GPL-2.0-or-later

package conn

import (
	"strings"
	"time"

	"svconn/cvars"
)

// floodTime returns the minimum spacing between accepted string
// commands from an ACTIVE client.
func floodTime() int64 {
	v := cvars.SvFloodProtect.Value()
	if v == 1 {
		return 1000
	}
	return int64(v)
}

// ExecuteClientCommand processes one client->server reliable command
// pair, applying dedupe and corruption detection before dispatching to
// the built-in table or the game module. Flood protection is applied in
// dispatchClientCommand, to game-forwarded commands only.
func (s *Server) ExecuteClientCommand(slot *ConnectionSlot, seq int32, command string) {
	if seq <= slot.LastClientCommand {
		return
	}
	if seq > slot.LastClientCommand+1 {
		s.DropClient(slot.Index, "Lost reliable commands")
		return
	}

	slot.LastClientCommand = seq
	slot.LastClientCommandString = command

	s.dispatchClientCommand(slot, command)
}

func (slot *ConnectionSlot) lastReliableMillis() int64 {
	if slot.LastReliableTime.IsZero() {
		return 0
	}
	return slot.LastReliableTime.UnixMilli()
}

func nowMillis() int64 { return nowTime().UnixMilli() }
func nowTime() time.Time { return now() }

// dispatchClientCommand routes a parsed command line to the built-in
// handler table, falling back to the game module for anything else
// while the client is ACTIVE or PRIMED in an SS_GAME server.
func (s *Server) dispatchClientCommand(slot *ConnectionSlot, command string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return
	}
	verb := fields[0]

	switch verb {
	case "userinfo":
		s.handleUserinfoCommand(slot, command)
		return
	case "disconnect":
		s.DropClient(slot.Index, "disconnected")
		return
	case "cp":
		s.handleCP(slot, fields)
		return
	case "vdr":
		slot.PureAuthentic = false
		slot.GotCP = false
		return
	case "download":
		s.handleDownloadStart(slot, fields)
		return
	case "nextdl":
		s.handleNextDL(slot, fields)
		return
	case "stopdl":
		s.handleStopDL(slot)
		return
	case "donedl":
		s.SendClientGameState(slot)
		return
	}

	if s.GameState != SSGame || (slot.state != Active && slot.state != Primed) {
		return
	}

	if slot.state == Active && cvars.SvFloodProtect.Bool() {
		ft := floodTime()
		nowMs := nowMillis()
		if nowMs < slot.lastReliableMillis()+ft {
			if cvars.SvFloodProtectSlow.Bool() {
				slot.LastReliableTime = nowTime()
			}
			return
		}
		slot.LastReliableTime = nowTime()
	}

	if unsafeLegacyCommand(fields) {
		return
	}
	sanitized := sanitizeForwardedCommand(verb, fields)
	s.Game.ClientCommand(slot.Index, sanitized)
}

// sanitizeForwardedCommand strips carriage control bytes from every
// argument, and ';' from non-chat commands under sv_filterCommands==2.
func sanitizeForwardedCommand(verb string, fields []string) []string {
	filterSemicolon := cvars.SvFilterCommands.Value() == 2 && verb != "say" && verb != "say_team" && verb != "tell"
	out := make([]string, len(fields))
	for i, f := range fields {
		f = strings.ReplaceAll(f, "\r", "")
		f = strings.ReplaceAll(f, "\n", "")
		if filterSemicolon {
			f = strings.ReplaceAll(f, ";", "")
		}
		out[i] = f
	}
	return out
}

// unsafeLegacyCommand reports whether fields match one of the
// known-crashing combinations sv_legacyFixes guards against; it never
// applies when sv_legacyFixes is disabled.
func unsafeLegacyCommand(fields []string) bool {
	if cvars.SvLegacyFixes.Value() == 0 {
		return false
	}
	if len(fields) >= 2 {
		switch strings.ToLower(fields[0]) {
		case "npc":
			if len(fields) >= 3 && strings.ToLower(fields[1]) == "spawn" {
				switch strings.ToLower(fields[2]) {
				case "ragnos", "saber_droid":
					return true
				}
			}
		case "team":
			switch strings.ToLower(fields[1]) {
			case "follow1", "follow2":
				return true
			}
		case "callteamvote":
			return true
		}
	}
	return false
}
