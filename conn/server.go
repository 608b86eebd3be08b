// SPDX-License-Identifier: GPL-2.0-or-later

package conn

import (
	"io"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"svconn/ban"
	"svconn/challenge"
	"svconn/cvars"
	"svconn/logging"
	"svconn/netchan"
)

// GameModule is the out-of-scope entity-simulation collaborator the
// core notifies on connection events and hands unknown client commands
// and movement to.
type GameModule interface {
	ClientConnect(slot int, firstTime, isBot bool) (reject string)
	ClientDisconnect(slot int)
	ClientBegin(slot int)
	ClientUserinfoChanged(slot int)
	ClientCommand(slot int, args []string)
	ClientThink(slot int, cmd UserCmd)
}

// Codec is the bit-serialization collaborator: the core never touches
// wire bytes for deltas directly.
type Codec interface {
	ReadDeltaUsercmdKey(key uint32, prev, out *UserCmd)
}

// PakStore is the filesystem/pak collaborator the purity verifier and
// download engine consult.
type PakStore interface {
	ReferencedPaks() []PakRef
	PureChecksums() []uint32
	IsIDPak(name string) bool
	Open(name string) (io.ReadCloser, int64, error)
}

// PakRef names one pak archive and its content checksum.
type PakRef struct {
	Name     string
	Checksum uint32
}

// DemoRecorder is the out-of-scope demo collaborator.
type DemoRecorder interface {
	BeginAuto(slot int)
	Stop(slot int)
}

// Transmitter is the narrow send surface the core uses to reply to
// out-of-band packets (getchallenge/connect), distinct from the
// per-slot netchan used once a connection exists.
type Transmitter interface {
	SendTo(addr netip.AddrPort, s string)
}

// Server is the top-level aggregate: the fixed connection table plus
// the collaborators the core is wired to. Global mutable state is
// modelled as a top-level aggregate passed explicitly rather than
// package-level variables.
type Server struct {
	Clients []*ConnectionSlot

	Game  GameModule
	Codec Codec
	Paks  PakStore
	Demo  DemoRecorder
	Bans  *ban.List
	Chal  *challenge.Authority
	Net   netchan.Transport
	Out   Transmitter

	ServerID      int32
	ChecksumFeed  uint32
	Time          int32 // current sv.time in milliseconds
	GameState     int   // SS_* value the dispatch table checks

	// InstanceID is a per-process correlation id, stable for the
	// lifetime of this Server and unrelated to ServerID (which clients
	// observe and which changes on a map restart). It is minted once in
	// NewServer and carried on every heartbeat and SMOD audit log line
	// so operators can group log output across a restart.
	InstanceID uuid.UUID

	population func() int
}

const (
	SSDead = iota
	SSLoading
	SSGame
)

// NewServer builds a fixed-size connection table sized by
// sv_maxclients: a fixed array of slots, never grown or shrunk.
func NewServer(maxClients int, chal *challenge.Authority, bans *ban.List) *Server {
	s := &Server{
		Clients:      make([]*ConnectionSlot, maxClients),
		Chal:         chal,
		Bans:         bans,
		ChecksumFeed: 0x696969,
		GameState:    SSGame,
		InstanceID:   uuid.New(),
	}
	for i := range s.Clients {
		s.Clients[i] = newSlot(i)
	}
	return s
}

// Population counts non-FREE slots, recomputed by scanning rather than
// an incremental counter, avoiding a separate count that could drift.
func (s *Server) Population() int {
	n := 0
	for _, c := range s.Clients {
		if c.state != Free {
			n++
		}
	}
	return n
}

func (s *Server) maxClients() int {
	return len(s.Clients)
}

// heartbeat logs a heartbeat emission; a real master-server ping is an
// out-of-scope network collaborator, so this is the narrow hook
// that hook stands in for.
func (s *Server) heartbeat(reason string) {
	logging.Log.WithFields(map[string]interface{}{
		"event":    "heartbeat",
		"instance": s.InstanceID,
	}).Info(reason)
}

func (s *Server) maybeHeartbeat() {
	pop := s.Population()
	if pop == 1 || pop == s.maxClients() {
		s.heartbeat("population changed")
	}
}

func privateSlotsStart(password string) int {
	if password != "" && password == cvars.SvPrivatePassword.String() {
		return 0
	}
	n := int(cvars.SvPrivateClients.Value())
	if n < 0 {
		n = 0
	}
	return n
}

func now() time.Time {
	return time.Now()
}
