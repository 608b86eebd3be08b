// SPDX-License-Identifier: GPL-2.0-or-later

// Package conn implements the client connection lifecycle, reliable
// command stream, download engine, purity verifier, movement ingester,
// and userinfo handling for one dedicated game server.
package conn

import (
	"io"
	"time"

	"svconn/netchan"
	"svconn/protocol"
	"svconn/userinfo"
)

// State is a ConnectionSlot's position in the FREE -> CONNECTED ->
// PRIMED -> ACTIVE -> ZOMBIE -> FREE lifecycle.
type State int

const (
	Free State = iota
	Connected
	Primed
	Active
	Zombie
)

func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Connected:
		return "connected"
	case Primed:
		return "primed"
	case Active:
		return "active"
	case Zombie:
		return "zombie"
	}
	return "unknown"
}

// UserCmd is one per-frame input record, decoded from the client's
// delta-encoded movement stream.
type UserCmd struct {
	ServerTime int32
	Angles     [3]int16
	Forward    int8
	Right      int8
	Up         int8
	Buttons    int32
	Weapon     byte
	ForceSel   byte
}

// unackedFrame marks a ping-measurement ring slot that has never been
// acknowledged, matching the original's -1 sentinel (0 is a valid
// server-time or wall-clock-millisecond value and can't serve as the
// unset marker).
const unackedFrame int64 = -1

// Frame is one entry of a slot's PACKET_BACKUP ping-measurement ring.
// MessageAcked is a millisecond timestamp: server time (Server.Time)
// normally, or wall-clock time when sv_pingFix is enabled.
type Frame struct {
	MessageAcked int64
}

type downloadState struct {
	file         io.ReadCloser
	name         string
	size         int64
	count        int64
	currentBlock int
	xmitBlock    int
	clientBlock  int
	blocks       [protocol.MaxDownloadWindow][]byte
	blockSizes   [protocol.MaxDownloadWindow]int
	eof          bool
	eofBlockSent bool
	lastSendTime time.Time
}

func (d *downloadState) active() bool {
	return d.name != ""
}

// close releases the file handle and every window buffer; both the
// name and handle are zeroed as a pair, matching the invariant that a
// non-empty downloadName always implies a live file handle.
func (d *downloadState) close() {
	if d.file != nil {
		d.file.Close()
	}
	*d = downloadState{}
}

type reliableRing struct {
	sequence    int32
	acknowledge int32
	commands    [protocol.MaxReliableCommands]string
}

func (r *reliableRing) add(s string) {
	r.sequence++
	r.commands[r.sequence%protocol.MaxReliableCommands] = s
}

// ConnectionSlot holds all per-client state for one of the server's
// fixed client-table entries.
type ConnectionSlot struct {
	Index int
	state State

	Chan      *netchan.Chan
	Challenge int32

	Info *userinfo.Info
	Name string

	Rate         int
	SnapshotMsec int
	WishSnaps    int

	reliable reliableRing

	LastClientCommand       int32
	LastClientCommandString string

	MessageAcknowledge  int32
	DeltaMessage        int32
	GamestateMessageNum int32

	download downloadState

	PureAuthentic bool
	GotCP         bool

	LastConnectTime     time.Time
	LastPacketTime      time.Time
	LastReliableTime    time.Time
	LastUserInfoChange  time.Time
	LastUserInfoCount   int
	UserinfoPostponed   string

	Smod      int32
	SmodID    int32
	IsFrozen  bool
	WarnLevel int

	LastUsercmd UserCmd
	Frames      [protocol.PacketBackup]Frame

	RestartedServerID int32
	ServerID          int32
	OldServerTime     int32
	PacketDelta       [protocol.PacketBackup]int32

	IsBot bool
}

func newSlot(index int) *ConnectionSlot {
	s := &ConnectionSlot{Index: index, state: Free, SmodID: protocol.SmodLoggedOut}
	resetFrames(s)
	return s
}

func resetFrames(s *ConnectionSlot) {
	for i := range s.Frames {
		s.Frames[i].MessageAcked = unackedFrame
	}
}

func (s *ConnectionSlot) State() State {
	return s.state
}

// DownloadActive reports whether slot has a file transfer in progress.
func (s *ConnectionSlot) DownloadActive() bool {
	return s.download.active()
}

// Transmit sends b over the slot's bound netchan, a no-op if the slot
// has no channel bound yet.
func (s *ConnectionSlot) Transmit(b []byte) error {
	if s.Chan == nil {
		return nil
	}
	return s.Chan.Transmit(b)
}

// reset returns the slot to its zero FREE state, releasing the
// download window and netchan binding. A FREE slot carries no
// per-connection state.
func (s *ConnectionSlot) reset() {
	index := s.Index
	s.download.close()
	*s = ConnectionSlot{Index: index, state: Free, SmodID: protocol.SmodLoggedOut}
	resetFrames(s)
}
