// SPDX-License-Identifier: GPL-2.0-or-later

// Package protocol names the wire constants of the client-connection
// subsystem: the in-band server->client message sections, the client->server
// command bytes, and the numeric contract values fixed by the protocol.
package protocol

// Version is the protocol version this build speaks. A connect with a
// mismatched value is rejected before any slot is touched.
const Version = 26

// Server->client in-band message sections (svc_*).
const (
	SvcBad = iota
	SvcNop
	SvcGamestate
	SvcConfigstring
	SvcBaseline
	SvcEOF
	SvcDownload
	SvcMapChange
	SvcPrint
	SvcChat
	SvcDisconnect
	SvcServerCommand
)

// Client->server in-band command bytes (clc_*).
const (
	ClcBad = iota
	ClcNop
	ClcClientCommand
	ClcMove
	ClcMoveNoDelta
	ClcEOF
)

// Numeric contract constants shared by the wire codec and the
// connection core.
const (
	MaxDownloadWindow  = 8
	MaxDownloadBlkSize = 1024
	MaxReliableCommands = 64
	MaxPacketUserCmds  = 32
	PacketBackup       = 32
	MaxInfoString      = 1024
	MaxClients         = 64

	SmodAdminStart = 1
	SmodAdminEnd   = 16
	SmodLoggedOut  = -1

	InfoChangeMinIntervalMS = 6000
	InfoChangeMaxCount      = 3
)
