// SPDX-License-Identifier: GPL-2.0-or-later

package game

import (
	"strconv"
	"strings"

	"svconn/conn"
	"svconn/smod"
)

// AdminBridge wraps a GameModule and intercepts the "smod"/"smodlogin"/
// "smodlogout" verbs the connection core forwards as ordinary client
// commands (unrecognised commands are the game module's business; the
// admin subsystem is layered in front of whichever game module is
// configured rather than baked into the core).
type AdminBridge struct {
	Inner conn.GameModule
	Admin *smod.Dispatcher
}

var _ conn.GameModule = &AdminBridge{}

func (b *AdminBridge) ClientConnect(slot int, firstTime, isBot bool) string {
	return b.Inner.ClientConnect(slot, firstTime, isBot)
}

func (b *AdminBridge) ClientDisconnect(slot int) {
	b.Admin.LogoutClient(slot)
	b.Inner.ClientDisconnect(slot)
}

func (b *AdminBridge) ClientBegin(slot int) { b.Inner.ClientBegin(slot) }

func (b *AdminBridge) ClientUserinfoChanged(slot int) { b.Inner.ClientUserinfoChanged(slot) }

func (b *AdminBridge) ClientCommand(slot int, args []string) {
	if len(args) == 0 {
		b.Inner.ClientCommand(slot, args)
		return
	}
	switch strings.ToLower(args[0]) {
	case "smod":
		b.Admin.Dispatch(slot, strings.Join(args, " "))
		return
	case "smodlogin":
		if len(args) != 3 {
			return
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return
		}
		b.Admin.AuthenticateClient(slot, id, args[2])
		return
	case "smodlogout":
		b.Admin.LogoutClient(slot)
		return
	}
	b.Inner.ClientCommand(slot, args)
}

func (b *AdminBridge) ClientThink(slot int, cmd conn.UserCmd) { b.Inner.ClientThink(slot, cmd) }
