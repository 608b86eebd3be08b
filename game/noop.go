// SPDX-License-Identifier: GPL-2.0-or-later

// Package game provides a minimal stand-in for the out-of-scope game
// logic module (entity simulation, rule enforcement) the connection
// core talks to through conn.GameModule.
package game

import "svconn/conn"

// Noop implements conn.GameModule by accepting every client and
// otherwise doing nothing, useful for exercising the connection core
// in isolation and as a safe default before a real game module is
// wired in.
type Noop struct{}

var _ conn.GameModule = Noop{}

func (Noop) ClientConnect(slot int, firstTime, isBot bool) string { return "" }
func (Noop) ClientDisconnect(slot int)                            {}
func (Noop) ClientBegin(slot int)                                 {}
func (Noop) ClientUserinfoChanged(slot int)                       {}
func (Noop) ClientCommand(slot int, args []string)                {}
func (Noop) ClientThink(slot int, cmd conn.UserCmd)                {}
