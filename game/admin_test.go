// SPDX-License-Identifier: GPL-2.0-or-later

package game

import (
	"testing"

	"svconn/ban"
	"svconn/challenge"
	"svconn/conn"
	"svconn/cvars"
	"svconn/smod"
)

type recordingGame struct {
	commands  [][]string
	connected []int
}

func (g *recordingGame) ClientConnect(slot int, firstTime, isBot bool) string {
	g.connected = append(g.connected, slot)
	return ""
}
func (g *recordingGame) ClientDisconnect(slot int)      {}
func (g *recordingGame) ClientBegin(slot int)           {}
func (g *recordingGame) ClientUserinfoChanged(slot int) {}
func (g *recordingGame) ClientCommand(slot int, args []string) {
	g.commands = append(g.commands, args)
}
func (g *recordingGame) ClientThink(slot int, cmd conn.UserCmd) {}

type recordingPrinter struct {
	msgs []string
}

func (p *recordingPrinter) PrintTo(slot int, msg string) { p.msgs = append(p.msgs, msg) }
func (p *recordingPrinter) ChatAll(msg string)           { p.msgs = append(p.msgs, msg) }

func newBridge(t *testing.T) (*AdminBridge, *recordingGame, *conn.Server) {
	t.Helper()
	chal, err := challenge.New()
	if err != nil {
		t.Fatalf("challenge.New: %v", err)
	}
	srv := conn.NewServer(1, chal, ban.NewList())
	inner := &recordingGame{}
	srv.Game = inner
	admin := smod.New(srv, &recordingPrinter{})
	bridge := &AdminBridge{Inner: inner, Admin: admin}
	srv.Game = bridge
	srv.ClientEnterWorld(srv.Clients[0], conn.UserCmd{})
	return bridge, inner, srv
}

func TestAdminBridgeForwardsOrdinaryCommands(t *testing.T) {
	bridge, inner, _ := newBridge(t)

	bridge.ClientCommand(0, []string{"say", "hello"})

	if len(inner.commands) != 1 {
		t.Fatalf("expected the command to reach the inner game module, got %v", inner.commands)
	}
}

func TestAdminBridgeInterceptsSmodLogin(t *testing.T) {
	bridge, inner, _ := newBridge(t)
	cvars.SmodAdminPassword(8).SetByString("pw")
	cvars.SmodConfig(8).SetByString("1")

	bridge.ClientCommand(0, []string{"smodlogin", "8", "pw"})

	if len(inner.commands) != 0 {
		t.Fatalf("smodlogin must not reach the inner game module, got %v", inner.commands)
	}
}

func TestAdminBridgeInterceptsSmodVerb(t *testing.T) {
	bridge, inner, _ := newBridge(t)

	bridge.ClientCommand(0, []string{"smod", "freeze", "0"})

	if len(inner.commands) != 0 {
		t.Fatalf("smod verbs must not reach the inner game module, got %v", inner.commands)
	}
}

func TestAdminBridgeLogoutOnDisconnect(t *testing.T) {
	bridge, _, srv := newBridge(t)
	cvars.SmodAdminPassword(9).SetByString("pw")
	cvars.SmodConfig(9).SetByString("1")
	bridge.ClientCommand(0, []string{"smodlogin", "9", "pw"})
	if srv.Clients[0].SmodID != 9 {
		t.Fatalf("setup: expected login to succeed, SmodID=%d", srv.Clients[0].SmodID)
	}

	bridge.ClientDisconnect(0)

	if srv.Clients[0].SmodID != -1 {
		t.Fatalf("expected ClientDisconnect to log the admin out, SmodID=%d", srv.Clients[0].SmodID)
	}
}
