// SPDX-License-Identifier: GPL-2.0-or-later

package smod

import (
	"strconv"
	"strings"
	"testing"

	"svconn/ban"
	"svconn/challenge"
	"svconn/conn"
	"svconn/cvars"
	"svconn/userinfo"
)

// noopGame is a minimal conn.GameModule stub so ClientEnterWorld (which
// notifies the game module on the PRIMED->ACTIVE transition) has
// something to call.
type noopGame struct{}

func (noopGame) ClientConnect(slot int, firstTime, isBot bool) string { return "" }
func (noopGame) ClientDisconnect(slot int)                            {}
func (noopGame) ClientBegin(slot int)                                 {}
func (noopGame) ClientUserinfoChanged(slot int)                       {}
func (noopGame) ClientCommand(slot int, args []string)                {}
func (noopGame) ClientThink(slot int, cmd conn.UserCmd)                {}

// fakePrinter records every PrintTo/ChatAll call for assertions.
type fakePrinter struct {
	toSlot []int
	toMsg  []string
	chat   []string
}

func (p *fakePrinter) PrintTo(slot int, msg string) {
	p.toSlot = append(p.toSlot, slot)
	p.toMsg = append(p.toMsg, msg)
}

func (p *fakePrinter) ChatAll(msg string) {
	p.chat = append(p.chat, msg)
}

func newTestServer(t *testing.T, n int) *conn.Server {
	t.Helper()
	chal, err := challenge.New()
	if err != nil {
		t.Fatalf("challenge.New: %v", err)
	}
	srv := conn.NewServer(n, chal, ban.NewList())
	srv.Game = noopGame{}
	for i, c := range srv.Clients {
		c.Info = userinfo.New()
		c.Name = "player" + strconv.Itoa(i)
	}
	return srv
}

func activate(srv *conn.Server, slot int, name string) {
	c := srv.Clients[slot]
	srv.ClientEnterWorld(c, conn.UserCmd{})
	c.Name = name
}

func TestAuthenticateClientRequiresActiveSlot(t *testing.T) {
	srv := newTestServer(t, 2)
	printer := &fakePrinter{}
	d := New(srv, printer)

	cvars.SmodAdminPassword(1).SetByString("secret")
	cvars.SmodConfig(1).SetByString(itoaMask(CapFreeze | CapWarn))

	if d.AuthenticateClient(0, 1, "secret") {
		t.Fatalf("authenticated a non-ACTIVE slot")
	}

	activate(srv, 0, "alice")
	if !d.AuthenticateClient(0, 1, "secret") {
		t.Fatalf("expected authentication to succeed for an ACTIVE slot with the right password")
	}
	if srv.Clients[0].SmodID != 1 {
		t.Fatalf("SmodID not recorded: got %d", srv.Clients[0].SmodID)
	}
	if srv.Clients[0].Smod != int32(CapFreeze|CapWarn) {
		t.Fatalf("capability mask not loaded: got %d", srv.Clients[0].Smod)
	}
}

func TestAuthenticateClientRejectsWrongPassword(t *testing.T) {
	srv := newTestServer(t, 1)
	d := New(srv, &fakePrinter{})
	activate(srv, 0, "alice")

	cvars.SmodAdminPassword(2).SetByString("correct")
	if d.AuthenticateClient(0, 2, "wrong") {
		t.Fatalf("authenticated with the wrong password")
	}
	if srv.Clients[0].SmodID != -1 {
		t.Fatalf("slot should remain logged out after a failed attempt, SmodID=%d", srv.Clients[0].SmodID)
	}
}

func TestAuthenticateClientRejectsOutOfRangeID(t *testing.T) {
	srv := newTestServer(t, 1)
	d := New(srv, &fakePrinter{})
	activate(srv, 0, "alice")

	if d.AuthenticateClient(0, 0, "") {
		t.Fatalf("authenticated with an out-of-range admin id")
	}
	if d.AuthenticateClient(0, 17, "") {
		t.Fatalf("authenticated with an out-of-range admin id")
	}
}

func TestAuthenticateClientRejectsBlankPassword(t *testing.T) {
	srv := newTestServer(t, 1)
	d := New(srv, &fakePrinter{})
	activate(srv, 0, "alice")

	// g_smodAdminPassword_3 was never set, so it's still "".
	if d.AuthenticateClient(0, 3, "") {
		t.Fatalf("an unset (blank) admin password must never authenticate")
	}
}

func TestLogoutClientClearsAdminState(t *testing.T) {
	srv := newTestServer(t, 1)
	d := New(srv, &fakePrinter{})
	activate(srv, 0, "alice")
	cvars.SmodAdminPassword(4).SetByString("pw")
	cvars.SmodConfig(4).SetByString(itoaMask(CapFreeze))
	if !d.AuthenticateClient(0, 4, "pw") {
		t.Fatalf("setup: expected authentication to succeed")
	}
	srv.Clients[0].IsFrozen = true
	srv.Clients[0].WarnLevel = 2

	d.LogoutClient(0)

	slot := srv.Clients[0]
	if slot.SmodID != -1 || slot.Smod != 0 || slot.IsFrozen || slot.WarnLevel != 0 {
		t.Fatalf("logout did not fully clear admin state: %+v", slot)
	}
}

func TestDispatchRejectsUnauthorizedVerb(t *testing.T) {
	srv := newTestServer(t, 2)
	printer := &fakePrinter{}
	d := New(srv, printer)
	activate(srv, 0, "alice")
	activate(srv, 1, "bob")
	cvars.SmodAdminPassword(5).SetByString("pw")
	cvars.SmodConfig(5).SetByString(itoaMask(CapWarn)) // no CapFreeze
	if !d.AuthenticateClient(0, 5, "pw") {
		t.Fatalf("setup: expected authentication to succeed")
	}

	if err := d.Dispatch(0, "smod freeze bob"); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if srv.Clients[1].IsFrozen {
		t.Fatalf("freeze applied despite missing capability bit")
	}
	if len(printer.toMsg) != 1 || !strings.Contains(printer.toMsg[0], "not authorized") {
		t.Fatalf("expected a not-authorized reply, got %v", printer.toMsg)
	}
}

func TestDispatchAllowsAuthorizedVerb(t *testing.T) {
	srv := newTestServer(t, 2)
	printer := &fakePrinter{}
	d := New(srv, printer)
	activate(srv, 0, "alice")
	activate(srv, 1, "bob")
	cvars.SmodAdminPassword(6).SetByString("pw")
	cvars.SmodConfig(6).SetByString(itoaMask(CapFreeze))
	if !d.AuthenticateClient(0, 6, "pw") {
		t.Fatalf("setup: expected authentication to succeed")
	}

	if err := d.Dispatch(0, "smod freeze bob"); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if !srv.Clients[1].IsFrozen {
		t.Fatalf("expected bob to be frozen")
	}
	if len(printer.chat) != 1 || !strings.Contains(printer.chat[0], "frozen") {
		t.Fatalf("expected a broadcast chat announcement, got %v", printer.chat)
	}
}

func TestDispatchUnknownVerb(t *testing.T) {
	srv := newTestServer(t, 1)
	printer := &fakePrinter{}
	d := New(srv, printer)
	activate(srv, 0, "alice")
	cvars.SmodAdminPassword(7).SetByString("pw")
	cvars.SmodConfig(7).SetByString(itoaMask(CapFreeze | CapWarn | CapTell | CapBring | CapCheats | CapSlay | CapJaGUID))
	if !d.AuthenticateClient(0, 7, "pw") {
		t.Fatalf("setup: expected authentication to succeed")
	}

	if err := d.Dispatch(0, "smod nosuchcommand"); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}
	if len(printer.toMsg) != 1 || !strings.Contains(printer.toMsg[0], "unknown smod command") {
		t.Fatalf("expected an unknown-command reply, got %v", printer.toMsg)
	}
}

func TestResolveTargetByIndex(t *testing.T) {
	srv := newTestServer(t, 2)
	d := New(srv, &fakePrinter{})
	activate(srv, 1, "bob")

	idx, err := d.resolveTarget("1")
	if err != nil || idx != 1 {
		t.Fatalf("resolveTarget(\"1\") = %d, %v", idx, err)
	}
	if _, err := d.resolveTarget("0"); err == nil {
		t.Fatalf("expected an error resolving a non-ACTIVE slot by index")
	}
	if _, err := d.resolveTarget("99"); err == nil {
		t.Fatalf("expected an error resolving an out-of-range index")
	}
}

func TestResolveTargetBySubstring(t *testing.T) {
	srv := newTestServer(t, 3)
	d := New(srv, &fakePrinter{})
	activate(srv, 0, "^1Alice^7")
	activate(srv, 1, "bobby")
	activate(srv, 2, "bobcat")

	idx, err := d.resolveTarget("ALI")
	if err != nil || idx != 0 {
		t.Fatalf("resolveTarget(\"ALI\") = %d, %v; expected it to match color-stripped \"Alice\"", idx, err)
	}

	if _, err := d.resolveTarget("bob"); err == nil {
		t.Fatalf("expected an ambiguous-match error for \"bob\" matching both bobby and bobcat")
	}

	if _, err := d.resolveTarget("nobody"); err == nil {
		t.Fatalf("expected a no-match error for \"nobody\"")
	}
}

func itoaMask(v int32) string {
	return strconv.Itoa(int(v))
}
