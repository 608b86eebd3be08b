// SPDX-License-Identifier: GPL-2.0-or-later

// Package smod implements the administrative authentication and
// capability-bitmask-gated command dispatch layered on top of the
// client connection core, modeled on the smod command table and
// account-password cvars of SV_ExecuteClientCommand.
package smod

import (
	"fmt"
	"strconv"
	"strings"

	"svconn/conn"
	"svconn/cvars"
	"svconn/logging"
	"svconn/protocol"
)

// Capability bits gating individual admin commands, matching the
// g_smodconfig_<n> bit layout documented for smod: each verb owns a
// distinct bit, with "bring" and "tp" sharing one since they're the
// same underlying teleport authorization.
const (
	CapFreeze  = 0x40000
	CapWarn    = 0x80000
	CapWarnLvl = 0x100000
	CapBring   = 0x1000000
	CapCheats  = 0x2000000
	CapJaGUID  = 0x4000000
	CapTell    = 0x8000000
	CapSlay    = 0x10000000
)

// Printer is the narrow collaborator admin commands use to reply to
// the invoking admin and to broadcast chat, kept separate from the
// connection core's own reliable-command plumbing.
type Printer interface {
	PrintTo(slot int, msg string)
	ChatAll(msg string)
}

// Dispatcher authenticates and routes "smod <verb> <args>" commands
// against a fixed, read-only command table.
type Dispatcher struct {
	server *conn.Server
	out    Printer
	table  map[string]command
}

type command struct {
	required int32
	handler  func(d *Dispatcher, slotIdx int, args []string) error
}

func New(server *conn.Server, out Printer) *Dispatcher {
	d := &Dispatcher{server: server, out: out}
	d.table = map[string]command{
		"freeze":  {CapFreeze, cmdFreeze},
		"warn":    {CapWarn, cmdWarn},
		"warnlvl": {CapWarnLvl, cmdWarnLvl},
		"bring":   {CapBring, cmdBring},
		"tp":      {CapBring, cmdTP},
		"cheats":  {CapCheats, cmdCheats},
		"tell":    {CapTell, cmdTell},
		"slay":    {CapSlay, cmdSlay},
		"jaguid":  {CapJaGUID, cmdJaGUID},
	}
	return d
}

// AuthenticateClient logs an ACTIVE slot in as admin id if password
// matches g_smodAdminPassword_<id>.
func (d *Dispatcher) AuthenticateClient(slotIdx int, id int, password string) bool {
	slot := d.server.Clients[slotIdx]
	if slot.State() != conn.Active {
		return false
	}
	if id < protocol.SmodAdminStart || id > protocol.SmodAdminEnd {
		return false
	}
	pw := cvars.SmodAdminPassword(id)
	if pw.String() == "" || pw.String() != password {
		return false
	}
	slot.SmodID = int32(id)
	slot.Smod = int32(cvars.SmodConfig(id).Value())
	logging.Log.WithFields(map[string]interface{}{
		"event":    "smod_login",
		"instance": d.server.InstanceID,
		"slot":     slotIdx,
		"id":       id,
	}).Info("admin authenticated")
	return true
}

// LogoutClient clears admin state from a slot.
func (d *Dispatcher) LogoutClient(slotIdx int) {
	slot := d.server.Clients[slotIdx]
	slot.SmodID = protocol.SmodLoggedOut
	slot.Smod = 0
	slot.IsFrozen = false
	slot.WarnLevel = 0
}

func (d *Dispatcher) authorized(slotIdx int, required int32) bool {
	slot := d.server.Clients[slotIdx]
	return slot.SmodID > -1 && slot.Smod > -1 && (slot.Smod&required) == required
}

// Dispatch routes "smod <verb> <args...>" from slotIdx.
func (d *Dispatcher) Dispatch(slotIdx int, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		d.out.PrintTo(slotIdx, "usage: smod <command> [args]\n")
		return nil
	}
	verb := strings.ToLower(fields[1])
	cmd, ok := d.table[verb]
	if !ok {
		d.out.PrintTo(slotIdx, fmt.Sprintf("unknown smod command \"%s\"\n", verb))
		return nil
	}
	if !d.authorized(slotIdx, cmd.required) {
		d.out.PrintTo(slotIdx, "not authorized\n")
		return nil
	}
	logging.Log.WithFields(map[string]interface{}{
		"event":    "smod_command",
		"instance": d.server.InstanceID,
		"slot":     slotIdx,
		"verb":     verb,
	}).Info("admin command executed")
	return cmd.handler(d, slotIdx, fields[2:])
}

// resolveTarget resolves a target handle: a numeric index
// (bounds-checked, must be ACTIVE) or a case-insensitive substring
// match on colour-stripped names; ambiguous matches are refused.
func (d *Dispatcher) resolveTarget(token string) (int, error) {
	if idx, err := strconv.Atoi(token); err == nil {
		if idx < 0 || idx >= len(d.server.Clients) {
			return -1, fmt.Errorf("no such player %d", idx)
		}
		if d.server.Clients[idx].State() != conn.Active {
			return -1, fmt.Errorf("player %d is not active", idx)
		}
		return idx, nil
	}

	var matches []int
	needle := strings.ToLower(stripColor(token))
	for i, c := range d.server.Clients {
		if c.State() != conn.Active {
			continue
		}
		if strings.Contains(strings.ToLower(stripColor(c.Name)), needle) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 0:
		return -1, fmt.Errorf("no player matching \"%s\"", token)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = fmt.Sprintf("%d:%s", m, d.server.Clients[m].Name)
		}
		return -1, fmt.Errorf("ambiguous target, candidates: %s", strings.Join(names, ", "))
	}
}

func stripColor(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '^' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			i++
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func cmdFreeze(d *Dispatcher, slotIdx int, args []string) error {
	usage := "usage: smod freeze <player>\n"
	if len(args) < 1 {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	target, err := d.resolveTarget(args[0])
	if err != nil {
		d.out.PrintTo(slotIdx, err.Error()+"\n")
		return nil
	}
	if target == slotIdx {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	slot := d.server.Clients[target]
	slot.IsFrozen = !slot.IsFrozen
	state := "unfrozen"
	if slot.IsFrozen {
		state = "frozen"
	}
	d.out.ChatAll(fmt.Sprintf("%s has been %s\n", slot.Name, state))
	return nil
}

func cmdWarn(d *Dispatcher, slotIdx int, args []string) error {
	usage := "usage: smod warn <player> [level]\n"
	if len(args) < 1 {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	target, err := d.resolveTarget(args[0])
	if err != nil {
		d.out.PrintTo(slotIdx, err.Error()+"\n")
		return nil
	}
	if target == slotIdx {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	slot := d.server.Clients[target]
	if len(args) >= 2 {
		if lvl, err := strconv.Atoi(args[1]); err == nil {
			slot.WarnLevel = lvl
		}
	} else {
		slot.WarnLevel++
	}
	maxWarn := int(cvars.GMaxWarnLevel.Value())
	d.out.PrintTo(slotIdx, fmt.Sprintf("%s warn level is now %d/%d\n", slot.Name, slot.WarnLevel, maxWarn))
	d.out.ChatAll(fmt.Sprintf("%s has been warned (%d/%d)\n", slot.Name, slot.WarnLevel, maxWarn))
	return nil
}

func cmdWarnLvl(d *Dispatcher, slotIdx int, args []string) error {
	usage := "usage: smod warnlvl <player>\n"
	if len(args) < 1 {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	target, err := d.resolveTarget(args[0])
	if err != nil {
		d.out.PrintTo(slotIdx, err.Error()+"\n")
		return nil
	}
	if target == slotIdx {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	slot := d.server.Clients[target]
	d.out.PrintTo(slotIdx, fmt.Sprintf("%s warn level: %d\n", slot.Name, slot.WarnLevel))
	return nil
}

func cmdBring(d *Dispatcher, slotIdx int, args []string) error {
	usage := "usage: smod bring <player>\n"
	if len(args) < 1 {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	target, err := d.resolveTarget(args[0])
	if err != nil {
		d.out.PrintTo(slotIdx, err.Error()+"\n")
		return nil
	}
	if target == slotIdx {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	d.out.PrintTo(slotIdx, fmt.Sprintf("bringing %s to you\n", d.server.Clients[target].Name))
	// Actually moving the target entity is the game module's job; the
	// core only authorises and names the operation.
	return nil
}

func cmdTP(d *Dispatcher, slotIdx int, args []string) error {
	usage := "usage: smod tp <a> [<b>]\n"
	if len(args) < 1 {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	a, err := d.resolveTarget(args[0])
	if err != nil {
		d.out.PrintTo(slotIdx, err.Error()+"\n")
		return nil
	}
	if a == slotIdx {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	b := slotIdx
	if len(args) >= 2 {
		b, err = d.resolveTarget(args[1])
		if err != nil {
			d.out.PrintTo(slotIdx, err.Error()+"\n")
			return nil
		}
	}
	d.out.PrintTo(slotIdx, fmt.Sprintf("teleporting %s to %s\n", d.server.Clients[a].Name, d.server.Clients[b].Name))
	return nil
}

func cmdCheats(d *Dispatcher, slotIdx int, args []string) error {
	if len(args) < 1 || (args[0] != "0" && args[0] != "1") {
		d.out.PrintTo(slotIdx, "usage: smod cheats 0|1\n")
		return nil
	}
	cvars.GCheats.SetByString(args[0])
	cvars.SvCheats.SetByString(args[0])
	d.out.PrintTo(slotIdx, fmt.Sprintf("cheats set to %s\n", args[0]))
	return nil
}

func cmdTell(d *Dispatcher, slotIdx int, args []string) error {
	usage := "usage: smod tell <player> <message>\n"
	if len(args) < 2 {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	target, err := d.resolveTarget(args[0])
	if err != nil {
		d.out.PrintTo(slotIdx, err.Error()+"\n")
		return nil
	}
	if target == slotIdx {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	msg := strings.Join(args[1:], " ")
	d.out.PrintTo(target, fmt.Sprintf("[admin] %s\n", msg))
	d.out.PrintTo(slotIdx, fmt.Sprintf("told %s: %s\n", d.server.Clients[target].Name, msg))
	return nil
}

func cmdSlay(d *Dispatcher, slotIdx int, args []string) error {
	usage := "usage: smod slay <player>\n"
	if len(args) < 1 {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	target, err := d.resolveTarget(args[0])
	if err != nil {
		d.out.PrintTo(slotIdx, err.Error()+"\n")
		return nil
	}
	if target == slotIdx {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	d.out.ChatAll(fmt.Sprintf("%s has been slain\n", d.server.Clients[target].Name))
	// The actual playerState.fallingToDeath mutation lives in the game
	// module; the core only authorises and names the target.
	return nil
}

func cmdJaGUID(d *Dispatcher, slotIdx int, args []string) error {
	usage := "usage: smod jaguid <player>\n"
	if len(args) < 1 {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	target, err := d.resolveTarget(args[0])
	if err != nil {
		d.out.PrintTo(slotIdx, err.Error()+"\n")
		return nil
	}
	if target == slotIdx {
		d.out.PrintTo(slotIdx, usage)
		return nil
	}
	guid := d.server.Clients[target].Info.Get("ja_guid")
	d.out.PrintTo(slotIdx, fmt.Sprintf("%s ja_guid: %s\n", d.server.Clients[target].Name, guid))
	return nil
}
