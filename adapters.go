// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"io"

	"svconn/cmd"
	"svconn/conn"
	"svconn/cvar"
	"svconn/execute"
	"svconn/filesystem"
)

// filesystemPakStore adapts the filesystem package's pak bookkeeping
// to conn.PakStore.
type filesystemPakStore struct{}

func (filesystemPakStore) ReferencedPaks() []conn.PakRef {
	refs := filesystem.ReferencedPaks()
	out := make([]conn.PakRef, len(refs))
	for i, r := range refs {
		out[i] = conn.PakRef{Name: r.Name, Checksum: r.Checksum}
	}
	return out
}

func (filesystemPakStore) PureChecksums() []uint32 {
	return filesystem.PureChecksums()
}

func (filesystemPakStore) IsIDPak(name string) bool {
	return filesystem.IsIDPak(name)
}

func (filesystemPakStore) Open(name string) (io.ReadCloser, int64, error) {
	f, err := filesystem.Open(name)
	if err != nil {
		return nil, 0, err
	}
	info, err := filesystem.Stat(name)
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// consolePrinter adapts the connection core's reliable-command sinks
// to smod.Printer.
type consolePrinter struct {
	srv *conn.Server
}

func (p consolePrinter) PrintTo(slot int, msg string) {
	p.srv.SendPrint(slot, msg)
}

func (p consolePrinter) ChatAll(msg string) {
	p.srv.Broadcast(msg)
}

// cvarExecutor adapts cvar.Execute to the execute package's Efunc
// shape, part of the same chain of console executors wired together
// for the command line.
func cvarExecutor(a cmd.Arguments, player int) (bool, error) {
	return cvar.Execute(a)
}

// cmdExecutor adapts the registered-command table to the same Efunc
// shape, run before cvarExecutor in the console dispatch chain.
func cmdExecutor(a cmd.Arguments, player int) (bool, error) {
	source := execute.Client
	if execute.IsSrcCommand() {
		source = execute.Command
	}
	return cmd.Execute(a, player, source)
}
