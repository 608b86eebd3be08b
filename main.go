// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"flag"

	"svconn/ban"
	"svconn/challenge"
	"svconn/conn"
	"svconn/cvars"
	"svconn/demo"
	"svconn/execute"
	"svconn/filesystem"
	"svconn/game"
	"svconn/gametime"
	"svconn/logging"
	"svconn/smod"
	"svconn/udp"
	"svconn/wire"
)

var (
	listenAddr = flag.String("listen", ":29070", "address to listen on")
	baseDir    = flag.String("basedir", ".", "base game data directory")
	gameDir    = flag.String("gamedir", "base", "active game directory")
)

func main() {
	flag.Parse()

	execute.SetExecutors([]execute.Efunc{
		cmdExecutor,
		cvarExecutor,
	})

	if err := logging.Init(cvars.LogFilePath.String(), cvars.LogLevel.String()); err != nil {
		logging.Log.WithError(err).Warn("failed to initialize log file, staying on stderr")
	}

	filesystem.UseBaseDir(*baseDir)
	filesystem.UseGameDir(*gameDir)

	chal, err := challenge.New()
	if err != nil {
		logging.Log.WithError(err).Fatal("could not seed challenge authority")
	}
	bans := ban.NewList()

	sock, err := udp.Listen(*listenAddr)
	if err != nil {
		logging.Log.WithError(err).Fatal("could not bind listen socket")
	}
	defer sock.Close()

	srv := conn.NewServer(int(cvars.SvMaxClients.Value()), chal, bans)
	srv.Paks = filesystemPakStore{}
	srv.Demo = demo.New()
	srv.Net = sock
	srv.Out = sock

	admin := smod.New(srv, consolePrinter{srv: srv})
	srv.Game = &game.AdminBridge{Inner: game.Noop{}, Admin: admin}

	logging.Log.WithField("addr", *listenAddr).Info("server listening")

	runFrameLoop(srv, sock)
}

// runFrameLoop drives the single-threaded cooperative main loop: pace
// to sv_fps, service postponed userinfo, read datagrams. The
// full packet-routing path (demultiplexing a raw datagram into
// out-of-band handshake vs. in-band movement) is wired by the
// datagram-plumbing collaborator this core treats as external; this
// loop only drives the pieces this module owns.
func runFrameLoop(srv *conn.Server, sock *udp.Socket) {
	var clock gametime.GameTime
	buf := make([]byte, 8192)
	for {
		if !clock.UpdateTime() {
			continue
		}
		srv.Time = clock.Milliseconds()

		for _, slot := range srv.Clients {
			if slot.State() == conn.Free {
				continue
			}
			srv.ApplyPostponedUserinfo(slot)

			if slot.DownloadActive() {
				msg := &wire.Message{}
				srv.WriteDownloadBlocks(slot, msg)
				if msg.HasMessage() {
					slot.Transmit(msg.Bytes())
				}
			}
		}

		n, addr, err := sock.ReadFrom(buf)
		if err != nil || n == 0 {
			continue
		}
		_ = addr // routing a raw datagram to GetChallenge/Connect/movement
		// is the job of the out-of-band sentinel parser, an external
		// collaborator; this loop only shows where it plugs in.
	}
}
