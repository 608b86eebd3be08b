// SPDX-License-Identifier: GPL-2.0-or-later

// Package logging wires a single structured logger for the server process,
// modeled on dcrodman-archon's logging.go: a package-level *logrus.Logger
// configured once at startup from cvar-held values, replacing a bare
// conlog Printf/SafePrintf shim.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"

	"svconn/conlog"
)

// Log is the process-wide logger. It defaults to a stderr text logger at
// Info level so code can log before Init runs (e.g. while cvars are still
// registering).
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	Log.SetLevel(logrus.InfoLevel)

	// conlog is the console-facing print surface cvar/cmd reach for;
	// route both of its sinks through the same structured logger
	// everything else uses.
	conlog.SetPrintf(func(format string, v ...interface{}) {
		Log.Infof(format, v...)
	})
	conlog.SetSavePrintf(func(format string, v ...interface{}) {
		Log.Infof(format, v...)
	})
}

// Init reconfigures Log from operator-supplied settings once cvars have
// been read. An empty path leaves output on stderr.
func Init(path string, level string) error {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		Log.SetOutput(f)
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		Log.SetLevel(lvl)
	}
	return nil
}
