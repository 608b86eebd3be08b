// SPDX-License-Identifier: GPL-2.0-or-later

// Package execute dispatches a raw command line through a chain of
// executors: console commands, cvar set/get, then a fallback.
package execute

import (
	"svconn/cmd"
	"svconn/conlog"
)

const (
	Client  = 0
	Command = 1
)

// Efunc is one stage of the dispatch chain: it reports whether it handled
// the command, and any error encountered while doing so.
type Efunc func(a cmd.Arguments, player int) (bool, error)

var (
	cmdSource = Client
	executors []Efunc
)

func SetExecutors(e []Efunc) {
	executors = e
}

func Execute(s string, source int, player int) error {
	cmdSource = source
	args := cmd.Parse(s)

	if len(args.Args()) == 0 {
		return nil
	}
	name := args.Argv(0).String()
	for _, e := range executors {
		if ok, err := e(args, player); err != nil {
			return err
		} else if ok {
			return nil
		}
	}

	conlog.Printf("Unknown command \"%s\"\n", name)
	return nil
}

func IsSrcCommand() bool {
	return cmdSource == Command
}
