// SPDX-License-Identifier: GPL-2.0-or-later

// Package ban implements a ban list / exception subnet collaborator,
// modeled on SV_IsBanned: an exception-rule-first linear scan over
// CIDR-style rules.
package ban

import "net/netip"

// Rule is one entry in the list: a CIDR range and whether it exempts
// addresses from an otherwise-matching ban rather than banning them.
type Rule struct {
	Prefix    netip.Prefix
	Exception bool
	Reason    string
}

// List is an ordered set of ban/exception rules, checked exception-first
// regardless of list position so an exception anywhere always wins.
type List struct {
	rules []Rule
}

func NewList() *List {
	return &List{}
}

func (l *List) Add(prefix netip.Prefix, reason string) {
	l.rules = append(l.rules, Rule{Prefix: prefix, Reason: reason})
}

func (l *List) AddException(prefix netip.Prefix) {
	l.rules = append(l.rules, Rule{Prefix: prefix, Exception: true})
}

// Check reports whether addr is banned and, if so, the reason to report to
// the rejected client. An exception rule matching addr always overrides
// any ban rule also matching it, independent of which was added first.
func (l *List) Check(addr netip.Addr) (banned bool, reason string) {
	for _, r := range l.rules {
		if r.Exception && r.Prefix.Contains(addr) {
			return false, ""
		}
	}
	for _, r := range l.rules {
		if !r.Exception && r.Prefix.Contains(addr) {
			return true, r.Reason
		}
	}
	return false, ""
}

// Rules returns a copy of the configured rules, for the admin console's
// "banlist" command.
func (l *List) Rules() []Rule {
	out := make([]Rule, len(l.rules))
	copy(out, l.rules)
	return out
}

// Remove deletes all rules matching prefix, used by "serverban del"/
// "exceptionban del".
func (l *List) Remove(prefix netip.Prefix) {
	out := l.rules[:0]
	for _, r := range l.rules {
		if r.Prefix != prefix {
			out = append(out, r)
		}
	}
	l.rules = out
}
