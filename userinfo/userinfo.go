// SPDX-License-Identifier: GPL-2.0-or-later

// Package userinfo holds the \key\value\ string the netchan layer
// treats as an opaque blob, exposing the map-like view the connection
// core needs while keeping insertion order so re-serialising a parsed
// Info round-trips byte for byte when nothing changed.
package userinfo

import "strings"

// MaxInfoString bounds the serialised form, matching the wire limit a
// connecting client is held to.
const MaxInfoString = 1024

type Info struct {
	keys []string
	vals map[string]string
}

func New() *Info {
	return &Info{vals: make(map[string]string)}
}

// Parse splits a \key\value\... string into an Info, tolerating a
// leading backslash and an odd trailing fragment the way the original
// wire format does.
func Parse(s string) *Info {
	info := New()
	parts := strings.Split(strings.TrimPrefix(s, "\\"), "\\")
	for i := 0; i+1 < len(parts); i += 2 {
		info.set(parts[i], parts[i+1])
	}
	return info
}

func (info *Info) set(key, value string) {
	if _, ok := info.vals[key]; !ok {
		info.keys = append(info.keys, key)
	}
	info.vals[key] = value
}

func (info *Info) Get(key string) string {
	return info.vals[key]
}

func (info *Info) Has(key string) bool {
	_, ok := info.vals[key]
	return ok
}

// Set stores key=value and reports whether the resulting string still
// fits within MaxInfoString; on overflow the Info is left unchanged.
func (info *Info) Set(key, value string) bool {
	saved := info.vals[key]
	hadKey := info.Has(key)
	info.set(key, value)
	if len(info.String()) > MaxInfoString {
		if hadKey {
			info.vals[key] = saved
		} else {
			info.Delete(key)
		}
		return false
	}
	return true
}

func (info *Info) Delete(key string) {
	if !info.Has(key) {
		return
	}
	delete(info.vals, key)
	for i, k := range info.keys {
		if k == key {
			info.keys = append(info.keys[:i], info.keys[i+1:]...)
			break
		}
	}
}

func (info *Info) Keys() []string {
	return info.keys
}

func (info *Info) String() string {
	var b strings.Builder
	for _, k := range info.keys {
		b.WriteByte('\\')
		b.WriteString(k)
		b.WriteByte('\\')
		b.WriteString(info.vals[k])
	}
	return b.String()
}

// Clone returns a deep copy, used when a slot's userinfo must be frozen
// into a baseline before a reuse-slot's fields are applied on top.
func (info *Info) Clone() *Info {
	c := New()
	for _, k := range info.keys {
		c.set(k, info.vals[k])
	}
	return c
}
