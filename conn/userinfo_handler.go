// SPDX-License-Identifier: GPL-2.0-or-later

package conn

import (
	"strconv"
	"time"

	"svconn/cvars"
	"svconn/math"
	"svconn/protocol"
	"svconn/userinfo"
)

// handleUserinfoCommand processes a "userinfo <string>" client command,
// applying the server's change-rate limit.
func (s *Server) handleUserinfoCommand(slot *ConnectionSlot, command string) {
	raw := command[len("userinfo"):]
	for len(raw) > 0 && raw[0] == ' ' {
		raw = raw[1:]
	}
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}

	if s.rateLimited(slot) {
		slot.UserinfoPostponed = raw
		return
	}
	s.applyUserinfo(slot, userinfo.Parse(raw), false)
}

// rateLimited reports whether slot has already changed its userinfo
// INFO_CHANGE_MAX_COUNT times within INFO_CHANGE_MIN_INTERVAL, stashing
// further updates for replay once the window expires.
func (s *Server) rateLimited(slot *ConnectionSlot) bool {
	window := time.Duration(protocol.InfoChangeMinIntervalMS) * time.Millisecond
	if now().Sub(slot.LastUserInfoChange) > window {
		slot.LastUserInfoCount = 0
	}
	return slot.LastUserInfoCount >= protocol.InfoChangeMaxCount
}

// ApplyPostponedUserinfo re-checks a slot with a stashed update once
// its rate-limit window has expired, called from the per-frame think
// path.
func (s *Server) ApplyPostponedUserinfo(slot *ConnectionSlot) {
	if slot.UserinfoPostponed == "" {
		return
	}
	if s.rateLimited(slot) {
		return
	}
	raw := slot.UserinfoPostponed
	slot.UserinfoPostponed = ""
	s.applyUserinfo(slot, userinfo.Parse(raw), false)
}

// applyUserinfo normalises and stores a client's userinfo: name
// sanitisation, rate/snaps clamping, ip overwrite, forcepowers
// validation, then notifies the game module.
func (s *Server) applyUserinfo(slot *ConnectionSlot, info *userinfo.Info, connecting bool) {
	if !connecting {
		slot.LastUserInfoChange = now()
		slot.LastUserInfoCount++
	}

	addr := ""
	if slot.Chan != nil {
		addr = slot.Chan.Addr.String()
	}
	if !info.Set("ip", addr) {
		s.DropClient(slot.Index, "userinfo too long")
		return
	}

	name := userinfo.SanitizeName(info.Get("name"))
	info.Set("name", name)
	slot.Name = name

	rate := parseRate(info.Get("rate"))
	rate = clampRate(rate)
	info.Set("rate", strconv.Itoa(rate))
	slot.Rate = rate

	wish := parseInt(info.Get("snaps"), 20)
	snapsMin := int(cvars.SvSnapsMin.Value())
	snapsMax := int(cvars.SvSnapsMax.Value())
	fps := int(cvars.SvFps.Value())
	if fps < snapsMax {
		snapsMax = fps
	}
	wish = clampInt(wish, snapsMin, snapsMax)
	slot.WishSnaps = wish
	if wish > 0 {
		slot.SnapshotMsec = 1000 / wish
	}

	if fp := info.Get("forcepowers"); fp != "" && !userinfo.ValidForcePowers(fp) {
		info.Set("forcepowers", userinfo.DefaultForcePowers())
	}

	slot.Info = info

	if !connecting {
		s.Game.ClientUserinfoChanged(slot.Index)
	}
}

func parseRate(s string) int {
	return parseInt(s, 0)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// clampRate applies sv_ratePolicy: 1 uses sv_clientRate for every
// client; 2 clamps the client's requested value into
// [max(1000, sv_minRate), sv_maxRate], with no upper bound when
// sv_maxRate is 0 or less; any other policy keeps the requested value.
func clampRate(requested int) int {
	switch int(cvars.SvRatePolicy.Value()) {
	case 1:
		return int(cvars.SvClientRate.Value())
	case 2:
		lo := 1000
		if minR := int(cvars.SvMinRate.Value()); minR > lo {
			lo = minR
		}
		hi := int(cvars.SvMaxRate.Value())
		if hi <= 0 {
			hi = requested
			if hi < lo {
				hi = lo
			}
		}
		return clampInt(requested, lo, hi)
	default:
		return requested
	}
}

func clampInt(v, lo, hi int) int {
	return int(math.Clamp(float64(lo), float64(v), float64(hi)))
}
