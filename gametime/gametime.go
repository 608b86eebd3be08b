// SPDX-License-Identifier: GPL-2.0-or-later

// Package gametime paces the server's main frame loop, adapted from the
// teacher's host frame-timer (itself keyed off cl_maxfps/host_timescale) to
// key off sv_fps instead: the dedicated server has no concept of a render
// frame, only the tick rate at which snapshots are produced.
package gametime

import (
	"svconn/cvars"
	"svconn/math"
	"svconn/qtime"
)

type GameTime struct {
	time       float64
	oldTime    float64
	frameTime  float64
	frameCount int
}

func (h *GameTime) Reset() {
	h.frameTime = 0.05
}

func (h *GameTime) Time() float64      { return h.time }
func (h *GameTime) OldTime() float64   { return h.oldTime }
func (h *GameTime) FrameTime() float64 { return h.frameTime }
func (h *GameTime) FrameCount() int    { return h.frameCount }
func (h *GameTime) FrameIncrease()     { h.frameCount++ }

// UpdateTime advances the server clock. It returns false if calling again
// now would exceed sv_fps, the same throttle cl_maxfps applies on the
// client side.
func (h *GameTime) UpdateTime() bool {
	h.time = qtime.QTime().Seconds()
	fps := math.Clamp(1.0, float64(cvars.SvFps.Value()), 125.0)
	if h.time-h.oldTime < 1/fps {
		return false
	}
	h.frameTime = math.Clamp(0.001, h.time-h.oldTime, 0.5)
	h.oldTime = h.time
	return true
}

// Milliseconds returns the current server time as the millisecond
// timestamp used throughout the wire protocol (sv.time).
func (h *GameTime) Milliseconds() int32 {
	return int32(h.time * 1000)
}
