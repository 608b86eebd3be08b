// SPDX-License-Identifier: GPL-2.0-or-later

// Package demo implements the DemoRecorder collaborator the connection
// core notifies on auto-record start/stop. Writing the actual demo
// stream is out of scope; this tracks one unique filename per
// in-progress recording so a later recorder can be wired in without
// changing the core's call sites.
package demo

import (
	"fmt"
	"sync"

	"svconn/logging"
)

// Recorder assigns each BeginAuto call a unique demo filename and logs
// the lifecycle, the narrow stand-in for a real client-demo writer.
type Recorder struct {
	mu     sync.Mutex
	active map[int]string
	seq    int64
}

func New() *Recorder {
	return &Recorder{active: make(map[int]string)}
}

// BeginAuto implements conn.DemoRecorder.
func (r *Recorder) BeginAuto(slot int) {
	r.mu.Lock()
	r.seq++
	name := fmt.Sprintf("auto_%d_slot%d.dm_26", r.seq, slot)
	r.active[slot] = name
	r.mu.Unlock()
	logging.Log.WithFields(map[string]interface{}{
		"event": "demo_start",
		"slot":  slot,
		"file":  name,
	}).Info("auto demo recording started")
}

// Stop implements conn.DemoRecorder.
func (r *Recorder) Stop(slot int) {
	r.mu.Lock()
	name, ok := r.active[slot]
	delete(r.active, slot)
	r.mu.Unlock()
	if !ok {
		return
	}
	logging.Log.WithFields(map[string]interface{}{
		"event": "demo_stop",
		"slot":  slot,
		"file":  name,
	}).Info("auto demo recording stopped")
}
