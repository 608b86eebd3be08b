// SPDX-License-Identifier: GPL-2.0-or-later

package conn

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"svconn/cvars"
	"svconn/protocol"
)

// handleDownloadStart processes a "download <pakname>" client command,
// validating the request before opening the file.
func (s *Server) handleDownloadStart(slot *ConnectionSlot, fields []string) {
	if len(fields) < 2 {
		return
	}
	name := fields[1]

	fail := func(reason string) {
		s.sendReliable(slot, fmt.Sprintf("download 0 -1 %q", reason))
		slot.download.close()
	}

	if cvars.SvAllowDownload.Value() == 0 {
		fail("Downloads are disabled on this server.")
		return
	}
	if !strings.HasSuffix(name, ".pk3") {
		fail("Download request must name a .pk3 file.")
		return
	}
	if s.Paks != nil && s.Paks.IsIDPak(name) {
		fail("Cannot download id-bundled content.")
		return
	}
	if !s.isReferencedPak(name) {
		fail("File not referenced by server.")
		return
	}

	if s.Paks == nil {
		fail("Download store unavailable.")
		return
	}
	f, size, err := s.Paks.Open(name)
	if err != nil {
		fail(err.Error())
		return
	}

	slot.download.close()
	slot.download.name = name
	slot.download.file = f
	slot.download.size = size
	s.fillDownloadWindow(slot)
}

func (s *Server) isReferencedPak(name string) bool {
	if s.Paks == nil {
		return false
	}
	for _, r := range s.Paks.ReferencedPaks() {
		if r.Name == name {
			return true
		}
	}
	return false
}

// fillDownloadWindow reads up to MAX_DOWNLOAD_WINDOW blocks ahead of
// the client's last acknowledged block. Once the file is exhausted it
// queues exactly one synthetic zero-length block, deferring it across
// calls if the window is already full, so the client always sees a
// size-0 block marking the end regardless of how the real file length
// lines up with the block size.
func (s *Server) fillDownloadWindow(slot *ConnectionSlot) {
	d := &slot.download
	for !d.eof && d.currentBlock-d.clientBlock < protocol.MaxDownloadWindow {
		buf := make([]byte, protocol.MaxDownloadBlkSize)
		n, err := io.ReadFull(d.file, buf)
		if n > 0 {
			idx := d.currentBlock % protocol.MaxDownloadWindow
			d.blocks[idx] = buf[:n]
			d.blockSizes[idx] = n
			d.currentBlock++
			d.count += int64(n)
		}
		if err != nil {
			d.eof = true
		}
	}

	if d.eof && !d.eofBlockSent && d.currentBlock-d.clientBlock < protocol.MaxDownloadWindow {
		idx := d.currentBlock % protocol.MaxDownloadWindow
		d.blocks[idx] = nil
		d.blockSizes[idx] = 0
		d.currentBlock++
		d.eofBlockSent = true
	}
}

// blocksPerSnapshot computes how many download blocks may be sent in
// one frame for slot, rate-limited to the lesser of the client's own
// rate and sv_maxRate.
func blocksPerSnapshot(clientRate, snapshotMsec int) int {
	maxRate := int(cvars.SvMaxRate.Value())
	if maxRate < 1000 {
		maxRate = 1000
	}
	rate := clientRate
	if rate <= 0 || rate > maxRate {
		rate = maxRate
	}
	bytesPerSnap := rate * snapshotMsec / 1000
	blocks := (bytesPerSnap + protocol.MaxDownloadBlkSize - 1) / protocol.MaxDownloadBlkSize
	if blocks < 1 {
		blocks = 1
	}
	return blocks
}

// WriteDownloadBlocks emits up to blocksPerSnapshot download blocks
// (paced by the slot's rate and snapshot interval) for the current
// frame. msg receives the wire-ready block frames.
func (s *Server) WriteDownloadBlocks(slot *ConnectionSlot, msg DownloadSink) {
	d := &slot.download
	if !d.active() {
		return
	}
	s.fillDownloadWindow(slot)

	n := blocksPerSnapshot(slot.Rate, slot.SnapshotMsec)
	for i := 0; i < n && d.xmitBlock < d.currentBlock; i++ {
		idx := d.xmitBlock % protocol.MaxDownloadWindow
		size := d.blockSizes[idx]
		if d.xmitBlock == 0 {
			msg.DownloadBlockWithSize(d.xmitBlock, int32(d.size), d.blocks[idx][:size])
		} else {
			msg.DownloadBlock(d.xmitBlock, d.blocks[idx][:size])
		}
		d.xmitBlock++
		d.lastSendTime = now()
	}

	if d.xmitBlock == d.currentBlock && time.Since(d.lastSendTime) > time.Second {
		// window fully transmitted, client hasn't acked recently: rewind
		// for a retransmit.
		d.xmitBlock = d.clientBlock
	}
}

// DownloadSink is the narrow write surface WriteDownloadBlocks needs;
// the concrete wire.Message satisfies it directly, and the per-frame
// loop transmits whatever it accumulates over the slot's netchan.
type DownloadSink interface {
	DownloadBlock(block int, payload []byte)
	DownloadBlockWithSize(block int, size int32, payload []byte)
}

// handleNextDL processes a "nextdl <block>" acknowledgement.
func (s *Server) handleNextDL(slot *ConnectionSlot, fields []string) {
	d := &slot.download
	if !d.active() || len(fields) < 2 {
		return
	}
	acked, err := strconv.Atoi(fields[1])
	if err != nil {
		s.DropClient(slot.Index, "broken download")
		return
	}
	if acked != d.clientBlock {
		s.DropClient(slot.Index, "broken download")
		return
	}
	size := d.blockSizes[d.clientBlock%protocol.MaxDownloadWindow]
	d.clientBlock++
	if size == 0 {
		d.close()
	}
}

// handleStopDL processes "stopdl": a no-op unless the slot isn't yet
// ACTIVE, mirroring the original's guard against stopping mid-play
// downloads through this path.
func (s *Server) handleStopDL(slot *ConnectionSlot) {
	if slot.state != Active {
		slot.download.close()
	}
}
