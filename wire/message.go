// SPDX-License-Identifier: GPL-2.0-or-later

// Package wire holds the bit-serialization primitives the connection core
// treats as an external collaborator: plain byte/short/long/string framing
// with no knowledge of game-specific delta encoding.
package wire

import (
	"bytes"
	"encoding/binary"
)

// Message is an outgoing byte buffer built one primitive field at a time.
type Message struct {
	buf bytes.Buffer
}

func (m *Message) Bytes() []byte {
	return m.buf.Bytes()
}

func (m *Message) Len() int {
	return m.buf.Len()
}

func (m *Message) write(data interface{}) {
	binary.Write(&m.buf, binary.LittleEndian, data)
}

func (m *Message) WriteByte(c int) {
	m.write(uint8(c))
}

func (m *Message) WriteShort(c int) {
	m.write(int16(c))
}

func (m *Message) WriteLong(c int) {
	m.write(int32(c))
}

func (m *Message) WriteFloat(c float32) {
	m.write(c)
}

func (m *Message) WriteString(c string) {
	if len(c) != 0 {
		m.buf.WriteString(c)
	}
	m.WriteByte(0)
}

func (m *Message) WriteBytes(b []byte) {
	m.buf.Write(b)
}

func (m *Message) HasMessage() bool {
	return m.buf.Len() > 0
}

func (m *Message) Clear() {
	m.buf.Reset()
}

// DownloadBlock writes one svc_download frame for a block past the
// first, matching the {block, blockSize, payload} layout.
func (m *Message) DownloadBlock(block int, payload []byte) {
	m.write(int16(block))
	m.write(int16(len(payload)))
	m.WriteBytes(payload)
}

// DownloadBlockWithSize writes the block-0 svc_download frame, which
// additionally carries the total file size.
func (m *Message) DownloadBlockWithSize(block int, size int32, payload []byte) {
	m.write(int16(block))
	m.write(size)
	m.write(int16(len(payload)))
	m.WriteBytes(payload)
}
