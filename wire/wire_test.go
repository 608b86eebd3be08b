// SPDX-License-Identifier: GPL-2.0-or-later

package wire

import "testing"

func TestMessageWriteByte(t *testing.T) {
	var m Message
	m.WriteByte(7)
	if !m.HasMessage() || m.Len() != 1 || m.Bytes()[0] != 7 {
		t.Fatalf("WriteByte(7) = %v, want [7]", m.Bytes())
	}
}

func TestMessageWriteShort(t *testing.T) {
	var m Message
	m.WriteShort(-12)
	b := m.Bytes()
	if len(b) != 2 {
		t.Fatalf("WriteShort(-12) len = %d, want 2", len(b))
	}
	got := int16(uint16(b[0]) | uint16(b[1])<<8)
	if got != -12 {
		t.Fatalf("WriteShort(-12) round trip = %d", got)
	}
}

func TestMessageWriteLong(t *testing.T) {
	var m Message
	m.WriteLong(123456)
	b := m.Bytes()
	if len(b) != 4 {
		t.Fatalf("WriteLong(123456) len = %d, want 4", len(b))
	}
	got := int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
	if got != 123456 {
		t.Fatalf("WriteLong(123456) round trip = %d", got)
	}
}

func TestMessageWriteString(t *testing.T) {
	var m Message
	m.WriteString("hello")
	want := append([]byte("hello"), 0)
	if string(m.Bytes()) != string(want) {
		t.Fatalf("WriteString(\"hello\") = %v, want %v", m.Bytes(), want)
	}
}

func TestMessageWriteStringEmpty(t *testing.T) {
	var m Message
	m.WriteString("")
	if len(m.Bytes()) != 1 || m.Bytes()[0] != 0 {
		t.Fatalf("WriteString(\"\") = %v, want a single zero byte", m.Bytes())
	}
}

func TestMessageWriteBytes(t *testing.T) {
	var m Message
	m.WriteBytes([]byte{1, 2, 3})
	b := m.Bytes()
	if len(b) != 3 || b[0] != 1 || b[1] != 2 || b[2] != 3 {
		t.Fatalf("WriteBytes({1,2,3}) = %v", b)
	}
}

func TestMessageClear(t *testing.T) {
	var m Message
	m.WriteByte(1)
	m.Clear()
	if m.HasMessage() {
		t.Errorf("HasMessage() after Clear() = true, want false")
	}
	if m.Len() != 0 {
		t.Errorf("Len() after Clear() = %v, want 0", m.Len())
	}
}

func TestDownloadBlockFraming(t *testing.T) {
	var m Message
	m.DownloadBlock(3, []byte{9, 9})
	b := m.Bytes()
	if len(b) != 2+2+2 {
		t.Fatalf("DownloadBlock(3, {9,9}) framed len = %d, want 6", len(b))
	}
	block := int16(uint16(b[0]) | uint16(b[1])<<8)
	size := int16(uint16(b[2]) | uint16(b[3])<<8)
	if block != 3 || size != 2 {
		t.Fatalf("DownloadBlock(3, {9,9}) framed block=%d size=%d, want 3,2", block, size)
	}
}

func TestDownloadBlockWithSizeFraming(t *testing.T) {
	var m Message
	m.DownloadBlockWithSize(0, 1000, []byte{1})
	b := m.Bytes()
	if len(b) != 2+4+2+1 {
		t.Fatalf("DownloadBlockWithSize(0, 1000, {1}) framed len = %d, want 9", len(b))
	}
}
