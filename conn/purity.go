// SPDX-License-Identifier: GPL-2.0-or-later

package conn

import (
	"strconv"

	"svconn/cvars"
)

// handleCP processes a "cp" client command: the purity checksum
// handshake. When sv_pure is disabled the command is a no-op.
func (s *Server) handleCP(slot *ConnectionSlot, fields []string) {
	if cvars.SvPure.Value() == 0 {
		return
	}
	if !s.verifyPurity(slot, fields) {
		slot.state = Active
		s.sendReliable(slot, "disconnect \"Unpure client detected. Invalid .PK3 files referenced!\"")
		s.DropClient(slot.Index, "unpure client")
		return
	}
	slot.PureAuthentic = true
	slot.GotCP = true
}

// verifyPurity checks the "cp <cgamesum> <uisum> @ <pak...> <xor>"
// payload against the server's expected checksums.
func (s *Server) verifyPurity(slot *ConnectionSlot, fields []string) bool {
	if len(fields) < 4 {
		return false
	}
	cgameSum, uiSum := s.expectedModuleChecksums()
	if fields[1] != cgameSum || fields[2] != uiSum || fields[3] != "@" {
		return false
	}

	rest := fields[4:]
	if len(rest) < 3 {
		return false
	}

	var clientChecksums []uint32
	for _, f := range rest {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return false
		}
		clientChecksums = append(clientChecksums, uint32(int32(v)))
	}

	trailer := clientChecksums[len(clientChecksums)-1]
	paks := clientChecksums[:len(clientChecksums)-1]

	seen := map[uint32]bool{}
	for _, c := range paks {
		if seen[c] {
			return false
		}
		seen[c] = true
	}

	serverSums := map[uint32]bool{}
	for _, c := range s.Paks.PureChecksums() {
		serverSums[c] = true
	}
	for _, c := range paks {
		if !serverSums[c] {
			return false
		}
	}

	x := s.ChecksumFeed
	for _, c := range paks {
		x ^= c
	}
	x ^= uint32(len(paks))
	return x == trailer
}

// expectedModuleChecksums returns the cgame/ui module checksums the
// client must echo back. The real module checksums come from the
// filesystem collaborator's pak index; this derives deterministic
// stand-ins from the referenced paks the same way the purity check
// treats all checksums uniformly.
func (s *Server) expectedModuleChecksums() (cgame, ui string) {
	sums := s.Paks.PureChecksums()
	if len(sums) == 0 {
		return "0", "0"
	}
	return strconv.Itoa(int(int32(sums[0]))), strconv.Itoa(int(int32(sums[len(sums)-1])))
}

