// Package miner searches for a nonce satisfying the fixed proof-of-work
// target. Header is adapted from the teacher's ShareHeader — the same
// 80-byte Bitcoin block header layout, stripped of sharechain fields this
// domain has no use for.
package miner

import (
	"encoding/binary"

	"github.com/djkazic/blockminer/pkg/util"
)

// Header is an 80-byte Bitcoin block header.
type Header struct {
	Version    int32
	PrevHash   [32]byte
	MerkleRoot [32]byte
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// Serialize writes the header in its canonical 80-byte little-endian form.
func (h *Header) Serialize() []byte {
	buf := make([]byte, 80)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	copy(buf[4:36], h.PrevHash[:])
	copy(buf[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(buf[68:72], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[72:76], h.Bits)
	binary.LittleEndian.PutUint32(buf[76:80], h.Nonce)
	return buf
}

// Hash returns the double-SHA-256 of the serialized header, in natural
// (internal) byte order.
func (h *Header) Hash() [32]byte {
	return util.DoubleSHA256(h.Serialize())
}
