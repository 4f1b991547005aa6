// Package merkle builds the transaction and witness Merkle roots from
// natural-order double-SHA-256 hashes, following the teacher's
// ComputeFullMerkleRoot algorithm: duplicate-the-last-entry on an odd level,
// then pair-concatenate and hash until one entry remains.
package merkle

import "github.com/djkazic/blockminer/pkg/util"

// Root computes the Merkle root over natural-order hashes. The caller is
// responsible for converting from display order before calling.
func Root(hashes [][32]byte) [32]byte {
	if len(hashes) == 0 {
		return [32]byte{}
	}

	level := make([][32]byte, len(hashes))
	copy(level, hashes)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([][32]byte, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			var combined [64]byte
			copy(combined[:32], level[i][:])
			copy(combined[32:], level[i+1][:])
			next = append(next, util.DoubleSHA256(combined[:]))
		}
		level = next
	}
	return level[0]
}

// WitnessRoot builds the witness Merkle root per spec §4.7: a 32-byte zero
// sentinel standing in for the coinbase's wtxid, followed by the natural-order
// wtxid of every selected transaction.
func WitnessRoot(wtxids [][32]byte) [32]byte {
	leaves := make([][32]byte, 0, len(wtxids)+1)
	leaves = append(leaves, [32]byte{})
	leaves = append(leaves, wtxids...)
	return Root(leaves)
}
