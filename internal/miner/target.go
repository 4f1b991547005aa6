package miner

import (
	"math/big"

	"github.com/djkazic/blockminer/pkg/util"
)

// fixedTargetHex is the 256-bit target every mined header must meet,
// bit-exact per the external contract: four zero bytes, then 0xffff, then
// 26 more zero bytes. This is the value whose compact ("bits") encoding is
// the spec-given 0x1d00ffff.
const fixedTargetHex = "00000000ffff0000000000000000000000000000000000000000000000000000"

// Target returns the fixed proof-of-work target as a big-endian byte slice
// suitable for util.CompactToTarget-style big.Int construction.
func Target() []byte {
	b, err := util.HexToBytes(fixedTargetHex)
	if err != nil {
		panic(err) // fixedTargetHex is a compile-time constant
	}
	return b
}

// TargetInt returns the fixed target as a big.Int for hash comparisons. It
// is a variable, not a plain function, so tests can swap in an easy target
// instead of mining against the real one.
var TargetInt = func() *big.Int {
	return new(big.Int).SetBytes(Target())
}

// Bits encodes the fixed target into its compact nBits representation.
func Bits() uint32 {
	return util.TargetToCompact(TargetInt())
}
