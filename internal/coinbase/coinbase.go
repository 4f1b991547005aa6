// Package coinbase builds the block's coinbase transaction: a fixed-version,
// null-outpoint input carrying a height-and-tag scriptsig, a reward output,
// and a BIP-141 witness-commitment output. It is grounded on the teacher's
// SplitCoinbase/ComputeFullMerkleRoot pairing in internal/work/template.go,
// generalized from a stratum extranonce split into a direct one-shot build.
package coinbase

import (
	"bytes"
	"encoding/binary"

	"github.com/djkazic/blockminer/internal/txn"
	"github.com/djkazic/blockminer/pkg/util"
)

// Fixed constants, bit-exact per the mined block's external contract.
const (
	RewardBaseSats = 650_082_296
	version        = uint32(1)
)

// scriptSigPayload is the coinbase input's scriptsig: a 3-byte little-endian
// block height push followed by a 24-byte miner tag push.
var scriptSigPayload = []byte{
	0x03, 0xa0, 0xbb, 0x0d, 0x18,
	'M', 'i', 'n', 'e', 'd', ' ', 'b', 'y', ' ', 'B', 'l', 'o', 'c', 'k', 'M', 'i', 'n', 'e', 'r', '!', 0, 0, 0, 0,
}

// payoutScript is the fixed P2PKH scriptpubkey the block reward pays to.
var payoutScript = mustHex("76a914edf10a7fac6b32e24daa5305c723f3de58db1bc888ac")

// witnessCommitmentPrefix precedes the double-SHA-256 of (witness root ‖
// reserved value) in the commitment output's scriptpubkey.
var witnessCommitmentPrefix = []byte{0x6a, 0x24, 0xaa, 0x21, 0xa9, 0xed}

// reservedValue is the all-zero 32-byte value appended to the witness root
// before hashing, and the single witness element on the coinbase input.
var reservedValue [32]byte

// Built holds both serialisations of the coinbase transaction: the
// witness-carrying ("full") form used for wtxid/broadcast, and the
// witness-stripped ("base") form whose double-SHA-256 is the txid that
// enters the block's txid Merkle tree.
type Built struct {
	Full []byte
	Base []byte
	Txid txn.NaturalHash
}

// Build constructs the coinbase transaction paying totalFees on top of the
// fixed reward base, committing to witnessRoot.
func Build(totalFees int64, witnessRoot [32]byte) Built {
	commitPreimage := make([]byte, 0, 64)
	commitPreimage = append(commitPreimage, witnessRoot[:]...)
	commitPreimage = append(commitPreimage, reservedValue[:]...)
	commitHash := util.DoubleSHA256(commitPreimage)

	commitScript := make([]byte, 0, len(witnessCommitmentPrefix)+32)
	commitScript = append(commitScript, witnessCommitmentPrefix...)
	commitScript = append(commitScript, commitHash[:]...)

	reward := uint64(RewardBaseSats + totalFees)

	base := serializeBase(reward, commitScript)
	full := serializeFull(reward, commitScript)

	txid := util.DoubleSHA256(base)

	return Built{Full: full, Base: base, Txid: txn.NaturalFromRaw(txid)}
}

func serializeBase(reward uint64, commitScript []byte) []byte {
	var buf bytes.Buffer
	writeU32LE(&buf, version)
	buf.Write(util.WriteVarInt(1)) // input count
	writeNullOutpointInput(&buf)
	buf.Write(util.WriteVarInt(2)) // output count
	writeOutput(&buf, reward, payoutScript)
	writeOutput(&buf, 0, commitScript)
	writeU32LE(&buf, 0) // locktime
	return buf.Bytes()
}

func serializeFull(reward uint64, commitScript []byte) []byte {
	var buf bytes.Buffer
	writeU32LE(&buf, version)
	buf.WriteByte(0x00) // marker
	buf.WriteByte(0x01) // flag
	buf.Write(util.WriteVarInt(1))
	writeNullOutpointInput(&buf)
	buf.Write(util.WriteVarInt(2))
	writeOutput(&buf, reward, payoutScript)
	writeOutput(&buf, 0, commitScript)
	// single witness stack: one 32-byte reserved-value element
	buf.Write(util.WriteVarInt(1))
	buf.Write(util.WriteVarInt(32))
	buf.Write(reservedValue[:])
	writeU32LE(&buf, 0)
	return buf.Bytes()
}

func writeNullOutpointInput(buf *bytes.Buffer) {
	var nullTxid [32]byte
	buf.Write(nullTxid[:])
	writeU32LE(buf, 0xffffffff) // null vout
	buf.Write(util.WriteVarInt(uint64(len(scriptSigPayload))))
	buf.Write(scriptSigPayload)
	writeU32LE(buf, 0xffffffff) // sequence
}

func writeOutput(buf *bytes.Buffer, value uint64, script []byte) {
	var v [8]byte
	binary.LittleEndian.PutUint64(v[:], value)
	buf.Write(v[:])
	buf.Write(util.WriteVarInt(uint64(len(script))))
	buf.Write(script)
}

func writeU32LE(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func mustHex(s string) []byte {
	b, err := util.HexToBytes(s)
	if err != nil {
		panic(err)
	}
	return b
}
