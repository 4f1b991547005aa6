// Package sigverify builds the BIP-143 and legacy sighash pre-images spec
// §4.3 calls for and verifies the resulting ECDSA signatures over
// secp256k1. It never clones a whole transaction: every builder takes a
// borrowed *txn.Transaction and an input index and returns owned bytes.
package sigverify

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/djkazic/blockminer/internal/txn"
	"github.com/djkazic/blockminer/pkg/util"
)

// SigHashAll is the only sighash flag this implementation supports. Any
// other flag makes the preimage builders return an empty slice, which fails
// ECDSA verification downstream (spec §4.3).
const SigHashAll uint32 = 0x01

// LegacyPreimage builds the pre-BIP-143 sighash pre-image for input idx.
// scriptCode is the bytes substituted in for the input being signed (the
// prevout scriptpubkey for bare P2PKH, per the Open Questions decision in
// SPEC_FULL.md; the extracted redeem script for the disabled P2SH path).
func LegacyPreimage(tx *txn.Transaction, idx int, scriptCode []byte, flag uint32) []byte {
	if flag != SigHashAll {
		return nil
	}
	if idx < 0 || idx >= len(tx.Inputs) {
		return nil
	}

	var buf bytes.Buffer
	writeU32LE(&buf, uint32(tx.Version))
	buf.Write(util.WriteVarInt(uint64(len(tx.Inputs))))
	for i, in := range tx.Inputs {
		buf.Write(util.ReverseBytes(in.PrevTxid[:]))
		writeU32LE(&buf, in.PrevVout)
		if i == idx {
			buf.Write(util.WriteVarInt(uint64(len(scriptCode))))
			buf.Write(scriptCode)
		} else {
			buf.WriteByte(0x00)
		}
		writeU32LE(&buf, in.Sequence)
	}
	buf.Write(util.WriteVarInt(uint64(len(tx.Outputs))))
	for _, out := range tx.Outputs {
		writeU64LE(&buf, out.Value)
		buf.Write(util.WriteVarInt(uint64(len(out.ScriptPubKey))))
		buf.Write(out.ScriptPubKey)
	}
	writeU32LE(&buf, tx.Locktime)
	writeU32LE(&buf, flag)
	return buf.Bytes()
}

// BIP143Preimage builds the segwit sighash pre-image (BIP-143) for input idx
// spending a prevout worth value satoshis through scriptCode.
func BIP143Preimage(tx *txn.Transaction, idx int, scriptCode []byte, value uint64, flag uint32) []byte {
	if flag != SigHashAll {
		return nil
	}
	if idx < 0 || idx >= len(tx.Inputs) {
		return nil
	}

	var buf bytes.Buffer
	writeU32LE(&buf, uint32(tx.Version))
	buf.Write(hashPrevouts(tx))
	buf.Write(hashSequence(tx))

	in := tx.Inputs[idx]
	buf.Write(util.ReverseBytes(in.PrevTxid[:]))
	writeU32LE(&buf, in.PrevVout)

	buf.Write(util.WriteVarInt(uint64(len(scriptCode))))
	buf.Write(scriptCode)

	writeU64LE(&buf, value)
	writeU32LE(&buf, in.Sequence)

	buf.Write(hashOutputs(tx))
	writeU32LE(&buf, tx.Locktime)
	writeU32LE(&buf, flag)
	return buf.Bytes()
}

func hashPrevouts(tx *txn.Transaction) []byte {
	var buf bytes.Buffer
	for _, in := range tx.Inputs {
		buf.Write(util.ReverseBytes(in.PrevTxid[:]))
		writeU32LE(&buf, in.PrevVout)
	}
	h := util.DoubleSHA256(buf.Bytes())
	return h[:]
}

func hashSequence(tx *txn.Transaction) []byte {
	var buf bytes.Buffer
	for _, in := range tx.Inputs {
		writeU32LE(&buf, in.Sequence)
	}
	h := util.DoubleSHA256(buf.Bytes())
	return h[:]
}

func hashOutputs(tx *txn.Transaction) []byte {
	var buf bytes.Buffer
	for _, out := range tx.Outputs {
		writeU64LE(&buf, out.Value)
		buf.Write(util.WriteVarInt(uint64(len(out.ScriptPubKey))))
		buf.Write(out.ScriptPubKey)
	}
	h := util.DoubleSHA256(buf.Bytes())
	return h[:]
}

// Digest computes the message digest (double-SHA-256 of a preimage) an
// ECDSA signature commits to. Returns an error if preimage is empty, which
// happens whenever the sighash flag is unsupported.
func Digest(preimage []byte) ([32]byte, error) {
	if len(preimage) == 0 {
		return [32]byte{}, fmt.Errorf("empty sighash preimage")
	}
	return util.DoubleSHA256(preimage), nil
}

func writeU32LE(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64LE(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
