package txn

import (
	"bytes"
	"encoding/binary"

	"github.com/djkazic/blockminer/pkg/util"
)

// Admissibility gates from the source's compact-size handling, kept as hard
// DoS guards even though lengths are now encoded with real Bitcoin
// CompactSize instead of the source's single-byte prefixes.
const (
	maxLegacyInputs   = 50
	maxSegwitInputs   = 200
	maxLegacyOutputs  = 200
	maxSegwitOutputs  = 255
	maxScriptSigBytes = 255
	maxScriptPubBytes = 50
)

// Serialized is the result of canonically serializing a transaction.
type Serialized struct {
	Admitted bool
	Txid     NaturalHash
	Wtxid    NaturalHash
	Weight   uint64
	Fees     int64
}

// Serialize builds the canonical txid/wtxid byte sequences and returns their
// double-SHA-256 hashes, the transaction's weight, and its fees, per spec
// §4.2. It never returns an
// error: a transaction that fails the admissibility gates simply comes back
// with Admitted == false.
func Serialize(tx *Transaction) Serialized {
	segwit := tx.IsSegwit()

	nIn := len(tx.Inputs)
	nOut := len(tx.Outputs)

	maxIn, maxOut := maxLegacyInputs, maxLegacyOutputs
	if segwit {
		maxIn, maxOut = maxSegwitInputs, maxSegwitOutputs
	}
	if nIn == 0 || nIn >= maxIn || nOut >= maxOut {
		return Serialized{}
	}
	for _, in := range tx.Inputs {
		if len(in.ScriptSig) >= maxScriptSigBytes {
			return Serialized{}
		}
		if len(in.Prevout.ScriptPubKey) >= maxScriptPubBytes {
			return Serialized{}
		}
	}
	for _, out := range tx.Outputs {
		if len(out.ScriptPubKey) >= maxScriptPubBytes {
			return Serialized{}
		}
	}

	base := serializeBase(tx)
	var full []byte
	if segwit {
		full = serializeFull(tx, base)
	} else {
		full = base
	}

	baseHash := util.DoubleSHA256(base)
	var wtxidHash [32]byte
	if segwit {
		wtxidHash = util.DoubleSHA256(full)
	} else {
		wtxidHash = baseHash
	}

	weight := uint64(len(base))*4 + uint64(len(full)-len(base))

	var feesIn, feesOut int64
	for _, in := range tx.Inputs {
		feesIn += int64(in.Prevout.Value)
	}
	for _, out := range tx.Outputs {
		feesOut += int64(out.Value)
	}

	return Serialized{
		Admitted: true,
		Txid:     NaturalFromRaw(baseHash),
		Wtxid:    NaturalFromRaw(wtxidHash),
		Weight:   weight,
		Fees:     feesIn - feesOut,
	}
}

// serializeBase writes the non-witness ("stripped") form: version, inputs
// (without witnesses), outputs, locktime. This is the byte sequence whose
// double-SHA-256 is the txid.
func serializeBase(tx *Transaction) []byte {
	var buf bytes.Buffer
	writeUint32LE(&buf, uint32(tx.Version))
	buf.Write(util.WriteVarInt(uint64(len(tx.Inputs))))
	for _, in := range tx.Inputs {
		writeInputBase(&buf, in)
	}
	buf.Write(util.WriteVarInt(uint64(len(tx.Outputs))))
	for _, out := range tx.Outputs {
		writeOutput(&buf, out)
	}
	writeUint32LE(&buf, tx.Locktime)
	return buf.Bytes()
}

// serializeFull writes the witness-carrying form by inserting the
// marker/flag after the version and appending the witness stacks before
// locktime. base must be the output of serializeBase for the same tx.
func serializeFull(tx *Transaction, base []byte) []byte {
	var buf bytes.Buffer
	writeUint32LE(&buf, uint32(tx.Version))
	buf.WriteByte(0x00) // marker
	buf.WriteByte(0x01) // flag
	buf.Write(util.WriteVarInt(uint64(len(tx.Inputs))))
	for _, in := range tx.Inputs {
		writeInputBase(&buf, in)
	}
	buf.Write(util.WriteVarInt(uint64(len(tx.Outputs))))
	for _, out := range tx.Outputs {
		writeOutput(&buf, out)
	}
	for _, in := range tx.Inputs {
		writeWitness(&buf, in.Witness)
	}
	writeUint32LE(&buf, tx.Locktime)
	return buf.Bytes()
}

func writeInputBase(buf *bytes.Buffer, in Input) {
	buf.Write(util.ReverseBytes(in.PrevTxid[:]))
	writeUint32LE(buf, in.PrevVout)
	buf.Write(util.WriteVarInt(uint64(len(in.ScriptSig))))
	buf.Write(in.ScriptSig)
	writeUint32LE(buf, in.Sequence)
}

func writeOutput(buf *bytes.Buffer, out Output) {
	writeUint64LE(buf, out.Value)
	buf.Write(util.WriteVarInt(uint64(len(out.ScriptPubKey))))
	buf.Write(out.ScriptPubKey)
}

func writeWitness(buf *bytes.Buffer, items [][]byte) {
	buf.Write(util.WriteVarInt(uint64(len(items))))
	for _, item := range items {
		buf.Write(util.WriteVarInt(uint64(len(item))))
		buf.Write(item)
	}
}

func writeUint32LE(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64LE(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
