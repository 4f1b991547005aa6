// Package txn defines the transaction data model validated and assembled by
// the block miner: script templates, the display/natural hash distinction,
// and the typed transaction/input/output records parsed from mempool JSON.
package txn

import (
	"encoding/hex"
	"fmt"

	"github.com/djkazic/blockminer/pkg/util"
)

// ScriptTemplate is the closed set of script types the miner understands.
// It replaces the source's string-tag dispatch with a typed enum. Go does
// not check switch exhaustiveness; the switches over ScriptTemplate end in a
// default case that returns an error (or "unknown" from String) for an
// unhandled template.
type ScriptTemplate int

const (
	ScriptUnknown ScriptTemplate = iota
	ScriptP2PKH
	ScriptP2SH
	ScriptP2WPKH
	ScriptP2WSH
	ScriptP2TR
)

func (t ScriptTemplate) String() string {
	switch t {
	case ScriptP2PKH:
		return "p2pkh"
	case ScriptP2SH:
		return "p2sh"
	case ScriptP2WPKH:
		return "v0_p2wpkh"
	case ScriptP2WSH:
		return "v0_p2wsh"
	case ScriptP2TR:
		return "v1_p2tr"
	default:
		return "unknown"
	}
}

// ParseScriptTemplate maps the Esplora-style scriptpubkey_type tag to a
// ScriptTemplate. Unrecognized tags come back as ScriptUnknown, which every
// verifier rejects.
func ParseScriptTemplate(tag string) ScriptTemplate {
	switch tag {
	case "p2pkh":
		return ScriptP2PKH
	case "p2sh":
		return ScriptP2SH
	case "v0_p2wpkh":
		return ScriptP2WPKH
	case "v0_p2wsh":
		return ScriptP2WSH
	case "v1_p2tr":
		return ScriptP2TR
	default:
		return ScriptUnknown
	}
}

// Txid is a transaction identifier in Bitcoin's display byte order
// (big-endian, the order printed by block explorers and carried in JSON).
type Txid [32]byte

// NaturalHash is a hash in internal byte order, the order hashing and the
// Merkle tree actually operate on. Keeping Txid and NaturalHash as distinct
// types stops a reversed hash from being passed somewhere an unreversed one
// is expected, and vice versa — the most common latent bug in this kind of
// code.
type NaturalHash [32]byte

// Natural converts a display-order Txid to internal byte order.
func (t Txid) Natural() NaturalHash {
	var n NaturalHash
	copy(n[:], util.ReverseBytes(t[:]))
	return n
}

// Display converts an internal-order hash to display order.
func (n NaturalHash) Display() Txid {
	var t Txid
	copy(t[:], util.ReverseBytes(n[:]))
	return t
}

func (t Txid) String() string {
	return hex.EncodeToString(t[:])
}

func (n NaturalHash) String() string {
	return hex.EncodeToString(n[:])
}

// TxidFromHex parses a display-order hex txid.
func TxidFromHex(s string) (Txid, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Txid{}, fmt.Errorf("decode txid hex: %w", err)
	}
	if len(b) != 32 {
		return Txid{}, fmt.Errorf("txid must be 32 bytes, got %d", len(b))
	}
	var t Txid
	copy(t[:], b)
	return t, nil
}

// NaturalFromRaw wraps a raw (already natural-order) 32-byte hash, as
// produced directly by DoubleSHA256.
func NaturalFromRaw(b [32]byte) NaturalHash {
	return NaturalHash(b)
}

// Prevout is the previous output an input spends.
type Prevout struct {
	ScriptPubKey    []byte
	ScriptPubKeyAsm string
	Type            ScriptTemplate
	Address         string
	Value           uint64
}

// Input is one spend in a transaction.
type Input struct {
	PrevTxid             Txid
	PrevVout             uint32
	Prevout              Prevout
	ScriptSig            []byte
	ScriptSigAsm         string
	HasScriptSig         bool
	Witness              [][]byte // nil means "no witness field present"
	IsCoinbase           bool
	Sequence             uint32
	InnerRedeemScriptAsm string
}

// HasWitness reports whether this input carries a (possibly empty) witness
// field, which is what determines segwit vs legacy serialization.
func (in Input) HasWitness() bool {
	return in.Witness != nil
}

// Output is one payment a transaction makes.
type Output struct {
	ScriptPubKey    []byte
	ScriptPubKeyAsm string
	Type            ScriptTemplate
	Address         string
	Value           uint64
}

// Transaction is a fully parsed mempool transaction, immutable once built.
type Transaction struct {
	Version  int32
	Locktime uint32
	Inputs   []Input
	Outputs  []Output

	// SourcePath is the mempool JSON file this transaction was read from.
	// Carried through so the validation driver can copy the admitted file
	// into valid-mempool/ without re-deriving the filename.
	SourcePath string
}

// IsSegwit reports whether any input carries a witness field.
func (tx *Transaction) IsSegwit() bool {
	for _, in := range tx.Inputs {
		if in.HasWitness() {
			return true
		}
	}
	return false
}

// DominantType returns the script type of the first input's prevout, and
// whether every other input shares that type. A transaction whose inputs
// mix script types is never admissible (spec: "type is determined by the
// first input's previous-output script-pubkey type").
func (tx *Transaction) DominantType() (ScriptTemplate, bool) {
	if len(tx.Inputs) == 0 {
		return ScriptUnknown, false
	}
	first := tx.Inputs[0].Prevout.Type
	for _, in := range tx.Inputs[1:] {
		if in.Prevout.Type != first {
			return first, false
		}
	}
	return first, true
}
