// Package testutil provides shared fixture builders for tests across the
// module, adapted from the teacher's sample-share/sample-template helpers
// into mempool-transaction and easy-target builders for this domain.
package testutil

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// P2PKHFixture holds a scriptpubkey/ASM pair for a P2PKH prevout, built
// from a 20-byte pubkey hash.
type P2PKHFixture struct {
	ScriptPubKey    []byte
	ScriptPubKeyAsm string
}

// P2PKH builds a fixture P2PKH scriptpubkey and its ASM rendering from a
// 20-byte pubkey hash.
func P2PKH(pubkeyHash [20]byte) P2PKHFixture {
	script := append([]byte{0x76, 0xa9, 0x14}, pubkeyHash[:]...)
	script = append(script, 0x88, 0xac)
	asm := fmt.Sprintf("OP_DUP OP_HASH160 OP_PUSHBYTES_20 %s OP_EQUALVERIFY OP_CHECKSIG", hex.EncodeToString(pubkeyHash[:]))
	return P2PKHFixture{ScriptPubKey: script, ScriptPubKeyAsm: asm}
}

// SampleMempoolJSON returns a minimal Esplora-schema mempool transaction
// JSON document with a single P2PKH input and output, suitable for
// round-tripping through the mempool package's parser.
func SampleMempoolJSON(prevTxidHex string, prevValue, outValue uint64) string {
	return fmt.Sprintf(`{
  "version": 1,
  "locktime": 0,
  "vin": [
    {
      "txid": %q,
      "vout": 0,
      "prevout": {
        "scriptpubkey": "76a914edf10a7fac6b32e24daa5305c723f3de58db1bc888ac",
        "scriptpubkey_asm": "OP_DUP OP_HASH160 OP_PUSHBYTES_20 edf10a7fac6b32e24daa5305c723f3de58db1bc8 OP_EQUALVERIFY OP_CHECKSIG",
        "scriptpubkey_type": "p2pkh",
        "value": %d
      },
      "scriptsig": "",
      "scriptsig_asm": "",
      "is_coinbase": false,
      "sequence": 4294967295
    }
  ],
  "vout": [
    {
      "scriptpubkey": "76a914edf10a7fac6b32e24daa5305c723f3de58db1bc888ac",
      "scriptpubkey_asm": "OP_DUP OP_HASH160 OP_PUSHBYTES_20 edf10a7fac6b32e24daa5305c723f3de58db1bc8 OP_EQUALVERIFY OP_CHECKSIG",
      "scriptpubkey_type": "p2pkh",
      "value": %d
    }
  ]
}`, prevTxidHex, prevValue, outValue)
}

// P2TRMempoolJSON returns a minimal Esplora-schema mempool transaction JSON
// document with a single structural-only P2TR input and output, suitable
// for exercising the pipeline end to end without a real Schnorr signature.
func P2TRMempoolJSON(prevTxidHex string, prevValue, outValue uint64) string {
	return fmt.Sprintf(`{
  "version": 1,
  "locktime": 0,
  "vin": [
    {
      "txid": %q,
      "vout": 0,
      "prevout": {
        "scriptpubkey": "",
        "scriptpubkey_asm": "",
        "scriptpubkey_type": "v1_p2tr",
        "value": %d
      },
      "scriptsig": "",
      "scriptsig_asm": "",
      "witness": ["01"],
      "is_coinbase": false,
      "sequence": 4294967295
    }
  ],
  "vout": [
    {
      "scriptpubkey": "",
      "scriptpubkey_asm": "",
      "scriptpubkey_type": "v1_p2tr",
      "value": %d
    }
  ]
}`, prevTxidHex, prevValue, outValue)
}

// EasyTarget returns a maximally permissive target for testing, so a nonce
// search terminates on its first or second attempt.
func EasyTarget() *big.Int {
	return new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
}
