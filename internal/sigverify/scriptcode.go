package sigverify

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/djkazic/blockminer/internal/txn"
)

// P2WPKHScriptCode builds the implied scriptCode `OP_DUP OP_HASH160 <20-byte
// hash> OP_EQUALVERIFY OP_CHECKSIG` for a P2WPKH prevout, taking the 20-byte
// witness program from the last token of the prevout's scriptpubkey ASM.
func P2WPKHScriptCode(scriptPubKeyAsm string) ([]byte, error) {
	hash, err := lastPushBytes(scriptPubKeyAsm, 20)
	if err != nil {
		return nil, fmt.Errorf("p2wpkh script code: %w", err)
	}
	return p2pkhScript(hash), nil
}

// P2SHP2WPKHScriptCode is the nominal P2SH-wrapped P2WPKH variant: the same
// scriptCode, but the pubkey hash comes from the inner redeem-script ASM
// rather than the prevout scriptpubkey ASM.
func P2SHP2WPKHScriptCode(innerRedeemScriptAsm string) ([]byte, error) {
	hash, err := lastPushBytes(innerRedeemScriptAsm, 20)
	if err != nil {
		return nil, fmt.Errorf("p2sh-p2wpkh script code: %w", err)
	}
	return p2pkhScript(hash), nil
}

// P2WSHScriptCode is the witness script itself (the last element of the
// witness stack), without a length prefix; BIP143Preimage writes the prefix.
func P2WSHScriptCode(witnessScript []byte) []byte {
	return witnessScript
}

// legacySigHashScript extracts the redeem script from the last push of a
// scriptsig ASM, for the (disabled) P2SH legacy sighash path. Bare P2PKH
// never calls this — it uses the prevout scriptpubkey directly. Kept total
// (never invoked on the live P2PKH path) to avoid reintroducing the
// ambiguity spec.md flags between the two rules.
func legacySigHashScript(scriptSigAsm string) ([]byte, error) {
	tokens := strings.Fields(scriptSigAsm)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty scriptsig asm")
	}
	last := tokens[len(tokens)-1]
	b, err := hex.DecodeString(last)
	if err != nil {
		return nil, fmt.Errorf("decode redeem script push: %w", err)
	}
	return b, nil
}

// lastPushBytes hex-decodes the final whitespace-separated token of an ASM
// string and requires it to be exactly wantLen bytes.
func lastPushBytes(asm string, wantLen int) ([]byte, error) {
	tokens := strings.Fields(asm)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty asm")
	}
	last := tokens[len(tokens)-1]
	b, err := hex.DecodeString(last)
	if err != nil {
		return nil, fmt.Errorf("decode asm push %q: %w", last, err)
	}
	if len(b) != wantLen {
		return nil, fmt.Errorf("asm push is %d bytes, want %d", len(b), wantLen)
	}
	return b, nil
}

func p2pkhScript(pubkeyHash []byte) []byte {
	out := make([]byte, 0, 25)
	out = append(out, 0x76, 0xa9, 0x14) // OP_DUP OP_HASH160 <20>
	out = append(out, pubkeyHash...)
	out = append(out, 0x88, 0xac) // OP_EQUALVERIFY OP_CHECKSIG
	return out
}

// legacyScriptCodeFor resolves the scriptCode used inside a legacy
// (pre-BIP-143) sighash for the given template. Only ScriptP2PKH and the
// disabled ScriptP2SH templates reach the legacy path.
func legacyScriptCodeFor(tpl txn.ScriptTemplate, in txn.Input) ([]byte, error) {
	switch tpl {
	case txn.ScriptP2PKH:
		return in.Prevout.ScriptPubKey, nil
	case txn.ScriptP2SH:
		return legacySigHashScript(in.ScriptSigAsm)
	default:
		return nil, fmt.Errorf("no legacy scriptCode rule for %v", tpl)
	}
}
