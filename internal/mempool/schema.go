// Package mempool reads the Blockstream Esplora-schema JSON transaction
// files from ./mempool/, converts them into the internal txn.Transaction
// model, copies admitted files into ./valid-mempool/, and writes the final
// ./output.txt artefact.
package mempool

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/djkazic/blockminer/internal/txn"
)

type wireTx struct {
	Version  int32      `json:"version"`
	Locktime uint32     `json:"locktime"`
	Vin      []wireVin  `json:"vin"`
	Vout     []wireVout `json:"vout"`
}

type wireVin struct {
	Txid                 string   `json:"txid"`
	Vout                 uint32   `json:"vout"`
	Prevout              wireVout `json:"prevout"`
	ScriptSig            string   `json:"scriptsig"`
	ScriptSigAsm         string   `json:"scriptsig_asm"`
	Witness              []string `json:"witness,omitempty"`
	IsCoinbase           bool     `json:"is_coinbase"`
	Sequence             uint32   `json:"sequence"`
	InnerRedeemScriptAsm string   `json:"inner_redeemscript_asm,omitempty"`
}

type wireVout struct {
	ScriptPubKey        string `json:"scriptpubkey"`
	ScriptPubKeyAsm     string `json:"scriptpubkey_asm"`
	ScriptPubKeyType    string `json:"scriptpubkey_type"`
	ScriptPubKeyAddress string `json:"scriptpubkey_address,omitempty"`
	Value               uint64 `json:"value"`
}

// Parse decodes a single Esplora-schema mempool JSON file into a
// txn.Transaction. sourcePath is stamped onto the result for downstream
// diagnostics and the admitted-copy step.
func Parse(data []byte, sourcePath string) (*txn.Transaction, error) {
	var w wireTx
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode mempool json: %w", err)
	}

	tx := &txn.Transaction{
		Version:    w.Version,
		Locktime:   w.Locktime,
		SourcePath: sourcePath,
	}

	for _, v := range w.Vin {
		in, err := convertVin(v)
		if err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		tx.Inputs = append(tx.Inputs, in)
	}
	for _, v := range w.Vout {
		out, err := convertVoutOutput(v)
		if err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
		tx.Outputs = append(tx.Outputs, out)
	}
	return tx, nil
}

func convertVin(v wireVin) (txn.Input, error) {
	var prevTxid txn.Txid
	var err error
	if v.Txid != "" {
		prevTxid, err = txn.TxidFromHex(v.Txid)
		if err != nil {
			return txn.Input{}, fmt.Errorf("prev txid: %w", err)
		}
	}

	prevout, err := convertVout(v.Prevout)
	if err != nil {
		return txn.Input{}, fmt.Errorf("prevout: %w", err)
	}

	scriptSig, err := decodeOptionalHex(v.ScriptSig)
	if err != nil {
		return txn.Input{}, fmt.Errorf("scriptsig: %w", err)
	}

	var witness [][]byte
	if v.Witness != nil {
		witness = make([][]byte, len(v.Witness))
		for i, w := range v.Witness {
			b, err := hex.DecodeString(w)
			if err != nil {
				return txn.Input{}, fmt.Errorf("witness element %d: %w", i, err)
			}
			witness[i] = b
		}
	}

	return txn.Input{
		PrevTxid:             prevTxid,
		PrevVout:             v.Vout,
		Prevout:              prevout,
		ScriptSig:            scriptSig,
		ScriptSigAsm:         v.ScriptSigAsm,
		HasScriptSig:         v.ScriptSig != "",
		Witness:              witness,
		IsCoinbase:           v.IsCoinbase,
		Sequence:             v.Sequence,
		InnerRedeemScriptAsm: v.InnerRedeemScriptAsm,
	}, nil
}

func convertVout(v wireVout) (txn.Prevout, error) {
	script, err := decodeOptionalHex(v.ScriptPubKey)
	if err != nil {
		return txn.Prevout{}, fmt.Errorf("scriptpubkey: %w", err)
	}
	return txn.Prevout{
		ScriptPubKey:    script,
		ScriptPubKeyAsm: v.ScriptPubKeyAsm,
		Type:            txn.ParseScriptTemplate(v.ScriptPubKeyType),
		Address:         v.ScriptPubKeyAddress,
		Value:           v.Value,
	}, nil
}

func convertVoutOutput(v wireVout) (txn.Output, error) {
	script, err := decodeOptionalHex(v.ScriptPubKey)
	if err != nil {
		return txn.Output{}, fmt.Errorf("scriptpubkey: %w", err)
	}
	return txn.Output{
		ScriptPubKey:    script,
		ScriptPubKeyAsm: v.ScriptPubKeyAsm,
		Type:            txn.ParseScriptTemplate(v.ScriptPubKeyType),
		Address:         v.ScriptPubKeyAddress,
		Value:           v.Value,
	}, nil
}

func decodeOptionalHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}
