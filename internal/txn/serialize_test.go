package txn

import "testing"

func sampleLegacyTx() *Transaction {
	return &Transaction{
		Version:  1,
		Locktime: 0,
		Inputs: []Input{
			{
				PrevTxid:  Txid{0x01},
				PrevVout:  0,
				Prevout:   Prevout{Type: ScriptP2PKH, Value: 100000},
				ScriptSig: []byte{0x01, 0x02, 0x03},
				Sequence:  0xffffffff,
			},
		},
		Outputs: []Output{
			{ScriptPubKey: []byte{0x76, 0xa9, 0x14}, Value: 90000},
		},
	}
}

func sampleSegwitTx() *Transaction {
	tx := sampleLegacyTx()
	tx.Inputs[0].ScriptSig = nil
	tx.Inputs[0].Witness = [][]byte{{0xde, 0xad}, {0xbe, 0xef}}
	return tx
}

func TestSerializeLegacyWeight(t *testing.T) {
	tx := sampleLegacyTx()
	s := Serialize(tx)
	if !s.Admitted {
		t.Fatal("expected legacy tx to be admitted")
	}
	base := serializeBase(tx)
	if s.Weight != uint64(len(base))*4 {
		t.Errorf("legacy weight = %d, want %d", s.Weight, uint64(len(base))*4)
	}
	if s.Txid != s.Wtxid {
		t.Error("legacy txid and wtxid should be identical")
	}
	wantFees := int64(100000 - 90000)
	if s.Fees != wantFees {
		t.Errorf("fees = %d, want %d", s.Fees, wantFees)
	}
}

func TestSerializeSegwitWeight(t *testing.T) {
	tx := sampleSegwitTx()
	s := Serialize(tx)
	if !s.Admitted {
		t.Fatal("expected segwit tx to be admitted")
	}
	base := serializeBase(tx)
	full := serializeFull(tx, base)
	want := uint64(len(base))*4 + uint64(len(full)-len(base))
	if s.Weight != want {
		t.Errorf("segwit weight = %d, want %d", s.Weight, want)
	}
	if s.Txid == s.Wtxid {
		t.Error("segwit txid and wtxid should differ when a witness is present")
	}
}

func TestSerializeDeterministic(t *testing.T) {
	tx := sampleSegwitTx()
	a := Serialize(tx)
	b := Serialize(tx)
	if a != b {
		t.Error("Serialize should be deterministic for the same transaction")
	}
}

func TestAdmissibilityGates(t *testing.T) {
	t.Run("too many legacy inputs", func(t *testing.T) {
		tx := sampleLegacyTx()
		for i := 0; i < maxLegacyInputs; i++ {
			tx.Inputs = append(tx.Inputs, tx.Inputs[0])
		}
		if Serialize(tx).Admitted {
			t.Error("expected rejection for excess legacy inputs")
		}
	})

	t.Run("oversized scriptsig", func(t *testing.T) {
		tx := sampleLegacyTx()
		tx.Inputs[0].ScriptSig = make([]byte, maxScriptSigBytes)
		if Serialize(tx).Admitted {
			t.Error("expected rejection for oversized scriptsig")
		}
	})

	t.Run("oversized scriptpubkey", func(t *testing.T) {
		tx := sampleLegacyTx()
		tx.Outputs[0].ScriptPubKey = make([]byte, maxScriptPubBytes)
		if Serialize(tx).Admitted {
			t.Error("expected rejection for oversized scriptpubkey")
		}
	})

	t.Run("no inputs", func(t *testing.T) {
		tx := &Transaction{}
		if Serialize(tx).Admitted {
			t.Error("expected rejection for a transaction with no inputs")
		}
	})
}
