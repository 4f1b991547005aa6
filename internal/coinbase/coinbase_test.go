package coinbase

import (
	"encoding/binary"
	"testing"

	"github.com/djkazic/blockminer/internal/txn"
	"github.com/djkazic/blockminer/pkg/util"
	"github.com/djkazic/blockminer/testutil"
)

func TestBuildRewardIncludesFees(t *testing.T) {
	b := Build(1000, [32]byte{})
	if len(b.Base) == 0 || len(b.Full) == 0 {
		t.Fatal("expected non-empty serializations")
	}
	if len(b.Full) <= len(b.Base) {
		t.Error("full serialization should be larger than base (marker/flag/witness)")
	}
	// version, input count, null outpoint, scriptsig, sequence, output count
	off := 4 + 1 + 32 + 4 + 1 + len(scriptSigPayload) + 4 + 1
	if got := binary.LittleEndian.Uint64(b.Base[off : off+8]); got != RewardBaseSats+1000 {
		t.Errorf("reward output value = %d, want %d", got, RewardBaseSats+1000)
	}
}

func TestBuildTxidIsDoubleSHA256OfBase(t *testing.T) {
	witnessRoot := testutil.HashFromHex("010203")
	b := Build(0, witnessRoot)
	want := util.DoubleSHA256(b.Base)
	if b.Txid != txn.NaturalFromRaw(want) {
		t.Errorf("txid mismatch")
	}
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(500, [32]byte{9})
	b := Build(500, [32]byte{9})
	if string(a.Full) != string(b.Full) {
		t.Error("Build should be deterministic")
	}
}
