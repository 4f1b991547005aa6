package miner

import (
	"context"
	"testing"

	"github.com/djkazic/blockminer/pkg/util"
	"github.com/djkazic/blockminer/testutil"
)

func TestHeaderSerializeLength(t *testing.T) {
	h := &Header{Version: 1}
	if len(h.Serialize()) != 80 {
		t.Errorf("header serialization length = %d, want 80", len(h.Serialize()))
	}
}

func TestBitsRoundTrip(t *testing.T) {
	bits := Bits()
	target := util.CompactToTarget(bits)
	if target.Cmp(TargetInt()) != 0 {
		t.Errorf("compact-encoded target does not round trip: got %s, want %s", target, TargetInt())
	}
}

func TestBitsMatchesFixedCompactValue(t *testing.T) {
	const want = 0x1d00ffff
	if got := Bits(); got != want {
		t.Errorf("Bits() = 0x%x, want 0x%x", got, want)
	}
}

func TestSearchFindsEasyTarget(t *testing.T) {
	// Use a maximally easy target so the search terminates almost
	// immediately regardless of the fixed production target.
	origTarget := TargetInt
	TargetInt = testutil.EasyTarget
	defer func() { TargetInt = origTarget }()

	res := Search(context.Background(), Header{Version: 1}, nil)
	if !util.HashMeetsTarget(res.Hash, TargetInt()) {
		t.Error("expected found header to meet the target")
	}
}
