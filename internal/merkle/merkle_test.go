package merkle

import (
	"testing"

	"github.com/djkazic/blockminer/pkg/util"
)

func TestRootSingleLeaf(t *testing.T) {
	leaf := [32]byte{1, 2, 3}
	if got := Root([][32]byte{leaf}); got != leaf {
		t.Errorf("Root of a single leaf should be that leaf, got %x", got)
	}
}

func TestRootOddDuplication(t *testing.T) {
	a, b, c := [32]byte{1}, [32]byte{2}, [32]byte{3}
	got := Root([][32]byte{a, b, c})

	var ab, cc [64]byte
	copy(ab[:32], a[:])
	copy(ab[32:], b[:])
	copy(cc[:32], c[:])
	copy(cc[32:], c[:])
	left := util.DoubleSHA256(ab[:])
	right := util.DoubleSHA256(cc[:])

	var top [64]byte
	copy(top[:32], left[:])
	copy(top[32:], right[:])
	want := util.DoubleSHA256(top[:])

	if got != want {
		t.Errorf("Root with odd leaf count = %x, want %x", got, want)
	}
}

func TestWitnessRootIncludesSentinel(t *testing.T) {
	wtxid := [32]byte{9}
	got := WitnessRoot([][32]byte{wtxid})
	want := Root([][32]byte{{}, wtxid})
	if got != want {
		t.Errorf("WitnessRoot = %x, want %x", got, want)
	}
}

func TestRootEmpty(t *testing.T) {
	if got := Root(nil); got != ([32]byte{}) {
		t.Errorf("Root(nil) = %x, want zero", got)
	}
}
