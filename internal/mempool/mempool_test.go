package mempool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/djkazic/blockminer/internal/txn"
	"github.com/djkazic/blockminer/testutil"
)

const sampleTxid = "2ec4e4a5b1e3f80aa6c4b9f2cb0d9f9aa96b27c0b6fddc1c5bb9a9c0f3b7c1cf"

var sampleJSON = testutil.SampleMempoolJSON(sampleTxid, 100000, 90000)

func TestParseEsploraSchema(t *testing.T) {
	tx, err := Parse([]byte(sampleJSON), "sample.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tx.Inputs) != 1 || len(tx.Outputs) != 1 {
		t.Fatalf("unexpected shape: %+v", tx)
	}
	if tx.Inputs[0].Prevout.Type != txn.ScriptP2PKH {
		t.Errorf("prevout type = %v, want ScriptP2PKH", tx.Inputs[0].Prevout.Type)
	}
	if tx.Inputs[0].Prevout.Value != 100000 {
		t.Errorf("prevout value = %d, want 100000", tx.Inputs[0].Prevout.Value)
	}
	if tx.SourcePath != "sample.json" {
		t.Errorf("SourcePath = %q, want %q", tx.SourcePath, "sample.json")
	}
}

func TestLoadDirAndCopyAdmitted(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	loaded, err := LoadDir(dir, nil)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 loaded entry, got %d", len(loaded))
	}

	dest := filepath.Join(dir, "valid-mempool")
	if err := CopyAdmitted(dest, loaded[0].Tx.SourcePath, loaded[0].Raw); err != nil {
		t.Fatalf("CopyAdmitted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "a.json")); err != nil {
		t.Errorf("expected copied file to exist: %v", err)
	}
}

func TestLoadDirSkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write malformed fixture: %v", err)
	}
	loaded, err := LoadDir(dir, nil)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected the malformed file to be skipped, got %d loaded", len(loaded))
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.txt")
	header := make([]byte, 80)
	coinbase := []byte{0x01, 0x02}
	txids := []txn.NaturalHash{{0x01}, {0x02}}

	if err := WriteOutput(path, header, coinbase, txids); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty output file")
	}
}
