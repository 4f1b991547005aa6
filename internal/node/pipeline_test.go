package node

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/djkazic/blockminer/internal/miner"
	"github.com/djkazic/blockminer/pkg/util"
	"github.com/djkazic/blockminer/testutil"
)

var fixtureTx = testutil.P2TRMempoolJSON("2ec4e4a5b1e3f80aa6c4b9f2cb0d9f9aa96b27c0b6fddc1c5bb9a9c0f3b7c1cf", 100000, 98000)

func TestPipelineRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	mempoolDir := filepath.Join(dir, "mempool")
	if err := os.MkdirAll(mempoolDir, 0o755); err != nil {
		t.Fatalf("mkdir mempool: %v", err)
	}
	if err := os.WriteFile(filepath.Join(mempoolDir, "a.json"), []byte(fixtureTx), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	origTarget := miner.TargetInt
	miner.TargetInt = testutil.EasyTarget
	defer func() { miner.TargetInt = origTarget }()

	cfg := Config{
		MempoolDir:      mempoolDir,
		ValidMempoolDir: filepath.Join(dir, "valid-mempool"),
		OutputPath:      filepath.Join(dir, "output.txt"),
	}
	p := New(cfg, nil)
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !util.HashMeetsTarget(result.Hash, miner.TargetInt()) {
		t.Error("expected mined header to meet the (easy test) target")
	}

	if _, err := os.Stat(cfg.OutputPath); err != nil {
		t.Errorf("expected output.txt to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.ValidMempoolDir, "a.json")); err != nil {
		t.Errorf("expected admitted copy to exist: %v", err)
	}
}

func TestPipelineRunWithValidationCache(t *testing.T) {
	dir := t.TempDir()
	mempoolDir := filepath.Join(dir, "mempool")
	if err := os.MkdirAll(mempoolDir, 0o755); err != nil {
		t.Fatalf("mkdir mempool: %v", err)
	}
	if err := os.WriteFile(filepath.Join(mempoolDir, "a.json"), []byte(fixtureTx), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	origTarget := miner.TargetInt
	miner.TargetInt = testutil.EasyTarget
	defer func() { miner.TargetInt = origTarget }()

	cfg := Config{
		MempoolDir:      mempoolDir,
		ValidMempoolDir: filepath.Join(dir, "valid-mempool"),
		OutputPath:      filepath.Join(dir, "output.txt"),
		CachePath:       filepath.Join(dir, "cache.db"),
	}

	// Run twice against the same unchanged mempool directory; the second
	// run should hit the cached verdict rather than re-verify the script.
	for i := 0; i < 2; i++ {
		if _, err := New(cfg, nil).Run(context.Background()); err != nil {
			t.Fatalf("Run iteration %d: %v", i, err)
		}
	}
}
