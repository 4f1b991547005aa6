// Command blockminer mines a single Bitcoin-style block from a local
// mempool directory: it validates candidate transactions, selects a
// fee-maximizing subset under a weight budget, builds a witness-committing
// coinbase, builds the block Merkle tree, and searches for a nonce
// satisfying the fixed proof-of-work target.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/djkazic/blockminer/internal/metrics"
	"github.com/djkazic/blockminer/internal/node"
	"github.com/djkazic/blockminer/pkg/util"
	"go.uber.org/zap"
)

func main() {
	mempoolDir := flag.String("mempool-dir", "./mempool", "directory of mempool transaction JSON files")
	validDir := flag.String("valid-mempool-dir", "./valid-mempool", "directory admitted transaction files are copied into")
	outputPath := flag.String("output", "./output.txt", "path to write the mined block artefact to")
	prevHashHex := flag.String("prev-block-hash", "0000000000000000000000000000000000000000000000000000000000000000", "previous block hash, display-order hex")
	workers := flag.Int("workers", 1, "nonce-search worker count (1 = single-threaded)")
	cachePath := flag.String("cache-path", "", "if set, cache per-file script-verification verdicts in a bbolt database at this path")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address")
	verbose := flag.Bool("v", false, "enable development (human-readable) logging")
	flag.Parse()

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	prevHash, err := util.HexToHash(*prevHashHex)
	if err != nil {
		log.Error("invalid prev-block-hash", zap.Error(err))
		os.Exit(1)
	}

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, log)
	}

	cfg := node.Config{
		MempoolDir:      *mempoolDir,
		ValidMempoolDir: *validDir,
		OutputPath:      *outputPath,
		PrevBlockHash:   prevHash,
		Workers:         *workers,
		CachePath:       *cachePath,
	}

	pipeline := node.New(cfg, log)
	result, err := pipeline.Run(context.Background())
	if err != nil {
		log.Error("mining run failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("block mined",
		zap.Uint32("nonce", result.Header.Nonce),
		zap.String("hash", util.HashToHex(result.Hash)),
		zap.String("output", *outputPath),
	)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server exited", zap.Error(err))
	}
}
