package node

import (
	"context"
	"fmt"
	"time"

	"github.com/djkazic/blockminer/internal/coinbase"
	"github.com/djkazic/blockminer/internal/mempool"
	"github.com/djkazic/blockminer/internal/merkle"
	"github.com/djkazic/blockminer/internal/metrics"
	"github.com/djkazic/blockminer/internal/miner"
	"github.com/djkazic/blockminer/internal/selector"
	"github.com/djkazic/blockminer/internal/txn"
	"github.com/djkazic/blockminer/internal/validate"
	"github.com/djkazic/blockminer/pkg/util"
	"go.uber.org/zap"
)

// Config configures one pipeline run.
type Config struct {
	MempoolDir      string
	ValidMempoolDir string
	OutputPath      string
	PrevBlockHash   [32]byte
	Workers         int    // 0 = single-threaded Search
	CachePath       string // empty = no validation cache
}

// Pipeline runs the full load/validate/select/coinbase/merkle/mine/write
// sequence and reports stage completions through OnStage, if set.
type Pipeline struct {
	cfg     Config
	log     *zap.Logger
	OnStage func(StageEvent)
}

// New constructs a Pipeline. log may be nil, in which case logging is a
// no-op.
func New(cfg Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, log: log}
}

func (p *Pipeline) emit(ev StageEvent) {
	p.log.Info("pipeline stage", zap.String("stage", ev.Stage.String()), zap.String("detail", ev.Detail), zap.Error(ev.Err))
	if p.OnStage != nil {
		p.OnStage(ev)
	}
}

// Run executes the pipeline end to end, returning the mined header and its
// hash once a valid nonce has been found and output.txt written.
func (p *Pipeline) Run(ctx context.Context) (miner.Result, error) {
	loaded, err := mempool.LoadDir(p.cfg.MempoolDir, p.log)
	if err != nil {
		p.emit(StageEvent{Stage: StageLoad, Err: err})
		return miner.Result{}, fmt.Errorf("load mempool: %w", err)
	}
	p.emit(StageEvent{Stage: StageLoad, Detail: fmt.Sprintf("%d files", len(loaded))})

	var cache *validate.BoltCache
	if p.cfg.CachePath != "" {
		cache, err = validate.NewBoltCache(p.cfg.CachePath, p.log)
		if err != nil {
			return miner.Result{}, fmt.Errorf("open validation cache: %w", err)
		}
		defer cache.Close()
	}

	driver := validate.NewDriver(p.log)
	var admitted []mempool.Loaded
	var serials []txn.Serialized
	for _, l := range loaded {
		contentHash := util.DoubleSHA256(l.Raw)
		if err := driver.AdmitCached(l.Tx, contentHash, cache); err != nil {
			metrics.TransactionsRejected.WithLabelValues(reasonLabel(err)).Inc()
			p.log.Debug("transaction rejected", zap.String("source", l.Tx.SourcePath), zap.Error(err))
			continue
		}
		s := txn.Serialize(l.Tx)
		if !s.Admitted {
			metrics.TransactionsRejected.WithLabelValues("serialization").Inc()
			continue
		}
		if err := mempool.CopyAdmitted(p.cfg.ValidMempoolDir, l.Tx.SourcePath, l.Raw); err != nil {
			return miner.Result{}, fmt.Errorf("copy admitted: %w", err)
		}
		metrics.TransactionsAdmitted.Inc()
		admitted = append(admitted, l)
		serials = append(serials, s)
	}
	p.emit(StageEvent{Stage: StageValidate, Detail: fmt.Sprintf("%d admitted of %d", len(admitted), len(loaded))})

	candidates := make([]selector.Candidate, len(serials))
	for i, s := range serials {
		candidates[i] = selector.Candidate{Txid: s.Txid, Wtxid: s.Wtxid, Weight: s.Weight, Fees: s.Fees}
	}
	chosen, totalFees := selector.Select(candidates)
	metrics.SelectedFees.Set(float64(totalFees))
	var selectedWeight uint64
	for _, c := range chosen {
		selectedWeight += c.Weight
	}
	metrics.SelectedWeight.Set(float64(selectedWeight))
	p.emit(StageEvent{Stage: StageSelect, Detail: fmt.Sprintf("%d txs, %d sats fees", len(chosen), totalFees)})

	wtxids := make([][32]byte, len(chosen))
	for i, c := range chosen {
		wtxids[i] = [32]byte(c.Wtxid)
	}
	witnessRoot := merkle.WitnessRoot(wtxids)
	cb := coinbase.Build(totalFees, witnessRoot)
	p.emit(StageEvent{Stage: StageCoinbase, Detail: fmt.Sprintf("reward+fees, txid %s", cb.Txid.Display())})

	txidLeaves := make([][32]byte, 0, len(chosen)+1)
	txidLeaves = append(txidLeaves, [32]byte(cb.Txid))
	for _, c := range chosen {
		txidLeaves = append(txidLeaves, [32]byte(c.Txid))
	}
	merkleRoot := merkle.Root(txidLeaves)
	p.emit(StageEvent{Stage: StageMerkle, Detail: fmt.Sprintf("root %x", merkleRoot)})

	base := miner.Header{
		Version:    1,
		PrevHash:   p.cfg.PrevBlockHash,
		MerkleRoot: merkleRoot,
		Timestamp:  uint32(time.Now().Unix()),
		Bits:       miner.Bits(),
	}

	start := time.Now()
	var result miner.Result
	if p.cfg.Workers > 1 {
		result = miner.SearchParallel(ctx, base, p.cfg.Workers, p.log)
	} else {
		result = miner.Search(ctx, base, p.log)
	}
	metrics.NonceSearchDuration.Observe(time.Since(start).Seconds())
	metrics.NoncesTried.Add(float64(result.Header.Nonce) + 1)
	metrics.BlockFound.Set(1)
	p.emit(StageEvent{Stage: StageMine, Detail: fmt.Sprintf("nonce %d", result.Header.Nonce)})

	outTxids := make([]txn.NaturalHash, 0, len(chosen)+1)
	outTxids = append(outTxids, cb.Txid)
	for _, c := range chosen {
		outTxids = append(outTxids, c.Txid)
	}
	if err := mempool.WriteOutput(p.cfg.OutputPath, result.Header.Serialize(), cb.Full, outTxids); err != nil {
		p.emit(StageEvent{Stage: StageWrite, Err: err})
		return miner.Result{}, fmt.Errorf("write output: %w", err)
	}
	p.emit(StageEvent{Stage: StageWrite, Detail: p.cfg.OutputPath})

	return result, nil
}

func reasonLabel(err error) string {
	if _, ok := err.(*validate.Error); ok {
		return "validation"
	}
	return "other"
}
