package miner

import (
	"context"
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/djkazic/blockminer/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Result is a found header together with the hash that met the target, in
// natural (internal) byte order as returned by Header.Hash.
type Result struct {
	Header Header
	Hash   [32]byte
}

// Search performs the single-threaded proof-of-work loop spec §4.9 and
// §4.10 describe: a nonce counter from 0 upward, rolling the timestamp
// forward and resetting the nonce if the 32-bit space is exhausted (the
// Open Questions decision for nonce-space exhaustion, since the source left
// that path unhandled).
func Search(ctx context.Context, base Header, log *zap.Logger) Result {
	if log == nil {
		log = zap.NewNop()
	}
	target := TargetInt()
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)

	h := base
	var nonce uint32
	for {
		select {
		case <-ctx.Done():
			return Result{Header: h, Hash: h.Hash()}
		default:
		}

		h.Nonce = nonce
		hash := h.Hash()
		if util.HashMeetsTarget(hash, target) {
			return Result{Header: h, Hash: hash}
		}

		if nonce == ^uint32(0) {
			h.Timestamp++
			nonce = 0
			log.Warn("nonce space exhausted, rolling timestamp", zap.Uint32("timestamp", h.Timestamp))
			continue
		}
		nonce++

		if limiter.Allow() {
			log.Debug("mining progress", zap.Uint32("nonce", nonce), zap.Uint32("timestamp", h.Timestamp))
		}
	}
}

// SearchParallel splits the nonce space across workers sharing a read-only
// header template, as spec §5 permits but does not require. Each worker
// owns a disjoint nonce range and an atomic "found" flag stops the others
// once any worker succeeds. If the whole nonce space is exhausted, the
// timestamp is rolled forward by one second and the search starts again.
func SearchParallel(ctx context.Context, base Header, workers int, log *zap.Logger) Result {
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	target := TargetInt()

	var found int32
	var mu sync.Mutex
	var result Result
	var wg sync.WaitGroup

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	span := (uint64(^uint32(0)) + 1) / uint64(workers)
	for w := 0; w < workers; w++ {
		start := uint32(uint64(w) * span)
		var end uint32
		if w == workers-1 {
			end = ^uint32(0)
		} else {
			end = uint32(uint64(w+1)*span - 1)
		}

		wg.Add(1)
		go func(start, end uint32) {
			defer wg.Done()
			searchRange(searchCtx, base, start, end, target, &found, &mu, &result)
		}(start, end)
	}

	wg.Wait()
	if atomic.LoadInt32(&found) == 0 && ctx.Err() == nil {
		base.Timestamp++
		log.Warn("nonce space exhausted, rolling timestamp", zap.Uint32("timestamp", base.Timestamp))
		return SearchParallel(ctx, base, workers, log)
	}
	return result
}

func searchRange(ctx context.Context, base Header, start, end uint32, target *big.Int, found *int32, mu *sync.Mutex, result *Result) {
	h := base
	nonce := start
	for {
		if atomic.LoadInt32(found) != 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		h.Nonce = nonce
		hash := h.Hash()
		if util.HashMeetsTarget(hash, target) {
			if atomic.CompareAndSwapInt32(found, 0, 1) {
				mu.Lock()
				*result = Result{Header: h, Hash: hash}
				mu.Unlock()
			}
			return
		}

		if nonce == end {
			return
		}
		nonce++
	}
}
