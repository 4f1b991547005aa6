// Package validate drives per-transaction admission over a parsed mempool:
// script-type consistency, the minimum fee floor, positive-value checks, a
// double-spend guard, and dispatch into the per-template script verifier.
package validate

import (
	"fmt"

	"github.com/djkazic/blockminer/internal/script"
	"github.com/djkazic/blockminer/internal/txn"
	"go.uber.org/zap"
)

// minFeeSats is the floor a transaction's (inputs − outputs) delta must
// clear to be admitted.
const minFeeSats = 1500

// Error reports why a transaction was rejected. Rejections are never
// fatal to the run; only I/O errors are.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("transaction rejected: %s", e.Reason)
}

// Outpoint identifies a spent prevout for the double-spend guard.
type Outpoint struct {
	Txid txn.Txid
	Vout uint32
}

// Driver admits transactions one at a time, tracking spent outpoints across
// the whole mempool pass so a later double-spend is rejected (first-seen
// wins).
type Driver struct {
	log   *zap.Logger
	spent map[Outpoint]struct{}
}

// NewDriver constructs a validation driver with empty double-spend state.
func NewDriver(log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{log: log, spent: make(map[Outpoint]struct{})}
}

// Admit runs every admission check from spec §4.5 against tx in order,
// short-circuiting on the first failure. A non-nil *Error return means the
// transaction is rejected, not that the run failed.
func (d *Driver) Admit(tx *txn.Transaction) error {
	return d.admit(tx, d.verifyScripts)
}

// AdmitCached runs the same ordered checks as Admit, but consults cache for
// the (expensive) per-input script-verification outcome, keyed by
// contentHash. The structural, fee-floor, and double-spend checks always
// run fresh, since they depend on the rest of the batch being admitted in
// this pass, not just on tx's own bytes; only the script-verification
// verdict is safe to reuse across runs of an unchanged file (spec §8's
// idempotence property). cache may be nil, in which case this behaves
// exactly like Admit.
func (d *Driver) AdmitCached(tx *txn.Transaction, contentHash [32]byte, cache *BoltCache) error {
	if cache == nil {
		return d.Admit(tx)
	}
	return d.admit(tx, func(tx *txn.Transaction) *Error {
		if v, ok := cache.Get(contentHash); ok {
			if v.Admitted {
				return nil
			}
			return &Error{Reason: v.Reason}
		}
		verdict := d.verifyScripts(tx)
		cacheVerdict := Verdict{Admitted: verdict == nil}
		if verdict != nil {
			cacheVerdict.Reason = verdict.Reason
		}
		if err := cache.Put(contentHash, cacheVerdict); err != nil {
			d.log.Warn("failed to persist validation verdict", zap.Error(err))
		}
		return verdict
	})
}

// admit runs the structural, fee-floor, and double-spend checks against tx,
// then the given scriptCheck (either a fresh verification or a
// cache-backed one), and finally marks tx's outpoints spent.
func (d *Driver) admit(tx *txn.Transaction, scriptCheck func(*txn.Transaction) *Error) error {
	if _, ok := tx.DominantType(); !ok {
		return &Error{Reason: "inputs do not share a single script type"}
	}

	var feesIn, feesOut int64
	for _, in := range tx.Inputs {
		if in.Prevout.Value == 0 {
			return &Error{Reason: "prevout value must be positive"}
		}
		feesIn += int64(in.Prevout.Value)
	}
	for _, out := range tx.Outputs {
		if out.Value == 0 {
			return &Error{Reason: "output value must be positive"}
		}
		feesOut += int64(out.Value)
	}
	if feesIn-feesOut < minFeeSats {
		return &Error{Reason: fmt.Sprintf("fee %d below floor %d", feesIn-feesOut, minFeeSats)}
	}

	for _, in := range tx.Inputs {
		op := Outpoint{Txid: in.PrevTxid, Vout: in.PrevVout}
		if _, seen := d.spent[op]; seen {
			return &Error{Reason: fmt.Sprintf("double spend of %s:%d", in.PrevTxid, in.PrevVout)}
		}
	}

	if err := scriptCheck(tx); err != nil {
		return err
	}

	for _, in := range tx.Inputs {
		d.spent[Outpoint{Txid: in.PrevTxid, Vout: in.PrevVout}] = struct{}{}
	}
	return nil
}

// verifyScripts runs script.VerifyInput over every input of tx, returning
// nil on success or a rejection *Error on the first failure.
func (d *Driver) verifyScripts(tx *txn.Transaction) *Error {
	for idx := range tx.Inputs {
		ok, err := script.VerifyInput(tx, idx)
		if err != nil {
			d.log.Debug("input verification error", zap.Int("input", idx), zap.Error(err))
			return &Error{Reason: fmt.Sprintf("input %d: %v", idx, err)}
		}
		if !ok {
			return &Error{Reason: fmt.Sprintf("input %d failed script verification", idx)}
		}
	}
	return nil
}
