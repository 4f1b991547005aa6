// Package selector implements the fee-rate greedy block-space allocator:
// a descending-fee-rate insertion sort followed by a weight-bounded scan.
package selector

import "github.com/djkazic/blockminer/internal/txn"

// WMax is the fixed block weight budget candidates are selected under.
const WMax = 3_993_000

// Candidate is one admitted transaction eligible for selection.
type Candidate struct {
	Txid   txn.NaturalHash
	Wtxid  txn.NaturalHash
	Weight uint64
	Fees   int64
}

func (c Candidate) feeRate() float64 {
	if c.Weight == 0 {
		return 0
	}
	return float64(c.Fees) / float64(c.Weight)
}

// Select orders candidates by descending fee rate via insertion sort —
// first-seen wins ties, matching the order-sensitive behaviour spec §5
// calls for — then greedily accumulates a prefix whose running weight
// never exceeds WMax. It returns the chosen subset in selection order and
// the total collected fees.
func Select(candidates []Candidate) (chosen []Candidate, totalFees int64) {
	ordered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		inserted := false
		for i, existing := range ordered {
			if c.feeRate() > existing.feeRate() {
				ordered = append(ordered, Candidate{})
				copy(ordered[i+1:], ordered[i:])
				ordered[i] = c
				inserted = true
				break
			}
		}
		if !inserted {
			ordered = append(ordered, c)
		}
	}

	var weight uint64
	for _, c := range ordered {
		if weight+c.Weight > WMax {
			break
		}
		weight += c.Weight
		totalFees += c.Fees
		chosen = append(chosen, c)
	}
	return chosen, totalFees
}
