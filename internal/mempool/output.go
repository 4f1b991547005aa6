package mempool

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/djkazic/blockminer/internal/txn"
)

// WriteOutput writes the block artefact: the 80-byte header hex, the full
// (witness-carrying) coinbase hex, then one display-order txid per line,
// coinbase first, in block order.
func WriteOutput(path string, headerBytes []byte, coinbaseFull []byte, txids []txn.NaturalHash) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, hex.EncodeToString(headerBytes))
	fmt.Fprintln(&buf, hex.EncodeToString(coinbaseFull))
	for _, id := range txids {
		fmt.Fprintln(&buf, id.Display().String())
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
