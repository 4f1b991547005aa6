package mempool

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/djkazic/blockminer/internal/txn"
	"go.uber.org/zap"
)

// Loaded pairs a parsed transaction with the raw bytes it was parsed from,
// so an admitted transaction's original file can be copied verbatim.
type Loaded struct {
	Tx  *txn.Transaction
	Raw []byte
}

// LoadDir enumerates every *.json file in dir, in sorted filename order for
// deterministic double-spend tie-breaking, parsing each into a Loaded
// entry. Only a failure to read the directory itself is fatal; a single
// unreadable or malformed file is skipped and logged (spec §7/§4.11: an
// individual file's I/O or decode failure is swallowed, not fatal to the
// run). log may be nil, in which case skips are silent.
func LoadDir(dir string, log *zap.Logger) ([]Loaded, error) {
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read mempool dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	loaded := make([]Loaded, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("skipping unreadable mempool file", zap.String("path", path), zap.Error(err))
			continue
		}
		tx, err := Parse(raw, path)
		if err != nil {
			log.Warn("skipping malformed mempool file", zap.String("path", path), zap.Error(err))
			continue
		}
		loaded = append(loaded, Loaded{Tx: tx, Raw: raw})
	}
	return loaded, nil
}

// CopyAdmitted writes raw to destDir under the source file's base name,
// creating destDir if necessary.
func CopyAdmitted(destDir string, sourcePath string, raw []byte) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}
	dest := filepath.Join(destDir, filepath.Base(sourcePath))
	if err := os.WriteFile(dest, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
