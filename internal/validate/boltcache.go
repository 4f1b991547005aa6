package validate

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var verdictsBucket = []byte("verdicts")

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(1<<20))
)

// Verdict is the cached outcome of validating a mempool file's contents,
// keyed by a content hash so an unchanged file across runs skips re-running
// the script interpreter and ECDSA checks entirely.
type Verdict struct {
	Admitted bool
	Reason   string
}

// BoltCache persists Verdicts in a bbolt database, CBOR-encoded and
// zstd-compressed, following the same embedded-KV discipline as the
// sharechain store it is adapted from.
type BoltCache struct {
	db  *bolt.DB
	log *zap.Logger
}

// NewBoltCache opens (creating if absent) a bbolt database at path.
func NewBoltCache(path string, log *zap.Logger) (*BoltCache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open bolt cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(verdictsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create verdicts bucket: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BoltCache{db: db, log: log}, nil
}

// Get returns the cached verdict for contentHash, if present.
func (c *BoltCache) Get(contentHash [32]byte) (Verdict, bool) {
	var v Verdict
	found := false
	_ = c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(verdictsBucket).Get(contentHash[:])
		if raw == nil {
			return nil
		}
		plain, err := zstdDecoder.DecodeAll(raw, nil)
		if err != nil {
			c.log.Warn("zstd decode failed for cached verdict", zap.Error(err))
			return nil
		}
		if err := cbor.Unmarshal(plain, &v); err != nil {
			c.log.Warn("cbor decode failed for cached verdict", zap.Error(err))
			return nil
		}
		found = true
		return nil
	})
	return v, found
}

// Put stores verdict for contentHash, overwriting any prior entry.
func (c *BoltCache) Put(contentHash [32]byte, v Verdict) error {
	plain, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("cbor encode verdict: %w", err)
	}
	compressed := zstdEncoder.EncodeAll(plain, nil)
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(verdictsBucket).Put(contentHash[:], compressed)
	})
}

// Count returns the number of cached verdicts.
func (c *BoltCache) Count() int {
	n := 0
	_ = c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(verdictsBucket).Stats().KeyN
		return nil
	})
	return n
}

// Close releases the underlying bbolt database.
func (c *BoltCache) Close() error {
	return c.db.Close()
}
