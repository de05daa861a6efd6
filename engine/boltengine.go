package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	bolt "go.etcd.io/bbolt"
)

// boltBucket is the single bucket all keys live in; this adapter makes no
// use of bbolt's support for multiple buckets or range scans.
var boltBucket = []byte("kv")

// BoltEngine implements Engine by delegating to an embedded go.etcd.io/bbolt
// database. It lives at dir/sled_db.log/, an on-disk name carried over
// unchanged from this store's earlier engine choice; what's inside that
// directory is this adapter's own business.
type BoltEngine struct {
	db *bolt.DB
}

func openBolt(dir string) (*BoltEngine, error) {
	boltDir := filepath.Join(dir, boltDirName)
	if err := os.MkdirAll(boltDir, 0o755); err != nil {
		return nil, fmt.Errorf("create embedded engine directory %s: %w", boltDir, err)
	}

	db, err := bolt.Open(filepath.Join(boltDir, "bolt.db"), 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open embedded engine: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize embedded engine bucket: %w", err)
	}

	return &BoltEngine{db: db}, nil
}

// Get returns the value for key, or ok=false if key has never been set or
// has since been removed.
func (e *BoltEngine) Get(key string) (string, bool, error) {
	var value []byte
	err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("read key %q: %w", key, err)
	}
	if value == nil {
		return "", false, nil
	}
	if !utf8.Valid(value) {
		return "", false, fmt.Errorf("%w: value for key %q is not valid UTF-8", ErrCorruption, key)
	}
	return string(value), true, nil
}

// Set stores key/value, bbolt's transaction commit fsyncs before Update
// returns, matching "every mutating call flushes before returning".
func (e *BoltEngine) Set(key, value string) error {
	err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set key %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. bbolt's Delete is a silent no-op on an absent key, so
// existence is checked first to produce ErrKeyNotFound per the engine
// contract.
func (e *BoltEngine) Remove(key string) error {
	err := e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b.Get([]byte(key)) == nil {
			return ErrKeyNotFound
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return err
	}
	return nil
}

func (e *BoltEngine) Close() error {
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("close embedded engine: %w", err)
	}
	return nil
}
