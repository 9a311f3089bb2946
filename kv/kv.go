// Package kv implements a disk-based key-value store built on a
// copy-on-write binary search tree over an append-only block file.
// Keys and values are strings; keys are ordered bytewise.
//
// Concurrency and isolation:
//   - single exclusive writer, enforced by an OS advisory file lock
//   - concurrent readers across processes see the last committed state
//   - uncommitted changes are visible only to the handle that made them
//
// Durability:
//   - Set and Delete mutate in memory only
//   - Commit appends all new blocks, syncs, then atomically swaps the
//     root pointer in the superblock and syncs again
//   - a crash before Commit returns loses the pending changes entirely
//     and leaves the previous committed state intact
//
// Usage:
//
//	db, err := kv.Open("data.twig")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	db.Set("key", "value")
//	if err := db.Commit(); err != nil {
//	    log.Fatal(err)
//	}
//	val, _ := db.Get("key")
package kv

import (
	"errors"
	"os"

	"github.com/dacapoday/twig"
	"github.com/dacapoday/twig/store"
	"github.com/dacapoday/twig/tree"
)

// DB is a specialized KV instance using a flock-protected os.File as the
// underlying storage. It provides a convenient type for working with
// file-based key-value stores.
type DB = KV[*Flock]

// Open creates or opens a key-value database file at the specified path.
// The file is created with permissions 0600 if it doesn't exist.
func Open(path string) (db *DB, err error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return
	}

	db = new(DB)
	if err = db.Load(&Flock{file}); err != nil {
		file.Close()
		db = nil
	}
	return
}

// KV is a generic key-value store parameterized by file type.
// It wraps a copy-on-write binary search tree with append-only block
// storage, providing persistent string-to-string mapping with explicit
// commit semantics.
//
// Type parameter F must implement the twig.File interface (typically
// *Flock or *mem.File).  Use DB for the common case of file-based
// storage.
type KV[F twig.File] struct {
	tree  tree.Tree
	store store.Store[F]
}

// File returns the underlying file handle used by this KV instance.
func (kv *KV[F]) File() F {
	return kv.store.File()
}

// Load initializes the KV store from file, ensuring the superblock
// exists and reading the current root reference.
func (kv *KV[F]) Load(file F) (err error) {
	if err = kv.store.Load(file); err != nil {
		return
	}
	return kv.tree.Load(&kv.store)
}

// Get retrieves the value for the given key.
// Returns twig.ErrNotFound if the key does not exist.
func (kv *KV[F]) Get(key string) (val string, err error) {
	if kv.store.Closed() {
		err = twig.ErrClosed
		return
	}
	return kv.tree.Get(key)
}

// Set inserts or updates a key-value pair in memory. The first mutation
// acquires the write lock; the change becomes durable at Commit.
func (kv *KV[F]) Set(key, val string) (err error) {
	if kv.store.Closed() {
		return twig.ErrClosed
	}
	if key == "" {
		return twig.ErrEmptyKey
	}
	return kv.tree.Set(key, val)
}

// Delete removes a key in memory, or returns twig.ErrNotFound.
// The change becomes durable at Commit.
func (kv *KV[F]) Delete(key string) (err error) {
	if kv.store.Closed() {
		return twig.ErrClosed
	}
	return kv.tree.Delete(key)
}

// Has reports whether key exists, by attempting Get.
func (kv *KV[F]) Has(key string) (ok bool, err error) {
	_, err = kv.Get(key)
	if err == nil {
		ok = true
		return
	}
	if errors.Is(err, twig.ErrNotFound) {
		err = nil
	}
	return
}

// Commit persists all in-memory mutations and releases the write lock.
func (kv *KV[F]) Commit() (err error) {
	if kv.store.Closed() {
		return twig.ErrClosed
	}
	return kv.tree.Commit()
}

// Walk visits every committed (plus this handle's pending) key-value
// pair in ascending key order. Inspection surface for tooling.
func (kv *KV[F]) Walk(fn func(key, val string) error) (err error) {
	if kv.store.Closed() {
		return twig.ErrClosed
	}
	return kv.tree.Walk(fn)
}

// Len reports the number of key-value pairs.
func (kv *KV[F]) Len() (n int, err error) {
	if kv.store.Closed() {
		err = twig.ErrClosed
		return
	}
	return kv.tree.Len()
}

// Close releases the lock and closes the underlying file. Uncommitted
// mutations are lost. Further operations return twig.ErrClosed.
func (kv *KV[F]) Close() (err error) {
	return kv.store.Close()
}
