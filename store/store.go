// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

// Package store persists byte blocks in a single append-only file.
//
// The file starts with a fixed superblock whose first 8 bytes hold the
// address of the current root block, big-endian. Everything after the
// superblock is a sequence of length-prefixed blocks written strictly by
// appending. The only in-place write beyond the superblock never happens:
// bytes once written are immutable, and the root pointer swap during
// CommitRoot is the sole mutation of existing file content.
package store

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/dacapoday/twig"
)

// SuperblockSize is the size of the reserved region at the start of the
// file. Bytes 0..7 hold the root address; the rest stays zero.
const SuperblockSize = 4096

// prefixSize is the size of the big-endian length prefix of each block.
const prefixSize = 8

// Store translates byte payloads into file offsets and back, holds the
// current root pointer in the superblock, and mediates exclusive access
// via the file's advisory lock when the file provides one.
//
// Type parameter F must implement the twig.File interface (typically
// *os.File or *mem.File).
type Store[F twig.File] struct {
	file   F
	locked bool
	closed bool
}

// File returns the underlying file handle.
func (store *Store[F]) File() F {
	return store.file
}

// Load initializes the store from file, ensuring the superblock exists.
// A file shorter than SuperblockSize is extended with zero bytes under
// the lock, which initializes a fresh database with root address 0.
func (store *Store[F]) Load(file F) (err error) {
	store.file = file
	store.locked = false
	store.closed = false

	if _, err = store.Lock(); err != nil {
		return
	}

	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}
	if end < SuperblockSize {
		if err = file.Truncate(SuperblockSize); err != nil {
			return
		}
	}

	return store.Unlock()
}

// Root reads the current root address from the superblock. Readers call
// this without the lock: the 8-byte aligned pointer write in CommitRoot
// is atomic with respect to concurrent reads on supported platforms.
func (store *Store[F]) Root() (addr twig.Address, err error) {
	if store.closed {
		err = twig.ErrClosed
		return
	}

	var buf [prefixSize]byte
	if _, err = store.file.ReadAt(buf[:], 0); err != nil {
		if errors.Is(err, io.EOF) {
			err = twig.ErrFileTruncated
		}
		return
	}

	addr = twig.Address(binary.BigEndian.Uint64(buf[:]))
	if addr == 0 {
		return
	}

	end, err := store.file.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}
	if int64(addr) < SuperblockSize || int64(addr) >= end {
		addr = 0
		err = twig.ErrCorrupted
	}
	return
}

// Write appends data as a length-prefixed block and returns its address.
// The lock is acquired if this handle does not hold it yet.
func (store *Store[F]) Write(data []byte) (addr twig.Address, err error) {
	if store.closed {
		err = twig.ErrClosed
		return
	}

	if _, err = store.Lock(); err != nil {
		return
	}

	end, err := store.file.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}
	if end < SuperblockSize {
		err = twig.ErrFileTruncated
		return
	}

	block := make([]byte, prefixSize+len(data))
	binary.BigEndian.PutUint64(block, uint64(len(data)))
	copy(block[prefixSize:], data)

	if _, err = store.file.WriteAt(block, end); err != nil {
		return
	}
	addr = twig.Address(end)
	return
}

// Read returns the block stored at addr. Address 0 yields a nil block.
// Blocks are immutable once written, so no lock is required.
func (store *Store[F]) Read(addr twig.Address) (data []byte, err error) {
	if store.closed {
		err = twig.ErrClosed
		return
	}
	if addr == 0 {
		return
	}

	end, err := store.file.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}
	if int64(addr) < SuperblockSize || int64(addr)+prefixSize > end {
		err = twig.ErrCorrupted
		return
	}

	var buf [prefixSize]byte
	if _, err = store.file.ReadAt(buf[:], int64(addr)); err != nil {
		if errors.Is(err, io.EOF) {
			err = twig.ErrFileTruncated
		}
		return
	}

	length := binary.BigEndian.Uint64(buf[:])
	if int64(addr)+prefixSize+int64(length) > end {
		err = twig.ErrFileTruncated
		return
	}

	data = make([]byte, length)
	if _, err = store.file.ReadAt(data, int64(addr)+prefixSize); err != nil {
		if errors.Is(err, io.EOF) {
			err = twig.ErrFileTruncated
		}
		data = nil
	}
	return
}

// CommitRoot makes addr the durable root. Pending block writes are synced
// before the pointer swap and the superblock is synced after it; a crash
// between the two phases leaves the previous root intact. The lock is
// released on return.
func (store *Store[F]) CommitRoot(addr twig.Address) (err error) {
	if store.closed {
		return twig.ErrClosed
	}

	if _, err = store.Lock(); err != nil {
		return
	}

	if err = store.file.Sync(); err != nil {
		return
	}

	var buf [prefixSize]byte
	binary.BigEndian.PutUint64(buf[:], uint64(addr))
	if _, err = store.file.WriteAt(buf[:], 0); err != nil {
		return
	}

	if err = store.file.Sync(); err != nil {
		return
	}

	return store.Unlock()
}

// Lock acquires exclusive access to the file. The returned bool reports
// whether this call newly acquired the lock; callers use it to know when
// their view of the file may be stale.
func (store *Store[F]) Lock() (acquired bool, err error) {
	if store.closed {
		err = twig.ErrClosed
		return
	}
	if store.locked {
		return
	}

	if locker, ok := any(store.file).(twig.Locker); ok {
		if err = locker.Lock(); err != nil {
			return
		}
	}
	store.locked = true
	acquired = true
	return
}

// Unlock flushes and releases the lock. No-op when the lock is not held.
func (store *Store[F]) Unlock() (err error) {
	if !store.locked {
		return
	}

	if err = store.file.Sync(); err != nil {
		return
	}
	store.locked = false

	if locker, ok := any(store.file).(twig.Locker); ok {
		err = locker.Unlock()
	}
	return
}

// Locked reports whether this handle holds the lock. The flag mirrors the
// OS lock state for this handle only; across processes the OS lock is
// authoritative.
func (store *Store[F]) Locked() bool {
	return store.locked
}

// Closed reports whether the store has been closed.
func (store *Store[F]) Closed() bool {
	return store.closed
}

// Close releases the lock and closes the underlying file.
func (store *Store[F]) Close() (err error) {
	if store.closed {
		return twig.ErrClosed
	}

	if err = store.Unlock(); err != nil {
		store.file.Close()
		store.closed = true
		return
	}
	store.closed = true
	return store.file.Close()
}
