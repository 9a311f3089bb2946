// Package twig defines basic interfaces for building key-value database components.
package twig

import "io"

// File provides access to a storage backend for the key-value database.
// The File interface is the minimum implementation required.
//
// The *os.File type satisfies this interface.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Seeker
	io.Closer

	// Truncate changes the size of the file.
	Truncate(size int64) error

	// Sync commits the current contents of the file to stable storage.
	// Typically, this means flushing the file system's in-memory copy
	// of recently written data to disk.
	Sync() error
}

// Locker is the optional locking surface of a File. A File that also
// implements Locker is locked for exclusive access while a writer holds
// uncommitted changes. Lock blocks until the lock is available.
//
// Files without a Locker implementation are used unlocked; such files must
// not be shared between processes.
type Locker interface {
	Lock() error
	Unlock() error
}

// Address is a byte offset into the database file naming a stored block.
// Address 0 means "no such block": the superblock occupies the start of
// the file, so no block can live there.
type Address uint64
