package kv

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/dacapoday/twig"
)

// Flock couples an os.File with an exclusive advisory flock, satisfying
// both twig.File and twig.Locker. The lock serializes writers across
// processes; it is advisory, so only cooperating handles are excluded.
type Flock struct {
	*os.File
}

var _ twig.File = new(Flock)
var _ twig.Locker = new(Flock)

// Lock blocks until the exclusive advisory lock on the file is acquired.
func (f *Flock) Lock() error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

// Unlock releases the advisory lock.
func (f *Flock) Unlock() error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
