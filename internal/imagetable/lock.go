package imagetable

import "sync"

// imageLock is the single process-wide mutex that serialises all
// mutation and observation of image-table cells. It is distinct from
// globalData's own mutex, which only guards the table slices'
// structural lifecycle (allocation/binding at startup).
var imageLock sync.Mutex

// Lock acquires the image lock. The scan-cycle engine holds it for the
// full tick body (apply journal, run control program, run hooks); the
// reference protocol plugin holds it only for the duration of a
// transcoding read.
func Lock() {
	imageLock.Lock()
}

// Unlock releases the image lock.
func Unlock() {
	imageLock.Unlock()
}

// AcquireFunc and ReleaseFunc are the pair of callbacks handed to
// plugins inside Runtime-Args, so a plugin never imports this package
// directly.
type AcquireFunc func()
type ReleaseFunc func()

// LockFuncs returns the acquire/release pair for Runtime-Args.
func LockFuncs() (AcquireFunc, ReleaseFunc) {
	return Lock, Unlock
}
