package index

import "sync/atomic"

// Handle is the atomically swappable reference to the current Snapshot.
// Queries call Current once at the start and keep that pointer for their
// full lifetime; Swap installs a new build without blocking readers.
type Handle struct {
	ptr atomic.Pointer[Snapshot]
}

// NewHandle returns a Handle serving the given snapshot.
func NewHandle(s *Snapshot) *Handle {
	h := &Handle{}
	h.ptr.Store(s)
	return h
}

// Current returns the snapshot in service. May be nil before the first
// Swap on a zero Handle.
func (h *Handle) Current() *Snapshot {
	return h.ptr.Load()
}

// Swap installs a new snapshot and returns the previous one. In-flight
// queries holding the old pointer finish against the old build.
func (h *Handle) Swap(s *Snapshot) *Snapshot {
	return h.ptr.Swap(s)
}
