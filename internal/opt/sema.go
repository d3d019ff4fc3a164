package opt

import (
	_ "unsafe" // for go:linkname
)

// Sema is a zero-allocation semaphore wrapping the Go runtime's own
// internal semaphore implementation (the same one backing sync.Mutex's
// slow path). It costs one uint32 and never allocates on Acquire/Release.
//
// Unlike a condition variable, a Sema has no associated predicate: callers
// are responsible for re-checking whatever condition they parked on after
// Acquire returns, since runtime_Semrelease can wake a waiter that no
// longer needs to run (parklot's callers re-load their lock word and loop
// after every wake).
type Sema uint32

// Acquire blocks until a matching Release call wakes this semaphore.
func (s *Sema) Acquire() {
	runtime_semacquire((*uint32)(s))
}

// Release wakes one goroutine blocked in Acquire, or leaves a permit
// available for the next Acquire if none are currently blocked.
func (s *Sema) Release() {
	runtime_semrelease((*uint32)(s), false, 0)
}

//go:linkname runtime_semacquire sync.runtime_Semacquire
func runtime_semacquire(s *uint32)

//go:linkname runtime_semrelease sync.runtime_Semrelease
func runtime_semrelease(s *uint32, handoff bool, skipframes int)
