package slimsync

import "sync/atomic"

// sharedX is the high bit of a SharedMutex's inner word: set while a
// writer is either installed or waiting for readers/update-holders to
// drain. The remaining bits count current shared holders plus, if one
// exists, the single update holder (update uses one unit, same as a
// shared slot).
const sharedX uint32 = 1 << 31

// SharedMutex composes an internal exclusive Mutex (the "outer" gate
// serializing writers and update-holders) with a second atomic word (the
// "inner" word tracking reader/updater count and the exclusive-pending
// bit). It supports three modes, exclusive, shared, and update (the
// latter upgradable to exclusive and downgradable back), in 8 bytes, with
// no owner tracking, recursion, or fairness guarantee beyond the writer
// preference built into the state machine itself.
//
// The zero value is an unlocked SharedMutex. It must not be copied after
// first use.
type SharedMutex struct {
	_     noCopy
	outer Mutex
	inner uint32
}

// fetchOrUint32 performs an atomic fetch-then-OR and returns the value
// immediately before the OR was applied, the same CAS-retry shape used
// throughout this package's bit-lock style helpers.
func fetchOrUint32(addr *uint32, mask uint32) uint32 {
	for {
		old := atomic.LoadUint32(addr)
		if atomic.CompareAndSwapUint32(addr, old, old|mask) {
			return old
		}
	}
}

// TryLock attempts to acquire exclusive access without blocking. Per
// spec.md §9's Open Question resolution, try_lock must never block: if
// outer is acquired but readers or an update holder remain, TryLock
// releases outer and fails rather than waiting for them to drain.
func (sm *SharedMutex) TryLock() bool {
	if !sm.outer.TryLock() {
		return false
	}
	if atomic.CompareAndSwapUint32(&sm.inner, 0, sharedX) {
		return true
	}
	sm.outer.Unlock()
	return false
}

// Lock acquires exclusive access, blocking until it is available. It
// acquires outer first, then installs the exclusive-pending bit and
// waits for any shared or update holders to drain.
func (sm *SharedMutex) Lock() {
	sm.outer.Lock()
	sm.lockInner()
}

func (sm *SharedMutex) lockInner() {
	// outer is held, so no other goroutine can be installing sharedX
	// concurrently; prior is therefore exactly the count of readers and
	// the update holder (if any) that must drain before we proceed.
	prior := fetchOrUint32(&sm.inner, sharedX)
	if prior == 0 {
		return
	}
	for {
		cur := atomic.LoadUint32(&sm.inner)
		if cur == sharedX {
			return
		}
		parkWaitUint32(&sm.inner, cur)
	}
}

// SpinLock acquires exclusive access, spinning for up to n rounds before
// falling back to Lock's park path. SpinLock(0) is equivalent to Lock.
func (sm *SharedMutex) SpinLock(n int) {
	if sm.TryLock() {
		return
	}
	if spinTry(n,
		func() bool { return !sm.outer.IsLocked() },
		sm.TryLock,
	) {
		return
	}
	sm.Lock()
}

// SpinLockDefault calls SpinLock(DefaultSpinRounds).
func (sm *SharedMutex) SpinLockDefault() {
	sm.SpinLock(DefaultSpinRounds)
}

// Unlock releases exclusive access. It always attempts a wake on inner
// (harmless if nobody is parked there) before releasing outer.
func (sm *SharedMutex) Unlock() {
	atomic.StoreUint32(&sm.inner, 0)
	parkWakeUint32(&sm.inner)
	sm.outer.Unlock()
}

// TryLockShared attempts to acquire a shared (reader) hold without
// blocking or touching outer. It fails if the exclusive-pending bit is
// set, even if no writer has fully installed yet; new readers must not
// enter once a writer is waiting to drain.
func (sm *SharedMutex) TryLockShared() bool {
	for {
		cur := atomic.LoadUint32(&sm.inner)
		if cur&sharedX != 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(&sm.inner, cur, cur+1) {
			return true
		}
	}
}

// LockShared acquires a shared hold, blocking until one is available.
// Readers never hold outer for the duration of their critical section;
// they only briefly acquire and release it to queue behind a
// pending or held writer, which is what prevents writer starvation.
func (sm *SharedMutex) LockShared() {
	if sm.TryLockShared() {
		return
	}
	for {
		sm.outer.Lock()
		ok := sm.TryLockShared()
		sm.outer.Unlock()
		if ok {
			return
		}
	}
}

// SpinLockShared acquires a shared hold, spinning for up to n rounds
// before falling back to LockShared's queue-behind-outer path.
// SpinLockShared(0) is equivalent to LockShared.
func (sm *SharedMutex) SpinLockShared(n int) {
	if spinTry(n,
		func() bool { return atomic.LoadUint32(&sm.inner)&sharedX == 0 },
		sm.TryLockShared,
	) {
		return
	}
	sm.LockShared()
}

// SpinLockSharedDefault calls SpinLockShared(DefaultSpinRounds).
func (sm *SharedMutex) SpinLockSharedDefault() {
	sm.SpinLockShared(DefaultSpinRounds)
}

// UnlockShared releases a shared hold. If this was the last draining
// holder with a writer already pending (the post-decrement value equals
// sharedX exactly), it wakes the waiting writer.
func (sm *SharedMutex) UnlockShared() {
	post := atomic.AddUint32(&sm.inner, ^uint32(0)) // -1
	if post == sharedX {
		parkWakeUint32(&sm.inner)
	}
}

// TryLockUpdate attempts to acquire the update hold without blocking. It
// reserves a slot identical in shape to a shared holder's, but only one
// update holder can exist at a time because acquiring it requires outer.
func (sm *SharedMutex) TryLockUpdate() bool {
	if !sm.outer.TryLock() {
		return false
	}
	atomic.AddUint32(&sm.inner, 1)
	return true
}

// LockUpdate acquires the update hold, blocking until outer is available.
// Update mode is compatible with any number of concurrent shared holders
// but mutually exclusive with itself and with exclusive mode.
func (sm *SharedMutex) LockUpdate() {
	sm.outer.Lock()
	atomic.AddUint32(&sm.inner, 1)
}

// SpinLockUpdate acquires the update hold, spinning for up to n rounds on
// outer's availability before falling back to LockUpdate.
// SpinLockUpdate(0) is equivalent to LockUpdate.
func (sm *SharedMutex) SpinLockUpdate(n int) {
	if spinTry(n,
		func() bool { return !sm.outer.IsLocked() },
		sm.TryLockUpdate,
	) {
		return
	}
	sm.LockUpdate()
}

// SpinLockUpdateDefault calls SpinLockUpdate(DefaultSpinRounds).
func (sm *SharedMutex) SpinLockUpdateDefault() {
	sm.SpinLockUpdate(DefaultSpinRounds)
}

// UnlockUpdate releases the update hold and outer. Like UnlockShared, it
// wakes a pending writer if this was the last holder draining for one.
func (sm *SharedMutex) UnlockUpdate() {
	post := atomic.AddUint32(&sm.inner, ^uint32(0)) // -1
	if post == sharedX {
		parkWakeUint32(&sm.inner)
	}
	sm.outer.Unlock()
}

// UpgradeUpdateToExclusive converts the caller's update hold into
// exclusive access. outer remains held throughout; it was never
// released, so no other goroutine can interleave an update or exclusive
// acquisition during the upgrade. If other readers are still draining,
// this blocks until they finish.
func (sm *SharedMutex) UpgradeUpdateToExclusive() {
	const delta = sharedX - 1 // cancels our own update slot, installs sharedX
	post := atomic.AddUint32(&sm.inner, delta)
	prior := post - delta
	if prior-1 == 0 {
		// No other readers were present; inner is already exactly
		// sharedX.
		return
	}
	for {
		cur := atomic.LoadUint32(&sm.inner)
		if cur == sharedX {
			return
		}
		parkWaitUint32(&sm.inner, cur)
	}
}

// DowngradeExclusiveToUpdate converts the caller's exclusive hold back
// into an update hold. outer remains held. No wake is needed: readers that
// found sharedX set are queued on outer, not parked on inner, and only the
// holder of outer ever parks on inner, so there is nothing parked on inner
// to release by this transition.
func (sm *SharedMutex) DowngradeExclusiveToUpdate() {
	atomic.StoreUint32(&sm.inner, 1)
}

// IsWaiting reports whether an exclusive acquisition is pending or held
// (the exclusive-pending bit is set). Advisory only.
func (sm *SharedMutex) IsWaiting() bool {
	return atomic.LoadUint32(&sm.inner)&sharedX != 0
}

// IsLocked reports whether exclusive access is fully held (no readers or
// update holder still draining). Advisory only.
func (sm *SharedMutex) IsLocked() bool {
	return atomic.LoadUint32(&sm.inner) == sharedX
}

// IsLockedOrWaiting reports whether sm has any holder (shared, update, or
// exclusive) or any goroutine parked on outer. Advisory only.
func (sm *SharedMutex) IsLockedOrWaiting() bool {
	return atomic.LoadUint32(&sm.inner) != 0 || sm.outer.IsLockedOrWaiting()
}
