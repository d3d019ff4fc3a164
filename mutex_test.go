package slimsync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMutex_UncontendedRoundTrip(t *testing.T) {
	var m Mutex
	assert.False(t, m.IsLocked())
	assert.False(t, m.IsLockedOrWaiting())

	assert.True(t, m.TryLock())
	assert.True(t, m.IsLocked())
	assert.True(t, m.IsLockedOrWaiting())

	m.Unlock()
	assert.False(t, m.IsLocked())
	assert.False(t, m.IsLockedOrWaiting())
}

func TestMutex_TryLockFailsWhileHeld(t *testing.T) {
	var m Mutex
	m.Lock()
	assert.False(t, m.TryLock())
	m.Unlock()
	assert.True(t, m.TryLock())
	m.Unlock()
}

func TestMutex_TwoThreadHandoff(t *testing.T) {
	var m Mutex
	m.Lock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
		m.Unlock()
	}()

	// Give the second goroutine time to park.
	time.Sleep(20 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second lock acquired before first unlocked")
	default:
	}

	m.Unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

func TestMutex_ExclusionUnderContention(t *testing.T) {
	var m Mutex
	var counter int
	var wg sync.WaitGroup

	const goroutines = 32
	const iterations = 500

	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				m.Lock()
				counter++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*iterations, counter)
	assert.False(t, m.IsLockedOrWaiting())
}

func TestMutex_SpinLockZeroRoundsEquivalentToLock(t *testing.T) {
	var m Mutex
	m.SpinLock(0)
	assert.True(t, m.IsLocked())
	m.Unlock()
}

func TestMutex_SpinLockUncontended(t *testing.T) {
	var m Mutex
	m.SpinLock(1000)
	assert.True(t, m.IsLocked())
	m.Unlock()
	assert.False(t, m.IsLocked())
}

func TestMutex_SpinLockUnderBriefContention(t *testing.T) {
	var m Mutex
	m.Lock()
	go func() {
		time.Sleep(time.Millisecond)
		m.Unlock()
	}()
	m.SpinLockDefault()
	assert.True(t, m.IsLocked())
	m.Unlock()
}

func TestMutex_ManyWaitersAllEventuallyAcquire(t *testing.T) {
	var m Mutex
	m.Lock()

	const waiters = 64
	var wg sync.WaitGroup
	wg.Add(waiters)
	var seq int
	var seqMu sync.Mutex

	for range waiters {
		go func() {
			defer wg.Done()
			m.Lock()
			seqMu.Lock()
			seq++
			seqMu.Unlock()
			m.Unlock()
		}()
	}

	time.Sleep(10 * time.Millisecond)
	m.Unlock()
	wg.Wait()

	seqMu.Lock()
	defer seqMu.Unlock()
	assert.Equal(t, waiters, seq)
}
