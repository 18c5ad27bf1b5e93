package main

import "sync"

// busyFlag admits at most one holder. Losers are turned away, not queued.
type busyFlag struct {
	mu   sync.Mutex
	busy bool
}

func (b *busyFlag) tryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.busy {
		return false
	}
	b.busy = true
	return true
}

func (b *busyFlag) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = false
}

func (b *busyFlag) isBusy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}
