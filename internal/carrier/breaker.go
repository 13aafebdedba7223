package carrier

import (
	"sync"
	"time"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Breaker stops calls to a host after consecutive failures and lets a
// single trial call through once the open period has passed.
type Breaker struct {
	mu        sync.Mutex
	st        breakerState
	fails     int
	threshold int
	openFor   time.Duration
	retryAt   time.Time
	trialing  bool
	now       func() time.Time
}

func NewBreaker(threshold int, openFor time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 3
	}
	return &Breaker{threshold: threshold, openFor: openFor, now: time.Now}
}

// Ready reports whether a call could be attempted now, without reserving it.
func (b *Breaker) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.st {
	case stateOpen:
		return !b.trialing && b.now().After(b.retryAt)
	case stateHalfOpen:
		return !b.trialing
	default:
		return true
	}
}

// Acquire reserves a call. In the open state the first caller after the
// open period becomes the half-open trial call.
func (b *Breaker) Acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.st {
	case stateOpen:
		if b.trialing || !b.now().After(b.retryAt) {
			return false
		}
		b.st = stateHalfOpen
		b.trialing = true
		return true
	case stateHalfOpen:
		if b.trialing {
			return false
		}
		b.trialing = true
		return true
	default:
		return true
	}
}

func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fails = 0
	b.st = stateClosed
	b.trialing = false
}

func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.st == stateHalfOpen {
		b.trip()
		return
	}
	b.fails++
	if b.fails >= b.threshold {
		b.trip()
	}
}

func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st.String()
}

func (b *Breaker) trip() {
	b.st = stateOpen
	b.retryAt = b.now().Add(b.openFor)
	b.trialing = false
}
