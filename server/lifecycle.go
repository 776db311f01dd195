// Package server implements the codec service: the operations of
// txcodec.Connection over a configured interface registry, with
// request logging and graceful shutdown.
package server

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/blockberries/txcodec"
)

// lifecycleState represents a state of the service lifecycle.
type lifecycleState uint32

const (
	// stateServing: calls are accepted.
	stateServing lifecycleState = iota
	// stateDraining: Close has been called. New calls are rejected;
	// calls already in flight run to completion.
	stateDraining
	// stateClosed: every in-flight call has returned.
	stateClosed
)

func (s lifecycleState) String() string {
	switch s {
	case stateServing:
		return "Serving"
	case stateDraining:
		return "Draining"
	case stateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// LifecycleGuard admits calls while the service is serving and lets
// Close wait for the calls already admitted.
type LifecycleGuard struct {
	state atomic.Uint32
	// mu orders Enter against the transition to Draining so no call
	// is admitted after Close starts waiting.
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

// NewLifecycleGuard creates a guard in the Serving state.
func NewLifecycleGuard() *LifecycleGuard {
	g := &LifecycleGuard{}
	g.state.Store(uint32(stateServing))
	return g
}

// State returns the current lifecycle state.
func (g *LifecycleGuard) State() string {
	return lifecycleState(g.state.Load()).String()
}

// Enter admits one call. It returns txcodec.ErrClosed once Close has
// been called. Every successful Enter must be paired with Exit.
func (g *LifecycleGuard) Enter() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if lifecycleState(g.state.Load()) != stateServing {
		return txcodec.ErrClosed
	}
	g.inflight.Add(1)
	return nil
}

// Exit marks an admitted call as finished.
func (g *LifecycleGuard) Exit() {
	g.inflight.Done()
}

// Close transitions Serving → Draining, waits for in-flight calls, then
// transitions to Closed. Calling Close again is a no-op.
func (g *LifecycleGuard) Close() {
	g.mu.Lock()
	if !g.state.CompareAndSwap(uint32(stateServing), uint32(stateDraining)) {
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()

	g.inflight.Wait()
	g.state.Store(uint32(stateClosed))
}

// IsServing returns true if the guard still admits calls.
func (g *LifecycleGuard) IsServing() bool {
	return lifecycleState(g.state.Load()) == stateServing
}
