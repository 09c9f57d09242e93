// Package server provides the host-side wrappers around a validator:
// a classifying validation server with outcome counters, and the
// lifecycle guard that orders an importer's execute and commit calls.
package server

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// lifecycleState represents a state in the import lifecycle.
type lifecycleState uint32

const (
	// stateInit: waiting for Open. No other calls allowed.
	stateInit lifecycleState = iota
	// stateReady: the tip is known. Reads are allowed concurrently;
	// Execute and Revert are the valid sequential calls.
	stateReady
	// stateExecuting: Execute has been called and has not returned.
	stateExecuting
	// stateExecuted: a successor head is staged. Commit or Discard
	// is the only valid next sequential call.
	stateExecuted
	// stateCommitting: Commit has been called and has not returned.
	stateCommitting
)

func (s lifecycleState) String() string {
	switch s {
	case stateInit:
		return "Init"
	case stateReady:
		return "Ready"
	case stateExecuting:
		return "Executing"
	case stateExecuted:
		return "Executed"
	case stateCommitting:
		return "Committing"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// LifecycleGuard enforces the import lifecycle. Calling an operation
// in the wrong state is a programming error and panics.
type LifecycleGuard struct {
	state atomic.Uint32
	// Held across each sequential operation (Execute, Commit,
	// Discard, Revert).
	seqMu sync.Mutex
	// Set once Open has completed, enabling concurrent reads.
	opened atomic.Bool
}

// NewLifecycleGuard creates a guard in the Init state.
func NewLifecycleGuard() *LifecycleGuard {
	g := &LifecycleGuard{}
	g.state.Store(uint32(stateInit))
	return g
}

// State returns the current lifecycle state.
func (g *LifecycleGuard) State() string {
	return lifecycleState(g.state.Load()).String()
}

// AcquireOpen transitions Init → Ready.
// Panics if not in Init state.
func (g *LifecycleGuard) AcquireOpen() {
	if !g.state.CompareAndSwap(uint32(stateInit), uint32(stateReady)) {
		panic(fmt.Sprintf("github.com/blockberries/adder: Open called in state %s (expected Init)",
			lifecycleState(g.state.Load())))
	}
}

// CompleteOpen marks the tip as known, enabling concurrent reads.
func (g *LifecycleGuard) CompleteOpen() {
	g.opened.Store(true)
}

// FailOpen rolls back state to Init if Open fails.
func (g *LifecycleGuard) FailOpen() {
	g.state.Store(uint32(stateInit))
}

// AcquireExecute transitions Ready → Executing.
// Blocks if another sequential operation is in progress.
// Panics if not in Ready state.
func (g *LifecycleGuard) AcquireExecute() {
	g.acquire(stateReady, stateExecuting, "Execute")
}

// CompleteExecute transitions Executing → Executed.
func (g *LifecycleGuard) CompleteExecute() {
	g.release(stateExecuted)
}

// FailExecute transitions Executing → Ready. Nothing is staged.
func (g *LifecycleGuard) FailExecute() {
	g.release(stateReady)
}

// AcquireCommit transitions Executed → Committing.
// Panics if not in Executed state.
func (g *LifecycleGuard) AcquireCommit() {
	g.acquire(stateExecuted, stateCommitting, "Commit")
}

// CompleteCommit transitions Committing → Ready.
func (g *LifecycleGuard) CompleteCommit() {
	g.release(stateReady)
}

// FailCommit transitions Committing → Executed, keeping the staged
// head so the commit can be retried or discarded.
func (g *LifecycleGuard) FailCommit() {
	g.release(stateExecuted)
}

// Discard transitions Executed → Ready, dropping the staged head.
// Panics if not in Executed state.
func (g *LifecycleGuard) Discard() {
	g.acquire(stateExecuted, stateReady, "Discard")
	g.seqMu.Unlock()
}

// AcquireSequential holds the guard in the Ready state for an
// operation that rewrites the tip outside the execute/commit cycle.
// Panics if not in Ready state.
func (g *LifecycleGuard) AcquireSequential(op string) {
	g.acquire(stateReady, stateReady, op)
}

// ReleaseSequential ends an operation started with AcquireSequential.
func (g *LifecycleGuard) ReleaseSequential() {
	g.seqMu.Unlock()
}

// CheckConcurrent verifies that concurrent reads are allowed (any
// state after Open). Panics if Open has not completed.
func (g *LifecycleGuard) CheckConcurrent() {
	if !g.opened.Load() {
		panic("github.com/blockberries/adder: read before Open completed")
	}
}

// IsReady returns true if the guard is in the Ready state.
func (g *LifecycleGuard) IsReady() bool {
	return lifecycleState(g.state.Load()) == stateReady
}

// HasStaged returns true if a head is staged for commit.
func (g *LifecycleGuard) HasStaged() bool {
	return lifecycleState(g.state.Load()) == stateExecuted
}

func (g *LifecycleGuard) acquire(from, to lifecycleState, op string) {
	g.seqMu.Lock()
	if state := lifecycleState(g.state.Load()); state != from {
		g.seqMu.Unlock()
		panic(fmt.Sprintf("github.com/blockberries/adder: %s called in state %s (expected %s)", op, state, from))
	}
	g.state.Store(uint32(to))
}

func (g *LifecycleGuard) release(to lifecycleState) {
	g.state.Store(uint32(to))
	g.seqMu.Unlock()
}
