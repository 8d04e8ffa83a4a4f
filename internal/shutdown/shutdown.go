// Package shutdown implements the two-stage Ctrl-C discipline: the first
// interrupt asks for a graceful stop and is surfaced once to the operator, a
// second interrupt means force an immediate, unclean exit. Transfers poll the
// token once per chunk; the signal never preempts an in-flight chunk.
package shutdown

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// State is the observable shutdown state at a poll point.
type State int

const (
	// Continue means no interrupt has been received (or the first one has
	// already been acknowledged).
	Continue State = iota
	// PromptOnce means the first interrupt arrived and the operator should be
	// told that a second one forces exit. Reported once, then Acknowledge.
	PromptOnce
	// ForceExit means a second interrupt arrived; abandon the transfer even if
	// that leaves a file incomplete.
	ForceExit
)

// Token carries shutdown intent into a transfer. The zero value is usable and
// never requests shutdown, which is what tests want.
type Token struct {
	interrupts   atomic.Int32
	acknowledged atomic.Bool
}

// NewToken returns a token with no signal wiring. Call Install to connect it
// to SIGINT/SIGTERM, or drive it manually in tests via Interrupt.
func NewToken() *Token {
	return &Token{}
}

// Install registers the token with the process signal mask. The counting
// goroutine lives for the rest of the process; transfers come and go but the
// operator's Ctrl-C state is global.
func (t *Token) Install() {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range ch {
			t.Interrupt()
		}
	}()
}

// Interrupt records one interrupt. Exposed so tests and the watch loop can
// request shutdown without a real signal.
func (t *Token) Interrupt() {
	t.interrupts.Add(1)
}

// State reports the current shutdown state.
func (t *Token) State() State {
	n := t.interrupts.Load()
	switch {
	case n >= 2:
		return ForceExit
	case n == 1 && !t.acknowledged.Load():
		return PromptOnce
	default:
		return Continue
	}
}

// Acknowledge marks the first interrupt as surfaced to the operator. The
// count stays at one so the next interrupt still means force exit.
func (t *Token) Acknowledge() {
	t.acknowledged.Store(true)
}
