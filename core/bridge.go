package core

import "sync/atomic"

// Bridge carries "an edge is waiting" from the TWI interrupt handler to the
// transaction engine. It holds at most one event: the peripheral raises a
// new interrupt only after TWCR has been written for the previous one.
type Bridge struct {
	flag atomic.Bool
}

// Signal is called from the interrupt handler.
func (b *Bridge) Signal() {
	b.flag.Store(true)
}

// Take consumes a pending event. It never blocks.
func (b *Bridge) Take() bool {
	return b.flag.CompareAndSwap(true, false)
}

// Pending reports an unconsumed event without consuming it.
func (b *Bridge) Pending() bool {
	return b.flag.Load()
}

// Clear drops the pending event. The engine calls it only after its TWCR
// write for that event, because the AVR TWI interrupt stays asserted while
// TWINT is set and would otherwise signal the same edge again.
func (b *Bridge) Clear() {
	b.flag.Store(false)
}
