//go:build !tinygo

package core

// State stands in for the interrupt mask on the host, where the "ISR" is a
// goroutine and register models do their own locking.
type State uintptr

func disableInterrupts() State {
	return 0
}

func restoreInterrupts(state State) {}
