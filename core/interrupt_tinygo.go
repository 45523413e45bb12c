//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts so multi-register updates are not
// observed half done by the TWI handler.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
