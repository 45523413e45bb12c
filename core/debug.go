package core

import "twislave/protocol"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// EdgeEvent is one handled TWI edge, kept for post-mortem dumps.
type EdgeEvent struct {
	Seq    uint16
	Status protocol.Status
	Event  protocol.Event
	Cursor uint16
}

const EdgeRingSize = 16

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool

	// Edge ring buffer; written only from the polling context.
	edgeRing     [EdgeRingSize]EdgeEvent
	edgeRingHead uint8
	edgeSeq      uint16
)

// SetDebugWriter sets the platform-specific debug output function.
// On the ATmega the UART carries report frames, so the firmware leaves it unset.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEdge appends an edge to the ring. It does not allocate.
func RecordEdge(status protocol.Status, ev protocol.Event, cursor int) {
	edgeSeq++
	if edgeSeq == 0 {
		edgeSeq = 1
	}
	edgeRing[edgeRingHead] = EdgeEvent{
		Seq:    edgeSeq,
		Status: status,
		Event:  ev,
		Cursor: uint16(cursor),
	}
	edgeRingHead = (edgeRingHead + 1) % EdgeRingSize
}

// EdgeTrace returns the recorded edges, oldest first.
func EdgeTrace() []EdgeEvent {
	out := make([]EdgeEvent, 0, EdgeRingSize)
	for i := uint8(0); i < EdgeRingSize; i++ {
		evt := edgeRing[(edgeRingHead+i)%EdgeRingSize]
		if evt.Seq == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// DumpEdgeTrace writes the ring through the debug writer regardless of the
// debug switch; call it after a failed transaction.
func DumpEdgeTrace() {
	if debugPrintln == nil {
		return
	}
	debugPrintln("[TWI] === edge trace ===")
	for _, evt := range EdgeTrace() {
		debugPrintln("[TWI] #" + itoa(int(evt.Seq)) +
			" status=" + evt.Status.String() +
			" " + evt.Event.String() +
			" cursor=" + itoa(int(evt.Cursor)))
	}
	debugPrintln("[TWI] === end ===")
}

// ClearEdgeTrace empties the ring.
func ClearEdgeTrace() {
	for i := range edgeRing {
		edgeRing[i] = EdgeEvent{}
	}
	edgeRingHead = 0
	edgeSeq = 0
}
