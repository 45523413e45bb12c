package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

//go:generate mockgen -destination "mock_core_test.go" -package $GOPACKAGE -write_package_comment=false twislave/core Reporter

// edge is one scripted bus edge: the status the peripheral reports and, for
// receive edges, the byte sitting in TWDR.
type edge struct {
	status uint8
	data   uint8
}

// scriptedBus is a single-threaded TWI model. The engine's idle hook plays
// the role of the hardware: once the engine has answered the previous edge,
// the next scripted edge is latched and the bridge signalled. When the
// script runs out while the engine still waits, the context is cancelled.
type scriptedBus struct {
	bridge *Bridge
	edges  []edge
	next   int

	twar, twcr, twsr, twdr uint8
	latched                bool

	controls []uint8 // every TWCR write
	loaded   []uint8 // every TWDR write

	cancel context.CancelFunc
	onIdle func()
}

func (b *scriptedBus) ReadAddress() uint8 { return b.twar }

func (b *scriptedBus) WriteAddress(v uint8) { b.twar = v }

func (b *scriptedBus) ReadControl() uint8 {
	if b.latched {
		return b.twcr | TWINT
	}
	return b.twcr
}

func (b *scriptedBus) WriteControl(v uint8) {
	b.controls = append(b.controls, v)
	if v&TWINT != 0 || v&TWEN == 0 {
		b.latched = false
	}
	b.twcr = v &^ TWINT
}

func (b *scriptedBus) ReadStatus() uint8 { return b.twsr }

func (b *scriptedBus) WriteStatus(v uint8) { b.twsr = b.twsr&^TWPSMask | v&TWPSMask }

func (b *scriptedBus) ReadData() uint8 { return b.twdr }

func (b *scriptedBus) WriteData(v uint8) {
	b.loaded = append(b.loaded, v)
	b.twdr = v
}

func (b *scriptedBus) idle() {
	if b.onIdle != nil {
		b.onIdle()
	}
	if b.latched || b.bridge.Pending() || b.twcr&TWEN == 0 || b.twcr&TWIE == 0 {
		return
	}
	if b.next == len(b.edges) {
		b.cancel()
		return
	}
	e := b.edges[b.next]
	b.next++
	b.twsr = e.status | b.twsr&TWPSMask
	b.twdr = e.data
	b.latched = true
	b.bridge.Signal()
}

func (b *scriptedBus) lastControl() uint8 {
	if len(b.controls) == 0 {
		return 0xFF
	}
	return b.controls[len(b.controls)-1]
}

// newScriptedSlave returns a configured slave at 0x26 wired to a script.
func newScriptedSlave(t *testing.T, edges ...edge) (*Slave, *scriptedBus, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bus := &scriptedBus{bridge: &Bridge{}, edges: edges, cancel: cancel}
	s, err := New(bus, 0x26, Pins{SDA: 18, SCL: 19}, bus.bridge)
	require.NoError(t, err)
	s.idle = bus.idle
	require.NoError(t, s.Configure(false))
	bus.controls = nil
	return s, bus, ctx
}
