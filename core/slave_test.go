package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twislave/protocol"
)

func TestNewRejectsInvalidAddress(t *testing.T) {
	for _, addr := range []Address{0x00, 0x80, 0xFF} {
		_, err := New(&scriptedBus{}, addr, Pins{}, &Bridge{})
		assert.ErrorIs(t, err, ErrInvalidAddress, "addr %#x", addr)
	}
}

func TestConfigureIsIdempotent(t *testing.T) {
	for _, gc := range []bool{false, true} {
		once := &scriptedBus{bridge: &Bridge{}}
		s1, err := New(once, 0x26, Pins{}, once.bridge)
		require.NoError(t, err)
		require.NoError(t, s1.Configure(gc))

		twice := &scriptedBus{bridge: &Bridge{}}
		s2, err := New(twice, 0x26, Pins{}, twice.bridge)
		require.NoError(t, err)
		require.NoError(t, s2.Configure(gc))
		require.NoError(t, s2.Configure(gc))

		assert.Equal(t, once.ReadAddress(), twice.ReadAddress())
		assert.Equal(t, once.ReadControl(), twice.ReadControl())
		assert.Equal(t, uint8(0), twice.ReadControl())
	}
}

func TestConfigureAddressRegister(t *testing.T) {
	bus := &scriptedBus{bridge: &Bridge{}}
	s, err := New(bus, 0x26, Pins{}, bus.bridge)
	require.NoError(t, err)

	require.NoError(t, s.Configure(false))
	assert.Equal(t, uint8(0x4C), bus.ReadAddress())

	require.NoError(t, s.Configure(true))
	assert.Equal(t, uint8(0x4D), bus.ReadAddress())
}

func TestTransactionNeedsConfigure(t *testing.T) {
	bus := &scriptedBus{bridge: &Bridge{}}
	s, err := New(bus, 0x26, Pins{}, bus.bridge)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Receive(make([]byte, 1)), ErrNotConfigured)
	_, err = s.Respond(nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, bus.controls, "nothing may touch TWCR before Configure")
}

func TestReleaseHandsBackResources(t *testing.T) {
	s, bus, _ := newScriptedSlave(t)
	pins := Pins{SDA: 18, SCL: 19}

	regs, gotPins, bridge, err := s.Release()
	require.NoError(t, err)
	assert.Same(t, bus, regs)
	assert.Equal(t, pins, gotPins)
	assert.Same(t, bus.bridge, bridge)
	assert.Equal(t, uint8(0), bus.lastControl())

	assert.ErrorIs(t, s.Receive(make([]byte, 1)), ErrReleased)
	assert.ErrorIs(t, s.Configure(false), ErrReleased)
	_, _, _, err = s.Release()
	assert.ErrorIs(t, err, ErrReleased)
}

func TestConcurrentTransactionIsBusy(t *testing.T) {
	s, bus, ctx := newScriptedSlave(t, edge{status: 0x60}, edge{status: 0xA0})

	var nested []error
	bus.onIdle = func() {
		if len(nested) == 0 {
			_, err := s.Respond(nil)
			nested = append(nested, err, s.Configure(true))
		}
	}

	require.NoError(t, s.ReceiveContext(ctx, make([]byte, 1)))
	require.Len(t, nested, 2)
	assert.ErrorIs(t, nested[0], ErrBusy)
	assert.ErrorIs(t, nested[1], ErrBusy)
}

func TestRespondCancelled(t *testing.T) {
	s, bus, _ := newScriptedSlave(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.RespondContext(ctx, []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, protocol.CodeCanceled, ErrorCode(err))
	assert.Equal(t, uint8(0), bus.lastControl())
}

func TestErrorCode(t *testing.T) {
	cases := map[error]protocol.Code{
		nil:                                protocol.CodeOK,
		ErrBufferOverflow:                  protocol.CodeBufferOverflow,
		ErrArbitrationLost:                 protocol.CodeArbitrationLost,
		ErrNotExpectedTransactionDirection: protocol.CodeNotExpectedTransactionDirection,
		ErrNotImplemented:                  protocol.CodeNotImplemented,
		&UnknownStateError{Code: 0xF8}:     protocol.CodeUnknownState,
		context.DeadlineExceeded:           protocol.CodeCanceled,
		ErrBusy:                            protocol.CodeOther,
	}
	for err, want := range cases {
		assert.Equal(t, want, ErrorCode(err), "%v", err)
	}
}

func TestBridgeTake(t *testing.T) {
	var b Bridge
	assert.False(t, b.Take())

	b.Signal()
	b.Signal()
	assert.True(t, b.Pending())
	assert.True(t, b.Take())
	assert.False(t, b.Take(), "two signals before a take are one event")
	assert.False(t, b.Pending())
}

func TestEdgeTrace(t *testing.T) {
	ClearEdgeTrace()
	s, _, ctx := newScriptedSlave(t,
		edge{status: 0x60},
		edge{status: 0x80, data: 1},
		edge{status: 0x00},
	)
	_ = s.ReceiveContext(ctx, make([]byte, 2))

	trace := EdgeTrace()
	require.Len(t, trace, 3)
	assert.Equal(t, protocol.EventOwnWrite, trace[0].Event)
	assert.Equal(t, uint16(1), trace[1].Cursor)
	assert.Equal(t, protocol.Status(0x00), trace[2].Status)

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})
	DumpEdgeTrace()
	require.Len(t, lines, 5)
	assert.Equal(t, "[TWI] #3 status=0x00 BusError cursor=1", lines[3])
}

func TestItoa(t *testing.T) {
	assert.Equal(t, "0", itoa(0))
	assert.Equal(t, "-42", itoa(-42))
	assert.Equal(t, "65535", itoa(65535))
}
