package core

import (
	"context"
	"runtime"
	"sync/atomic"
)

// Slave drives one TWI peripheral in slave mode. It owns the register block
// exclusively from New until Release; only one transaction runs at a time.
type Slave struct {
	ctl    controller
	pins   Pins
	bridge *Bridge

	busy       atomic.Bool
	released   atomic.Bool
	configured bool

	// idle runs while the engine waits for an edge.
	idle func()
}

// New takes ownership of regs and pins. bridge must be the one the TWI
// interrupt handler signals.
func New(regs Registers, addr Address, pins Pins, bridge *Bridge) (*Slave, error) {
	if regs == nil || bridge == nil {
		return nil, ErrNotConfigured
	}
	if addr == 0 || addr > MaxAddress {
		return nil, ErrInvalidAddress
	}
	return &Slave{
		ctl:    controller{regs: regs, addr: addr},
		pins:   pins,
		bridge: bridge,
		idle:   runtime.Gosched,
	}, nil
}

func (s *Slave) Address() Address { return s.ctl.addr }

func (s *Slave) Pins() Pins { return s.pins }

// Configure writes the slave address (and general call acceptance) and
// leaves the controller disarmed. It must run before the first transaction
// and may run again between transactions.
func (s *Slave) Configure(generalCall bool) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.busy.Store(false)

	s.ctl.configure(generalCall)
	s.configured = true
	return nil
}

// Release disarms the controller and hands back everything New took. The
// Slave is unusable afterwards.
func (s *Slave) Release() (Registers, Pins, *Bridge, error) {
	if err := s.acquire(); err != nil {
		return nil, Pins{}, nil, err
	}
	s.ctl.disarmAndReset()
	s.released.Store(true)
	regs, pins, bridge := s.ctl.regs, s.pins, s.bridge
	s.ctl.regs = nil
	s.bridge = nil
	return regs, pins, bridge, nil
}

// Receive waits for a master write and stores the data bytes into buf. It
// blocks until the master ends the transfer or an error occurs.
func (s *Slave) Receive(buf []byte) error {
	return s.ReceiveContext(context.Background(), buf)
}

// ReceiveContext is Receive with cancellation. When ctx ends first the
// controller is disarmed and ctx.Err() returned.
func (s *Slave) ReceiveContext(ctx context.Context, buf []byte) error {
	_, err := s.run(ctx, &receiveTable, buf)
	return err
}

// Respond waits for a master read and transmits buf. It returns the number
// of buffer bytes sent; the 0x00 pad byte sent once buf runs out is not
// counted.
func (s *Slave) Respond(buf []byte) (int, error) {
	return s.RespondContext(context.Background(), buf)
}

// RespondContext is Respond with cancellation.
func (s *Slave) RespondContext(ctx context.Context, buf []byte) (int, error) {
	return s.run(ctx, &respondTable, buf)
}

// acquire marks the slave busy. Release never clears busy, which keeps a
// released slave from being used again.
func (s *Slave) acquire() error {
	if !s.busy.CompareAndSwap(false, true) {
		if s.released.Load() {
			return ErrReleased
		}
		return ErrBusy
	}
	return nil
}
