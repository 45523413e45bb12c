// Package sim models an ATmega328P TWI peripheral in slave mode and a bus
// master driving it, so the slave driver can run on the host.
//
// The model is edge-accurate rather than cycle-accurate: the master
// presents one status code at a time and waits until the slave software has
// written TWCR in response, like a master held off by clock stretching.
package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"twislave/core"
)

var (
	// ErrNotListening is returned for a mid-transfer edge after the slave
	// has disabled its TWI.
	ErrNotListening = errors.New("sim: slave is not listening")
)

// pollInterval bounds how long a blocked edge waits before rechecking the
// bridge, which the slave clears without notifying the model.
const pollInterval = 50 * time.Microsecond

// Response is the slave's answer to one edge: the TWCR value it wrote and
// the TWDR contents at that moment.
type Response struct {
	Control uint8
	Data    uint8
}

// Acked reports whether the slave asked for the next byte.
func (r Response) Acked() bool { return r.Control&core.TWEA != 0 }

// Enabled reports whether the TWI stayed enabled.
func (r Response) Enabled() bool { return r.Control&core.TWEN != 0 }

// Peripheral implements core.Registers.
type Peripheral struct {
	bridge *core.Bridge

	mu      sync.Mutex
	changed chan struct{}

	twar, twcr, twsr, twdr uint8
	pending                bool
	answer                 uint8

	edges int
}

// NewPeripheral returns a powered-up TWI whose interrupt line signals bridge.
func NewPeripheral(bridge *core.Bridge) *Peripheral {
	return &Peripheral{
		bridge:  bridge,
		changed: make(chan struct{}),
		twsr:    uint8(0xF8),
	}
}

func (p *Peripheral) ReadAddress() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.twar
}

func (p *Peripheral) WriteAddress(v uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.twar = v
	p.notify()
}

func (p *Peripheral) ReadControl() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending {
		return p.twcr | core.TWINT
	}
	return p.twcr
}

// WriteControl answers the pending edge when TWINT is written as one or
// when the TWI is switched off.
func (p *Peripheral) WriteControl(v uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending && (v&core.TWINT != 0 || v&core.TWEN == 0) {
		p.pending = false
		p.answer = v
	}
	p.twcr = v &^ core.TWINT
	p.notify()
}

func (p *Peripheral) ReadStatus() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.twsr
}

// WriteStatus only reaches the prescaler bits.
func (p *Peripheral) WriteStatus(v uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.twsr = p.twsr&core.TWSRMask | v&core.TWPSMask
}

func (p *Peripheral) ReadData() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.twdr
}

func (p *Peripheral) WriteData(v uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.twdr = v
}

// Edges returns how many edges have been presented so far.
func (p *Peripheral) Edges() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edges
}

// listening reports whether an address edge would be seen. Caller holds mu.
func (p *Peripheral) listening() bool {
	return !p.pending && p.twcr&core.TWEN != 0 && p.twcr&core.TWIE != 0
}

// match decodes an address byte against TWAR. Caller holds mu.
func (p *Peripheral) match(addr uint16) (own, general bool) {
	own = addr == uint16(p.twar>>core.TWAShift)
	general = addr == 0 && p.twar&core.TWGCE != 0
	return own, general
}

// Address presents an address edge. It waits until the slave is armed and
// has consumed its previous event, then resolves the status code from TWAR
// with resolve. ok is false when resolve declines (nobody answers).
func (p *Peripheral) Address(ctx context.Context, addr uint16, resolve func(own, general bool) (uint8, bool)) (Response, bool, error) {
	if err := p.waitFor(ctx, func() bool { return p.listening() && !p.bridge.Pending() }); err != nil {
		return Response{}, false, err
	}
	status, ok := resolve(p.match(addr))
	if !ok {
		p.mu.Unlock()
		return Response{}, false, nil
	}
	r, err := p.raise(ctx, status, 0)
	return r, true, err
}

// Edge presents a mid-transfer edge. data is latched into TWDR for the
// slave receiver codes.
func (p *Peripheral) Edge(ctx context.Context, status, data uint8) (Response, error) {
	if err := p.waitFor(ctx, func() bool { return !p.pending && !p.bridge.Pending() }); err != nil {
		return Response{}, err
	}
	if p.twcr&core.TWEN == 0 {
		p.mu.Unlock()
		return Response{}, ErrNotListening
	}
	return p.raise(ctx, status, data)
}

// raise latches status, fires the interrupt and waits for the answer.
// Caller holds mu; raise releases it.
func (p *Peripheral) raise(ctx context.Context, status, data uint8) (Response, error) {
	p.twsr = status | p.twsr&core.TWPSMask
	switch status {
	case 0x80, 0x88, 0x90, 0x98:
		p.twdr = data
	}
	p.pending = true
	p.edges++
	interrupt := p.twcr&core.TWIE != 0
	p.notify()
	p.mu.Unlock()

	if interrupt {
		p.bridge.Signal()
	}

	if err := p.waitFor(ctx, func() bool { return !p.pending }); err != nil {
		return Response{}, err
	}
	defer p.mu.Unlock()
	return Response{Control: p.answer, Data: p.twdr}, nil
}

// notify wakes everyone blocked in waitFor. Caller holds mu.
func (p *Peripheral) notify() {
	close(p.changed)
	p.changed = make(chan struct{})
}

// waitFor returns with mu held once cond is true.
func (p *Peripheral) waitFor(ctx context.Context, cond func() bool) error {
	for {
		p.mu.Lock()
		if cond() {
			return nil
		}
		changed := p.changed
		p.mu.Unlock()

		select {
		case <-changed:
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var _ core.Registers = (*Peripheral)(nil)
