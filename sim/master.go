package sim

import (
	"context"
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

var (
	// ErrNoDevice means nobody acknowledged the address.
	ErrNoDevice = errors.New("sim: no device acknowledged the address")
	// ErrNack means the slave did not acknowledge a data byte.
	ErrNack = errors.New("sim: data byte not acknowledged")
)

// DefaultTimeout bounds one Tx when Master.Timeout is zero.
const DefaultTimeout = 2 * time.Second

// Master drives a Peripheral the way a bus master would. It implements
// drivers.I2C, so anything written against TinyGo drivers can talk to the
// simulated slave.
type Master struct {
	Bus *Peripheral

	// Timeout bounds a whole Tx, including waiting for the slave to arm.
	Timeout time.Duration
}

var _ drivers.I2C = (*Master)(nil)

// Tx writes w and then reads len(r) bytes. The read, if any, follows a
// repeated START; the slave sees that as the end of the write.
func (m *Master) Tx(addr uint16, w, r []byte) error {
	timeout := m.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if len(w) > 0 || len(r) == 0 {
		if err := m.write(ctx, addr, w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		return m.read(ctx, addr, r)
	}
	return nil
}

// ReadRegister writes reg and reads len(buf) bytes back.
func (m *Master) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return m.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes reg followed by buf.
func (m *Master) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, reg)
	w = append(w, buf...)
	return m.Tx(uint16(addr), w, nil)
}

func (m *Master) write(ctx context.Context, addr uint16, w []byte) error {
	general := false
	resp, ok, err := m.Bus.Address(ctx, addr, func(own, gc bool) (uint8, bool) {
		switch {
		case own:
			return 0x60, true
		case gc:
			general = true
			return 0x70, true
		}
		return 0, false
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoDevice
	}

	ackStatus, nackStatus := uint8(0x80), uint8(0x88)
	if general {
		ackStatus, nackStatus = 0x90, 0x98
	}
	for _, b := range w {
		if !resp.Enabled() {
			return ErrNack
		}
		if !resp.Acked() {
			// The byte goes out, the slave answers NACK.
			_, err := m.Bus.Edge(ctx, nackStatus, b)
			if err != nil && !errors.Is(err, ErrNotListening) {
				return err
			}
			return ErrNack
		}
		resp, err = m.Bus.Edge(ctx, ackStatus, b)
		if errors.Is(err, ErrNotListening) {
			return ErrNack
		}
		if err != nil {
			return err
		}
	}

	if resp.Enabled() {
		if _, err := m.Bus.Edge(ctx, 0xA0, 0); err != nil && !errors.Is(err, ErrNotListening) {
			return err
		}
	}
	return nil
}

func (m *Master) read(ctx context.Context, addr uint16, r []byte) error {
	resp, ok, err := m.Bus.Address(ctx, addr, func(own, _ bool) (uint8, bool) {
		return 0xA8, own
	})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoDevice
	}
	r[0] = resp.Data

	for i := 1; i <= len(r); i++ {
		more := i < len(r) // ACK every byte but the last
		if !resp.Enabled() {
			fill(r[i:], 0xFF)
			return nil
		}

		var status uint8
		switch {
		case !more:
			status = 0xC0
		case !resp.Acked():
			status = 0xC8
		default:
			status = 0xB8
		}

		resp, err = m.Bus.Edge(ctx, status, 0)
		if errors.Is(err, ErrNotListening) {
			fill(r[i:], 0xFF)
			return nil
		}
		if err != nil {
			return err
		}
		if status == 0xC8 {
			// The slave has left the transfer; the lines float high.
			fill(r[i:], 0xFF)
			return nil
		}
		if more {
			r[i] = resp.Data
		}
	}
	return nil
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
