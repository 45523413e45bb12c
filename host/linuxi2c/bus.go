// Package linuxi2c is a bus master for Linux /dev/i2c-* adapters. It is used
// to drive the slave firmware from a single board computer.
package linuxi2c

import (
	"errors"
	"fmt"
	"math"

	"tinygo.org/x/drivers"
)

var (
	ErrInvalidAddress = errors.New("i2c address must be 7-bit and non-zero")
	ErrTooLong        = errors.New("i2c message too long")
	ErrClosed         = errors.New("i2c bus is closed")
	ErrUnsupported    = errors.New("i2c-dev is only available on linux")
)

var _ drivers.I2C = (*Bus)(nil)

// ReadRegister writes reg and then reads len(data) bytes with a repeated
// start.
func (b *Bus) ReadRegister(addr uint8, reg uint8, data []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, data)
}

// WriteRegister writes reg followed by data in one message.
func (b *Bus) WriteRegister(addr uint8, reg uint8, data []byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, reg)
	buf = append(buf, data...)
	return b.Tx(uint16(addr), buf, nil)
}

func checkTx(addr uint16, w, r []byte) error {
	if addr == 0 || addr > 0x7F {
		return fmt.Errorf("%w: 0x%02X", ErrInvalidAddress, addr)
	}
	if len(w) > math.MaxUint16 || len(r) > math.MaxUint16 {
		return ErrTooLong
	}
	return nil
}
