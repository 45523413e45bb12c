//go:build avr

package main

import (
	"device/avr"
	"machine"
	"runtime/interrupt"

	"twislave/core"
)

// twiRegisters exposes the ATmega328P TWI block as core.Registers.
type twiRegisters struct{}

func (twiRegisters) ReadAddress() uint8   { return avr.TWAR.Get() }
func (twiRegisters) WriteAddress(v uint8) { avr.TWAR.Set(v) }
func (twiRegisters) ReadControl() uint8   { return avr.TWCR.Get() }
func (twiRegisters) WriteControl(v uint8) { avr.TWCR.Set(v) }
func (twiRegisters) ReadStatus() uint8    { return avr.TWSR.Get() }
func (twiRegisters) WriteStatus(v uint8)  { avr.TWSR.Set(v) }
func (twiRegisters) ReadData() uint8      { return avr.TWDR.Get() }
func (twiRegisters) WriteData(v uint8)    { avr.TWDR.Set(v) }

var _ core.Registers = twiRegisters{}

// twiFlag is set by the TWI vector and consumed by the slave engine.
var twiFlag core.Bridge

func handleTWI(interrupt.Interrupt) {
	twiFlag.Signal()
}

// InitTWI powers the TWI block, hooks its interrupt vector and returns the
// pins the bus runs on. SDA and SCL have external pull-ups, so they are
// left as plain inputs.
func InitTWI() core.Pins {
	sda, scl := machine.PC4, machine.PC5
	sda.Configure(machine.PinConfig{Mode: machine.PinInput})
	scl.Configure(machine.PinConfig{Mode: machine.PinInput})

	interrupt.New(avr.IRQ_TWI, handleTWI)

	// power reduction keeps the TWI clock gated until PRTWI is cleared
	avr.PRR.ClearBits(avr.PRR_PRTWI)

	return core.Pins{SDA: core.Pin(sda), SCL: core.Pin(scl)}
}
