//go:build avr

package main

import (
	"context"
	"machine"

	"twislave/core"
	"twislave/protocol"
)

const (
	slaveAddress = 0x26
	generalCall  = false
	bufferSize   = 4
	baudRate     = 9600
)

// Value received from the master, sent back times ten.
var buf [bufferSize]byte

// ledReporter forwards reports to the UART and blinks the LED once per
// finished exchange.
type ledReporter struct {
	out *protocol.ReportWriter
	led machine.Pin
}

func (r *ledReporter) Report(rep protocol.Report) error {
	if rep.Kind == protocol.KindRespond {
		r.led.Set(!r.led.Get())
	}
	// A dropped report must not stop the bus loop.
	_ = r.out.Report(rep)
	return nil
}

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: baudRate})

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.Low()

	pins := InitTWI()

	slave, err := core.New(twiRegisters{}, slaveAddress, pins, &twiFlag)
	if err != nil {
		led.High()
		for {
		}
	}

	out := protocol.NewReportWriter(machine.Serial)
	_ = out.Sync()
	_ = out.Report(core.StartupReport(slave.Address()))

	ex := &core.Exchange{
		Slave:       slave,
		GeneralCall: generalCall,
		Buffer:      buf[:],
		Transform:   core.TimesTen,
		Reporter:    &ledReporter{out: out, led: led},
	}

	ex.Run(context.Background())
}
