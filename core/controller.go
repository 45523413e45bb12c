package core

// controller is the only code that writes the TWI registers. Each method is
// one register command from the datasheet's slave-mode tables.
type controller struct {
	regs Registers
	addr Address
}

// configure loads TWAR and leaves TWCR fully disarmed. Running it twice
// leaves the same register state as running it once.
func (c *controller) configure(generalCall bool) {
	state := disableInterrupts()
	twar := uint8(c.addr) << TWAShift
	if generalCall {
		twar |= TWGCE
	}
	c.regs.WriteAddress(twar)
	c.regs.WriteControl(0)
	restoreInterrupts(state)
}

// arm enables the peripheral and its interrupt so the next edge addressed to
// us raises TWINT. START/STOP requests are left clear.
func (c *controller) arm() {
	c.regs.WriteControl(TWEA | TWEN | TWINT | TWIE)
}

// ackNext resumes the bus and acknowledges the next data byte.
func (c *controller) ackNext() {
	c.regs.WriteControl(TWINT | TWEA | TWEN | TWIE)
}

// nackNext resumes the bus; the next byte (or the one just loaded, when
// transmitting) is the last one.
func (c *controller) nackNext() {
	c.regs.WriteControl(TWINT | TWEN | TWIE)
}

// release clears TWINT with TWEA low: the bus is let go and nothing further
// is acknowledged.
func (c *controller) release() {
	c.regs.WriteControl(TWINT)
}

// disarmAndReset returns TWCR to its reset value. Called on every terminal
// path.
func (c *controller) disarmAndReset() {
	c.regs.WriteControl(0)
}

// snapshot clears the prescaler bits and reads the status code once.
func (c *controller) snapshot() uint8 {
	c.regs.WriteStatus(0)
	return c.regs.ReadStatus()
}

func (c *controller) readData() uint8 {
	return c.regs.ReadData()
}

func (c *controller) loadData(v uint8) {
	c.regs.WriteData(v)
}
