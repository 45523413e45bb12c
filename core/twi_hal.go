package core

// Registers is the TWI register block of one peripheral. Target code backs
// it with the memory-mapped registers; tests back it with a model. Reads and
// writes go straight to the hardware, so every call counts.
type Registers interface {
	ReadAddress() uint8 // TWAR
	WriteAddress(v uint8)
	ReadControl() uint8 // TWCR
	WriteControl(v uint8)
	ReadStatus() uint8 // TWSR
	WriteStatus(v uint8)
	ReadData() uint8 // TWDR
	WriteData(v uint8)
}

// TWCR bits.
const (
	TWINT uint8 = 1 << 7 // interrupt flag, cleared by writing one
	TWEA  uint8 = 1 << 6 // enable acknowledge
	TWSTA uint8 = 1 << 5 // start condition (master only)
	TWSTO uint8 = 1 << 4 // stop condition
	TWWC  uint8 = 1 << 3 // write collision
	TWEN  uint8 = 1 << 2 // enable TWI
	TWIE  uint8 = 1 << 0 // interrupt enable
)

// TWAR and TWSR bits.
const (
	TWGCE    uint8 = 1 << 0 // accept general call
	TWAShift       = 1      // slave address lives in TWAR[7:1]
	TWPSMask uint8 = 0x03   // prescaler bits of TWSR
	TWSRMask uint8 = 0xF8   // status bits of TWSR
)

// Address is a 7-bit bus address.
type Address uint8

// MaxAddress is the highest 7-bit address.
const MaxAddress Address = 0x7F

// Pin is a board pin number as the target names it.
type Pin uint8

// Pins records the SDA/SCL lines handed to the driver. They are configured
// by the target before New and never touched again by core.
type Pins struct {
	SDA Pin
	SCL Pin
}
