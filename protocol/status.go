package protocol

// Status is a raw TWSR value read with the prescaler bits cleared.
type Status uint8

// Slave receiver and slave transmitter status codes of the ATmega328P TWI
// (datasheet tables 22-4 and 22-5), plus the two miscellaneous states.
const (
	StatusOwnWrite           Status = 0x60 // own SLA+W received, ACK returned
	StatusOwnWriteArbLost    Status = 0x68 // arbitration lost as master, own SLA+W received
	StatusGeneralCall        Status = 0x70 // general call received, ACK returned
	StatusGeneralCallArbLost Status = 0x78 // arbitration lost as master, general call received
	StatusDataAck            Status = 0x80 // own SLA+W: data received, ACK returned
	StatusDataNack           Status = 0x88 // own SLA+W: data received, NACK returned
	StatusGeneralDataAck     Status = 0x90 // general call: data received, ACK returned
	StatusGeneralDataNack    Status = 0x98 // general call: data received, NACK returned
	StatusStop               Status = 0xA0 // STOP or repeated START while addressed
	StatusOwnRead            Status = 0xA8 // own SLA+R received, ACK returned
	StatusOwnReadArbLost     Status = 0xB0 // arbitration lost as master, own SLA+R received
	StatusByteSentAck        Status = 0xB8 // TWDR transmitted, ACK received
	StatusByteSentNack       Status = 0xC0 // TWDR transmitted, NACK received
	StatusLastByteSentAck    Status = 0xC8 // last byte (TWEA=0) transmitted, ACK received
	StatusNoInfo             Status = 0xF8 // no relevant state information, TWINT=0
	StatusBusError           Status = 0x00 // illegal START or STOP
)

// Event is the logical bus event a status code stands for.
type Event uint8

const (
	EventUnknown Event = iota
	EventOwnWrite
	EventOwnWriteArbLost
	EventGeneralCall
	EventGeneralCallArbLost
	EventDataAck
	EventDataNack
	EventGeneralDataAck
	EventGeneralDataNack
	EventStop
	EventOwnRead
	EventOwnReadArbLost
	EventByteSentAck
	EventByteSentNack
	EventLastByteSentAck
	EventNoInfo
	EventBusError

	// EventCount is the number of events; transition tables are sized by it.
	EventCount
)

var eventNames = [EventCount]string{
	EventUnknown:            "Unknown",
	EventOwnWrite:           "OwnWrite",
	EventOwnWriteArbLost:    "OwnWriteArbLost",
	EventGeneralCall:        "GeneralCall",
	EventGeneralCallArbLost: "GeneralCallArbLost",
	EventDataAck:            "DataAck",
	EventDataNack:           "DataNack",
	EventGeneralDataAck:     "GeneralDataAck",
	EventGeneralDataNack:    "GeneralDataNack",
	EventStop:               "Stop",
	EventOwnRead:            "OwnRead",
	EventOwnReadArbLost:     "OwnReadArbLost",
	EventByteSentAck:        "ByteSentAck",
	EventByteSentNack:       "ByteSentNack",
	EventLastByteSentAck:    "LastByteSentAck",
	EventNoInfo:             "NoInfo",
	EventBusError:           "BusError",
}

// Decode maps a status snapshot to exactly one event. Codes outside the
// slave-mode tables decode to EventUnknown.
func Decode(s Status) Event {
	switch s {
	case StatusOwnWrite:
		return EventOwnWrite
	case StatusOwnWriteArbLost:
		return EventOwnWriteArbLost
	case StatusGeneralCall:
		return EventGeneralCall
	case StatusGeneralCallArbLost:
		return EventGeneralCallArbLost
	case StatusDataAck:
		return EventDataAck
	case StatusDataNack:
		return EventDataNack
	case StatusGeneralDataAck:
		return EventGeneralDataAck
	case StatusGeneralDataNack:
		return EventGeneralDataNack
	case StatusStop:
		return EventStop
	case StatusOwnRead:
		return EventOwnRead
	case StatusOwnReadArbLost:
		return EventOwnReadArbLost
	case StatusByteSentAck:
		return EventByteSentAck
	case StatusByteSentNack:
		return EventByteSentNack
	case StatusLastByteSentAck:
		return EventLastByteSentAck
	case StatusNoInfo:
		return EventNoInfo
	case StatusBusError:
		return EventBusError
	}
	return EventUnknown
}

func (e Event) String() string {
	if e >= EventCount {
		return eventNames[EventUnknown]
	}
	return eventNames[e]
}

// Event is shorthand for Decode(s).
func (s Status) Event() Event {
	return Decode(s)
}

// String renders the code as 0xNN, which is how the datasheet lists it.
func (s Status) String() string {
	return Hex8(uint8(s))
}

const hexDigits = "0123456789ABCDEF"

// Hex8 formats v as 0xNN without pulling in fmt.
func Hex8(v uint8) string {
	return string([]byte{'0', 'x', hexDigits[v>>4], hexDigits[v&0x0F]})
}
