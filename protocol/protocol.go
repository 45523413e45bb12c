// Package protocol describes the TWI slave bus protocol as seen by software
// (status codes and the events they stand for) and the framing used to
// report transaction results over the serial port.
package protocol

// Version is the report protocol version.
const Version = "0.1.0"

// Frame layout: len, seq, payload..., crc_hi, crc_lo, sync.
const (
	FrameHeader  = 2
	FrameTrailer = 3
	FrameMin     = FrameHeader + FrameTrailer
	FrameMax     = 64

	framePosLen     = 0
	framePosSeq     = 1
	frameTrailerCRC = 3

	FrameSync    = 0x7E
	FrameDest    = 0x10
	FrameSeqMask = 0x0F
)
