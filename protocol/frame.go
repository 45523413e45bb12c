package protocol

import "errors"

var ErrFrameTooLong = errors.New("frame does not fit in FrameMax")

// EncodeFrame writes one complete frame into out (which is reset first).
// body fills in the payload; seq is masked to its low nibble and tagged
// with FrameDest.
func EncodeFrame(out *Output, seq uint8, body func(out *Output)) error {
	out.Reset()
	out.Write([]byte{0, FrameDest | seq&FrameSeqMask})
	if body != nil {
		body(out)
	}
	out.set(framePosLen, uint8(out.Len()+FrameTrailer))
	crc := CRC16(out.Bytes())
	out.Write([]byte{uint8(crc >> 8), uint8(crc), FrameSync})
	if out.Overflowed() {
		return ErrFrameTooLong
	}
	return nil
}

// Frame is one validated frame taken off the wire.
type Frame struct {
	Seq     uint8
	Payload []byte
}

// FrameDecoder reassembles frames from an arbitrary chunked byte stream.
// On any framing error it drops bytes until the next sync byte, the same
// way the MCU side of the Klipper transport resynchronizes.
type FrameDecoder struct {
	pending []byte
	lost    bool

	// Discarded counts bytes thrown away while resynchronizing.
	Discarded int
}

// Write buffers p for decoding. It never fails.
func (d *FrameDecoder) Write(p []byte) (int, error) {
	d.pending = append(d.pending, p...)
	return len(p), nil
}

// Next returns the next complete frame. ok is false when more input is
// needed.
func (d *FrameDecoder) Next() (f Frame, ok bool) {
	for len(d.pending) > 0 {
		if d.lost {
			i := indexSync(d.pending)
			if i < 0 {
				d.drop(len(d.pending))
				return Frame{}, false
			}
			d.drop(i + 1)
			d.lost = false
			continue
		}

		if d.pending[0] == FrameSync {
			d.pending = d.pending[1:]
			continue
		}
		if len(d.pending) < FrameMin {
			return Frame{}, false
		}

		n := int(d.pending[framePosLen])
		seq := d.pending[framePosSeq]
		if n < FrameMin || n > FrameMax || seq&^FrameSeqMask != FrameDest {
			d.lost = true
			continue
		}
		if len(d.pending) < n {
			return Frame{}, false
		}
		if d.pending[n-1] != FrameSync {
			d.lost = true
			continue
		}
		want := uint16(d.pending[n-frameTrailerCRC])<<8 | uint16(d.pending[n-frameTrailerCRC+1])
		if CRC16(d.pending[:n-FrameTrailer]) != want {
			d.lost = true
			continue
		}

		f = Frame{
			Seq:     seq & FrameSeqMask,
			Payload: append([]byte(nil), d.pending[FrameHeader:n-FrameTrailer]...),
		}
		d.pending = d.pending[n:]
		return f, true
	}
	return Frame{}, false
}

func (d *FrameDecoder) drop(n int) {
	d.Discarded += n
	d.pending = d.pending[n:]
}

func indexSync(p []byte) int {
	for i, b := range p {
		if b == FrameSync {
			return i
		}
	}
	return -1
}
