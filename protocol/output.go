package protocol

// Output is a fixed-size frame buffer. It never allocates, so the firmware
// can keep one in a global; writes past FrameMax are dropped and counted.
type Output struct {
	buf     [FrameMax]byte
	pos     int
	dropped int
}

// Write appends as much of p as fits. It always reports len(p) so Output
// can stand in for an io.Writer.
func (o *Output) Write(p []byte) (int, error) {
	n := copy(o.buf[o.pos:], p)
	o.pos += n
	o.dropped += len(p) - n
	return len(p), nil
}

// WriteByte appends one byte.
func (o *Output) WriteByte(c byte) error {
	if o.pos < len(o.buf) {
		o.buf[o.pos] = c
		o.pos++
	} else {
		o.dropped++
	}
	return nil
}

func (o *Output) Len() int { return o.pos }

// Overflowed reports whether any write was truncated since the last Reset.
func (o *Output) Overflowed() bool { return o.dropped > 0 }

// Bytes returns the buffered data. The slice is only valid until the next
// write or Reset.
func (o *Output) Bytes() []byte { return o.buf[:o.pos] }

func (o *Output) set(pos int, c byte) {
	if pos < o.pos {
		o.buf[pos] = c
	}
}

func (o *Output) Reset() {
	o.pos = 0
	o.dropped = 0
}
