package protocol

import "errors"

var (
	ErrInvalidVLQ  = errors.New("invalid VLQ encoding")
	ErrShortBuffer = errors.New("buffer too short")
)

// EncodeUint appends v using the Klipper VLQ encoding: big-endian 7-bit
// groups, high bit set on every byte but the last. The value is encoded as
// a signed 32-bit integer so that the host decoder sees the same wire bytes
// Klipper would produce.
func EncodeUint(out *Output, v uint32) {
	sv := int32(v)
	for shift := 28; shift > 0; shift -= 7 {
		lim := int32(1) << (shift - 2)
		if sv < -lim || sv >= 3*lim {
			out.WriteByte(byte(sv>>shift)&0x7F | 0x80)
		}
	}
	out.WriteByte(byte(sv) & 0x7F)
}

// DecodeUint reads one VLQ value from the front of *data and advances it.
func DecodeUint(data *[]byte) (uint32, error) {
	p := *data
	if len(p) == 0 {
		return 0, ErrShortBuffer
	}
	c := p[0]
	p = p[1:]
	v := uint32(c & 0x7F)
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}
	for n := 1; c&0x80 != 0; n++ {
		if n >= 5 {
			return 0, ErrInvalidVLQ
		}
		if len(p) == 0 {
			return 0, ErrShortBuffer
		}
		c = p[0]
		p = p[1:]
		v = v<<7 | uint32(c&0x7F)
	}
	*data = p
	return v, nil
}

// EncodeBytes appends a length-prefixed byte string.
func EncodeBytes(out *Output, b []byte) {
	EncodeUint(out, uint32(len(b)))
	out.Write(b)
}

// DecodeBytes reads a length-prefixed byte string. The result aliases *data.
func DecodeBytes(data *[]byte) ([]byte, error) {
	n, err := DecodeUint(data)
	if err != nil {
		return nil, err
	}
	if uint32(len(*data)) < n {
		return nil, ErrShortBuffer
	}
	b := (*data)[:n]
	*data = (*data)[n:]
	return b, nil
}
