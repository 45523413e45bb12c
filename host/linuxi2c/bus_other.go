//go:build !linux

package linuxi2c

// Bus is unavailable off Linux; every call reports ErrUnsupported.
type Bus struct{}

// Open always fails with ErrUnsupported.
func Open(path string) (*Bus, error) {
	return nil, ErrUnsupported
}

func (b *Bus) Path() string { return "" }

func (b *Bus) Close() error { return nil }

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if err := checkTx(addr, w, r); err != nil {
		return err
	}
	return ErrUnsupported
}
