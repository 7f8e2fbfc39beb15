package icm20948

// ReadFunc is the caller-owned bus read primitive. The driver sets the
// read indicator bit on addr before invoking it; buf is filled with
// len(buf) bytes starting at that register.
type ReadFunc func(addr byte, buf []byte) error

// WriteFunc is the caller-owned bus write primitive. addr is passed
// through unmodified.
type WriteFunc func(addr byte, buf []byte) error

// DelayFunc is the caller-owned timing primitive, in microseconds.
type DelayFunc func(us uint32)

// readFlag marks an address as a read transaction on the wire.
const readFlag = 1 << 7

// transport wraps the injected primitives. No retries, no timeouts; a
// primitive's failure is passed straight through.
type transport struct {
	read  ReadFunc
	write WriteFunc
	delay DelayFunc
}

func (t transport) readRegs(addr byte, buf []byte) error {
	return t.read(addr|readFlag, buf)
}

func (t transport) writeReg(addr, value byte) error {
	return t.write(addr, []byte{value})
}
