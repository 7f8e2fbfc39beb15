// Copyright (c) 2026 vicaller
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jacobsa/go-serial/serial"
)

// Bridge frame layout. Each request is three header bytes, writes
// append the payload. The bridge answers with a status byte, reads
// append the register data.
const (
	bridgeOpRead  = 0x01
	bridgeOpWrite = 0x02

	bridgeStatusOK = 0x00
)

// ErrBridgeFault is returned when the remote bridge reports a bus error.
var ErrBridgeFault = errors.New("register bridge fault")

// SerialBridge forwards register transactions over a serial line to a
// microcontroller that owns the physical SPI bus.
type SerialBridge struct {
	rw io.ReadWriteCloser
}

// OpenSerialBridge opens the serial port and wraps it in a bridge.
func OpenSerialBridge(port string, baudRate uint) (*SerialBridge, error) {
	options := serial.OpenOptions{
		PortName:        port,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}

	rw, err := serial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}

	log.Printf("transport: serial bridge open on %s at %d baud", port, baudRate)
	return &SerialBridge{rw: rw}, nil
}

// NewSerialBridge wraps an already-open stream. Used by tests.
func NewSerialBridge(rw io.ReadWriteCloser) *SerialBridge {
	return &SerialBridge{rw: rw}
}

// Read requests len(buf) bytes starting at addr from the remote bus.
func (b *SerialBridge) Read(addr byte, buf []byte) error {
	if len(buf) > 0xFF {
		return fmt.Errorf("read too long: %d bytes", len(buf))
	}
	req := []byte{bridgeOpRead, addr, byte(len(buf))}
	if _, err := b.rw.Write(req); err != nil {
		return fmt.Errorf("bridge write request: %w", err)
	}

	resp := make([]byte, 1+len(buf))
	if _, err := io.ReadFull(b.rw, resp); err != nil {
		return fmt.Errorf("bridge read response: %w", err)
	}
	if resp[0] != bridgeStatusOK {
		return fmt.Errorf("%w: status 0x%02X", ErrBridgeFault, resp[0])
	}
	copy(buf, resp[1:])
	return nil
}

// Write sends len(buf) bytes starting at addr to the remote bus.
func (b *SerialBridge) Write(addr byte, buf []byte) error {
	if len(buf) > 0xFF {
		return fmt.Errorf("write too long: %d bytes", len(buf))
	}
	req := make([]byte, 0, 3+len(buf))
	req = append(req, bridgeOpWrite, addr, byte(len(buf)))
	req = append(req, buf...)
	if _, err := b.rw.Write(req); err != nil {
		return fmt.Errorf("bridge write request: %w", err)
	}

	var status [1]byte
	if _, err := io.ReadFull(b.rw, status[:]); err != nil {
		return fmt.Errorf("bridge read status: %w", err)
	}
	if status[0] != bridgeStatusOK {
		return fmt.Errorf("%w: status 0x%02X", ErrBridgeFault, status[0])
	}
	return nil
}

// Delay blocks for the given number of microseconds. Delays run on the
// host side, the bridge protocol has no timing primitive.
func (b *SerialBridge) Delay(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// Close closes the underlying serial port.
func (b *SerialBridge) Close() error {
	return b.rw.Close()
}
