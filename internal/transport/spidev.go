// Copyright (c) 2026 vicaller
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package transport provides bus backends for the ICM-20948 driver:
// a local spidev connection and a serial register bridge for sensors
// attached to a remote microcontroller.
package transport

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPI talks to the sensor through a Linux spidev device.
type SPI struct {
	port spi.PortCloser
	conn spi.Conn
}

// OpenSPI initializes the periph host, opens the named spidev port and
// configures it for the ICM-20948 (mode 3, 8 bit words).
func OpenSPI(device string, speedHz int64) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	port, err := spireg.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open SPI port %s: %w", device, err)
	}

	conn, err := port.Connect(physic.Frequency(speedHz)*physic.Hertz, spi.Mode3, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect SPI port %s: %w", device, err)
	}

	log.Printf("transport: SPI open on %s at %d Hz", device, speedHz)
	return &SPI{port: port, conn: conn}, nil
}

// Read clocks out the register address byte then reads len(buf) data
// bytes in the same transaction. The caller supplies the address with
// the read flag already set.
func (s *SPI) Read(addr byte, buf []byte) error {
	w := make([]byte, 1+len(buf))
	r := make([]byte, 1+len(buf))
	w[0] = addr
	if err := s.conn.Tx(w, r); err != nil {
		return fmt.Errorf("SPI read 0x%02X: %w", addr, err)
	}
	copy(buf, r[1:])
	return nil
}

// Write sends the register address byte followed by the payload.
func (s *SPI) Write(addr byte, buf []byte) error {
	w := make([]byte, 1+len(buf))
	w[0] = addr
	copy(w[1:], buf)
	if err := s.conn.Tx(w, nil); err != nil {
		return fmt.Errorf("SPI write 0x%02X: %w", addr, err)
	}
	return nil
}

// Delay blocks for the given number of microseconds.
func (s *SPI) Delay(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// Close releases the spidev port.
func (s *SPI) Close() error {
	return s.port.Close()
}
