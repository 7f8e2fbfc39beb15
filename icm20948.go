// Copyright (c) 2026 vicaller
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package icm20948 is a register-level driver for the InvenSense
// ICM-20948 9-axis motion sensor over a byte-oriented SPI-style bus.
// The bus itself is injected as read/write/delay primitives, so the
// driver carries no electrical or platform detail and can be exercised
// against a simulated device.
//
// A Device is owned by exactly one logical caller at a time; there is
// no internal locking and no retry. Every operation is synchronous and
// returns after its last bus transaction completes or the first one
// fails.
package icm20948

import "fmt"

// SensorMode is the enabled/disabled state of one sub-sensor.
type SensorMode byte

const (
	SensorDisabled SensorMode = iota
	SensorEnabled
)

// Settings is the full desired device configuration. ApplySettings
// replaces the stored settings wholesale; there is no partial merge.
type Settings struct {
	Gyro  SensorMode
	Accel SensorMode
}

// Sample is one converted gyro or accel reading.
type Sample struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// sentinelSample accompanies every failed sample retrieval so an error
// path can never be mistaken for a valid zero reading.
var sentinelSample = Sample{X: 99, Y: 99, Z: 99}

// Device is the driver state for a single ICM-20948.
type Device struct {
	tr transport

	// bank is the value last successfully written to REG_BANK_SEL.
	bank Bank

	// Shadow of the power-management registers. PWR_MGMT_2 is shared
	// between the two sensors and is re-read before every modification;
	// the shadow only tracks what the driver last wrote.
	pwrMgmt1 byte
	pwrMgmt2 byte

	settings Settings
}

// New verifies comms with the device and wakes it. It selects user
// bank 0, checks WHO_AM_I against the expected value and programs
// PWR_MGMT_1 to clear sleep/reset and pick the best available clock.
// Each step runs only if all prior steps succeeded, and the first
// failure is returned unchanged.
func New(read ReadFunc, write WriteFunc, delay DelayFunc) (*Device, error) {
	if read == nil || write == nil || delay == nil {
		return nil, ErrNilTransport
	}

	d := &Device{
		tr:   transport{read: read, write: write, delay: delay},
		bank: UserBank0,
	}

	// Make the device's active bank match the cache before anything else.
	if err := d.tr.writeReg(regBankSel, byte(UserBank0)); err != nil {
		return nil, err
	}

	var id [1]byte
	if err := d.tr.readRegs(regWhoAmI, id[:]); err != nil {
		return nil, err
	}
	if id[0] != whoAmIValue {
		return nil, fmt.Errorf("%w: got 0x%02X, want 0x%02X", ErrBadIdentity, id[0], whoAmIValue)
	}

	d.pwrMgmt1 &^= bitDeviceReset | bitSleep
	d.pwrMgmt1 = d.pwrMgmt1&^clkSelMask | clkSelAuto
	if err := d.tr.writeReg(regPwrMgmt1, d.pwrMgmt1); err != nil {
		return nil, err
	}
	return d, nil
}

// setBank switches the device's active register bank if it differs
// from the cached selection. The cache is only updated after the
// select write succeeds, so a failed switch is retried on the next
// banked access.
func (d *Device) setBank(bank Bank) error {
	if d.bank == bank {
		return nil
	}
	if err := d.tr.writeReg(regBankSel, byte(bank)); err != nil {
		return err
	}
	d.bank = bank
	return nil
}

func (d *Device) readBanked(bank Bank, addr byte, buf []byte) error {
	if err := d.setBank(bank); err != nil {
		return err
	}
	return d.tr.readRegs(addr, buf)
}

func (d *Device) writeBanked(bank Bank, addr, value byte) error {
	if err := d.setBank(bank); err != nil {
		return err
	}
	return d.tr.writeReg(addr, value)
}

// ApplySettings replaces the stored settings with s and programs the
// device accordingly. The gyro branch fully resolves before the accel
// branch begins; within each branch the first failure aborts the call.
func (d *Device) ApplySettings(s Settings) error {
	d.settings = s

	if err := d.applyGyro(s.Gyro); err != nil {
		return err
	}
	return d.applyAccel(s.Accel)
}

func (d *Device) applyGyro(mode SensorMode) error {
	if mode == SensorEnabled {
		cfg := byte(defaultGyroDLPF<<gyroDLPFCfgShift | defaultGyroFSSel<<gyroFSSelShift | gyroFChoice)
		if err := d.writeBanked(UserBank2, regGyroConfig1, cfg); err != nil {
			return err
		}
		return d.writeBanked(UserBank2, regGyroSmplrtDiv, defaultGyroDiv)
	}

	// PWR_MGMT_2 carries the accelerometer enable bits too; a blind
	// write would clobber them.
	var buf [1]byte
	if err := d.readBanked(UserBank0, regPwrMgmt2, buf[:]); err != nil {
		return err
	}
	d.pwrMgmt2 = buf[0] | disableGyroMask
	return d.writeBanked(UserBank0, regPwrMgmt2, d.pwrMgmt2)
}

func (d *Device) applyAccel(mode SensorMode) error {
	if mode == SensorEnabled {
		cfg := byte(defaultAccelDLPF<<accelDLPFCfgShift | defaultAccelFSSel<<accelFSSelShift | accelFChoice)
		if err := d.writeBanked(UserBank2, regAccelConfig, cfg); err != nil {
			return err
		}
		if err := d.writeBanked(UserBank2, regAccelSmplrtDiv1, defaultAccelDiv1&accelSmplrtDiv1Mask); err != nil {
			return err
		}
		return d.writeBanked(UserBank2, regAccelSmplrtDiv2, defaultAccelDiv2)
	}

	var buf [1]byte
	if err := d.readBanked(UserBank0, regPwrMgmt2, buf[:]); err != nil {
		return err
	}
	d.pwrMgmt2 = buf[0] | disableAccelMask
	return d.writeBanked(UserBank0, regPwrMgmt2, d.pwrMgmt2)
}

// GetGyroData reads and converts the current gyro sample. The gyro
// must be enabled in the applied settings; otherwise the call fails
// without touching the bus. On any failure the returned Sample is the
// (99, 99, 99) sentinel.
func (d *Device) GetGyroData() (Sample, error) {
	if d.settings.Gyro != SensorEnabled {
		return sentinelSample, ErrSensorDisabled
	}

	var raw [6]byte
	if err := d.readBanked(UserBank0, regGyroXoutH, raw[:]); err != nil {
		return sentinelSample, err
	}

	s := decodeAxes(raw)
	s.X /= gyroScaleDiv
	s.Y /= gyroScaleDiv
	s.Z /= gyroScaleDiv
	return s, nil
}

// GetAccelData reads and converts the current accel sample, under the
// same gating and sentinel contract as GetGyroData.
func (d *Device) GetAccelData() (Sample, error) {
	if d.settings.Accel != SensorEnabled {
		return sentinelSample, ErrSensorDisabled
	}

	var raw [6]byte
	if err := d.readBanked(UserBank0, regAccelXoutH, raw[:]); err != nil {
		return sentinelSample, err
	}

	s := decodeAxes(raw)
	s.X = quantizeAccel(s.X)
	s.Y = quantizeAccel(s.Y)
	s.Z = quantizeAccel(s.Z)
	return s, nil
}

// decodeAxes combines the six output bytes into signed axis words.
// The device transmits high byte first per axis; each pair combines
// as low | high<<8.
func decodeAxes(raw [6]byte) Sample {
	return Sample{
		X: int16(uint16(raw[1]) | uint16(raw[0])<<8),
		Y: int16(uint16(raw[3]) | uint16(raw[2])<<8),
		Z: int16(uint16(raw[5]) | uint16(raw[4])<<8),
	}
}

func quantizeAccel(v int16) int16 {
	v /= accelScaleDiv
	return v - v%accelNoiseStep
}

// ReadRegister reads one register from the given bank through the
// bank-aware access layer. Intended for debug tooling; normal
// operation goes through the typed operations above.
func (d *Device) ReadRegister(bank Bank, addr byte) (byte, error) {
	var buf [1]byte
	if err := d.readBanked(bank, addr, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// WriteRegister writes one register in the given bank. Debug writes to
// the bank-select register and the power-management registers keep the
// driver's cache and shadows in line.
func (d *Device) WriteRegister(bank Bank, addr, value byte) error {
	if err := d.writeBanked(bank, addr, value); err != nil {
		return err
	}
	if addr == regBankSel {
		// REG_BANK_SEL is mirrored in every bank; the write just
		// switched the active bank out from under the cache.
		d.bank = Bank(value)
		return nil
	}
	if bank == UserBank0 {
		switch addr {
		case regPwrMgmt1:
			d.pwrMgmt1 = value
		case regPwrMgmt2:
			d.pwrMgmt2 = value
		}
	}
	return nil
}
