// Copyright (c) 2026 vicaller
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package icm20948

// Bank identifies one of the four user register banks of the ICM-20948.
// The value is pre-shifted into bits 5:4 so it can be written to
// REG_BANK_SEL as-is.
type Bank byte

const (
	UserBank0 Bank = 0x00
	UserBank1 Bank = 0x10
	UserBank2 Bank = 0x20
	UserBank3 Bank = 0x30
)

// REG_BANK_SEL lives at the same address in every bank.
const regBankSel = 0x7F

// User bank 0.
const (
	regWhoAmI     = 0x00
	regPwrMgmt1   = 0x06
	regPwrMgmt2   = 0x07
	regAccelXoutH = 0x2D // X/Y/Z as contiguous H,L pairs
	regGyroXoutH  = 0x33 // likewise
)

// WHO_AM_I value for the ICM-20948.
const whoAmIValue = 0xEA

// PWR_MGMT_1 fields.
const (
	bitDeviceReset = 1 << 7
	bitSleep       = 1 << 6
	clkSelMask     = 0x07 // bits 2:0
	clkSelAuto     = 0x01 // best available internal clock
)

// PWR_MGMT_2 fields. One byte shared by both sensors, so it is always
// read-modify-written.
const (
	disableAccelMask = 0x38 // bits 5:3, 0b111 = all accel axes off
	disableGyroMask  = 0x07 // bits 2:0, 0b111 = all gyro axes off
)

// User bank 2.
const (
	regGyroSmplrtDiv   = 0x00
	regGyroConfig1     = 0x01
	regAccelSmplrtDiv1 = 0x10 // divider bits 11:8 in bits 3:0
	regAccelSmplrtDiv2 = 0x11 // divider bits 7:0
	regAccelConfig     = 0x14
)

// GYRO_CONFIG_1 fields.
const (
	gyroDLPFCfgShift = 3    // bits 5:3
	gyroFSSelShift   = 1    // bits 2:1
	gyroFChoice      = 0x01 // bit 0, 1 = DLPF in the signal path
)

// ACCEL_CONFIG fields.
const (
	accelDLPFCfgShift = 3
	accelFSSelShift   = 1
	accelFChoice      = 0x01
)

// Default operating points programmed by ApplySettings. These are
// contractual defaults, not caller-tunable.
const (
	defaultGyroFSSel  = 0x00 // ±250 dps
	defaultGyroDLPF   = 0x05
	defaultGyroDiv    = 0x0A
	defaultAccelFSSel = 0x01 // ±4 g
	defaultAccelDLPF  = 0x05
	defaultAccelDiv1  = 0x00
	defaultAccelDiv2  = 0x0A

	accelSmplrtDiv1Mask = 0x0F
)

// Raw-to-output conversion factors. The accel pair is an empirically
// tuned operating point for the ±4 g full scale above: divide the raw
// word by 16, then floor to the nearest multiple of 50 to sit under
// the noise floor. Downstream consumers depend on this exact
// arithmetic; do not re-derive it from the nominal scale.
const (
	gyroScaleDiv   = 250
	accelScaleDiv  = 16
	accelNoiseStep = 50
)
