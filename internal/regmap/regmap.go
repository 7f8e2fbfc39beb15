// Copyright (c) 2026 vicaller
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package regmap carries human-readable metadata for the ICM-20948
// registers the tooling exposes: names, access types and bit field
// layouts, keyed by user bank.
package regmap

import (
	"fmt"
	"strconv"

	"github.com/vicaller/icm20948"
)

// BitField describes one packed field within a register byte.
type BitField struct {
	Bits        string `json:"bits"` // e.g. "5:3" or "6"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo describes one register of one user bank.
type RegisterInfo struct {
	Bank        int        `json:"bank"`
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// ICM20948 returns metadata for the registers this driver touches,
// plus the shared bank-select register.
func ICM20948() []RegisterInfo {
	return []RegisterInfo{
		// Bank 0
		{Bank: 0, Address: "0x00", Name: "WHO_AM_I", Description: "Device ID (should be 0xEA)", Access: "R", Default: "0xEA"},
		{Bank: 0, Address: "0x06", Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x41",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Device reset", Values: "1=Reset device"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Awake, 1=Sleep"},
				{Bits: "5", Name: "LP_EN", Description: "Low power mode", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "TEMP_DIS", Description: "Temperature sensor", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 20MHz, 1-5=Auto select best, 6=Stop, 7=Stop"},
			}},
		{Bank: 0, Address: "0x07", Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:3", Name: "DISABLE_ACCEL", Description: "Accelerometer axis disable", Values: "0b000=All on, 0b111=All off"},
				{Bits: "2:0", Name: "DISABLE_GYRO", Description: "Gyroscope axis disable", Values: "0b000=All on, 0b111=All off"},
			}},
		{Bank: 0, Address: "0x2D", Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Bank: 0, Address: "0x2E", Name: "ACCEL_XOUT_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Bank: 0, Address: "0x2F", Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Bank: 0, Address: "0x30", Name: "ACCEL_YOUT_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Bank: 0, Address: "0x31", Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Bank: 0, Address: "0x32", Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Bank: 0, Address: "0x33", Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Bank: 0, Address: "0x34", Name: "GYRO_XOUT_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Bank: 0, Address: "0x35", Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Bank: 0, Address: "0x36", Name: "GYRO_YOUT_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Bank: 0, Address: "0x37", Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Bank: 0, Address: "0x38", Name: "GYRO_ZOUT_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},

		// Bank 2
		{Bank: 2, Address: "0x00", Name: "GYRO_SMPLRT_DIV", Description: "Gyroscope Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "GYRO_SMPLRT_DIV", Description: "ODR = 1125Hz / (1 + GYRO_SMPLRT_DIV)", Values: "0-255"},
			}},
		{Bank: 2, Address: "0x01", Name: "GYRO_CONFIG_1", Description: "Gyroscope Configuration 1", Access: "RW", Default: "0x01",
			BitFields: []BitField{
				{Bits: "5:3", Name: "GYRO_DLPFCFG", Description: "Gyro Digital Low Pass Filter config", Values: "0-7"},
				{Bits: "2:1", Name: "GYRO_FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250dps, 1=±500dps, 2=±1000dps, 3=±2000dps"},
				{Bits: "0", Name: "GYRO_FCHOICE", Description: "Gyro DLPF enable", Values: "0=Bypass DLPF, 1=Enable DLPF"},
			}},
		{Bank: 2, Address: "0x10", Name: "ACCEL_SMPLRT_DIV_1", Description: "Accelerometer Sample Rate Divider High", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3:0", Name: "ACCEL_SMPLRT_DIV", Description: "Divider bits 11:8", Values: "0-15"},
			}},
		{Bank: 2, Address: "0x11", Name: "ACCEL_SMPLRT_DIV_2", Description: "Accelerometer Sample Rate Divider Low", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "ACCEL_SMPLRT_DIV", Description: "Divider bits 7:0", Values: "0-255"},
			}},
		{Bank: 2, Address: "0x14", Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x01",
			BitFields: []BitField{
				{Bits: "5:3", Name: "ACCEL_DLPFCFG", Description: "Accel Digital Low Pass Filter config", Values: "0-7"},
				{Bits: "2:1", Name: "ACCEL_FS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
				{Bits: "0", Name: "ACCEL_FCHOICE", Description: "Accel DLPF enable", Values: "0=Bypass DLPF, 1=Enable DLPF"},
			}},

		// All banks
		{Bank: 0, Address: "0x7F", Name: "REG_BANK_SEL", Description: "User Bank Select (mirrored in every bank)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:4", Name: "USER_BANK", Description: "Active user register bank", Values: "0-3"},
			}},
	}
}

// ParseBank converts a bank number (0-3) into the driver's Bank value.
func ParseBank(n int) (icm20948.Bank, error) {
	switch n {
	case 0:
		return icm20948.UserBank0, nil
	case 1:
		return icm20948.UserBank1, nil
	case 2:
		return icm20948.UserBank2, nil
	case 3:
		return icm20948.UserBank3, nil
	}
	return 0, fmt.Errorf("bank out of range: %d", n)
}

// ParseAddr parses a register address in "0xNN" or decimal form.
func ParseAddr(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register address %q: %w", s, err)
	}
	if v > 0x7F {
		return 0, fmt.Errorf("register address out of range: %s", s)
	}
	return byte(v), nil
}

// ByBank returns the metadata entries belonging to one user bank.
func ByBank(bank int) []RegisterInfo {
	var out []RegisterInfo
	for _, r := range ICM20948() {
		if r.Bank == bank {
			out = append(out, r)
		}
	}
	return out
}
