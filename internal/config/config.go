package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all tool configuration values.
type Config struct {
	// Transport selection: "spi" or "serial"
	Transport string

	// SPI transport
	SPIDevice  string
	SPISpeedHz int64

	// Serial bridge transport
	SerialPort     string
	SerialBaudRate uint

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDDisplay  string

	// Topics
	TopicGyro  string
	TopicAccel string

	// Sensor enables applied at producer startup
	GyroEnabled  bool
	AccelEnabled bool

	// Timing
	SampleInterval int // milliseconds

	// Register debug tool
	RegisterDebugPort          int
	RegisterDebugAllowedRanges string // e.g. "0x06-0x07,0x7F"

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level singleton guarded the same way across all the cmds:
// InitGlobal to set once, Get to read.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{
		Transport:             "spi",
		SPISpeedHz:            1_000_000,
		DisplayUpdateInterval: 500,
	}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "TRANSPORT":
		if value != "spi" && value != "serial" {
			return fmt.Errorf("TRANSPORT must be \"spi\" or \"serial\", got %q", value)
		}
		c.Transport = value

	case "SPI_DEVICE":
		c.SPIDevice = value
	case "SPI_SPEED_HZ":
		speed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SPI_SPEED_HZ %q: %w", value, err)
		}
		if speed <= 0 {
			return fmt.Errorf("SPI_SPEED_HZ must be positive, got %d", speed)
		}
		c.SPISpeedHz = speed

	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = uint(rate)

	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	case "TOPIC_GYRO":
		c.TopicGyro = value
	case "TOPIC_ACCEL":
		c.TopicAccel = value

	case "GYRO_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid GYRO_ENABLED %q: %w", value, err)
		}
		c.GyroEnabled = enabled
	case "ACCEL_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid ACCEL_ENABLED %q: %w", value, err)
		}
		c.AccelEnabled = enabled

	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval

	case "REGISTER_DEBUG_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_PORT %q: %w", value, err)
		}
		c.RegisterDebugPort = port
	case "REGISTER_DEBUG_ALLOWED_RANGES":
		c.RegisterDebugAllowedRanges = value

	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	switch c.Transport {
	case "spi":
		if c.SPIDevice == "" {
			return fmt.Errorf("SPI_DEVICE is required when TRANSPORT=spi")
		}
	case "serial":
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required when TRANSPORT=serial")
		}
		if c.SerialBaudRate == 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE is required when TRANSPORT=serial")
		}
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicGyro == "" {
		return fmt.Errorf("TOPIC_GYRO is required")
	}
	if c.TopicAccel == "" {
		return fmt.Errorf("TOPIC_ACCEL is required")
	}
	if c.SampleInterval == 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Uses
// sync.Once so repeated calls are harmless.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
