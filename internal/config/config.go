// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicBaro        string // one JSON sample per message
	TopicBaroSources string // interrupt and FIFO flags

	// Barometer bus
	BaroBus        string // "i2c" or "spi"
	BaroI2CBus     string // i2creg name, empty for the first bus
	BaroI2CAddr    uint16
	BaroSPIDevice  string
	BaroSPISpeedHz int
	BaroAntiSpike  bool // I3C antispike filter always on
	BaroSDAPullUp  bool
	BaroCSPullUp   bool

	// Barometer mode
	// Full scale: 0=1260 hPa, 1=4060 hPa
	BaroFS byte
	// Output data rate: 0=one-shot, 1=1Hz, 2=4Hz, 3=10Hz, 4=25Hz, 5=50Hz, 6=75Hz, 7=100Hz, 8=200Hz
	BaroODR byte
	// Averaging: 0=4, 1=8, 2=16, 3=32, 4=64, 5=128, 6=256, 7=512 samples
	BaroAvg byte
	// Low-pass filter: 0=off, 1=ODR/4, 3=ODR/9
	BaroLPF         byte
	BaroInterleaved bool // interleave AH/QVAR with pressure
	BaroQvarEnable  bool
	BaroOPC         int16 // one-point calibration offset written to RPDS

	// Barometer FIFO
	// 0=bypass, 1=fifo, 2=stream, 5=bypass-to-fifo, 6=bypass-to-stream, 7=stream-to-fifo
	BaroFIFOMode      byte
	BaroFIFOWatermark byte

	// Timing
	BaroSampleInterval int // milliseconds
	BaroResetTimeout   int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Web Server
	WebServerPort     int
	RegisterDebugPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: InitGlobal loads the file once.
//   - configMu: write lock for initialization, read lock for Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

func defaults() *Config {
	return &Config{
		BaroBus:               "i2c",
		BaroI2CAddr:           0x5C,
		BaroSPISpeedHz:        5000000,
		BaroFIFOWatermark:     32,
		BaroResetTimeout:      100,
		TopicBaroSources:      "baro/sources",
		ConsoleLogInterval:    1000,
		WebServerPort:         8080,
		RegisterDebugPort:     8081,
		DisplayUpdateInterval: 500,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

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

// parseRange parses an integer and checks it against [lo, hi]. hint lists
// the meaning of each value for the error message.
func parseRange(key, value string, lo, hi int, hint string) (int, error) {
	val, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if val < lo || val > hi {
		if hint != "" {
			return 0, fmt.Errorf("%s must be %d-%d (%s), got %d", key, lo, hi, hint, val)
		}
		return 0, fmt.Errorf("%s must be %d-%d, got %d", key, lo, hi, val)
	}
	return val, nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_BARO":
		c.TopicBaro = value
	case "TOPIC_BARO_SOURCES":
		c.TopicBaroSources = value

	// Barometer bus
	case "BARO_BUS":
		v := strings.ToLower(value)
		if v != "i2c" && v != "spi" {
			return fmt.Errorf("BARO_BUS must be i2c or spi, got %q", value)
		}
		c.BaroBus = v
	case "BARO_I2C_BUS":
		c.BaroI2CBus = value
	case "BARO_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid BARO_I2C_ADDR %q: %w", value, err)
		}
		c.BaroI2CAddr = uint16(addr)
	case "BARO_SPI_DEVICE":
		c.BaroSPIDevice = value
	case "BARO_SPI_SPEED_HZ":
		c.BaroSPISpeedHz, err = parseRange(key, value, 100000, 10000000, "")
	case "BARO_ANTI_SPIKE":
		c.BaroAntiSpike, err = parseBool(key, value)
	case "BARO_SDA_PULLUP":
		c.BaroSDAPullUp, err = parseBool(key, value)
	case "BARO_CS_PULLUP":
		c.BaroCSPullUp, err = parseBool(key, value)

	// Barometer mode
	case "BARO_FS":
		var v int
		v, err = parseRange(key, value, 0, 1, "0=1260hPa, 1=4060hPa")
		c.BaroFS = byte(v)
	case "BARO_ODR":
		var v int
		v, err = parseRange(key, value, 0, 8, "0=one-shot, 1=1Hz, 2=4Hz, 3=10Hz, 4=25Hz, 5=50Hz, 6=75Hz, 7=100Hz, 8=200Hz")
		c.BaroODR = byte(v)
	case "BARO_AVG":
		var v int
		v, err = parseRange(key, value, 0, 7, "0=4 ... 7=512 samples")
		c.BaroAvg = byte(v)
	case "BARO_LPF":
		var v int
		v, err = parseRange(key, value, 0, 3, "0=off, 1=ODR/4, 3=ODR/9")
		if err == nil && v == 2 {
			err = fmt.Errorf("BARO_LPF must be 0, 1 or 3, got 2")
		}
		c.BaroLPF = byte(v)
	case "BARO_INTERLEAVED":
		c.BaroInterleaved, err = parseBool(key, value)
	case "BARO_QVAR_ENABLE":
		c.BaroQvarEnable, err = parseBool(key, value)
	case "BARO_OPC":
		var v int
		v, err = parseRange(key, value, -32768, 32767, "")
		c.BaroOPC = int16(v)

	// Barometer FIFO
	case "BARO_FIFO_MODE":
		var v int
		v, err = parseRange(key, value, 0, 7, "0=bypass, 1=fifo, 2=stream, 5=bypass-to-fifo, 6=bypass-to-stream, 7=stream-to-fifo")
		if err == nil && (v == 3 || v == 4) {
			err = fmt.Errorf("BARO_FIFO_MODE %d is not a FIFO mode", v)
		}
		c.BaroFIFOMode = byte(v)
	case "BARO_FIFO_WATERMARK":
		var v int
		v, err = parseRange(key, value, 0, 127, "")
		c.BaroFIFOWatermark = byte(v)

	// Timing
	case "BARO_SAMPLE_INTERVAL":
		c.BaroSampleInterval, err = parseRange(key, value, 1, 3600000, "")
	case "BARO_RESET_TIMEOUT":
		c.BaroResetTimeout, err = parseRange(key, value, 1, 10000, "")
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = parseRange(key, value, 1, 3600000, "")

	// Web Server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseRange(key, value, 1, 65535, "")
	case "REGISTER_DEBUG_PORT":
		c.RegisterDebugPort, err = parseRange(key, value, 1, 65535, "")

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseRange(key, value, 1, 60000, "")

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicBaro == "" {
		return fmt.Errorf("TOPIC_BARO is required")
	}
	if c.BaroBus == "spi" && c.BaroSPIDevice == "" {
		return fmt.Errorf("BARO_SPI_DEVICE is required when BARO_BUS=spi")
	}
	if c.BaroSampleInterval == 0 {
		return fmt.Errorf("BARO_SAMPLE_INTERVAL is required")
	}
	if c.BaroInterleaved && !c.BaroQvarEnable {
		return fmt.Errorf("BARO_INTERLEAVED requires BARO_QVAR_ENABLE=true")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Only the first call loads the file.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
