// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package ilps22qs controls an STMicroelectronics ILPS22QS barometric
// pressure sensor with its AH/QVAR analog hub channel, over I2C or SPI.
//
// The package exposes the raw register file through typed register values
// (Dev.Get, Dev.Set) and the higher level control operations built on them:
// reset and boot, bus and pin configuration, output data rate, averaging,
// filtering, FIFO, threshold interrupts, reference pressure and conversion of
// raw codes to physical units.
//
// Datasheet
//
// https://www.st.com/resource/en/datasheet/ilps22qs.pdf
package ilps22qs

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

const (
	// ID is the fixed content of WHO_AM_I.
	ID = 0xB4
	// I2CAddr is the 7-bit I2C address.
	I2CAddr uint16 = 0x5C
)

// Opts holds the driver options.
type Opts struct {
	// Delay is used by DelayMs. It defaults to time.Sleep.
	Delay func(time.Duration)
	// SPIFreq is the SPI clock for NewSPI.
	SPIFreq physic.Frequency
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Delay:   time.Sleep,
	SPIFreq: 5 * physic.MegaHertz,
}

// Dev is a handle to an ILPS22QS.
//
// Dev is not safe for concurrent use; callers that share a device between
// goroutines must serialize access.
type Dev struct {
	t     Transport
	delay func(time.Duration)
	name  string
}

// New returns a device driving the sensor through t. No bus traffic is
// generated.
func New(t Transport, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{t: t, delay: opts.Delay, name: "ILPS22QS"}
	if d.delay == nil {
		d.delay = time.Sleep
	}
	return d
}

// NewI2C returns a device on an I2C bus. addr 0 selects I2CAddr.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if addr == 0 {
		addr = I2CAddr
	}
	if addr > 0x7F {
		return nil, fmt.Errorf("ilps22qs: invalid I2C address 0x%X", addr)
	}
	d := New(&i2cTransport{d: &i2c.Dev{Bus: b, Addr: addr}}, opts)
	d.name = fmt.Sprintf("ILPS22QS{%s:0x%02X}", b, addr)
	return d, nil
}

// NewSPI returns a device on a 4-wire SPI port.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	f := opts.SPIFreq
	if f == 0 {
		f = DefaultOpts.SPIFreq
	}
	c, err := p.Connect(f, spi.Mode3, 8)
	if err != nil {
		return nil, fmt.Errorf("ilps22qs: %w", err)
	}
	d := New(&spiTransport{c: c}, opts)
	d.name = fmt.Sprintf("ILPS22QS{%s}", c)
	return d, nil
}

// NewTinyGoI2C returns a device on a tinygo.org/x/drivers I2C bus.
func NewTinyGoI2C(bus drivers.I2C, addr uint16, opts *Opts) *Dev {
	if addr == 0 {
		addr = I2CAddr
	}
	return New(&tinygoTransport{bus: bus, addr: addr}, opts)
}

func (d *Dev) String() string {
	return d.name
}

// DelayMs blocks for ms milliseconds using the configured delay function.
func (d *Dev) DelayMs(ms uint32) {
	d.delay(time.Duration(ms) * time.Millisecond)
}

// Get reads register r from the device and decodes it in place.
func (d *Dev) Get(r Register) error {
	l := r.Layout()
	buf := make([]byte, l.Size)
	if err := d.ReadRaw(l.Reg, buf); err != nil {
		return err
	}
	r.unpack(l.Decode(buf))
	return nil
}

// Set encodes r and writes it to the device. Reserved and read-only bits
// keep the value currently held by the device.
func (d *Dev) Set(r Register) error {
	l := r.Layout()
	if !l.Writable() {
		return fmt.Errorf("%w: %s", ErrReadOnly, l.Name)
	}
	var prev []byte
	if l.HasReadOnly() {
		prev = make([]byte, l.Size)
		if err := d.ReadRaw(l.Reg, prev); err != nil {
			return err
		}
	}
	return d.WriteRaw(l.Reg, l.Encode(r.pack(), prev))
}

// modify reads r, lets fn change its fields and writes it back with a single
// read of the register.
func (d *Dev) modify(r Register, fn func()) error {
	l := r.Layout()
	buf := make([]byte, l.Size)
	if err := d.ReadRaw(l.Reg, buf); err != nil {
		return err
	}
	r.unpack(l.Decode(buf))
	fn()
	return d.WriteRaw(l.Reg, l.Encode(r.pack(), buf))
}

// ReadRaw reads len(b) consecutive registers starting at reg.
func (d *Dev) ReadRaw(reg Reg, b []byte) error {
	if err := d.t.ReadRegs(uint8(reg), b); err != nil {
		return &TransportError{Op: "read", Reg: reg, Err: err}
	}
	return nil
}

// WriteRaw writes b to consecutive registers starting at reg.
func (d *Dev) WriteRaw(reg Reg, b []byte) error {
	if err := d.t.WriteRegs(uint8(reg), b); err != nil {
		return &TransportError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}
