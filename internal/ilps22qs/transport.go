// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

// Transport moves register bytes between host and device. Implementations
// perform one bus transaction per call; multi-byte access relies on the
// device auto-incrementing the register address.
type Transport interface {
	ReadRegs(reg uint8, b []byte) error
	WriteRegs(reg uint8, b []byte) error
}

type i2cTransport struct {
	d *i2c.Dev
}

func (t *i2cTransport) ReadRegs(reg uint8, b []byte) error {
	return t.d.Tx([]byte{reg}, b)
}

func (t *i2cTransport) WriteRegs(reg uint8, b []byte) error {
	w := make([]byte, len(b)+1)
	w[0] = reg
	copy(w[1:], b)
	return t.d.Tx(w, nil)
}

// spiTransport uses the 4-wire protocol: bit 7 of the address byte selects a
// read.
type spiTransport struct {
	c spi.Conn
}

func (t *spiTransport) ReadRegs(reg uint8, b []byte) error {
	w := make([]byte, len(b)+1)
	r := make([]byte, len(b)+1)
	w[0] = reg | 0x80
	if err := t.c.Tx(w, r); err != nil {
		return err
	}
	copy(b, r[1:])
	return nil
}

func (t *spiTransport) WriteRegs(reg uint8, b []byte) error {
	w := make([]byte, len(b)+1)
	w[0] = reg &^ 0x80
	copy(w[1:], b)
	return t.c.Tx(w, nil)
}

// tinygoTransport adapts a tinygo.org/x/drivers I2C bus, for builds on
// microcontrollers.
type tinygoTransport struct {
	bus  drivers.I2C
	addr uint16
}

func (t *tinygoTransport) ReadRegs(reg uint8, b []byte) error {
	return t.bus.Tx(t.addr, []byte{reg}, b)
}

func (t *tinygoTransport) WriteRegs(reg uint8, b []byte) error {
	w := make([]byte, len(b)+1)
	w[0] = reg
	copy(w[1:], b)
	return t.bus.Tx(t.addr, w, nil)
}
